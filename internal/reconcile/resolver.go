package reconcile

import "github.com/objectivehq/scenesync/internal/models"

// Resolution определяет исход разрешения конфликта для пары
// (входящий, существующий) элементов.
type Resolution int

const (
	// Apply входящая версия принимается и записывается в хранилище.
	Apply Resolution = iota
	// Keep существующая версия новее; входящая отбрасывается, а
	// существующая возвращается клиенту, чтобы он слил её локально.
	Keep
	// Noop клиент повторно прислал уже применённое изменение,
	// ничего делать не нужно.
	Noop
)

// String возвращает текстовое представление для логов.
func (r Resolution) String() string {
	switch r {
	case Apply:
		return "apply"
	case Keep:
		return "keep"
	case Noop:
		return "noop"
	default:
		return "unknown"
	}
}

// Resolve — чистая функция разрешения конфликта между входящим и
// существующим элементом:
//
//  1. Существующего нет — Apply (создание).
//  2. Равные version nonce — Noop (повторная отправка уже применённого
//     изменения; равенство nonce считается отпечатком идентичного
//     содержимого).
//  3. Входящий updated меньше существующего — Keep (чужая правка,
//     сделанная позже по часам клиента, уже перезаписала состояние,
//     на котором основана входящая).
//  4. Иначе — Apply (входящая правка не старее, она выигрывает).
//
// Побеждает последняя запись по клиентскому времени правки, НЕ по
// порядку прихода на сервер и НЕ по счетчику version: version
// присутствует в данных, но алгоритмом не используется.
func Resolve(incoming, existing *models.Element) Resolution {
	if existing == nil {
		return Apply
	}
	if incoming.VersionNonce == existing.VersionNonce {
		return Noop
	}
	if incoming.Updated < existing.Updated {
		return Keep
	}
	return Apply
}
