package reconcile

import (
	"sync"

	"github.com/google/uuid"
)

// sceneLocks хранит мьютексы по идентификатору сцены: одновременно
// выполняется не более одной реконсиляции на сцену, разные сцены друг
// друга не блокируют.
//
// Вставка нового ключа делается атомарно через sync.Map.LoadOrStore,
// чтобы конкурирующие запросы к новой сцене не создали два мьютекса.
// Ключи не вытесняются: мьютекс на сцену — десятки байт, а количество
// активных сцен на процесс ограничено.
type sceneLocks struct {
	locks sync.Map // map[uuid.UUID]*sync.Mutex
}

// lock захватывает мьютекс сцены и возвращает функцию освобождения.
// Вызывающий обязан освободить его на всех путях (defer).
func (l *sceneLocks) lock(sceneID uuid.UUID) (unlock func()) {
	v, _ := l.locks.LoadOrStore(sceneID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
