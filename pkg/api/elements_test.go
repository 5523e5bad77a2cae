package api

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElement_UnmarshalJSON_KnownFields(t *testing.T) {
	payload := []byte(`{
		"id": "el1",
		"type": "rectangle",
		"version": 3,
		"versionNonce": 12345,
		"updated": 1700000000.5,
		"isDeleted": false,
		"fileId": "abc",
		"status": "saved",
		"x": 10.5,
		"y": 20
	}`)

	var el Element
	require.NoError(t, json.Unmarshal(payload, &el))

	assert.Equal(t, "el1", el.ID)
	assert.Equal(t, int64(3), el.Version)
	assert.Equal(t, int64(12345), el.VersionNonce)
	assert.Equal(t, 1700000000.5, el.Updated)
	assert.False(t, el.IsDeleted)
	assert.Equal(t, "abc", el.FileID)
	assert.Equal(t, FileStatusSaved, el.Status)
}

func TestElement_RoundTrip_PreservesUnknownFields(t *testing.T) {
	// Схема открытая: поля, неизвестные серверу, должны вернуться как есть
	payload := []byte(`{"id":"el1","versionNonce":1,"updated":5,"type":"freedraw","points":[[0,1],[2,3]],"customProp":{"nested":true}}`)

	var el Element
	require.NoError(t, json.Unmarshal(payload, &el))

	out, err := json.Marshal(el)
	require.NoError(t, err)

	assert.JSONEq(t, string(payload), string(out))
	// Исходный payload возвращается байт-в-байт
	assert.Equal(t, payload, []byte(el.Raw()))
}

func TestElement_UnmarshalJSON_RequiresID(t *testing.T) {
	var el Element
	err := json.Unmarshal([]byte(`{"versionNonce":1}`), &el)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}

func TestElement_MarshalJSON_WithoutRaw(t *testing.T) {
	// Элемент, собранный в коде, а не разобранный из JSON
	el := Element{ID: "el1", Version: 2, VersionNonce: 7, Updated: 9.5}

	out, err := json.Marshal(el)
	require.NoError(t, err)

	var decoded Element
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "el1", decoded.ID)
	assert.Equal(t, int64(7), decoded.VersionNonce)
}

func TestElementFromRaw(t *testing.T) {
	raw := []byte(`{"id":"el9","versionNonce":42,"updated":1.5,"angle":0.25}`)

	el, err := ElementFromRaw(raw)
	require.NoError(t, err)
	assert.Equal(t, "el9", el.ID)
	assert.Equal(t, raw, []byte(el.Raw()))

	_, err = ElementFromRaw([]byte(`{"versionNonce":1}`))
	assert.Error(t, err)
}

func TestSyncElementsRequest_Decode(t *testing.T) {
	body := []byte(`{"items":[{"id":"a","versionNonce":1},{"id":"b","versionNonce":2,"strokeColor":"#fff"}]}`)

	var req SyncElementsRequest
	require.NoError(t, json.Unmarshal(body, &req))
	require.Len(t, req.Items, 2)
	assert.Equal(t, "a", req.Items[0].ID)
	assert.Contains(t, string(req.Items[1].Raw()), "strokeColor")
}

func TestElementsResponse_Encode(t *testing.T) {
	el, err := ElementFromRaw([]byte(`{"id":"a","versionNonce":1,"width":100}`))
	require.NoError(t, err)

	out, err := json.Marshal(ElementsResponse{
		Items:         []Element{el},
		NextSyncToken: 1700000123.25,
	})
	require.NoError(t, err)

	assert.Contains(t, string(out), `"nextSyncToken":1700000123.25`)
	assert.Contains(t, string(out), `"width":100`)
}
