package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// normalizeObject проверяет, что raw — JSON-объект, и возвращает его в компактном виде.
// Пустое значение и null превращаются в {}.
func normalizeObject(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON(`{}`), nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected JSON object", ErrInvalidInput)
	}
	return compact(trimmed)
}

// normalizeValue проверяет, что raw — любой корректный JSON. Пустое значение — {}.
func normalizeValue(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return datatypes.JSON(`{}`), nil
	}
	return compact(trimmed)
}

func compact(raw []byte) (datatypes.JSON, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return datatypes.JSON(buf.Bytes()), nil
}

// decodeObject разбирает JSON-объект в map. Некорректный или не-объектный JSON даёт пустую map.
func decodeObject(raw []byte) map[string]any {
	out := map[string]any{}
	if len(raw) == 0 {
		return out
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return out
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return out
}
