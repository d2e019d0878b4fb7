package service

import "reflect"

// OverridesKey — зарезервированный ключ со списком ключей, которые заменяются принудительно.
const OverridesKey = "_overrides"

// MergeSettings добавляет в stored ключи из incoming, которых там нет. Существующие
// значения не перезаписываются, кроме ключей, перечисленных в incoming["_overrides"]
// на том же уровне вложенности. Ключи из stored никогда не удаляются.
// stored не изменяется; changed — появились ли отличия.
func MergeSettings(stored, incoming map[string]any) (map[string]any, bool) {
	merged, _ := deepCopy(stored).(map[string]any)
	if merged == nil {
		merged = map[string]any{}
	}
	changed := mergeInto(merged, incoming)
	return merged, changed
}

func mergeInto(dst, src map[string]any) bool {
	forced := overrideKeys(src[OverridesKey])
	changed := false
	for k, v := range src {
		cur, ok := dst[k]
		if !ok {
			dst[k] = deepCopy(v)
			changed = true
			continue
		}
		if _, force := forced[k]; force || k == OverridesKey {
			if !reflect.DeepEqual(cur, v) {
				dst[k] = deepCopy(v)
				changed = true
			}
			continue
		}
		srcMap, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if dstMap, ok := cur.(map[string]any); ok && mergeInto(dstMap, srcMap) {
			changed = true
		}
	}
	return changed
}

func overrideKeys(v any) map[string]struct{} {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make(map[string]struct{}, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out[s] = struct{}{}
		}
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
