package upstream

import (
	"fmt"
	"sort"
)

// ExtractList finds the record array in the shapes the list endpoints use:
// a bare array, {data:[...]}, {data:{<key>:[...]}} for one of keys, or an
// object of records keyed by id. keyed objects come back sorted by key.
func ExtractList(res *Result, keys ...string) ([]any, error) {
	data := res.Envelope().Data()
	if data == nil {
		return []any{}, nil
	}
	if list, ok := data.([]any); ok {
		return list, nil
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected list payload %T", ErrUnavailable, data)
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		obj = inner
	}
	for _, key := range keys {
		if list, ok := obj[key].([]any); ok {
			return list, nil
		}
	}
	return keyedList(obj), nil
}

func keyedList(obj map[string]any) []any {
	keys := make([]string, 0, len(obj))
	for k, v := range obj {
		if _, ok := v.(map[string]any); !ok {
			return []any{}
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]any, len(keys))
	for i, k := range keys {
		list[i] = obj[k]
	}
	return list
}
