package copier

import (
	"fmt"

	"crudrouter/internal/core/domain"
)

func DeepCopy[T any](src T) (T, error) {
	var zero T

	copied := deepCopyValue(any(src))
	if result, ok := copied.(T); ok {
		return result, nil
	}

	return zero, fmt.Errorf("deep copy failed: expected %T, got %T", zero, copied)
}

// Records deep copies a slice of records. The result is never nil.
func Records(src []domain.Record) []domain.Record {
	dst := make([]domain.Record, 0, len(src))
	for _, r := range src {
		dst = append(dst, Record(r))
	}
	return dst
}

// Record deep copies one record
func Record(src domain.Record) domain.Record {
	if src == nil {
		return nil
	}
	return deepCopyValue(src).(domain.Record)
}

// deepCopyValue copies the JSON-shaped values records are made of. Anything else is treated as
// immutable and returned as is.
func deepCopyValue(src any) any {
	switch v := src.(type) {
	case nil:
		return nil

	case domain.Record:
		if v == nil {
			return domain.Record(nil)
		}
		dst := make(domain.Record, len(v))
		for key, val := range v {
			dst[key] = deepCopyValue(val)
		}
		return dst

	case map[string]any:
		if v == nil {
			return map[string]any(nil)
		}
		dst := make(map[string]any, len(v))
		for key, val := range v {
			dst[key] = deepCopyValue(val)
		}
		return dst

	case []domain.Record:
		if v == nil {
			return []domain.Record(nil)
		}
		dst := make([]domain.Record, len(v))
		for i, record := range v {
			dst[i] = deepCopyValue(record).(domain.Record)
		}
		return dst

	case []any:
		if v == nil {
			return []any(nil)
		}
		dst := make([]any, len(v))
		for i, val := range v {
			dst[i] = deepCopyValue(val)
		}
		return dst

	default:
		return v
	}
}
