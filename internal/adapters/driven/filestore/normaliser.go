package filestore

import (
	"math"

	"crudrouter/internal/core/domain"
)

// dataNormaliser turns freshly decoded JSON into the form records are kept in. Integral numbers
// become int.
type dataNormaliser struct{}

func newDataNormaliser() *dataNormaliser {
	return &dataNormaliser{}
}

func (n *dataNormaliser) normalise(value any) any {
	switch v := value.(type) {
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which is out of range
		if v == math.Trunc(v) && v >= math.MinInt64 && v < -math.MinInt64 {
			return int(v)
		}
		return v

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = n.normalise(item)
		}
		return out

	case map[string]any:
		return map[string]any(n.fields(v))

	default:
		return v
	}
}

// record normalises a top level collection item. ok is false for items that are not objects.
func (n *dataNormaliser) record(item any) (domain.Record, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return nil, false
	}
	return n.fields(m), true
}

func (n *dataNormaliser) fields(m map[string]any) domain.Record {
	out := make(domain.Record, len(m))
	for key, value := range m {
		out[key] = n.normalise(value)
	}
	return out
}
