package domain

import (
	"fmt"
	"maps"
)

// Record is a single entity of a resource as it travels between the HTTP layer and a backend.
type Record map[string]any

// ID returns the string form of the value stored under idField and whether it is present.
func (r Record) ID(idField string) (string, bool) {
	id, ok := r[idField]
	if !ok || id == nil {
		return "", false
	}

	return fmt.Sprintf("%v", id), true
}

func (r Record) SetID(idField string, id any) {
	r[idField] = id
}

// Clone returns a shallow copy, nil stays nil
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	dst := make(Record, len(r))
	maps.Copy(dst, r)
	return dst
}

// Project keeps only the listed fields. An empty list keeps everything.
func (r Record) Project(fields []string) Record {
	if len(fields) == 0 || r == nil {
		return r
	}

	projected := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			projected[f] = v
		}
	}
	return projected
}
