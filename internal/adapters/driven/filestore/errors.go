package filestore

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrMalformedCollection = errors.New("collection file is not a JSON array")
	ErrEmptyCollectionName = errors.New("collection name cannot be empty")
)

// ConflictError is returned when a record is created with an id that is already taken.
type ConflictError struct {
	Collection string
	ID         string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("record with id '%s' already exists in '%s'", e.ID, e.Collection)
}

func (e *ConflictError) Name() string { return "ConflictError" }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }
