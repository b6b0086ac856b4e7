// Package model has the domain types shared by the scraping pipeline,
// its collaborators and the storage.
package model

import "errors"

var (
	// ErrNotFound is returned when a task or result is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a task or result already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a value or a state transition is not valid.
	ErrNotValid = errors.New("not valid")
)
