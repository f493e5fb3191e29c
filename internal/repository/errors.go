// Package repository defines the storage contracts consumed by the domain
// services, plus the sentinel errors implementations must translate
// driver failures into.
package repository

import "errors"

var (
	// ErrNotFound: the requested entity does not exist for the tenant.
	ErrNotFound = errors.New("not found")

	// ErrConflict: an optimistic concurrency check failed, the entity was
	// modified by another session.
	ErrConflict = errors.New("conflict: entity was modified by another session")

	// ErrForeignKeyViolation: a referenced entity is missing.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrInvalidInput: the repository rejected malformed input.
	ErrInvalidInput = errors.New("invalid input")
)
