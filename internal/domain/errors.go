package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested entity does not exist on the server
	ErrNotFound = errors.New("entity not found")

	// ErrServerOffline indicates the catalogue API is unreachable
	ErrServerOffline = errors.New("catalogue server is unreachable")

	// ErrInvalidEntityType indicates an access record type outside material/branch/regulation/subject
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
)

// ValidationError rejects input before it reaches the catalogue API.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// APIError is a non-2xx response from the catalogue API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Status)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}
