// Package apperr defines the domain error taxonomy shared by the storage
// layer and its callers.
//
// Validation and not-found failures are typed so callers can present them to
// users. Store failures are not represented here: they are wrapped with
// operation context and propagated untouched.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is checks.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports the first constraint an input violated.
type ValidationError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid %s: failed %s=%s", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("invalid %s: failed %s", e.Field, e.Rule)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports that no row matched the referenced id.
type NotFoundError struct {
	Entity string `json:"entity"`
	ID     int64  `json:"id"`
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound builds a NotFoundError.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// HTTPStatus maps an error to the status code the API layer responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
