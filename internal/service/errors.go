package service

import (
	"errors"

	"github.com/czarnick89/workout-tracker/internal/repository"
)

// Errors the API layer maps onto responses. Field problems travel as
// validation.Errors instead.
var (
	ErrNotFound             = errors.New("not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidToken         = errors.New("invalid token")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// notFound turns a missing row into ErrNotFound and passes every other
// error through.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
