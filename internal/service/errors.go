package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/news-notes-api/internal/access"
	"github.com/news-notes-api/internal/validation"
)

var (
	// ErrNotFound covers both missing records and records owned by someone else
	ErrNotFound = access.ErrNotFound
	// ErrUnauthenticated means the caller must log in first
	ErrUnauthenticated = access.ErrUnauthenticated
	// ErrInvalidCredentials is returned by Login for an unknown user or a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// FormError is a rejected submission with messages attached to individual fields.
// Nothing is persisted when it is returned.
type FormError struct {
	Fields validation.FieldErrors
}

func (e *FormError) Error() string {
	return "invalid form: " + strings.Join(e.fieldNames(), ", ")
}

// fieldNames lists the fields with errors
func (e *FormError) fieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

func newFormError(field, message string) *FormError {
	fe := validation.FieldErrors{}
	fe.Add(field, message)
	return &FormError{Fields: fe}
}
