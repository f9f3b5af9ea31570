package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateEmail signals that a jury or invitee email is already in use.
	// It is the only conflict the console treats as recoverable.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateAssignment is returned when an association pair already exists.
	ErrDuplicateAssignment = errors.New("assignment already exists")
)

// DuplicateEmailError reports which entity type rejected the email.
type DuplicateEmailError struct {
	Entity EntityType
	Email  string
}

func (e DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %q already exists for another %s", e.Email, e.Entity)
}

// Is makes DuplicateEmailError match ErrDuplicateEmail.
func (e DuplicateEmailError) Is(target error) bool {
	return target == ErrDuplicateEmail
}

// NotFoundError is returned when a referenced record does not exist.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Is makes NotFoundError match ErrNotFound.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NormalizeEmail returns the comparison form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
