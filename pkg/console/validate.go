package console

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/slate/pkg/codegen"
	"github.com/aretw0/slate/pkg/core"
)

const (
	maxNameLen        = 120
	maxDescriptionLen = 500
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// RoleInput is the content of the role creation form.
type RoleInput struct {
	Name        string
	Description string
}

// UserInput is the content of the user creation form.
// Roles holds role codes; an empty Status means pending.
type UserInput struct {
	Name   string
	Email  string
	Status core.UserStatus
	Roles  []string
}

// ValidateRole checks a role form. It does not look at stored data.
func ValidateRole(in RoleInput) error {
	var ve ValidationError
	validateName(&ve, in.Name)
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		ve.add("description", "must be %d characters or fewer", maxDescriptionLen)
	}
	return ve.orNil()
}

// ValidateUser checks a user form. Role existence and email uniqueness need
// the stored collections and are checked by the Service.
func ValidateUser(in UserInput) error {
	var ve ValidationError
	checkUser(&ve, in)
	return ve.orNil()
}

func checkUser(ve *ValidationError, in UserInput) {
	validateName(ve, in.Name)

	email := strings.TrimSpace(in.Email)
	if email == "" {
		ve.add("email", "is required")
	} else if !isEmail(email) {
		ve.add("email", "invalid address %q", email)
	}

	if in.Status != "" && !in.Status.IsValid() {
		ve.add("status", "invalid value %q", in.Status)
	}
}

func validateName(ve *ValidationError, name string) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		ve.add("name", "is required")
	case utf8.RuneCountInString(name) > maxNameLen:
		ve.add("name", "must be %d characters or fewer", maxNameLen)
	case codegen.Normalize(name) == "":
		ve.add("name", "must contain at least one letter or digit")
	}
}

// isEmail accepts a bare address ("a@b.c"), not a display-name form.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
