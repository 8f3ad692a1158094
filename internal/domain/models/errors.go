package models

import (
	"errors"
	"fmt"
)

// Error kinds shared by the services, stores and the HTTP layer.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
	ErrInvalidRange  = errors.New("invalid range")
	ErrInvalidInput  = errors.New("invalid input")
	ErrForbidden     = errors.New("forbidden")
	ErrOverrideState = errors.New("manual override state")
)

// DomainError pairs an error kind with a short message that can be shown to operators.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// NotFound reports that an entity reference does not resolve.
func NotFound(entity, ref string) error {
	return &DomainError{Kind: ErrNotFound, Message: fmt.Sprintf("%s %q not found", entity, ref)}
}

// DuplicateName reports that an entity with the same name already exists.
func DuplicateName(entity, name string) error {
	return &DomainError{Kind: ErrDuplicateName, Message: fmt.Sprintf("%s with name %q already exists", entity, name)}
}

// InvalidRange reports a temperature band whose minimum exceeds its maximum.
func InvalidRange(minTemp, maxTemp float64) error {
	return &DomainError{
		Kind:    ErrInvalidRange,
		Message: fmt.Sprintf("min_temp (%g) must not exceed max_temp (%g)", minTemp, maxTemp),
	}
}

// InvalidField reports a rejected input field.
func InvalidField(field, reason string) error {
	return &DomainError{Kind: ErrInvalidInput, Message: fmt.Sprintf("%s %s", field, reason)}
}

// Forbidden reports that the session role may not perform an action.
func Forbidden(role Role, action string) error {
	return &DomainError{Kind: ErrForbidden, Message: fmt.Sprintf("role %s may not %s", role, action)}
}

// OverrideRequired reports an action that needs the manual override in a specific state.
func OverrideRequired(active bool) error {
	msg := "manual override must be active to set the target temperature"
	if !active {
		msg = "manual override must be disabled to apply the recommended temperature"
	}
	return &DomainError{Kind: ErrOverrideState, Message: msg}
}

// UserMessage extracts the operator-safe message of err. Errors that are not
// domain errors are reported generically so that storage details never leak.
func UserMessage(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
