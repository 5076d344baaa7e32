package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
)

// Dispatch error codes. Configuration errors abort instruction building;
// delivery errors are recovered at the sender boundary and never reach the
// triggering business call.
const (
	ErrNoRoleHolder ErrorCode = iota + 2000
	ErrEventPayload
	ErrChannelMessageMissing
	ErrDeliveryFailed
	ErrUnknownEventType
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// NoRoleHolder reports a staffing configuration defect: an event requires a
// stakeholder role that no currently active user holds.
func NoRoleHolder(role string) *AppError {
	return &AppError{
		Code:    ErrNoRoleHolder,
		Message: fmt.Sprintf("no active user holds role %s", role),
	}
}

// EventPayload reports a required field missing or malformed in an event
// payload, detected before any instruction is emitted.
func EventPayload(eventType, field string) *AppError {
	return &AppError{
		Code:    ErrEventPayload,
		Message: fmt.Sprintf("event %s: payload field %q missing or invalid", eventType, field),
	}
}

// ChannelMessageMissing reports a programming invariant violation: a sender
// was handed an instruction that carries no message for its channel.
func ChannelMessageMissing(channel string) *AppError {
	return &AppError{
		Code:    ErrChannelMessageMissing,
		Message: fmt.Sprintf("instruction carries no %s message", channel),
	}
}

// DeliveryFailed wraps a provider or transport failure for one channel attempt.
func DeliveryFailed(channel string, err error) *AppError {
	return &AppError{
		Code:    ErrDeliveryFailed,
		Message: fmt.Sprintf("%s delivery failed", channel),
		Err:     err,
	}
}

// UnknownEventType reports an event type with no registered builder.
func UnknownEventType(eventType string) *AppError {
	return &AppError{
		Code:    ErrUnknownEventType,
		Message: fmt.Sprintf("no builder registered for event type %s", eventType),
	}
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed. Errors that
// are not AppErrors map to ErrInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
