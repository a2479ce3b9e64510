package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes returned to callers.
const (
	CodeValidation           = "VALIDATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeInternal             = "INTERNAL_ERROR"
	CodeEventInactive        = "EVENT_INACTIVE"
	CodeEventExpired         = "EVENT_EXPIRED"
	CodeInsufficientCapacity = "INSUFFICIENT_CAPACITY"
	CodeDuplicatePurchase    = "DUPLICATE_PURCHASE"
	CodeInvalidPromoCode     = "INVALID_PROMO_CODE"
	CodeAccessDenied         = "ACCESS_DENIED"
	CodeAlreadyCancelled     = "ALREADY_CANCELLED"
	CodeInvalidState         = "INVALID_STATE"
	CodeEventAlreadyOccurred = "EVENT_ALREADY_OCCURRED"
	CodeOutOfRange           = "OUT_OF_RANGE"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewEventInactive() error {
	return NewDomainError(CodeEventInactive, "event is not active", http.StatusConflict, nil)
}

func NewEventExpired() error {
	return NewDomainError(CodeEventExpired, "cannot purchase for past events", http.StatusConflict, nil)
}

// NewInsufficientCapacity reports how many seats were left when the request was rejected.
func NewInsufficientCapacity(requested, available int) error {
	if available < 0 {
		available = 0
	}
	return NewDomainError(CodeInsufficientCapacity,
		fmt.Sprintf("only %d seats available", available),
		http.StatusConflict,
		map[string]any{"requested": requested, "available": available})
}

func NewDuplicatePurchase(message string) error {
	return NewDomainError(CodeDuplicatePurchase, message, http.StatusConflict, nil)
}

// NewInvalidPromoCode carries every violated condition, not just the first.
func NewInvalidPromoCode(violations []string) error {
	return NewDomainError(CodeInvalidPromoCode, "promo code validation failed", http.StatusUnprocessableEntity,
		map[string]any{"errors": violations})
}

func NewAccessDenied() error {
	return NewDomainError(CodeAccessDenied, "access denied", http.StatusForbidden, nil)
}

func NewAlreadyCancelled(resource string) error {
	return NewDomainError(CodeAlreadyCancelled, fmt.Sprintf("%s is already cancelled", resource), http.StatusConflict, nil)
}

func NewInvalidState(message string) error {
	return NewDomainError(CodeInvalidState, message, http.StatusConflict, nil)
}

func NewEventAlreadyOccurred() error {
	return NewDomainError(CodeEventAlreadyOccurred, "event has already occurred", http.StatusConflict, nil)
}

func NewOutOfRange(message string, details map[string]any) error {
	return NewDomainError(CodeOutOfRange, message, http.StatusBadRequest, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return NewInternalError(err).(*DomainError)
}

// CodeOf returns the stable code carried by err, or "" when err is nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

func MapError(err error) error {
	return ToDomainError(err)
}
