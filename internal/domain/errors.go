package domain

import "fmt"

// AppError is the base domain error type.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// Standard domain error constructors.

func ErrValidation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Status: 400}
}

func ErrNotFound(entity, id string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s %s not found", entity, id), Status: 404}
}

func ErrInsufficientFunds() *AppError {
	return &AppError{Code: "INSUFFICIENT_FUNDS", Message: "insufficient funds", Status: 400}
}

func ErrAlreadyClaimed(key string) *AppError {
	return &AppError{Code: "ALREADY_CLAIMED", Message: fmt.Sprintf("reward %s already claimed", key), Status: 409}
}

func ErrNotReady(msg string) *AppError {
	return &AppError{Code: "NOT_READY", Message: msg, Status: 409}
}

func ErrCoolingDown(msg string) *AppError {
	return &AppError{Code: "COOLING_DOWN", Message: msg, Status: 429}
}

func ErrLimitReached(msg string) *AppError {
	return &AppError{Code: "LIMIT_REACHED", Message: msg, Status: 429}
}

func ErrNotPending(id string) *AppError {
	return &AppError{Code: "NOT_PENDING", Message: fmt.Sprintf("withdrawal %s is not pending", id), Status: 409}
}

func ErrDeviceMismatch() *AppError {
	return &AppError{Code: "DEVICE_MISMATCH", Message: "device does not match the bound fingerprint", Status: 403}
}

func ErrLockedOut(msg string) *AppError {
	return &AppError{Code: "LOCKED_OUT", Message: msg, Status: 429}
}

func ErrAlreadySelf() *AppError {
	return &AppError{Code: "ALREADY_SELF", Message: "cannot bind your own invite code", Status: 400}
}

func ErrAlreadyBound() *AppError {
	return &AppError{Code: "ALREADY_BOUND", Message: "an inviter is already bound", Status: 409}
}

func ErrRateLimited(msg string) *AppError {
	return &AppError{Code: "RATE_LIMITED", Message: msg, Status: 429}
}

func ErrUnauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Status: 401}
}

func ErrForbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Status: 403}
}

func ErrInternal(msg string, cause error) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: msg, Status: 500, Cause: cause}
}
