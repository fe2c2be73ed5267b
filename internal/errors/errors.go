package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrReceiptNotFound is returned when no receipt exists with the given id.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrUserNotFound is returned when no user exists with the given id.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotOwner is returned when the caller does not own the receipt.
	ErrNotOwner = errors.New("you do not have permission to access this receipt")
	// ErrInvalidAmount is returned when the total amount is not strictly positive.
	ErrInvalidAmount = errors.New("total amount must be positive")
	// ErrStoreNameRequired is returned when the store name is empty.
	ErrStoreNameRequired = errors.New("store name is required")
	// ErrPurchaseDateRequired is returned when the purchase date is missing.
	ErrPurchaseDateRequired = errors.New("purchase date is required")
	// ErrInvalidDateRange is returned when a search date range is inverted.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	// ErrEmailInUse is returned when registering with an existing email.
	ErrEmailInUse = errors.New("email is already in use")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrReceiptNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "RECEIPT_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrNotOwner):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrStoreNameRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "STORE_NAME_REQUIRED")
	case errors.Is(err, ErrPurchaseDateRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PURCHASE_DATE_REQUIRED")
	case errors.Is(err, ErrInvalidDateRange):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_DATE_RANGE")
	case errors.Is(err, ErrEmailInUse):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_IN_USE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
