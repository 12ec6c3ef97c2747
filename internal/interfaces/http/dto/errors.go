package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when two callers race on the same offer
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the current status
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeIntakeUnparseable is used when no line items can be extracted
	ErrCodeIntakeUnparseable = "ERR_INTAKE_UNPARSEABLE"
	// ErrCodeUnknownCustomer is used when the intake customer cannot be resolved
	ErrCodeUnknownCustomer = "ERR_UNKNOWN_CUSTOMER"
	// ErrCodeUnknownProduct is used when a requested product is not in the catalog
	ErrCodeUnknownProduct = "ERR_UNKNOWN_PRODUCT"
)

// Vendor ERP error codes
const (
	// ErrCodeVendorRejected is used when the ERP refuses the offer
	ErrCodeVendorRejected = "ERR_VENDOR_REJECTED"
	// ErrCodeVendorUnavailable is used when the ERP cannot be reached
	ErrCodeVendorUnavailable = "ERR_VENDOR_UNAVAILABLE"
	// ErrCodeVendorAuth is used when the ERP session is rejected
	ErrCodeVendorAuth = "ERR_VENDOR_AUTH"
	// ErrCodeVerificationMismatch is used when the ERP read-back does not
	// match what was sent
	ErrCodeVerificationMismatch = "ERR_VERIFICATION_MISMATCH"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeIntakeUnparseable: http.StatusUnprocessableEntity,
	ErrCodeUnknownCustomer:   http.StatusUnprocessableEntity,
	ErrCodeUnknownProduct:    http.StatusUnprocessableEntity,

	ErrCodeVendorRejected:       http.StatusBadGateway,
	ErrCodeVendorUnavailable:    http.StatusBadGateway,
	ErrCodeVendorAuth:           http.StatusBadGateway,
	ErrCodeVerificationMismatch: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
