package erp

import "errors"

var (
	// Lookup errors
	ErrCustomerNotFound = errors.New("erp: customer not found")
	ErrProductNotFound  = errors.New("erp: product not found")
	ErrPersonNotFound   = errors.New("erp: person not found")

	// Vendor communication errors
	ErrVendorUnavailable = errors.New("erp: vendor temporarily unavailable")
	ErrVendorAuthFailed  = errors.New("erp: vendor authentication failed")
	ErrVendorRejected    = errors.New("erp: vendor rejected the request")
	ErrInvalidResponse   = errors.New("erp: invalid vendor response")

	// Offer creation errors
	ErrVerificationMismatch = errors.New("erp: persisted offer does not match submitted offer")
	ErrLineRetryExhausted   = errors.New("erp: offer line creation retries exhausted")
)
