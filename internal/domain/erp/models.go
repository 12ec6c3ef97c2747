package erp

import "github.com/shopspring/decimal"

// Customer is a customer record as known by the vendor ERP.
// The ERP is authoritative; instances are immutable once fetched.
type Customer struct {
	Number        int
	Name          string
	Address       string
	City          string
	PostalCode    string
	Country       string
	CreditAllowed bool
	PaymentTerm   int // net payment term in days
}

// Product is a read-only catalog entry sourced from the vendor.
type Product struct {
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	Available decimal.Decimal
	VATRate   decimal.Decimal // percentage, e.g. 25.5
}

// Person is a salesperson or contact used to resolve responsible-person
// fields on offers.
type Person struct {
	Number int
	Name   string
	Email  string
}

// DeliveryMethod is the generic delivery/payment method on an offer.
// Vendors map it to their own integer codes.
type DeliveryMethod string

const (
	DeliveryMethodPrepayment DeliveryMethod = "prepayment"
	DeliveryMethodInvoice    DeliveryMethod = "invoice"
)

// IsValid returns true if the delivery method is one of the known values.
func (m DeliveryMethod) IsValid() bool {
	switch m {
	case DeliveryMethodPrepayment, DeliveryMethodInvoice:
		return true
	default:
		return false
	}
}

// String returns the string representation of the delivery method.
func (m DeliveryMethod) String() string {
	return string(m)
}

// MatchedProduct pairs a catalog product with the quantity requested for it.
type MatchedProduct struct {
	Product  Product
	Quantity decimal.Decimal
}

// PricedLine is one offer line after customer-specific discount rules.
type PricedLine struct {
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	NetPrice    decimal.Decimal // unit price after discount
	LineTotal   decimal.Decimal // NetPrice * Quantity, rounded to 2 decimals
	VATRate     decimal.Decimal
}

// PricingResult carries the per-line net prices and the offer totals.
// Invariant: NetTotal + VATAmount = TotalAmount.
type PricingResult struct {
	Lines       []PricedLine
	NetTotal    decimal.Decimal
	VATAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// SalesOffer is the vendor-neutral shape of an offer submitted to the ERP.
type SalesOffer struct {
	CustomerNumber    int
	PersonNumber      int
	CustomerReference string
	DeliveryMethod    DeliveryMethod
	Lines             []PricedLine
	NetTotal          decimal.Decimal
	VATAmount         decimal.Decimal
	TotalAmount       decimal.Decimal
}

// LineFailure describes a single offer line that could not be created.
type LineFailure struct {
	ProductCode string
	Attempts    int
	Reason      string
}

// CreateResult is the outcome of submitting a SalesOffer to the vendor.
// Failed lines are reported individually so the caller can decide whether
// to retry the whole offer or accept partial creation.
type CreateResult struct {
	OfferNumber  int
	CreatedLines int
	Failed       []LineFailure
	Verified     bool
}
