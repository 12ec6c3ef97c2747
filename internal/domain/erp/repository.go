package erp

import (
	"context"

	"github.com/shopspring/decimal"
)

// CustomerRepository looks up customers in the vendor ERP.
type CustomerRepository interface {
	// FindByName finds a customer by display name.
	// Returns ErrCustomerNotFound when no customer matches.
	FindByName(ctx context.Context, name string) (*Customer, error)

	// FindByNumber finds a customer by its vendor-assigned number.
	FindByNumber(ctx context.Context, number int) (*Customer, error)
}

// ProductRepository queries the vendor product catalog.
type ProductRepository interface {
	// Search returns products matching the query (code or name).
	Search(ctx context.Context, query string) ([]Product, error)

	// Availability returns the available quantity for a product code.
	// Returns ErrProductNotFound when the code is unknown.
	Availability(ctx context.Context, code string) (decimal.Decimal, error)
}

// PersonRepository resolves salespersons/contacts.
type PersonRepository interface {
	// FindByEmail finds a person by email address.
	// Returns ErrPersonNotFound when no person matches.
	FindByEmail(ctx context.Context, email string) (*Person, error)
}

// PricingService computes customer-specific pricing for matched products.
// Implementations apply the vendor's discount rules for the customer.
type PricingService interface {
	CalculatePricing(ctx context.Context, customerNumber int, matched []MatchedProduct) (*PricingResult, error)
}

// OfferRepository submits sales offers to the vendor ERP.
type OfferRepository interface {
	// Create creates the offer in the ERP and returns the vendor-assigned
	// offer number. Per-line failures are reported in the result; a
	// rejection of the offer itself is returned as an ErrVendorRejected
	// kind, a failed read-back check as ErrVerificationMismatch.
	Create(ctx context.Context, offer *SalesOffer) (*CreateResult, error)
}

// VendorSet bundles the concrete adapter set for one vendor. It is built
// by the factory once at startup and stays fixed for the process lifetime.
type VendorSet struct {
	Customers CustomerRepository
	Products  ProductRepository
	Persons   PersonRepository
	Pricing   PricingService
	Offers    OfferRepository
}
