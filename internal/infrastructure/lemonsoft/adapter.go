// Package lemonsoft translates the generic ERP domain model to the
// Lemonsoft API: flat JSON with vendor field names, session-key auth and
// a non-atomic multi-step offer creation protocol.
package lemonsoft

import (
	"context"

	"go.uber.org/zap"

	"github.com/offerflow/backend/internal/domain/erp"
)

// Adapter bundles the Lemonsoft repository set behind the domain ports.
type Adapter struct {
	client *Client

	Customers *CustomerRepository
	Products  *ProductRepository
	Persons   *PersonRepository
	Pricing   *PricingService
	Offers    *OfferRepository
}

// New builds the full adapter set. All field mapping tables are validated
// here, so a mapping typo fails construction, not the first vendor call.
func New(config *Config, logger *zap.Logger) (*Adapter, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, err
	}

	customers, err := NewCustomerRepository(client)
	if err != nil {
		return nil, err
	}
	products, err := NewProductRepository(client)
	if err != nil {
		return nil, err
	}
	persons, err := NewPersonRepository(client)
	if err != nil {
		return nil, err
	}
	offers, err := NewOfferRepository(client, logger)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		client:    client,
		Customers: customers,
		Products:  products,
		Persons:   persons,
		Pricing:   NewPricingService(client),
		Offers:    offers,
	}, nil
}

// Login establishes the vendor session. Call once at startup; an
// authentication failure here is fatal.
func (a *Adapter) Login(ctx context.Context) error {
	return a.client.Login(ctx)
}

// VendorSet exposes the adapter as the domain port bundle.
func (a *Adapter) VendorSet() *erp.VendorSet {
	return &erp.VendorSet{
		Customers: a.Customers,
		Products:  a.Products,
		Persons:   a.Persons,
		Pricing:   a.Pricing,
		Offers:    a.Offers,
	}
}
