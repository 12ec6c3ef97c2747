package lemonsoft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/offerflow/backend/internal/domain/erp"
)

// CustomerRepository implements erp.CustomerRepository against Lemonsoft
type CustomerRepository struct {
	client *Client
	fields *mappingTable
}

// NewCustomerRepository builds the repository and validates the customer
// field mapping table.
func NewCustomerRepository(client *Client) (*CustomerRepository, error) {
	fields, err := newMappingTable("customer", customerFieldMappings)
	if err != nil {
		return nil, err
	}
	if err := fields.require("number", "name", "address", "city", "postal_code",
		"country", "credit_allowed", "payment_term"); err != nil {
		return nil, err
	}
	return &CustomerRepository{client: client, fields: fields}, nil
}

// FindByName finds a customer by display name. Exact case-insensitive
// matches win over the vendor's fuzzy search order.
func (r *CustomerRepository) FindByName(ctx context.Context, name string) (*erp.Customer, error) {
	query := url.Values{}
	query.Set("filter.name", name)
	query.Set("page_size", "20")

	body, err := r.client.do(ctx, http.MethodGet, "/api/customers", query, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := decodeObject(body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("%w: name %q", erp.ErrCustomerNotFound, name)
	}

	row := resp.Results[0]
	for _, candidate := range resp.Results {
		candidateName, err := r.fields.str(candidate, "name")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(candidateName, name) {
			row = candidate
			break
		}
	}
	return r.toDomain(row)
}

// FindByNumber finds a customer by its vendor-assigned number
func (r *CustomerRepository) FindByNumber(ctx context.Context, number int) (*erp.Customer, error) {
	body, err := r.client.do(ctx, http.MethodGet, "/api/customers/"+strconv.Itoa(number), nil, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: number %d", erp.ErrCustomerNotFound, number)
		}
		return nil, err
	}

	var row rawObject
	if err := decodeObject(body, &row); err != nil {
		return nil, err
	}
	return r.toDomain(row)
}

// toDomain converts a vendor customer row through the mapping table
func (r *CustomerRepository) toDomain(row rawObject) (*erp.Customer, error) {
	number, err := r.fields.integer(row, "number")
	if err != nil {
		return nil, err
	}
	name, err := r.fields.str(row, "name")
	if err != nil {
		return nil, err
	}
	address, err := r.fields.str(row, "address")
	if err != nil {
		return nil, err
	}
	city, err := r.fields.str(row, "city")
	if err != nil {
		return nil, err
	}
	postalCode, err := r.fields.str(row, "postal_code")
	if err != nil {
		return nil, err
	}
	country, err := r.fields.str(row, "country")
	if err != nil {
		return nil, err
	}
	creditAllowed, err := r.fields.boolean(row, "credit_allowed")
	if err != nil {
		return nil, err
	}
	paymentTerm, err := r.fields.integer(row, "payment_term")
	if err != nil {
		return nil, err
	}

	return &erp.Customer{
		Number:        number,
		Name:          name,
		Address:       address,
		City:          city,
		PostalCode:    postalCode,
		Country:       country,
		CreditAllowed: creditAllowed,
		PaymentTerm:   paymentTerm,
	}, nil
}

// Ensure CustomerRepository implements the port
var _ erp.CustomerRepository = (*CustomerRepository)(nil)
