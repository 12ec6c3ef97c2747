package lemonsoft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/offerflow/backend/internal/domain/erp"
)

// PersonRepository implements erp.PersonRepository against Lemonsoft
type PersonRepository struct {
	client *Client
	fields *mappingTable
}

// NewPersonRepository builds the repository and validates the person
// field mapping table.
func NewPersonRepository(client *Client) (*PersonRepository, error) {
	fields, err := newMappingTable("person", personFieldMappings)
	if err != nil {
		return nil, err
	}
	if err := fields.require("number", "name", "email"); err != nil {
		return nil, err
	}
	return &PersonRepository{client: client, fields: fields}, nil
}

// FindByEmail finds a salesperson/contact by email address
func (r *PersonRepository) FindByEmail(ctx context.Context, email string) (*erp.Person, error) {
	query := url.Values{}
	query.Set("filter.email", email)
	query.Set("page_size", "5")

	body, err := r.client.do(ctx, http.MethodGet, "/api/persons", query, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := decodeObject(body, &resp); err != nil {
		return nil, err
	}

	for _, row := range resp.Results {
		candidate, err := r.fields.str(row, "email")
		if err != nil {
			return nil, err
		}
		if strings.EqualFold(candidate, email) {
			return r.toDomain(row)
		}
	}
	return nil, fmt.Errorf("%w: email %q", erp.ErrPersonNotFound, email)
}

// toDomain converts a vendor person row through the mapping table
func (r *PersonRepository) toDomain(row rawObject) (*erp.Person, error) {
	number, err := r.fields.integer(row, "number")
	if err != nil {
		return nil, err
	}
	name, err := r.fields.str(row, "name")
	if err != nil {
		return nil, err
	}
	email, err := r.fields.str(row, "email")
	if err != nil {
		return nil, err
	}
	return &erp.Person{Number: number, Name: name, Email: email}, nil
}

// Ensure PersonRepository implements the port
var _ erp.PersonRepository = (*PersonRepository)(nil)
