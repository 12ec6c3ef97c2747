package lemonsoft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/offerflow/backend/internal/domain/erp"
)

// ProductRepository implements erp.ProductRepository against Lemonsoft
type ProductRepository struct {
	client *Client
	fields *mappingTable
}

// NewProductRepository builds the repository and validates the product
// field mapping table.
func NewProductRepository(client *Client) (*ProductRepository, error) {
	fields, err := newMappingTable("product", productFieldMappings)
	if err != nil {
		return nil, err
	}
	if err := fields.require("code", "name", "unit_price", "available", "vat_rate"); err != nil {
		return nil, err
	}
	return &ProductRepository{client: client, fields: fields}, nil
}

// Search returns catalog products matching the query (code or name)
func (r *ProductRepository) Search(ctx context.Context, query string) ([]erp.Product, error) {
	params := url.Values{}
	params.Set("filter.search", query)
	params.Set("page_size", "50")

	body, err := r.client.do(ctx, http.MethodGet, "/api/products", params, nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := decodeObject(body, &resp); err != nil {
		return nil, err
	}

	products := make([]erp.Product, 0, len(resp.Results))
	for _, row := range resp.Results {
		p, err := r.toDomain(row)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}

// Availability returns the available stock quantity for a product code
func (r *ProductRepository) Availability(ctx context.Context, code string) (decimal.Decimal, error) {
	body, err := r.client.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(code)+"/stock", nil, nil)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, fmt.Errorf("%w: code %q", erp.ErrProductNotFound, code)
		}
		return decimal.Zero, err
	}

	var resp stockResponse
	if err := decodeObject(body, &resp); err != nil {
		return decimal.Zero, err
	}
	available, err := decimal.NewFromString(resp.Available.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: bad availability %q", erp.ErrInvalidResponse, resp.Available)
	}
	return available, nil
}

// toDomain converts a vendor product row through the mapping table
func (r *ProductRepository) toDomain(row rawObject) (*erp.Product, error) {
	code, err := r.fields.str(row, "code")
	if err != nil {
		return nil, err
	}
	name, err := r.fields.str(row, "name")
	if err != nil {
		return nil, err
	}
	unitPrice, err := r.fields.dec(row, "unit_price")
	if err != nil {
		return nil, err
	}
	available, err := r.fields.dec(row, "available")
	if err != nil {
		return nil, err
	}
	vatRate, err := r.fields.dec(row, "vat_rate")
	if err != nil {
		return nil, err
	}

	return &erp.Product{
		Code:      code,
		Name:      name,
		UnitPrice: unitPrice,
		Available: available,
		VATRate:   vatRate,
	}, nil
}

// Ensure ProductRepository implements the port
var _ erp.ProductRepository = (*ProductRepository)(nil)
