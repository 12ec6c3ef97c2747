package lemonsoft

import (
	"context"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/offerflow/backend/internal/domain/erp"
)

var oneHundred = decimal.NewFromInt(100)

// PricingService implements erp.PricingService using the customer's
// Lemonsoft discount rules. The vendor stores per-customer discount
// percentages by product code; undiscounted products sell at list price.
type PricingService struct {
	client *Client
}

// NewPricingService creates the pricing service
func NewPricingService(client *Client) *PricingService {
	return &PricingService{client: client}
}

// CalculatePricing applies the customer's discount rules to the matched
// products and computes net, VAT and gross totals. Line totals are
// rounded to 2 decimals before summing; VAT is rounded per line.
func (s *PricingService) CalculatePricing(ctx context.Context, customerNumber int, matched []erp.MatchedProduct) (*erp.PricingResult, error) {
	discounts, err := s.customerDiscounts(ctx, customerNumber)
	if err != nil {
		return nil, err
	}

	result := &erp.PricingResult{
		Lines: make([]erp.PricedLine, 0, len(matched)),
	}
	net := decimal.Zero
	vat := decimal.Zero

	for _, m := range matched {
		netPrice := m.Product.UnitPrice
		if pct, ok := discounts[m.Product.Code]; ok && pct.IsPositive() {
			netPrice = m.Product.UnitPrice.Mul(oneHundred.Sub(pct)).Div(oneHundred)
		}

		lineTotal := netPrice.Mul(m.Quantity).Round(2)
		line := erp.PricedLine{
			ProductCode: m.Product.Code,
			ProductName: m.Product.Name,
			Quantity:    m.Quantity,
			UnitPrice:   m.Product.UnitPrice,
			NetPrice:    netPrice,
			LineTotal:   lineTotal,
			VATRate:     m.Product.VATRate,
		}
		result.Lines = append(result.Lines, line)

		net = net.Add(lineTotal)
		vat = vat.Add(lineTotal.Mul(m.Product.VATRate).Div(oneHundred).Round(2))
	}

	result.NetTotal = net.Round(2)
	result.VATAmount = vat.Round(2)
	result.TotalAmount = result.NetTotal.Add(result.VATAmount)
	return result, nil
}

// customerDiscounts fetches the discount percentage per product code
func (s *PricingService) customerDiscounts(ctx context.Context, customerNumber int) (map[string]decimal.Decimal, error) {
	body, err := s.client.do(ctx, http.MethodGet,
		"/api/customers/"+strconv.Itoa(customerNumber)+"/discounts", nil, nil)
	if err != nil {
		if isNotFound(err) {
			// No discount rules configured for this customer
			return map[string]decimal.Decimal{}, nil
		}
		return nil, err
	}

	var resp discountResponse
	if err := decodeObject(body, &resp); err != nil {
		return nil, err
	}

	discounts := make(map[string]decimal.Decimal, len(resp.Discounts))
	for _, d := range resp.Discounts {
		discounts[d.ProductCode] = decimal.NewFromFloat(d.Percent)
	}
	return discounts, nil
}

// Ensure PricingService implements the port
var _ erp.PricingService = (*PricingService)(nil)
