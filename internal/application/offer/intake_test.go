package offer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLineItems(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []LineItem
	}{
		{
			name: "quantity first",
			body: "Hi,\n\nplease quote 10 x PROD-001 for us.\n\nThanks",
			want: []LineItem{{ProductCode: "PROD-001", Quantity: decimal.NewFromInt(10)}},
		},
		{
			name: "code first",
			body: "PROD-001 x 10",
			want: []LineItem{{ProductCode: "PROD-001", Quantity: decimal.NewFromInt(10)}},
		},
		{
			name: "pcs marker",
			body: "We need 5 pcs PROD-002 delivered next week.",
			want: []LineItem{{ProductCode: "PROD-002", Quantity: decimal.NewFromInt(5)}},
		},
		{
			name: "finnish marker and decimal comma",
			body: "Tarvitsemme 2,5 kpl ABC-99",
			want: []LineItem{{ProductCode: "ABC-99", Quantity: decimal.NewFromFloat(2.5)}},
		},
		{
			name: "multiple lines keep order",
			body: "3 x PROD-002\n10 x PROD-001",
			want: []LineItem{
				{ProductCode: "PROD-002", Quantity: decimal.NewFromInt(3)},
				{ProductCode: "PROD-001", Quantity: decimal.NewFromInt(10)},
			},
		},
		{
			name: "repeated code merges quantities",
			body: "2 x PROD-001\nand later 3 x PROD-001",
			want: []LineItem{{ProductCode: "PROD-001", Quantity: decimal.NewFromInt(5)}},
		},
		{
			name: "lowercase code is normalized",
			body: "4 x prod-001",
			want: []LineItem{{ProductCode: "PROD-001", Quantity: decimal.NewFromInt(4)}},
		},
		{
			name: "no items",
			body: "Hello, can you call me back about pricing?",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractLineItems(tt.body)
			require.Len(t, got, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want.ProductCode, got[i].ProductCode)
				assert.True(t, want.Quantity.Equal(got[i].Quantity),
					"quantity %s != %s", got[i].Quantity, want.Quantity)
			}
		})
	}
}

func TestExtractCustomerName(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		body   string
		want   string
	}{
		{
			name:   "explicit customer line wins",
			sender: "Jane Doe <jane@acme.fi>",
			body:   "Customer: Example Company Oy\n\n10 x PROD-001",
			want:   "Example Company Oy",
		},
		{
			name:   "sender display name",
			sender: "Example Company Oy <orders@example.fi>",
			body:   "10 x PROD-001",
			want:   "Example Company Oy",
		},
		{
			name:   "bare address falls back to domain",
			sender: "orders@acme.fi",
			body:   "10 x PROD-001",
			want:   "acme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCustomerName(tt.sender, tt.body))
		})
	}
}

func TestExtractReference(t *testing.T) {
	assert.Equal(t, "RFQ-2024-17", ExtractReference("Reference: RFQ-2024-17\n10 x PROD-001"))
	assert.Equal(t, "", ExtractReference("10 x PROD-001"))
}

func TestSenderEmail(t *testing.T) {
	assert.Equal(t, "jane@acme.fi", SenderEmail("Jane Doe <jane@acme.fi>"))
	assert.Equal(t, "jane@acme.fi", SenderEmail("jane@acme.fi"))
}
