package dto

import (
	"time"

	app "github.com/offerflow/backend/internal/application/offer"
	"github.com/offerflow/backend/internal/domain/offer"
)

// OfferResponse is the API shape of a pending offer. Money fields are
// fixed-point decimal strings.
type OfferResponse struct {
	ID                string         `json:"id"`
	CustomerNumber    int            `json:"customer_number"`
	CustomerName      string         `json:"customer_name"`
	DeliveryContact   string         `json:"delivery_contact,omitempty"`
	CustomerReference string         `json:"customer_reference,omitempty"`
	DeliveryMethod    string         `json:"delivery_method"`
	Lines             []LineResponse `json:"lines"`
	NetTotal          string         `json:"net_total"`
	VATAmount         string         `json:"vat_amount"`
	TotalAmount       string         `json:"total_amount"`
	Status            string         `json:"status"`
	VendorOfferNumber int            `json:"vendor_offer_number,omitempty"`
	Sender            string         `json:"sender,omitempty"`
	Subject           string         `json:"subject,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// LineResponse is the API shape of one offer line
type LineResponse struct {
	ID          string `json:"id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	NetPrice    string `json:"net_price"`
	LineTotal   string `json:"line_total"`
	VATRate     string `json:"vat_rate"`
}

// SendResponse reports the submission outcome alongside the updated offer
type SendResponse struct {
	Offer  OfferResponse      `json:"offer"`
	Result *app.SubmitOutcome `json:"result"`
}

// ToOfferResponse converts the aggregate into its API shape
func ToOfferResponse(o *offer.Offer) OfferResponse {
	lines := make([]LineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, LineResponse{
			ID:          l.ID.String(),
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.StringFixed(2),
			NetPrice:    l.NetPrice.StringFixed(2),
			LineTotal:   l.LineTotal.StringFixed(2),
			VATRate:     l.VATRate.String(),
		})
	}
	return OfferResponse{
		ID:                o.ID.String(),
		CustomerNumber:    o.CustomerNumber,
		CustomerName:      o.CustomerName,
		DeliveryContact:   o.DeliveryContact,
		CustomerReference: o.CustomerReference,
		DeliveryMethod:    string(o.DeliveryMethod),
		Lines:             lines,
		NetTotal:          o.NetTotal.StringFixed(2),
		VATAmount:         o.VATAmount.StringFixed(2),
		TotalAmount:       o.TotalAmount.StringFixed(2),
		Status:            string(o.Status),
		VendorOfferNumber: o.VendorOfferNumber,
		Sender:            o.Sender,
		Subject:           o.Subject,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// ToOfferListResponse converts a list of offers
func ToOfferListResponse(offers []*offer.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, ToOfferResponse(o))
	}
	return out
}
