package offer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/offerflow/backend/internal/domain/erp"
)

// Status represents the lifecycle status of a pending offer.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusSubmitting    Status = "submitting"
	StatusSubmitted     Status = "submitted"
	StatusVerified      Status = "verified"
	StatusRejected      Status = "rejected"
)

// IsValid returns true if the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusSubmitting,
		StatusSubmitted, StatusVerified, StatusRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the lifecycle allows moving to target.
func (s Status) CanTransitionTo(target Status) bool {
	allowed := map[Status][]Status{
		StatusDraft:         {StatusPendingReview, StatusRejected},
		StatusPendingReview: {StatusSubmitting, StatusRejected},
		StatusSubmitting:    {StatusSubmitted, StatusVerified, StatusPendingReview},
		StatusSubmitted:     {StatusVerified},
	}
	for _, t := range allowed[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Line is a priced offer line.
// Invariant: LineTotal = NetPrice * Quantity rounded to 2 decimals.
type Line struct {
	ID          uuid.UUID       `json:"id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	NetPrice    decimal.Decimal `json:"net_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// NewLine creates a line and computes its total from the net price.
func NewLine(code, name string, quantity, unitPrice, netPrice, vatRate decimal.Decimal) Line {
	return Line{
		ID:          uuid.New(),
		ProductCode: code,
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		NetPrice:    netPrice,
		LineTotal:   netPrice.Mul(quantity).Round(2),
		VATRate:     vatRate,
	}
}

// VATAmount returns the VAT portion of the line total, rounded to 2 decimals.
func (l Line) VATAmount() decimal.Decimal {
	return l.LineTotal.Mul(l.VATRate).Div(decimal.NewFromInt(100)).Round(2)
}

// Offer is a sales quotation awaiting human review before ERP submission.
// It is the aggregate root of the pending store.
type Offer struct {
	ID                uuid.UUID          `json:"id"`
	CustomerNumber    int                `json:"customer_number"`
	CustomerName      string             `json:"customer_name"`
	DeliveryContact   string             `json:"delivery_contact"`
	PersonNumber      int                `json:"person_number"`
	CustomerReference string             `json:"customer_reference"`
	DeliveryMethod    erp.DeliveryMethod `json:"delivery_method"`
	Lines             []Line             `json:"lines"`
	NetTotal          decimal.Decimal    `json:"net_total"`
	VATAmount         decimal.Decimal    `json:"vat_amount"`
	TotalAmount       decimal.Decimal    `json:"total_amount"`
	Status            Status             `json:"status"`
	VendorOfferNumber int                `json:"vendor_offer_number,omitempty"`
	Sender            string             `json:"sender,omitempty"`
	Subject           string             `json:"subject,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// New creates a pending-review offer for a customer with the given lines
// and computes the totals.
func New(customer *erp.Customer, lines []Line) (*Offer, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	now := time.Now()
	o := &Offer{
		ID:             uuid.New(),
		CustomerNumber: customer.Number,
		CustomerName:   customer.Name,
		DeliveryMethod: defaultDeliveryMethod(customer),
		Lines:          lines,
		Status:         StatusPendingReview,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	o.RecalculateTotals()
	return o, nil
}

// defaultDeliveryMethod picks invoice for customers allowed credit,
// prepayment otherwise.
func defaultDeliveryMethod(customer *erp.Customer) erp.DeliveryMethod {
	if customer.CreditAllowed {
		return erp.DeliveryMethodInvoice
	}
	return erp.DeliveryMethodPrepayment
}

// RecalculateTotals recomputes net, VAT and gross totals from the lines.
// VAT is rounded per line before summing so that repeated recalculation
// is stable.
func (o *Offer) RecalculateTotals() {
	net := decimal.Zero
	vat := decimal.Zero
	for _, l := range o.Lines {
		net = net.Add(l.LineTotal)
		vat = vat.Add(l.VATAmount())
	}
	o.NetTotal = net.Round(2)
	o.VATAmount = vat.Round(2)
	o.TotalAmount = o.NetTotal.Add(o.VATAmount)
	o.UpdatedAt = time.Now()
}

// Line returns the line with the given ID.
func (o *Offer) Line(id uuid.UUID) (Line, error) {
	for _, l := range o.Lines {
		if l.ID == id {
			return l, nil
		}
	}
	return Line{}, ErrLineNotFound
}

// LinesByID returns the lines matching the given IDs, in offer order.
// An empty id list selects every line.
func (o *Offer) LinesByID(ids []uuid.UUID) ([]Line, error) {
	if len(ids) == 0 {
		out := make([]Line, len(o.Lines))
		copy(out, o.Lines)
		return out, nil
	}
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]Line, 0, len(ids))
	for _, l := range o.Lines {
		if wanted[l.ID] {
			out = append(out, l)
			delete(wanted, l.ID)
		}
	}
	if len(wanted) > 0 {
		return nil, ErrLineNotFound
	}
	return out, nil
}

// AddLine appends a line during human review and recomputes totals.
func (o *Offer) AddLine(line Line) error {
	if o.Status != StatusPendingReview {
		return ErrNotEditable
	}
	o.Lines = append(o.Lines, line)
	o.RecalculateTotals()
	return nil
}

// RemoveLine removes a line during human review and recomputes totals.
func (o *Offer) RemoveLine(id uuid.UUID) error {
	if o.Status != StatusPendingReview {
		return ErrNotEditable
	}
	for i, l := range o.Lines {
		if l.ID == id {
			o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
			o.RecalculateTotals()
			return nil
		}
	}
	return ErrLineNotFound
}

// MarkSubmitted records the vendor offer number after ERP submission.
// A verified read-back moves the offer straight to verified.
func (o *Offer) MarkSubmitted(vendorNumber int, verified bool) {
	o.VendorOfferNumber = vendorNumber
	if verified {
		o.Status = StatusVerified
	} else {
		o.Status = StatusSubmitted
	}
	o.UpdatedAt = time.Now()
}

// Clone returns a deep copy of the offer. Stores hand out clones so that
// callers never share line slices with the store's copy.
func (o *Offer) Clone() *Offer {
	c := *o
	c.Lines = make([]Line, len(o.Lines))
	copy(c.Lines, o.Lines)
	return &c
}
