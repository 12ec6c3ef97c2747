package offer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerflow/backend/internal/domain/erp"
	"github.com/offerflow/backend/internal/domain/offer"
)

// memStore is a minimal in-memory PendingStore for orchestrator tests
type memStore struct {
	mu     sync.Mutex
	offers map[uuid.UUID]*offer.Offer
	putErr error
}

func newMemStore() *memStore {
	return &memStore{offers: make(map[uuid.UUID]*offer.Offer)}
}

func (s *memStore) Put(ctx context.Context, o *offer.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.offers[o.ID] = o.Clone()
	return nil
}

func (s *memStore) Get(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	return o.Clone(), nil
}

func (s *memStore) List(ctx context.Context) ([]*offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*offer.Offer, 0, len(s.offers))
	for _, o := range s.offers {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (s *memStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.offers[id]; !ok {
		return offer.ErrNotFound
	}
	delete(s.offers, id)
	return nil
}

func (s *memStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to offer.Status) (*offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	if o.Status != from {
		return nil, offer.ErrStatusConflict
	}
	o.Status = to
	return o.Clone(), nil
}

// fakeVendor implements every erp port against fixture data
type fakeVendor struct {
	customers map[string]*erp.Customer
	products  map[string]erp.Product
	stock     map[string]decimal.Decimal
	persons   map[string]*erp.Person
	discounts map[string]decimal.Decimal

	createResult *erp.CreateResult
	createErr    error
	createCalls  int
	lastOffer    *erp.SalesOffer
}

func (f *fakeVendor) FindByName(ctx context.Context, name string) (*erp.Customer, error) {
	if c, ok := f.customers[strings.ToLower(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", erp.ErrCustomerNotFound, name)
}

func (f *fakeVendor) FindByNumber(ctx context.Context, number int) (*erp.Customer, error) {
	for _, c := range f.customers {
		if c.Number == number {
			return c, nil
		}
	}
	return nil, erp.ErrCustomerNotFound
}

func (f *fakeVendor) Search(ctx context.Context, query string) ([]erp.Product, error) {
	var out []erp.Product
	for code, p := range f.products {
		if strings.Contains(strings.ToLower(code), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeVendor) Availability(ctx context.Context, code string) (decimal.Decimal, error) {
	qty, ok := f.stock[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", erp.ErrProductNotFound, code)
	}
	return qty, nil
}

func (f *fakeVendor) FindByEmail(ctx context.Context, email string) (*erp.Person, error) {
	if p, ok := f.persons[strings.ToLower(email)]; ok {
		return p, nil
	}
	return nil, erp.ErrPersonNotFound
}

func (f *fakeVendor) CalculatePricing(ctx context.Context, customerNumber int, matched []erp.MatchedProduct) (*erp.PricingResult, error) {
	oneHundred := decimal.NewFromInt(100)
	result := &erp.PricingResult{}
	net := decimal.Zero
	vat := decimal.Zero
	for _, m := range matched {
		netPrice := m.Product.UnitPrice
		if pct, ok := f.discounts[m.Product.Code]; ok {
			netPrice = netPrice.Mul(oneHundred.Sub(pct)).Div(oneHundred)
		}
		lineTotal := netPrice.Mul(m.Quantity).Round(2)
		result.Lines = append(result.Lines, erp.PricedLine{
			ProductCode: m.Product.Code,
			ProductName: m.Product.Name,
			Quantity:    m.Quantity,
			UnitPrice:   m.Product.UnitPrice,
			NetPrice:    netPrice,
			LineTotal:   lineTotal,
			VATRate:     m.Product.VATRate,
		})
		net = net.Add(lineTotal)
		vat = vat.Add(lineTotal.Mul(m.Product.VATRate).Div(oneHundred).Round(2))
	}
	result.NetTotal = net.Round(2)
	result.VATAmount = vat.Round(2)
	result.TotalAmount = result.NetTotal.Add(result.VATAmount)
	return result, nil
}

func (f *fakeVendor) Create(ctx context.Context, o *erp.SalesOffer) (*erp.CreateResult, error) {
	f.createCalls++
	f.lastOffer = o
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, nil
	}
	return &erp.CreateResult{
		OfferNumber:  5001,
		CreatedLines: len(o.Lines),
		Verified:     true,
	}, nil
}

func newFakeVendor() *fakeVendor {
	return &fakeVendor{
		customers: map[string]*erp.Customer{
			"example company oy": {
				Number:        12345,
				Name:          "Example Company Oy",
				CreditAllowed: true,
			},
			"acme": {
				Number:        777,
				Name:          "Acme",
				CreditAllowed: false,
			},
		},
		products: map[string]erp.Product{
			"PROD-001": {
				Code:      "PROD-001",
				Name:      "Widget",
				UnitPrice: decimal.NewFromInt(100),
				VATRate:   decimal.NewFromFloat(25.5),
			},
		},
		stock: map[string]decimal.Decimal{
			"PROD-001": decimal.NewFromInt(50),
		},
		persons: map[string]*erp.Person{
			"jane@example.fi": {Number: 7, Name: "Jane Doe", Email: "jane@example.fi"},
		},
		discounts: map[string]decimal.Decimal{
			"PROD-001": decimal.NewFromInt(10),
		},
	}
}

func (f *fakeVendor) set() *erp.VendorSet {
	return &erp.VendorSet{
		Customers: f,
		Products:  f,
		Persons:   f,
		Pricing:   f,
		Offers:    f,
	}
}

func newTestService(vendor *fakeVendor, store offer.PendingStore) *Service {
	return NewService(vendor.set(), store, zap.NewNop())
}

func intakeFixture() IntakeRequest {
	return IntakeRequest{
		Sender:  "Jane Doe <jane@example.fi>",
		Subject: "Quotation request",
		Body:    "Customer: Example Company Oy\nReference: RFQ-2024-17\n\n10 x PROD-001\n",
	}
}

func TestCreateFromIntake(t *testing.T) {
	vendor := newFakeVendor()
	store := newMemStore()
	svc := newTestService(vendor, store)

	o, err := svc.CreateFromIntake(context.Background(), intakeFixture())
	require.NoError(t, err)

	assert.Equal(t, offer.StatusPendingReview, o.Status)
	assert.Equal(t, 12345, o.CustomerNumber)
	assert.Equal(t, "Example Company Oy", o.CustomerName)
	assert.Equal(t, "RFQ-2024-17", o.CustomerReference)
	assert.Equal(t, erp.DeliveryMethodInvoice, o.DeliveryMethod)
	assert.Equal(t, 7, o.PersonNumber)
	assert.Equal(t, "Jane Doe", o.DeliveryContact)

	require.Len(t, o.Lines, 1)
	line := o.Lines[0]
	assert.Equal(t, "PROD-001", line.ProductCode)
	assert.True(t, line.NetPrice.Equal(decimal.NewFromInt(90)), "net %s", line.NetPrice)
	assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(900)), "line total %s", line.LineTotal)

	assert.True(t, o.NetTotal.Equal(decimal.NewFromInt(900)), "net total %s", o.NetTotal)
	assert.True(t, o.VATAmount.Equal(decimal.NewFromFloat(229.5)), "vat %s", o.VATAmount)
	assert.True(t, o.TotalAmount.Equal(decimal.NewFromFloat(1129.5)), "total %s", o.TotalAmount)

	// Nothing reaches the vendor until a human approves.
	assert.Equal(t, 0, vendor.createCalls)

	stored, err := store.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, stored.ID)
}

func TestCreateFromIntake_NoLineItems(t *testing.T) {
	svc := newTestService(newFakeVendor(), newMemStore())

	req := intakeFixture()
	req.Body = "Hello, please call me about pricing."
	_, err := svc.CreateFromIntake(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoLineItems)
}

func TestCreateFromIntake_SenderDomainFallback(t *testing.T) {
	svc := newTestService(newFakeVendor(), newMemStore())

	req := IntakeRequest{
		Sender: "orders@acme.fi",
		Body:   "10 x PROD-001",
	}
	o, err := svc.CreateFromIntake(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 777, o.CustomerNumber)
	// No credit: the offer defaults to prepayment.
	assert.Equal(t, erp.DeliveryMethodPrepayment, o.DeliveryMethod)
}

func TestCreateFromIntake_CustomerUnresolved(t *testing.T) {
	svc := newTestService(newFakeVendor(), newMemStore())

	req := IntakeRequest{
		Sender: "orders@unknown-company.fi",
		Body:   "10 x PROD-001",
	}
	_, err := svc.CreateFromIntake(context.Background(), req)
	assert.ErrorIs(t, err, ErrCustomerUnresolved)
}

func TestCreateFromIntake_UnknownProduct(t *testing.T) {
	svc := newTestService(newFakeVendor(), newMemStore())

	req := intakeFixture()
	req.Body = "Customer: Example Company Oy\n\n10 x NOPE-999"
	_, err := svc.CreateFromIntake(context.Background(), req)
	assert.ErrorIs(t, err, erp.ErrProductNotFound)
}

func TestSubmit(t *testing.T) {
	vendor := newFakeVendor()
	store := newMemStore()
	svc := newTestService(vendor, store)
	ctx := context.Background()

	o, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	submitted, outcome, err := svc.Submit(ctx, o.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, offer.StatusVerified, submitted.Status)
	assert.Equal(t, 5001, submitted.VendorOfferNumber)
	assert.Equal(t, 5001, outcome.VendorOfferNumber)
	assert.Equal(t, 1, outcome.CreatedLines)
	assert.True(t, outcome.Verified)
	assert.Equal(t, 1, vendor.createCalls)

	require.NotNil(t, vendor.lastOffer)
	assert.Equal(t, 12345, vendor.lastOffer.CustomerNumber)
	assert.Equal(t, "RFQ-2024-17", vendor.lastOffer.CustomerReference)

	stored, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusVerified, stored.Status)
}

func TestSubmit_ApprovedSubset(t *testing.T) {
	vendor := newFakeVendor()
	vendor.products["PROD-002"] = erp.Product{
		Code:      "PROD-002",
		Name:      "Gadget",
		UnitPrice: decimal.NewFromInt(50),
		VATRate:   decimal.NewFromFloat(25.5),
	}
	vendor.stock["PROD-002"] = decimal.NewFromInt(20)

	store := newMemStore()
	svc := newTestService(vendor, store)
	ctx := context.Background()

	req := intakeFixture()
	req.Body = "Customer: Example Company Oy\n\n10 x PROD-001\n2 x PROD-002"
	o, err := svc.CreateFromIntake(ctx, req)
	require.NoError(t, err)
	require.Len(t, o.Lines, 2)

	submitted, _, err := svc.Submit(ctx, o.ID, []uuid.UUID{o.Lines[0].ID})
	require.NoError(t, err)

	// Only the approved line goes to the vendor and the totals follow.
	require.Len(t, vendor.lastOffer.Lines, 1)
	assert.Equal(t, "PROD-001", vendor.lastOffer.Lines[0].ProductCode)
	require.Len(t, submitted.Lines, 1)
	assert.True(t, submitted.NetTotal.Equal(decimal.NewFromInt(900)))
}

func TestSubmit_UnknownLineID(t *testing.T) {
	svc := newTestService(newFakeVendor(), newMemStore())
	ctx := context.Background()

	o, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, o.ID, []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, offer.ErrLineNotFound)

	// The failed approval leaves the offer reviewable.
	stored, err := svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusPendingReview, stored.Status)
}

func TestSubmit_VendorFailureReverts(t *testing.T) {
	vendor := newFakeVendor()
	vendor.createErr = fmt.Errorf("%w: shell rejected", erp.ErrVendorRejected)
	store := newMemStore()
	svc := newTestService(vendor, store)
	ctx := context.Background()

	o, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, o.ID, nil)
	assert.ErrorIs(t, err, erp.ErrVendorRejected)

	stored, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusPendingReview, stored.Status)
}

func TestSubmit_ConcurrentApprovalLoses(t *testing.T) {
	vendor := newFakeVendor()
	store := newMemStore()
	svc := newTestService(vendor, store)
	ctx := context.Background()

	o, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	// Another approval is mid-flight.
	_, err = store.TransitionStatus(ctx, o.ID, offer.StatusPendingReview, offer.StatusSubmitting)
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, o.ID, nil)
	assert.ErrorIs(t, err, offer.ErrStatusConflict)
	assert.Equal(t, 0, vendor.createCalls)
}

func TestListPendingFiltersByStatus(t *testing.T) {
	vendor := newFakeVendor()
	store := newMemStore()
	svc := newTestService(vendor, store)
	ctx := context.Background()

	first, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)
	second, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, first.ID, nil)
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestDelete(t *testing.T) {
	svc := newTestService(newFakeVendor(), newMemStore())
	ctx := context.Background()

	o, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, o.ID))
	_, err = svc.Get(ctx, o.ID)
	assert.ErrorIs(t, err, offer.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), offer.ErrNotFound)
}

func TestDelete_BlockedDuringSubmission(t *testing.T) {
	store := newMemStore()
	svc := newTestService(newFakeVendor(), store)
	ctx := context.Background()

	o, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	_, err = store.TransitionStatus(ctx, o.ID, offer.StatusPendingReview, offer.StatusSubmitting)
	require.NoError(t, err)

	err = svc.Delete(ctx, o.ID)
	assert.ErrorIs(t, err, offer.ErrStatusConflict)
}

func TestSubmit_PartialVendorFailureReported(t *testing.T) {
	vendor := newFakeVendor()
	vendor.createResult = &erp.CreateResult{
		OfferNumber:  6001,
		CreatedLines: 0,
		Failed: []erp.LineFailure{
			{ProductCode: "PROD-001", Attempts: 3, Reason: "row number conflict"},
		},
		Verified: true,
	}
	svc := newTestService(vendor, newMemStore())
	ctx := context.Background()

	o, err := svc.CreateFromIntake(ctx, intakeFixture())
	require.NoError(t, err)

	_, outcome, err := svc.Submit(ctx, o.ID, nil)
	require.NoError(t, err)
	require.Len(t, outcome.FailedLines, 1)
	assert.Equal(t, "PROD-001", outcome.FailedLines[0].ProductCode)
	assert.Equal(t, 3, outcome.FailedLines[0].Attempts)
}
