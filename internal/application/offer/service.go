// Package offer orchestrates the offer pipeline: intake parsing, customer
// and product resolution, pricing, human review, and ERP submission. The
// pipeline is strictly sequential; each request is processed end to end by
// its own handler with no background work.
package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/offerflow/backend/internal/domain/erp"
	"github.com/offerflow/backend/internal/domain/offer"
)

var (
	// ErrNoLineItems means the intake body contained nothing parseable.
	ErrNoLineItems = errors.New("offer intake: no line items found in body")

	// ErrCustomerUnresolved means neither the explicit customer name nor
	// the sender-derived fallback matched an ERP customer.
	ErrCustomerUnresolved = errors.New("offer intake: customer could not be resolved")
)

// Service is the offer orchestrator
type Service struct {
	vendors *erp.VendorSet
	store   offer.PendingStore
	logger  *zap.Logger
}

// NewService creates the orchestrator
func NewService(vendors *erp.VendorSet, store offer.PendingStore, logger *zap.Logger) *Service {
	return &Service{
		vendors: vendors,
		store:   store,
		logger:  logger,
	}
}

// CreateFromIntake runs the intake pipeline and parks the assembled offer
// in the pending store for human review. Nothing is sent to the vendor.
func (s *Service) CreateFromIntake(ctx context.Context, req IntakeRequest) (*offer.Offer, error) {
	items := ExtractLineItems(req.Body)
	if len(items) == 0 {
		return nil, ErrNoLineItems
	}

	customer, err := s.resolveCustomer(ctx, req)
	if err != nil {
		return nil, err
	}

	matched, err := s.matchProducts(ctx, items)
	if err != nil {
		return nil, err
	}

	pricing, err := s.vendors.Pricing.CalculatePricing(ctx, customer.Number, matched)
	if err != nil {
		return nil, fmt.Errorf("pricing failed for customer %d: %w", customer.Number, err)
	}

	lines := make([]offer.Line, 0, len(pricing.Lines))
	for _, p := range pricing.Lines {
		lines = append(lines, offer.NewLine(
			p.ProductCode, p.ProductName, p.Quantity, p.UnitPrice, p.NetPrice, p.VATRate))
	}

	o, err := offer.New(customer, lines)
	if err != nil {
		return nil, err
	}
	o.Sender = req.Sender
	o.Subject = req.Subject
	o.CustomerReference = reference(req)
	s.attachContact(ctx, o, req.Sender)

	if err := s.store.Put(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("offer queued for review",
		zap.String("offer_id", o.ID.String()),
		zap.Int("customer_number", o.CustomerNumber),
		zap.Int("lines", len(o.Lines)),
		zap.String("total", o.TotalAmount.String()),
	)
	return o, nil
}

// Submit approves an offer and creates it in the ERP. The status is moved
// pending_review -> submitting first, so of two concurrent approvals only
// one reaches the vendor; the loser gets ErrStatusConflict. On a vendor
// failure the status reverts to pending_review and the error surfaces.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, approvedLineIDs []uuid.UUID) (*offer.Offer, *SubmitOutcome, error) {
	o, err := s.store.TransitionStatus(ctx, id, offer.StatusPendingReview, offer.StatusSubmitting)
	if err != nil {
		return nil, nil, err
	}

	lines, err := o.LinesByID(approvedLineIDs)
	if err != nil {
		s.revert(ctx, id)
		return nil, nil, err
	}
	o.Lines = lines
	o.RecalculateTotals()

	result, err := s.vendors.Offers.Create(ctx, salesOffer(o))
	if err != nil {
		s.revert(ctx, id)
		return nil, nil, err
	}

	o.MarkSubmitted(result.OfferNumber, result.Verified)
	if err := s.store.Put(ctx, o); err != nil {
		return nil, nil, err
	}

	outcome := &SubmitOutcome{
		VendorOfferNumber: result.OfferNumber,
		CreatedLines:      result.CreatedLines,
		Verified:          result.Verified,
	}
	for _, f := range result.Failed {
		outcome.FailedLines = append(outcome.FailedLines, FailedLine{
			ProductCode: f.ProductCode,
			Attempts:    f.Attempts,
			Reason:      f.Reason,
		})
	}

	s.logger.Info("offer submitted",
		zap.String("offer_id", o.ID.String()),
		zap.Int("vendor_offer_number", result.OfferNumber),
		zap.Int("created_lines", result.CreatedLines),
		zap.Int("failed_lines", len(result.Failed)),
		zap.Bool("verified", result.Verified),
	)
	return o, outcome, nil
}

// ListPending returns the offers awaiting human review
func (s *Service) ListPending(ctx context.Context) ([]*offer.Offer, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*offer.Offer, 0, len(all))
	for _, o := range all {
		if o.Status == offer.StatusPendingReview {
			pending = append(pending, o)
		}
	}
	return pending, nil
}

// Get returns one stored offer
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	return s.store.Get(ctx, id)
}

// Delete rejects and removes an offer. An offer mid-submission cannot be
// deleted; the submission outcome must land first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if o.Status == offer.StatusSubmitting {
		return fmt.Errorf("%w: offer is being submitted", offer.ErrStatusConflict)
	}
	return s.store.Delete(ctx, id)
}

// resolveCustomer tries the explicit or sender-derived customer name, then
// falls back to the sender's email domain.
func (s *Service) resolveCustomer(ctx context.Context, req IntakeRequest) (*erp.Customer, error) {
	name := ExtractCustomerName(req.Sender, req.Body)
	customer, err := s.vendors.Customers.FindByName(ctx, name)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, erp.ErrCustomerNotFound) {
		return nil, err
	}

	fallback := senderDomainName(req.Sender)
	if fallback == "" || strings.EqualFold(fallback, name) {
		return nil, fmt.Errorf("%w: %q", ErrCustomerUnresolved, name)
	}
	customer, err = s.vendors.Customers.FindByName(ctx, fallback)
	if err != nil {
		if errors.Is(err, erp.ErrCustomerNotFound) {
			return nil, fmt.Errorf("%w: tried %q and %q", ErrCustomerUnresolved, name, fallback)
		}
		return nil, err
	}
	return customer, nil
}

// matchProducts resolves each extracted item against the catalog. The
// catalog search may return fuzzy results; only an exact code match
// counts. Short stock is logged for the reviewer, not rejected.
func (s *Service) matchProducts(ctx context.Context, items []LineItem) ([]erp.MatchedProduct, error) {
	matched := make([]erp.MatchedProduct, 0, len(items))
	for _, item := range items {
		products, err := s.vendors.Products.Search(ctx, item.ProductCode)
		if err != nil {
			return nil, err
		}

		var product *erp.Product
		for i := range products {
			if strings.EqualFold(products[i].Code, item.ProductCode) {
				product = &products[i]
				break
			}
		}
		if product == nil {
			return nil, fmt.Errorf("%w: code %q", erp.ErrProductNotFound, item.ProductCode)
		}

		available, err := s.vendors.Products.Availability(ctx, product.Code)
		if err != nil {
			return nil, err
		}
		if available.LessThan(item.Quantity) {
			s.logger.Warn("requested quantity exceeds available stock",
				zap.String("product_code", product.Code),
				zap.String("requested", item.Quantity.String()),
				zap.String("available", available.String()),
			)
		}
		product.Available = available

		matched = append(matched, erp.MatchedProduct{
			Product:  *product,
			Quantity: item.Quantity,
		})
	}
	return matched, nil
}

// attachContact resolves the sender to an ERP person when possible. An
// unknown sender is fine, the offer just has no reference person.
func (s *Service) attachContact(ctx context.Context, o *offer.Offer, sender string) {
	email := SenderEmail(sender)
	if email == "" || !strings.Contains(email, "@") {
		return
	}
	person, err := s.vendors.Persons.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, erp.ErrPersonNotFound) {
			s.logger.Warn("contact lookup failed", zap.String("email", email), zap.Error(err))
		}
		return
	}
	o.PersonNumber = person.Number
	o.DeliveryContact = person.Name
}

// revert moves an offer back to pending_review after a failed submission
func (s *Service) revert(ctx context.Context, id uuid.UUID) {
	if _, err := s.store.TransitionStatus(ctx, id, offer.StatusSubmitting, offer.StatusPendingReview); err != nil {
		s.logger.Error("failed to revert offer status",
			zap.String("offer_id", id.String()), zap.Error(err))
	}
}

// reference picks the customer reference: an explicit body line wins,
// otherwise the subject.
func reference(req IntakeRequest) string {
	if ref := ExtractReference(req.Body); ref != "" {
		return ref
	}
	return strings.TrimSpace(req.Subject)
}

// salesOffer converts the aggregate into the vendor-neutral submission shape
func salesOffer(o *offer.Offer) *erp.SalesOffer {
	lines := make([]erp.PricedLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, erp.PricedLine{
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			NetPrice:    l.NetPrice,
			LineTotal:   l.LineTotal,
			VATRate:     l.VATRate,
		})
	}
	return &erp.SalesOffer{
		CustomerNumber:    o.CustomerNumber,
		PersonNumber:      o.PersonNumber,
		CustomerReference: o.CustomerReference,
		DeliveryMethod:    o.DeliveryMethod,
		Lines:             lines,
		NetTotal:          o.NetTotal,
		VATAmount:         o.VATAmount,
		TotalAmount:       o.TotalAmount,
	}
}
