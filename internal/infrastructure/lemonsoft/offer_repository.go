package lemonsoft

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/offerflow/backend/internal/domain/erp"
)

// OfferRepository implements erp.OfferRepository against Lemonsoft.
//
// The vendor has no atomic multi-line offer creation, so Create runs a
// three-step protocol: POST a minimal offer shell, POST each row
// individually (retrying single rows on numbering collisions), then GET
// the offer back and verify the persisted rows match what was sent.
type OfferRepository struct {
	client *Client
	fields *mappingTable
	rows   *mappingTable
	logger *zap.Logger

	retryAttempts int
	retryDelay    time.Duration
}

// NewOfferRepository builds the repository and validates both offer
// mapping tables.
func NewOfferRepository(client *Client, logger *zap.Logger) (*OfferRepository, error) {
	fields, err := newMappingTable("offer", offerFieldMappings)
	if err != nil {
		return nil, err
	}
	if err := fields.require("customer_number", "person_number",
		"customer_reference", "delivery_method"); err != nil {
		return nil, err
	}

	rows, err := newMappingTable("offer_row", offerRowFieldMappings)
	if err != nil {
		return nil, err
	}
	if err := rows.require("row_id", "product_code", "product_name",
		"quantity", "unit_price", "net_price", "line_total", "vat_rate"); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferRepository{
		client:        client,
		fields:        fields,
		rows:          rows,
		logger:        logger,
		retryAttempts: client.config.LineRetryAttempts,
		retryDelay:    client.config.LineRetryDelay,
	}, nil
}

// Create creates the offer in Lemonsoft and returns the vendor-assigned
// offer number. A shell rejection fails the whole call; row failures are
// accumulated per line so partial creation never corrupts the rest of the
// offer. A verification mismatch is surfaced as an error, never retried.
func (r *OfferRepository) Create(ctx context.Context, offer *erp.SalesOffer) (*erp.CreateResult, error) {
	if len(offer.Lines) == 0 {
		return nil, fmt.Errorf("%w: offer has no lines", erp.ErrVendorRejected)
	}

	number, err := r.createShell(ctx, offer)
	if err != nil {
		return nil, err
	}
	log := r.logger.With(zap.Int("offer_number", number))

	result := &erp.CreateResult{OfferNumber: number}
	created := make([]erp.PricedLine, 0, len(offer.Lines))

	for _, line := range offer.Lines {
		attempts, err := r.createRow(ctx, number, line)
		if err != nil {
			log.Warn("offer row creation failed",
				zap.String("product_code", line.ProductCode),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, erp.LineFailure{
				ProductCode: line.ProductCode,
				Attempts:    attempts,
				Reason:      err.Error(),
			})
			continue
		}
		result.CreatedLines++
		created = append(created, line)
	}

	if err := r.verify(ctx, number, created); err != nil {
		return result, err
	}
	result.Verified = true

	log.Info("offer created",
		zap.Int("created_lines", result.CreatedLines),
		zap.Int("failed_lines", len(result.Failed)),
	)
	return result, nil
}

// createShell posts the minimal offer header and returns the vendor number
func (r *OfferRepository) createShell(ctx context.Context, offer *erp.SalesOffer) (int, error) {
	methodCode, err := deliveryMethodToCode(offer.DeliveryMethod)
	if err != nil {
		return 0, err
	}

	payload := rawObject{}
	if err := r.fields.set(payload, "customer_number", offer.CustomerNumber); err != nil {
		return 0, err
	}
	if err := r.fields.set(payload, "customer_reference", offer.CustomerReference); err != nil {
		return 0, err
	}
	if err := r.fields.set(payload, "delivery_method", methodCode); err != nil {
		return 0, err
	}
	if offer.PersonNumber != 0 {
		if err := r.fields.set(payload, "person_number", offer.PersonNumber); err != nil {
			return 0, err
		}
	}

	body, err := r.client.do(ctx, http.MethodPost, "/api/salesoffers", nil, payload)
	if err != nil {
		return 0, err
	}

	var resp offerCreateResponse
	if err := decodeObject(body, &resp); err != nil {
		return 0, err
	}
	if resp.Number == 0 {
		return 0, fmt.Errorf("%w: missing offer number", erp.ErrInvalidResponse)
	}
	return resp.Number, nil
}

// createRow posts a single offer row, retrying on numbering collisions.
// The client row ID stays the same across retries so an accepted row is
// never duplicated by its own retry.
func (r *OfferRepository) createRow(ctx context.Context, offerNumber int, line erp.PricedLine) (int, error) {
	payload, err := r.rowPayload(line)
	if err != nil {
		return 0, err
	}
	path := "/api/salesoffers/" + strconv.Itoa(offerNumber) + "/rows"

	var lastErr error
	for attempt := 1; attempt <= r.retryAttempts; attempt++ {
		_, err := r.client.do(ctx, http.MethodPost, path, nil, payload)
		if err == nil {
			return attempt, nil
		}
		if !isRowConflict(err) {
			return attempt, err
		}
		lastErr = err

		if attempt < r.retryAttempts {
			select {
			case <-ctx.Done():
				return attempt, ctx.Err()
			case <-time.After(r.retryDelay):
			}
		}
	}
	return r.retryAttempts, fmt.Errorf("%w: %v", erp.ErrLineRetryExhausted, lastErr)
}

// rowPayload builds the vendor row object through the mapping table
func (r *OfferRepository) rowPayload(line erp.PricedLine) (rawObject, error) {
	payload := rawObject{}
	setters := []struct {
		domain string
		value  any
	}{
		{"row_id", uuid.NewString()},
		{"product_code", line.ProductCode},
		{"product_name", line.ProductName},
		{"quantity", line.Quantity},
		{"unit_price", line.UnitPrice},
		{"net_price", line.NetPrice},
		{"line_total", line.LineTotal},
		{"vat_rate", line.VATRate},
	}
	for _, s := range setters {
		if err := r.rows.set(payload, s.domain, s.value); err != nil {
			return nil, err
		}
	}
	return payload, nil
}

// verify reads the offer back and compares the persisted rows against the
// successfully created lines: same row count, and per product code the
// same quantity. Mismatches are reported, not repaired.
func (r *OfferRepository) verify(ctx context.Context, offerNumber int, created []erp.PricedLine) error {
	query := url.Values{}
	query.Set("expand", "rows")

	body, err := r.client.do(ctx, http.MethodGet,
		"/api/salesoffers/"+strconv.Itoa(offerNumber), query, nil)
	if err != nil {
		return fmt.Errorf("%w: read-back failed: %v", erp.ErrVerificationMismatch, err)
	}

	var resp offerGetResponse
	if err := decodeObject(body, &resp); err != nil {
		return err
	}

	if len(resp.Rows) != len(created) {
		return fmt.Errorf("%w: sent %d rows, vendor persisted %d",
			erp.ErrVerificationMismatch, len(created), len(resp.Rows))
	}

	type rowKey struct {
		code string
		qty  string
	}
	persisted := make(map[rowKey]int, len(resp.Rows))
	for _, row := range resp.Rows {
		code, err := r.rows.str(row, "product_code")
		if err != nil {
			return err
		}
		qty, err := r.rows.dec(row, "quantity")
		if err != nil {
			return err
		}
		persisted[rowKey{code: code, qty: qty.String()}]++
	}

	for _, line := range created {
		key := rowKey{code: line.ProductCode, qty: line.Quantity.String()}
		if persisted[key] == 0 {
			return fmt.Errorf("%w: row %s qty %s missing or altered on vendor side",
				erp.ErrVerificationMismatch, line.ProductCode, line.Quantity)
		}
		persisted[key]--
	}
	return nil
}

// Ensure OfferRepository implements the port
var _ erp.OfferRepository = (*OfferRepository)(nil)
