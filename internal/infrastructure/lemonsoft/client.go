package lemonsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/offerflow/backend/internal/domain/erp"
)

// maxResponseSize is the maximum allowed response size from the Lemonsoft API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// rowConflictCode is reported by the vendor when concurrent row POSTs
// collide on the offer's internal row numbering.
const rowConflictCode = "ROW_NUMBER_CONFLICT"

// errNotFound marks a vendor 404; repositories translate it to the
// entity-specific not-found error of their port.
var errNotFound = errors.New("lemonsoft: resource not found")

// isNotFound reports whether the error is a vendor 404
func isNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

// Client is the shared Lemonsoft HTTP client. A session is established
// once with Login; the session key is sent on every subsequent request.
type Client struct {
	config     *Config
	httpClient *http.Client

	mu        sync.RWMutex
	sessionID string
}

// NewClient creates a Lemonsoft client with the given configuration
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Login authenticates against the vendor and stores the session key.
// Authentication failure is startup-fatal for the caller.
func (c *Client) Login(ctx context.Context) error {
	body, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{
		APIKey:   c.config.APIKey,
		Database: c.config.Database,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", erp.ErrVendorAuthFailed, err)
	}

	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: failed to parse login response: %v", erp.ErrInvalidResponse, err)
	}
	if resp.SessionID == "" {
		return fmt.Errorf("%w: empty session", erp.ErrVendorAuthFailed)
	}

	c.mu.Lock()
	c.sessionID = resp.SessionID
	c.mu.Unlock()
	return nil
}

// session returns the current session key
func (c *Client) session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// do performs an HTTP request against the Lemonsoft API and returns the
// raw response body. Vendor and transport failures are mapped onto the
// erp error kinds.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("lemonsoft: failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("lemonsoft: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session := c.session(); session != "" {
		req.Header.Set("Session-Id", session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", erp.ErrVendorUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("lemonsoft: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.asError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// asError converts a vendor error response into a domain error
func (c *Client) asError(status int, body []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	detail := apiErr.Error.Message
	if detail == "" {
		detail = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", erp.ErrVendorAuthFailed, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errNotFound, detail)
	case status == http.StatusConflict || apiErr.Error.Code == rowConflictCode:
		return &conflictError{code: apiErr.Error.Code, message: detail}
	case status >= 500:
		return fmt.Errorf("%w: HTTP %d: %s", erp.ErrVendorUnavailable, status, detail)
	default:
		return fmt.Errorf("%w: HTTP %d: %s [%s]", erp.ErrVendorRejected, status, detail, apiErr.Error.Code)
	}
}

// conflictError marks a vendor-reported concurrent numbering collision.
// The offer repository retries the affected row on this error kind.
type conflictError struct {
	code    string
	message string
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("lemonsoft: row conflict [%s]: %s", e.code, e.message)
}

// Unwrap keeps conflicts inside the vendor-rejection error kind so
// callers that do not retry still see a vendor error.
func (e *conflictError) Unwrap() error {
	return erp.ErrVendorRejected
}

// isRowConflict reports whether the error is a retryable numbering collision
func isRowConflict(err error) bool {
	var conflict *conflictError
	return errors.As(err, &conflict)
}

// decodeObject decodes a JSON object preserving number precision
func decodeObject(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", erp.ErrInvalidResponse, err)
	}
	return nil
}
