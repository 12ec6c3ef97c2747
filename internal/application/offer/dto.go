package offer

import "github.com/google/uuid"

// IntakeRequest is an inbound offer request, typically a forwarded email.
// Attachments are carried through as opaque references for the reviewer;
// only the body text is parsed.
type IntakeRequest struct {
	Sender      string   `json:"sender" binding:"required"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body" binding:"required"`
	Attachments []string `json:"attachments"`
}

// SendRequest approves an offer for ERP submission. An empty line list
// approves every line.
type SendRequest struct {
	LineIDs []uuid.UUID `json:"line_ids"`
}

// SubmitOutcome reports what the vendor accepted during submission
type SubmitOutcome struct {
	VendorOfferNumber int          `json:"vendor_offer_number"`
	CreatedLines      int          `json:"created_lines"`
	FailedLines       []FailedLine `json:"failed_lines,omitempty"`
	Verified          bool         `json:"verified"`
}

// FailedLine is one offer line the vendor refused
type FailedLine struct {
	ProductCode string `json:"product_code"`
	Attempts    int    `json:"attempts"`
	Reason      string `json:"reason"`
}
