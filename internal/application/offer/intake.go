package offer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one structured request line extracted from an intake body
type LineItem struct {
	ProductCode string
	Quantity    decimal.Decimal
}

// Intake bodies are free-form request text, typically forwarded email.
// Quantities and product codes appear in two common shapes:
//
//	10 x PROD-001
//	PROD-001 x 10
//
// with "pcs" and "kpl" accepted as quantity markers alongside "x".
// Product codes are uppercase alphanumerics with dashes and at least one
// digit, which keeps ordinary words out of the match.
var (
	qtyFirstPattern  = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(?:x|pcs|kpl)\s+([A-Z][A-Z0-9]*(?:-[A-Z0-9]+)+|[A-Z]+\d[A-Z0-9]*)\b`)
	codeFirstPattern = regexp.MustCompile(`(?i)\b([A-Z][A-Z0-9]*(?:-[A-Z0-9]+)+|[A-Z]+\d[A-Z0-9]*)\s*(?:x|,)?\s+(\d+(?:[.,]\d+)?)\s*(?:x|pcs|kpl)?\b`)

	customerLinePattern  = regexp.MustCompile(`(?im)^\s*(?:customer|company|asiakas)\s*[:=]\s*(.+?)\s*$`)
	referenceLinePattern = regexp.MustCompile(`(?im)^\s*(?:reference|ref|viite)\s*[:=]\s*(.+?)\s*$`)
	senderNamePattern    = regexp.MustCompile(`^\s*"?([^"<]+?)"?\s*<[^>]+>\s*$`)
)

// ExtractLineItems parses the structured line items out of an intake body.
// Repeated mentions of the same product code are merged by summing the
// quantities. The order of first mention is preserved.
func ExtractLineItems(body string) []LineItem {
	index := make(map[string]int)
	var items []LineItem

	add := func(code string, qty decimal.Decimal) {
		if qty.IsZero() {
			return
		}
		code = strings.ToUpper(code)
		if i, ok := index[code]; ok {
			items[i].Quantity = items[i].Quantity.Add(qty)
			return
		}
		index[code] = len(items)
		items = append(items, LineItem{ProductCode: code, Quantity: qty})
	}

	for _, line := range strings.Split(body, "\n") {
		if m := qtyFirstPattern.FindStringSubmatch(line); m != nil {
			if qty, err := parseQuantity(m[1]); err == nil {
				add(m[2], qty)
			}
			continue
		}
		if m := codeFirstPattern.FindStringSubmatch(line); m != nil {
			if qty, err := parseQuantity(m[2]); err == nil {
				add(m[1], qty)
			}
		}
	}
	return items
}

// parseQuantity accepts both decimal separators
func parseQuantity(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// ExtractCustomerName finds the customer name in an intake request. An
// explicit "Customer:" line in the body wins; otherwise the sender's
// display name is used, and as a last resort the sender's email domain
// with the TLD stripped.
func ExtractCustomerName(sender, body string) string {
	if m := customerLinePattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := senderNamePattern.FindStringSubmatch(sender); m != nil {
		return strings.TrimSpace(m[1])
	}
	return senderDomainName(sender)
}

// ExtractReference finds an explicit reference line in the body, if any
func ExtractReference(body string) string {
	if m := referenceLinePattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// SenderEmail extracts the bare email address from a sender field that
// may carry a display name.
func SenderEmail(sender string) string {
	if start := strings.LastIndexByte(sender, '<'); start >= 0 {
		if end := strings.IndexByte(sender[start:], '>'); end > 0 {
			return strings.TrimSpace(sender[start+1 : start+end])
		}
	}
	return strings.TrimSpace(sender)
}

// senderDomainName derives a company-ish name from the sender's email
// domain, e.g. "orders@acme.fi" -> "acme".
func senderDomainName(sender string) string {
	email := SenderEmail(sender)
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return strings.TrimSpace(email)
	}
	domain := email[at+1:]
	if dot := strings.IndexByte(domain, '.'); dot > 0 {
		domain = domain[:dot]
	}
	return domain
}
