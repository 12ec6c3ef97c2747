package lemonsoft

import "encoding/json"

// Lemonsoft wire types. The vendor API uses flat JSON objects with its own
// field names; the adapter translates them through the mapping tables in
// mapping.go. Only responses with a stable typed shape are modeled here,
// entity rows are decoded as raw objects and converted via the tables.

// apiError is the error envelope returned by the Lemonsoft API
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// loginRequest is the session login payload
type loginRequest struct {
	APIKey   string `json:"api_key"`
	Database string `json:"database"`
}

// loginResponse carries the session key used on subsequent requests
type loginResponse struct {
	SessionID string `json:"session_id"`
}

// listResponse is the generic paged list envelope; rows are decoded
// via the field mapping tables
type listResponse struct {
	Results    []rawObject `json:"results"`
	TotalCount int         `json:"total_count"`
}

// rawObject is one undecoded vendor entity row
type rawObject map[string]any

// offerCreateResponse is returned from the offer shell POST
type offerCreateResponse struct {
	Number int `json:"number"`
}

// offerGetResponse is the offer read-back used by the verification step
type offerGetResponse struct {
	Number int         `json:"number"`
	Rows   []rawObject `json:"rows"`
}

// stockResponse carries product availability
type stockResponse struct {
	ProductCode string      `json:"product_code"`
	Available   json.Number `json:"available"`
}

// discountRow is one customer-specific discount rule
type discountRow struct {
	ProductCode string  `json:"product_code"`
	Percent     float64 `json:"percent"`
}

// discountResponse lists the discount rules for a customer
type discountResponse struct {
	Discounts []discountRow `json:"discounts"`
}
