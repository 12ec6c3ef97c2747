package lemonsoft

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/offerflow/backend/internal/domain/erp"
)

// FieldKind declares the expected type of a mapped vendor field
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindDecimal
	KindBool
)

// FieldMapping binds one generic domain field to a Lemonsoft field.
// Inverted bool fields flip their value in both directions, e.g. the
// generic credit_allowed maps to the vendor's deny_credit.
type FieldMapping struct {
	Domain   string
	Vendor   string
	Kind     FieldKind
	Inverted bool
}

// customerFieldMappings translates Customer fields
var customerFieldMappings = []FieldMapping{
	{Domain: "number", Vendor: "customer_number", Kind: KindInt},
	{Domain: "name", Vendor: "name", Kind: KindString},
	{Domain: "address", Vendor: "street_address", Kind: KindString},
	{Domain: "city", Vendor: "city", Kind: KindString},
	{Domain: "postal_code", Vendor: "zip_code", Kind: KindString},
	{Domain: "country", Vendor: "country", Kind: KindString},
	{Domain: "credit_allowed", Vendor: "deny_credit", Kind: KindBool, Inverted: true},
	{Domain: "payment_term", Vendor: "payment_term_net_days", Kind: KindInt},
}

// productFieldMappings translates Product fields
var productFieldMappings = []FieldMapping{
	{Domain: "code", Vendor: "product_code", Kind: KindString},
	{Domain: "name", Vendor: "description", Kind: KindString},
	{Domain: "unit_price", Vendor: "price1", Kind: KindDecimal},
	{Domain: "available", Vendor: "stock_available", Kind: KindDecimal},
	{Domain: "vat_rate", Vendor: "vat_percent", Kind: KindDecimal},
}

// personFieldMappings translates Person fields
var personFieldMappings = []FieldMapping{
	{Domain: "number", Vendor: "person_number", Kind: KindInt},
	{Domain: "name", Vendor: "name", Kind: KindString},
	{Domain: "email", Vendor: "email", Kind: KindString},
}

// offerFieldMappings translates the offer shell fields
var offerFieldMappings = []FieldMapping{
	{Domain: "customer_number", Vendor: "customer_number", Kind: KindInt},
	{Domain: "person_number", Vendor: "our_reference_person", Kind: KindInt},
	{Domain: "customer_reference", Vendor: "your_reference", Kind: KindString},
	{Domain: "delivery_method", Vendor: "delivery_method_code", Kind: KindInt},
}

// offerRowFieldMappings translates one offer row
var offerRowFieldMappings = []FieldMapping{
	{Domain: "row_id", Vendor: "client_row_id", Kind: KindString},
	{Domain: "product_code", Vendor: "product_code", Kind: KindString},
	{Domain: "product_name", Vendor: "description", Kind: KindString},
	{Domain: "quantity", Vendor: "amount", Kind: KindDecimal},
	{Domain: "unit_price", Vendor: "gross_price", Kind: KindDecimal},
	{Domain: "net_price", Vendor: "net_price", Kind: KindDecimal},
	{Domain: "line_total", Vendor: "row_sum", Kind: KindDecimal},
	{Domain: "vat_rate", Vendor: "vat_percent", Kind: KindDecimal},
}

// deliveryMethodCodes maps the generic delivery-method enum to Lemonsoft
// integer codes.
var deliveryMethodCodes = map[erp.DeliveryMethod]int{
	erp.DeliveryMethodPrepayment: 33,
	erp.DeliveryMethodInvoice:    6,
}

// deliveryMethodToCode converts a delivery method to the vendor code.
func deliveryMethodToCode(m erp.DeliveryMethod) (int, error) {
	code, ok := deliveryMethodCodes[m]
	if !ok {
		return 0, fmt.Errorf("lemonsoft: unmapped delivery method %q", m)
	}
	return code, nil
}

// mappingTable is a validated bidirectional field translation table.
// Tables are built once at adapter construction so mapping typos surface
// at startup instead of on the first vendor call.
type mappingTable struct {
	name     string
	byDomain map[string]FieldMapping
}

// newMappingTable validates the entries and builds the lookup table.
func newMappingTable(name string, entries []FieldMapping) (*mappingTable, error) {
	byDomain := make(map[string]FieldMapping, len(entries))
	byVendor := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Domain == "" || e.Vendor == "" {
			return nil, fmt.Errorf("lemonsoft: %s mapping has an empty field name", name)
		}
		if _, dup := byDomain[e.Domain]; dup {
			return nil, fmt.Errorf("lemonsoft: %s mapping declares domain field %q twice", name, e.Domain)
		}
		if byVendor[e.Vendor] {
			return nil, fmt.Errorf("lemonsoft: %s mapping declares vendor field %q twice", name, e.Vendor)
		}
		if e.Inverted && e.Kind != KindBool {
			return nil, fmt.Errorf("lemonsoft: %s mapping field %q is inverted but not boolean", name, e.Domain)
		}
		byDomain[e.Domain] = e
		byVendor[e.Vendor] = true
	}
	return &mappingTable{name: name, byDomain: byDomain}, nil
}

// require checks that every listed domain field exists in the table.
// Adapters call it at construction with the fields they will use.
func (t *mappingTable) require(domains ...string) error {
	for _, d := range domains {
		if _, ok := t.byDomain[d]; !ok {
			return fmt.Errorf("lemonsoft: %s mapping is missing domain field %q", t.name, d)
		}
	}
	return nil
}

// entry returns the mapping for a domain field.
func (t *mappingTable) entry(domain string) (FieldMapping, error) {
	e, ok := t.byDomain[domain]
	if !ok {
		return FieldMapping{}, fmt.Errorf("lemonsoft: %s mapping has no domain field %q", t.name, domain)
	}
	return e, nil
}

// set writes a domain value into a vendor payload, applying inversion.
func (t *mappingTable) set(payload rawObject, domain string, value any) error {
	e, err := t.entry(domain)
	if err != nil {
		return err
	}
	if e.Inverted {
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("lemonsoft: %s field %q expects a bool", t.name, domain)
		}
		value = !b
	}
	payload[e.Vendor] = value
	return nil
}

// str reads a string field from a vendor row.
func (t *mappingTable) str(row rawObject, domain string) (string, error) {
	e, err := t.entry(domain)
	if err != nil {
		return "", err
	}
	v, ok := row[e.Vendor]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("lemonsoft: %s field %q is not a string", t.name, e.Vendor)
	}
	return s, nil
}

// integer reads an integer field from a vendor row.
func (t *mappingTable) integer(row rawObject, domain string) (int, error) {
	e, err := t.entry(domain)
	if err != nil {
		return 0, err
	}
	v, ok := row[e.Vendor]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("lemonsoft: %s field %q is not a number", t.name, e.Vendor)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("lemonsoft: %s field %q is not an integer: %w", t.name, e.Vendor, err)
	}
	return int(i), nil
}

// dec reads a decimal field from a vendor row.
func (t *mappingTable) dec(row rawObject, domain string) (decimal.Decimal, error) {
	e, err := t.entry(domain)
	if err != nil {
		return decimal.Zero, err
	}
	v, ok := row[e.Vendor]
	if !ok || v == nil {
		return decimal.Zero, nil
	}
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("lemonsoft: %s field %q: %w", t.name, e.Vendor, err)
		}
		return d, nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero, fmt.Errorf("lemonsoft: %s field %q: %w", t.name, e.Vendor, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("lemonsoft: %s field %q is not numeric", t.name, e.Vendor)
	}
}

// boolean reads a bool field from a vendor row, applying inversion.
func (t *mappingTable) boolean(row rawObject, domain string) (bool, error) {
	e, err := t.entry(domain)
	if err != nil {
		return false, err
	}
	v, ok := row[e.Vendor]
	if !ok || v == nil {
		return e.Inverted, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("lemonsoft: %s field %q is not a bool", t.name, e.Vendor)
	}
	if e.Inverted {
		return !b, nil
	}
	return b, nil
}
