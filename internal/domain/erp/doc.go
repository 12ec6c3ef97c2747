// Package erp defines the vendor-neutral domain model for the ERP
// integration: customers, catalog products, responsible persons, pricing
// and sales-offer submission. Concrete vendors (Lemonsoft) implement the
// repository interfaces in internal/infrastructure.
package erp
