// Package erpfactory selects and builds the configured ERP vendor adapter.
// New vendors register a constructor; an unknown vendor type fails at
// startup, never at request time.
package erpfactory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/offerflow/backend/internal/domain/erp"
	"github.com/offerflow/backend/internal/infrastructure/config"
	"github.com/offerflow/backend/internal/infrastructure/lemonsoft"
)

// Adapter is a connected vendor adapter: the repositories plus the
// session lifecycle the factory manages.
type Adapter interface {
	Login(ctx context.Context) error
	VendorSet() *erp.VendorSet
}

// Constructor builds a vendor adapter from the ERP configuration
type Constructor func(cfg config.ERPConfig, logger *zap.Logger) (Adapter, error)

// Registry maps vendor type names to adapter constructors
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry creates a registry with the built-in vendors registered
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register("lemonsoft", newLemonsoftAdapter)
	return r
}

// Register adds a vendor constructor. An existing constructor for the
// same type name is replaced.
func (r *Registry) Register(vendorType string, constructor Constructor) {
	if vendorType == "" || constructor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[vendorType] = constructor
}

// Vendors returns the registered vendor type names, sorted
func (r *Registry) Vendors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds the adapter for the configured vendor type and opens its
// session. Both an unknown vendor type and a failed login are returned to
// the caller, which treats them as startup-fatal.
func (r *Registry) Create(ctx context.Context, cfg config.ERPConfig, logger *zap.Logger) (Adapter, error) {
	r.mu.RLock()
	constructor, ok := r.constructors[cfg.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("erpfactory: unknown ERP vendor type %q (registered: %v)",
			cfg.Type, r.Vendors())
	}

	adapter, err := constructor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("erpfactory: failed to build %s adapter: %w", cfg.Type, err)
	}
	if err := adapter.Login(ctx); err != nil {
		return nil, fmt.Errorf("erpfactory: %s login failed: %w", cfg.Type, err)
	}

	logger.Info("ERP adapter ready", zap.String("vendor", cfg.Type))
	return adapter, nil
}

// newLemonsoftAdapter adapts the shared ERP configuration into the
// Lemonsoft adapter's own config shape.
func newLemonsoftAdapter(cfg config.ERPConfig, logger *zap.Logger) (Adapter, error) {
	return lemonsoft.New(&lemonsoft.Config{
		BaseURL:           cfg.BaseURL,
		APIKey:            cfg.APIKey,
		Database:          cfg.Database,
		TimeoutSeconds:    cfg.TimeoutSeconds,
		LineRetryAttempts: cfg.LineRetryAttempts,
		LineRetryDelay:    cfg.LineRetryDelay,
	}, logger)
}
