package offer

import (
	"context"

	"github.com/google/uuid"
)

// PendingStore holds offers awaiting human approval before ERP submission.
// It is the single in-process owner of pending offers; any backing file is
// a durability side-channel, not a source of truth.
type PendingStore interface {
	// Put inserts or replaces an offer.
	Put(ctx context.Context, o *Offer) error

	// Get returns the offer with the given ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Offer, error)

	// List returns all stored offers ordered by creation time.
	List(ctx context.Context) ([]*Offer, error)

	// Delete removes an offer, or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// TransitionStatus atomically moves an offer from one status to
	// another. It returns ErrStatusConflict when the offer is not in the
	// expected from status, so concurrent approvals of the same offer
	// resolve to exactly one winner.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Offer, error)
}
