package pendingstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offerflow/backend/internal/domain/erp"
	"github.com/offerflow/backend/internal/domain/offer"
	"github.com/offerflow/backend/internal/infrastructure/config"
)

func newTestStore(t *testing.T, filePath string) *FileStore {
	t.Helper()

	store, err := New(config.StoreConfig{
		FilePath:        filePath,
		Retention:       7 * 24 * time.Hour,
		CleanupInterval: time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testPendingOffer(t *testing.T) *offer.Offer {
	t.Helper()

	customer := &erp.Customer{
		Number:        12345,
		Name:          "Acme Oy",
		CreditAllowed: true,
	}
	line := offer.NewLine("PROD-001", "Widget",
		decimal.NewFromInt(10), decimal.NewFromInt(100),
		decimal.NewFromInt(90), decimal.NewFromFloat(25.5))

	o, err := offer.New(customer, []offer.Line{line})
	require.NoError(t, err)
	return o
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	store := newTestStore(t, path)
	ctx := context.Background()

	o := testPendingOffer(t)
	require.NoError(t, store.Put(ctx, o))

	got, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.CustomerNumber, got.CustomerNumber)
	assert.True(t, o.TotalAmount.Equal(got.TotalAmount))

	// The backing file exists after the first write.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestStoreGet_NotFound(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "pending.json"))

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, offer.ErrNotFound)
}

func TestStoreGet_ReturnsCopy(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "pending.json"))
	ctx := context.Background()

	o := testPendingOffer(t)
	require.NoError(t, store.Put(ctx, o))

	first, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	first.CustomerName = "Mutated"
	first.Lines[0].ProductCode = "HACKED"

	second, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Oy", second.CustomerName)
	assert.Equal(t, "PROD-001", second.Lines[0].ProductCode)
}

func TestStoreListOrder(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "pending.json"))
	ctx := context.Background()

	first := testPendingOffer(t)
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	second := testPendingOffer(t)
	second.CreatedAt = time.Now().Add(-1 * time.Hour)

	// Insert newest first to prove List sorts.
	require.NoError(t, store.Put(ctx, second))
	require.NoError(t, store.Put(ctx, first))

	offers, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, first.ID, offers[0].ID)
	assert.Equal(t, second.ID, offers[1].ID)
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "pending.json"))
	ctx := context.Background()

	o := testPendingOffer(t)
	require.NoError(t, store.Put(ctx, o))
	require.NoError(t, store.Delete(ctx, o.ID))

	_, err := store.Get(ctx, o.ID)
	assert.ErrorIs(t, err, offer.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, o.ID), offer.ErrNotFound)
}

func TestStoreSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	ctx := context.Background()

	store := newTestStore(t, path)
	o := testPendingOffer(t)
	require.NoError(t, store.Put(ctx, o))
	require.NoError(t, store.Close())

	reopened := newTestStore(t, path)
	got, err := reopened.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Status, got.Status)
	assert.True(t, o.NetTotal.Equal(got.NetTotal))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "PROD-001", got.Lines[0].ProductCode)
}

func TestStoreDropsExpiredOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	ctx := context.Background()

	store := newTestStore(t, path)
	fresh := testPendingOffer(t)
	stale := testPendingOffer(t)
	stale.CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, store.Put(ctx, fresh))
	require.NoError(t, store.Put(ctx, stale))
	require.NoError(t, store.Close())

	reopened := newTestStore(t, path)
	offers, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, fresh.ID, offers[0].ID)
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(config.StoreConfig{
		FilePath:        path,
		Retention:       time.Hour,
		CleanupInterval: time.Hour,
	}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestTransitionStatus(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "pending.json"))
	ctx := context.Background()

	o := testPendingOffer(t)
	require.NoError(t, store.Put(ctx, o))

	moved, err := store.TransitionStatus(ctx, o.ID, offer.StatusPendingReview, offer.StatusSubmitting)
	require.NoError(t, err)
	assert.Equal(t, offer.StatusSubmitting, moved.Status)

	// A second caller still expecting pending_review loses the race.
	_, err = store.TransitionStatus(ctx, o.ID, offer.StatusPendingReview, offer.StatusSubmitting)
	assert.ErrorIs(t, err, offer.ErrStatusConflict)
}

func TestTransitionStatus_InvalidTransition(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "pending.json"))
	ctx := context.Background()

	o := testPendingOffer(t)
	require.NoError(t, store.Put(ctx, o))

	_, err := store.TransitionStatus(ctx, o.ID, offer.StatusPendingReview, offer.StatusVerified)
	assert.ErrorIs(t, err, offer.ErrInvalidTransition)
}

func TestTransitionStatus_ExactlyOneWinner(t *testing.T) {
	store := newTestStore(t, filepath.Join(t.TempDir(), "pending.json"))
	ctx := context.Background()

	o := testPendingOffer(t)
	require.NoError(t, store.Put(ctx, o))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.TransitionStatus(ctx, o.ID,
				offer.StatusPendingReview, offer.StatusSubmitting)
		}()
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, offer.ErrStatusConflict)
		}
	}
	assert.Equal(t, 1, winners)
}
