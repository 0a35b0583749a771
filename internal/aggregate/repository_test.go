package aggregate

import (
	"context"
	"testing"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/eventstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// balance is a minimal aggregate for exercising the repository fold.
type balance struct {
	total int64
}

func (b *balance) Apply(evt domain.Event) {
	movement, ok := evt.(domain.MoneyMovement)
	if !ok {
		return
	}
	switch movement.MovementPolarity() {
	case domain.PolarityIncrease:
		b.total += movement.MovementAmount()
	case domain.PolarityDecrease:
		b.total -= movement.MovementAmount()
	}
}

func TestRepositoryLoadReplaysInOrder(t *testing.T) {
	store := eventstore.NewMemoryStore()
	repo := NewRepository(store, "balance-", func() *balance { return &balance{} })
	ctx := context.Background()

	_, err := repo.Append(ctx, "b1", 0,
		domain.MoneyDeposited{AccountID: "b1", Amount: 100},
		domain.MoneyWithdrawn{AccountID: "b1", Amount: 30},
		domain.MoneyDeposited{AccountID: "b1", Amount: 5},
	)
	require.NoError(t, err)

	agg, version, err := repo.Load(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)
	assert.Equal(t, int64(75), agg.total)
}

func TestRepositoryLoadMissing(t *testing.T) {
	store := eventstore.NewMemoryStore()
	repo := NewRepository(store, "balance-", func() *balance { return &balance{} })

	agg, version, err := repo.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	assert.Equal(t, int64(0), agg.total)
}

func TestRepositoryAppendStaleVersion(t *testing.T) {
	store := eventstore.NewMemoryStore()
	repo := NewRepository(store, "balance-", func() *balance { return &balance{} })
	ctx := context.Background()

	_, err := repo.Append(ctx, "b1", 0, domain.MoneyDeposited{AccountID: "b1", Amount: 1})
	require.NoError(t, err)

	_, err = repo.Append(ctx, "b1", 0, domain.MoneyDeposited{AccountID: "b1", Amount: 1})
	assert.ErrorIs(t, err, eventstore.ErrConcurrencyConflict)
}

func TestRepositoryStreamID(t *testing.T) {
	repo := NewRepository(eventstore.NewMemoryStore(), "balance-", func() *balance { return &balance{} })

	assert.Equal(t, "balance-", repo.StreamPrefix())
	assert.Equal(t, "balance-b1", repo.StreamID("b1"))
}
