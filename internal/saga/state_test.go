package saga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore(t *testing.T) {
	store := NewMemoryStateStore()
	ctx := context.Background()

	got, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	state := &State{TransferID: "t1", Phase: PhaseAwaitingDebit, SourceAccountID: "a1", DestinationAccountID: "a2", Amount: 10}
	require.NoError(t, store.Put(ctx, state))

	got, err = store.Get(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *state, *got)

	// Mutating the returned copy must not leak into the store.
	got.Phase = PhaseAwaitingCredit
	again, err := store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, PhaseAwaitingDebit, again.Phase)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, store.Delete(ctx, "t1"))
	got, err = store.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, got)

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteAbsentStateIsNoop(t *testing.T) {
	store := NewMemoryStateStore()
	assert.NoError(t, store.Delete(context.Background(), "ghost"))
}
