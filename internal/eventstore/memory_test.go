package eventstore

import (
	"context"
	"testing"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLoad(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	envelopes, err := store.Append(ctx, "account-a1", 0, []domain.Event{
		domain.AccountCreated{AccountID: "a1", OverdraftLimit: 500},
		domain.MoneyDeposited{AccountID: "a1", Amount: 100},
	})
	require.NoError(t, err)
	require.Len(t, envelopes, 2)
	assert.Equal(t, int64(1), envelopes[0].Version)
	assert.Equal(t, int64(2), envelopes[1].Version)

	loaded, err := store.Load(ctx, "account-a1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	evt, err := loaded[0].Decode()
	require.NoError(t, err)
	created, ok := evt.(*domain.AccountCreated)
	require.True(t, ok)
	assert.Equal(t, "a1", created.AccountID)
	assert.Equal(t, int64(500), created.OverdraftLimit)
}

func TestAppendConcurrencyConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Append(ctx, "account-a1", 0, []domain.Event{
		domain.AccountCreated{AccountID: "a1"},
	})
	require.NoError(t, err)

	// Stale expected version: the stream head is already at 1.
	_, err = store.Append(ctx, "account-a1", 0, []domain.Event{
		domain.MoneyDeposited{AccountID: "a1", Amount: 10},
	})
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestLoadMissingStreamIsEmpty(t *testing.T) {
	store := NewMemoryStore()

	loaded, err := store.Load(context.Background(), "account-nope")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStreamIDsFiltersByPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Append(ctx, "account-a1", 0, []domain.Event{domain.AccountCreated{AccountID: "a1"}})
	require.NoError(t, err)
	_, err = store.Append(ctx, "account-a2", 0, []domain.Event{domain.AccountCreated{AccountID: "a2"}})
	require.NoError(t, err)
	_, err = store.Append(ctx, "transfer-t1", 0, []domain.Event{domain.TransferCreated{TransferID: "t1", SourceAccountID: "a1", DestinationAccountID: "a2", Amount: 5}})
	require.NoError(t, err)

	ids, err := store.StreamIDs(ctx, "account-")
	require.NoError(t, err)
	assert.Equal(t, []string{"account-a1", "account-a2"}, ids)
}

func TestDecodeUnknownEventName(t *testing.T) {
	env := Envelope{StreamID: "account-a1", Version: 1, EventName: "account.telepathy", Payload: []byte(`{}`)}

	_, err := env.Decode()
	assert.Error(t, err)
}
