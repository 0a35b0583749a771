package reconcile

import (
	"context"
	"testing"

	"github.com/ayo6706/bank-transfer-saga/internal/account"
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/eventstore"
	"github.com/ayo6706/bank-transfer-saga/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, store eventstore.Store, id string, overdraft int64, movements ...domain.Event) {
	t.Helper()
	events := append([]domain.Event{domain.AccountCreated{AccountID: id, OverdraftLimit: overdraft}}, movements...)
	_, err := store.Append(context.Background(), account.StreamPrefix+id, 0, events)
	require.NoError(t, err)
}

func TestRunCleanLedger(t *testing.T) {
	store := eventstore.NewMemoryStore()
	seedAccount(t, store, "a1", 0, domain.MoneyDeposited{AccountID: "a1", Amount: 100})
	seedAccount(t, store, "a2", 500, domain.MoneyWithdrawn{AccountID: "a2", Amount: 200})

	checker := NewChecker(store, account.NewHandler(store).Repository(), saga.NewMemoryStateStore())

	report, err := checker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accounts)
	assert.Zero(t, report.Breaches)
	assert.Equal(t, int64(-100), report.NetBalance)
	assert.Zero(t, report.InFlight)
}

// A stream whose fold lands below the overdraft limit can only mean corrupt
// history or a bug in the debit path. The checker reports it, never repairs.
func TestRunDetectsOverdraftBreach(t *testing.T) {
	store := eventstore.NewMemoryStore()
	seedAccount(t, store, "a1", 100,
		domain.MoneyWithdrawn{AccountID: "a1", Amount: 80},
		domain.MoneyWithdrawn{AccountID: "a1", Amount: 80},
	)

	checker := NewChecker(store, account.NewHandler(store).Repository(), saga.NewMemoryStateStore())

	report, err := checker.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Accounts)
	assert.Equal(t, 1, report.Breaches)
	assert.Equal(t, int64(-160), report.NetBalance)
}

func TestRunCountsInFlightTransfers(t *testing.T) {
	store := eventstore.NewMemoryStore()
	states := saga.NewMemoryStateStore()
	ctx := context.Background()
	require.NoError(t, states.Put(ctx, &saga.State{TransferID: "t1", Phase: saga.PhaseAwaitingCredit}))

	checker := NewChecker(store, account.NewHandler(store).Repository(), states)

	report, err := checker.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Accounts)
	assert.Equal(t, int64(1), report.InFlight)
}
