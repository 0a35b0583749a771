package account

import (
	"context"
	"testing"

	"github.com/ayo6706/bank-transfer-saga/internal/bus"
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/eventstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) (*bus.CommandBus, *Handler) {
	t.Helper()
	store := eventstore.NewMemoryStore()
	commands := bus.NewCommandBus(bus.NewEventBus())
	handler := NewHandler(store)
	handler.Register(commands)
	return commands, handler
}

func loadAccount(t *testing.T, h *Handler, id string) *Account {
	t.Helper()
	acc, _, err := h.Repository().Load(context.Background(), id)
	require.NoError(t, err)
	return acc
}

func TestCreateAccount(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	err := commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1", OverdraftLimit: 500})
	require.NoError(t, err)

	acc := loadAccount(t, handler, "a1")
	assert.True(t, acc.Exists())
	assert.Equal(t, int64(0), acc.Balance)
	assert.Equal(t, int64(500), acc.OverdraftLimit)
}

func TestCreateAccountDuplicate(t *testing.T) {
	commands, _ := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))

	err := commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestCreateAccountValidation(t *testing.T) {
	commands, _ := newTestBus(t)
	ctx := context.Background()

	assert.Error(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: ""}))
	assert.Error(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1", OverdraftLimit: -1}))
}

func TestDepositAndWithdraw(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))
	require.NoError(t, commands.Dispatch(ctx, domain.DepositMoney{AccountID: "a1", Amount: 100}))
	require.NoError(t, commands.Dispatch(ctx, domain.WithdrawMoney{AccountID: "a1", Amount: 40}))

	assert.Equal(t, int64(60), loadAccount(t, handler, "a1").Balance)
}

// A withdrawal past the overdraft limit succeeds as a command but records
// nothing: the balance is unchanged and the stream gains no event.
func TestWithdrawBeyondLimitIsSilentNoop(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))
	require.NoError(t, commands.Dispatch(ctx, domain.DepositMoney{AccountID: "a1", Amount: 100}))

	err := commands.Dispatch(ctx, domain.WithdrawMoney{AccountID: "a1", Amount: 150})
	require.NoError(t, err)

	acc, version, err := handler.Repository().Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), acc.Balance)
	assert.Equal(t, int64(2), version) // created + deposited only
}

func TestWithdrawWithinOverdraft(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1", OverdraftLimit: 500}))
	require.NoError(t, commands.Dispatch(ctx, domain.WithdrawMoney{AccountID: "a1", Amount: 300}))

	assert.Equal(t, int64(-300), loadAccount(t, handler, "a1").Balance)
}

func TestDepositMissingAccount(t *testing.T) {
	commands, _ := newTestBus(t)

	err := commands.Dispatch(context.Background(), domain.DepositMoney{AccountID: "ghost", Amount: 10})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestDebitSourceEmitsDebited(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))
	require.NoError(t, commands.Dispatch(ctx, domain.DepositMoney{AccountID: "a1", Amount: 100}))
	require.NoError(t, commands.Dispatch(ctx, domain.DebitSource{AccountID: "a1", TransferID: "t1", Amount: 60}))

	assert.Equal(t, int64(40), loadAccount(t, handler, "a1").Balance)
}

// A refused debit leaves the balance alone but, unlike a local withdrawal,
// records the rejection so the coordinator can observe it.
func TestDebitSourceRejectedIsRecorded(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))
	require.NoError(t, commands.Dispatch(ctx, domain.DepositMoney{AccountID: "a1", Amount: 50}))
	require.NoError(t, commands.Dispatch(ctx, domain.DebitSource{AccountID: "a1", TransferID: "t1", Amount: 80}))

	acc, version, err := handler.Repository().Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), acc.Balance)
	assert.Equal(t, int64(3), version) // created + deposited + rejection
}

func TestDebitMissingSourcePublishesNotFound(t *testing.T) {
	store := eventstore.NewMemoryStore()
	events := bus.NewEventBus()
	commands := bus.NewCommandBus(events)
	NewHandler(store).Register(commands)

	var published []domain.Event
	events.Subscribe(func(ctx context.Context, evt domain.Event) {
		published = append(published, evt)
	}, domain.EventSourceNotFound)

	err := commands.Dispatch(context.Background(), domain.DebitSource{AccountID: "ghost", TransferID: "t1", Amount: 10})
	require.NoError(t, err)

	require.Len(t, published, 1)
	notFound, ok := published[0].(domain.SourceNotFound)
	require.True(t, ok)
	assert.Equal(t, "t1", notFound.TransferID)

	// Nothing appended: the event exists only on the bus.
	ids, err := store.StreamIDs(context.Background(), StreamPrefix)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// The destination leg never rejects, even deep in overdraft territory.
func TestCreditDestinationIsUnconditional(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))
	require.NoError(t, commands.Dispatch(ctx, domain.CreditDestination{AccountID: "a1", TransferID: "t1", Amount: 1_000_000}))

	assert.Equal(t, int64(1_000_000), loadAccount(t, handler, "a1").Balance)
}

func TestReturnTransferFunds(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))
	require.NoError(t, commands.Dispatch(ctx, domain.DepositMoney{AccountID: "a1", Amount: 100}))
	require.NoError(t, commands.Dispatch(ctx, domain.DebitSource{AccountID: "a1", TransferID: "t1", Amount: 60}))
	require.NoError(t, commands.Dispatch(ctx, domain.ReturnTransferFunds{AccountID: "a1", Amount: 60}))

	assert.Equal(t, int64(100), loadAccount(t, handler, "a1").Balance)
}

func TestAmountValidation(t *testing.T) {
	commands, _ := newTestBus(t)
	ctx := context.Background()

	require.NoError(t, commands.Dispatch(ctx, domain.CreateAccount{AccountID: "a1"}))

	assert.Error(t, commands.Dispatch(ctx, domain.DepositMoney{AccountID: "a1", Amount: 0}))
	assert.Error(t, commands.Dispatch(ctx, domain.WithdrawMoney{AccountID: "a1", Amount: -5}))
}
