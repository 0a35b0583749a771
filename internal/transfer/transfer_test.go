package transfer

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
	commands := bus.NewCommandBus(bus.NewEventBus())
	handler := NewHandler(eventstore.NewMemoryStore())
	handler.Register(commands)
	return commands, handler
}

func createTransfer(t *testing.T, commands *bus.CommandBus, id string) {
	t.Helper()
	require.NoError(t, commands.Dispatch(context.Background(), domain.CreateTransfer{
		TransferID:           id,
		SourceAccountID:      "a1",
		DestinationAccountID: "a2",
		Amount:               100,
	}))
}

func loadTransfer(t *testing.T, h *Handler, id string) *Transfer {
	t.Helper()
	rec, _, err := h.Repository().Load(context.Background(), id)
	require.NoError(t, err)
	return rec
}

func TestCreateTransferStartsStarted(t *testing.T) {
	commands, handler := newTestBus(t)

	createTransfer(t, commands, "t1")

	rec := loadTransfer(t, handler, "t1")
	assert.Equal(t, StatusStarted, rec.Status)
	assert.Equal(t, "a1", rec.SourceAccountID)
	assert.Equal(t, "a2", rec.DestinationAccountID)
	assert.Equal(t, int64(100), rec.Amount)
	assert.False(t, rec.Terminal())
}

func TestCreateTransferDuplicate(t *testing.T) {
	commands, _ := newTestBus(t)

	createTransfer(t, commands, "t1")

	err := commands.Dispatch(context.Background(), domain.CreateTransfer{
		TransferID:           "t1",
		SourceAccountID:      "a1",
		DestinationAccountID: "a2",
		Amount:               100,
	})
	assert.ErrorIs(t, err, ErrTransferExists)
}

func TestCreateTransferValidation(t *testing.T) {
	commands, _ := newTestBus(t)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  domain.CreateTransfer
	}{
		{"missing id", domain.CreateTransfer{SourceAccountID: "a1", DestinationAccountID: "a2", Amount: 1}},
		{"zero amount", domain.CreateTransfer{TransferID: "t1", SourceAccountID: "a1", DestinationAccountID: "a2"}},
		{"negative amount", domain.CreateTransfer{TransferID: "t1", SourceAccountID: "a1", DestinationAccountID: "a2", Amount: -1}},
		{"missing source", domain.CreateTransfer{TransferID: "t1", DestinationAccountID: "a2", Amount: 1}},
		{"missing destination", domain.CreateTransfer{TransferID: "t1", SourceAccountID: "a1", Amount: 1}},
		{"same account", domain.CreateTransfer{TransferID: "t1", SourceAccountID: "a1", DestinationAccountID: "a1", Amount: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, commands.Dispatch(ctx, tc.cmd))
		})
	}
}

func TestMarkCompleted(t *testing.T) {
	commands, handler := newTestBus(t)

	createTransfer(t, commands, "t1")
	require.NoError(t, commands.Dispatch(context.Background(), domain.MarkTransferCompleted{TransferID: "t1"}))

	rec := loadTransfer(t, handler, "t1")
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.True(t, rec.Terminal())
}

func TestMarkFailed(t *testing.T) {
	commands, handler := newTestBus(t)

	createTransfer(t, commands, "t1")
	require.NoError(t, commands.Dispatch(context.Background(), domain.MarkTransferFailed{TransferID: "t1"}))

	assert.Equal(t, StatusFailed, loadTransfer(t, handler, "t1").Status)
}

// Re-marking a terminal record must not error and must not flip the status:
// the coordinator redelivers under at-least-once semantics.
func TestMarkIsIdempotentOnceTerminal(t *testing.T) {
	commands, handler := newTestBus(t)
	ctx := context.Background()

	createTransfer(t, commands, "t1")
	require.NoError(t, commands.Dispatch(ctx, domain.MarkTransferCompleted{TransferID: "t1"}))

	require.NoError(t, commands.Dispatch(ctx, domain.MarkTransferCompleted{TransferID: "t1"}))
	require.NoError(t, commands.Dispatch(ctx, domain.MarkTransferFailed{TransferID: "t1"}))

	rec, version, err := handler.Repository().Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, int64(2), version) // created + completed, nothing after
}

func TestMarkMissingTransfer(t *testing.T) {
	commands, _ := newTestBus(t)

	err := commands.Dispatch(context.Background(), domain.MarkTransferCompleted{TransferID: "ghost"})
	assert.ErrorIs(t, err, ErrTransferNotFound)
}
