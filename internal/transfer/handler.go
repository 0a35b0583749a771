package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayo6706/bank-transfer-saga/internal/aggregate"
	"github.com/ayo6706/bank-transfer-saga/internal/bus"
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/eventstore"
)

var (
	ErrTransferExists   = errors.New("transfer already exists")
	ErrTransferNotFound = errors.New("transfer not found")
)

// Handler executes transfer record commands.
type Handler struct {
	repo *aggregate.Repository[*Transfer]
}

func NewHandler(store eventstore.Store) *Handler {
	return &Handler{repo: aggregate.NewRepository(store, StreamPrefix, New)}
}

// Repository exposes the transfer repository to the query side.
func (h *Handler) Repository() *aggregate.Repository[*Transfer] { return h.repo }

// Register binds every transfer command to its handler on the bus.
func (h *Handler) Register(commands *bus.CommandBus) {
	commands.Register(domain.CmdCreateTransfer, h.handleCreate)
	commands.Register(domain.CmdMarkTransferCompleted, h.handleMarkCompleted)
	commands.Register(domain.CmdMarkTransferFailed, h.handleMarkFailed)
}

func (h *Handler) handleCreate(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.CreateTransfer)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	if cmd.TransferID == "" {
		return nil, errors.New("transfer id is required")
	}
	if err := domain.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}
	if cmd.SourceAccountID == "" || cmd.DestinationAccountID == "" {
		return nil, errors.New("source and destination account ids are required")
	}
	if cmd.SourceAccountID == cmd.DestinationAccountID {
		return nil, errors.New("cannot transfer to the same account")
	}

	_, version, err := h.repo.Load(ctx, cmd.TransferID)
	if err != nil {
		return nil, err
	}
	if version > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTransferExists, cmd.TransferID)
	}

	events := []domain.Event{domain.TransferCreated{
		TransferID:           cmd.TransferID,
		SourceAccountID:      cmd.SourceAccountID,
		DestinationAccountID: cmd.DestinationAccountID,
		Amount:               cmd.Amount,
	}}
	if _, err := h.repo.Append(ctx, cmd.TransferID, version, events...); err != nil {
		return nil, err
	}
	return events, nil
}

// handleMarkCompleted transitions STARTED -> COMPLETED. Marking a record that
// already left STARTED is a no-op: the coordinator may redeliver under
// at-least-once semantics and must not see an error for it.
func (h *Handler) handleMarkCompleted(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.MarkTransferCompleted)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	return h.mark(ctx, cmd.TransferID, domain.TransferCompleted{TransferID: cmd.TransferID})
}

// handleMarkFailed transitions STARTED -> FAILED, same contract as
// handleMarkCompleted.
func (h *Handler) handleMarkFailed(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.MarkTransferFailed)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	return h.mark(ctx, cmd.TransferID, domain.TransferFailed{TransferID: cmd.TransferID})
}

func (h *Handler) mark(ctx context.Context, transferID string, evt domain.Event) ([]domain.Event, error) {
	rec, version, err := h.repo.Load(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if !rec.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrTransferNotFound, transferID)
	}
	if rec.Status != StatusStarted {
		return nil, nil
	}
	if _, err := h.repo.Append(ctx, transferID, version, evt); err != nil {
		return nil, err
	}
	return []domain.Event{evt}, nil
}
