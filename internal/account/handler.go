package account

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
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
)

// Handler executes account commands. Each handler validates, then emits zero
// or one events; state is never mutated directly, only rebuilt by replay.
type Handler struct {
	repo *aggregate.Repository[*Account]
}

func NewHandler(store eventstore.Store) *Handler {
	return &Handler{repo: aggregate.NewRepository(store, StreamPrefix, New)}
}

// Repository exposes the account repository to the query side and workers.
func (h *Handler) Repository() *aggregate.Repository[*Account] { return h.repo }

// Register binds every account command to its handler on the bus.
func (h *Handler) Register(commands *bus.CommandBus) {
	commands.Register(domain.CmdCreateAccount, h.handleCreate)
	commands.Register(domain.CmdDepositMoney, h.handleDeposit)
	commands.Register(domain.CmdWithdrawMoney, h.handleWithdraw)
	commands.Register(domain.CmdDebitSource, h.handleDebitSource)
	commands.Register(domain.CmdCreditDestination, h.handleCreditDestination)
	commands.Register(domain.CmdReturnTransferFunds, h.handleReturnFunds)
}

func (h *Handler) handleCreate(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.CreateAccount)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	if cmd.AccountID == "" {
		return nil, errors.New("account id is required")
	}
	if cmd.OverdraftLimit < 0 {
		return nil, fmt.Errorf("invalid overdraft limit: %d", cmd.OverdraftLimit)
	}

	_, version, err := h.repo.Load(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if version > 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, cmd.AccountID)
	}

	events := []domain.Event{domain.AccountCreated{
		AccountID:      cmd.AccountID,
		OverdraftLimit: cmd.OverdraftLimit,
	}}
	if _, err := h.repo.Append(ctx, cmd.AccountID, version, events...); err != nil {
		return nil, err
	}
	return events, nil
}

func (h *Handler) handleDeposit(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.DepositMoney)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	if err := domain.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	acc, version, err := h.repo.Load(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, cmd.AccountID)
	}

	events := []domain.Event{domain.MoneyDeposited{AccountID: cmd.AccountID, Amount: cmd.Amount}}
	if _, err := h.repo.Append(ctx, cmd.AccountID, version, events...); err != nil {
		return nil, err
	}
	return events, nil
}

// handleWithdraw is the local, non-transfer withdrawal. A withdrawal beyond
// the overdraft limit is a silent no-op: no event, no error. There is no
// compensating caller on this path.
func (h *Handler) handleWithdraw(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.WithdrawMoney)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	if err := domain.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	acc, version, err := h.repo.Load(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, cmd.AccountID)
	}
	if !acc.CanCover(cmd.Amount) {
		return nil, nil
	}

	events := []domain.Event{domain.MoneyWithdrawn{AccountID: cmd.AccountID, Amount: cmd.Amount}}
	if _, err := h.repo.Append(ctx, cmd.AccountID, version, events...); err != nil {
		return nil, err
	}
	return events, nil
}

// handleDebitSource is the transfer debit leg. Unlike handleWithdraw, a
// refused debit emits SourceDebitRejected so the coordinator can observe the
// outcome asynchronously. A missing account becomes a bus-only SourceNotFound
// event; there is no stream to attach it to.
func (h *Handler) handleDebitSource(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.DebitSource)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	if err := domain.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	acc, version, err := h.repo.Load(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.Exists() {
		return []domain.Event{domain.SourceNotFound{
			AccountID:  cmd.AccountID,
			TransferID: cmd.TransferID,
		}}, nil
	}

	var events []domain.Event
	if acc.CanCover(cmd.Amount) {
		events = []domain.Event{domain.SourceDebited{
			AccountID:  cmd.AccountID,
			Amount:     cmd.Amount,
			TransferID: cmd.TransferID,
		}}
	} else {
		events = []domain.Event{domain.SourceDebitRejected{TransferID: cmd.TransferID}}
	}
	if _, err := h.repo.Append(ctx, cmd.AccountID, version, events...); err != nil {
		return nil, err
	}
	return events, nil
}

// handleCreditDestination is the transfer credit leg. The destination side
// never rejects: the overdraft check applies only to debits.
func (h *Handler) handleCreditDestination(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.CreditDestination)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	if err := domain.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	acc, version, err := h.repo.Load(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.Exists() {
		return []domain.Event{domain.DestinationNotFound{
			AccountID:  cmd.AccountID,
			TransferID: cmd.TransferID,
		}}, nil
	}

	events := []domain.Event{domain.DestinationCredited{
		AccountID:  cmd.AccountID,
		Amount:     cmd.Amount,
		TransferID: cmd.TransferID,
	}}
	if _, err := h.repo.Append(ctx, cmd.AccountID, version, events...); err != nil {
		return nil, err
	}
	return events, nil
}

// handleReturnFunds repays a debited amount after a failed transfer. The
// money was already taken from this account, so there is no rejection path.
func (h *Handler) handleReturnFunds(ctx context.Context, c domain.Command) ([]domain.Event, error) {
	cmd, ok := c.(domain.ReturnTransferFunds)
	if !ok {
		return nil, fmt.Errorf("unexpected command type %T", c)
	}
	if err := domain.ValidateAmount(cmd.Amount); err != nil {
		return nil, err
	}

	acc, version, err := h.repo.Load(ctx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if !acc.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, cmd.AccountID)
	}

	events := []domain.Event{domain.TransferFundsReturned{AccountID: cmd.AccountID, Amount: cmd.Amount}}
	if _, err := h.repo.Append(ctx, cmd.AccountID, version, events...); err != nil {
		return nil, err
	}
	return events, nil
}
