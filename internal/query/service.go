// Package query serves the read side: views rebuilt by replaying event
// streams, never by caching mutable state.
package query

import (
	"context"
	"fmt"

	"github.com/ayo6706/bank-transfer-saga/internal/account"
	"github.com/ayo6706/bank-transfer-saga/internal/aggregate"
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/transfer"
)

// AccountView is the balance snapshot returned to API callers.
type AccountView struct {
	ID             string `json:"id"`
	BalanceCents   int64  `json:"balance_cents"`
	Balance        string `json:"balance"`
	OverdraftLimit int64  `json:"overdraft_limit_cents"`
}

// TransferView is the status snapshot of one transfer record.
type TransferView struct {
	TransferID           string `json:"transfer_id"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	AmountCents          int64  `json:"amount_cents"`
	Amount               string `json:"amount"`
	Status               string `json:"status"`
}

// Service answers reads against both aggregate kinds.
type Service struct {
	accounts  *aggregate.Repository[*account.Account]
	transfers *aggregate.Repository[*transfer.Transfer]
}

func NewService(accounts *aggregate.Repository[*account.Account], transfers *aggregate.Repository[*transfer.Transfer]) *Service {
	return &Service{accounts: accounts, transfers: transfers}
}

// Account replays one account stream into a view.
func (s *Service) Account(ctx context.Context, id string) (*AccountView, error) {
	acc, _, err := s.accounts.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", id, err)
	}
	if !acc.Exists() {
		return nil, fmt.Errorf("%w: %s", account.ErrAccountNotFound, id)
	}
	return &AccountView{
		ID:             acc.ID,
		BalanceCents:   acc.Balance,
		Balance:        domain.FormatCents(acc.Balance),
		OverdraftLimit: acc.OverdraftLimit,
	}, nil
}

// Transfer replays one transfer stream into a view. Callers poll this to
// learn a transfer's outcome; the saga itself never answers synchronously.
func (s *Service) Transfer(ctx context.Context, id string) (*TransferView, error) {
	rec, _, err := s.transfers.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load transfer %s: %w", id, err)
	}
	if !rec.Exists() {
		return nil, fmt.Errorf("%w: %s", transfer.ErrTransferNotFound, id)
	}
	return &TransferView{
		TransferID:           rec.TransferID,
		SourceAccountID:      rec.SourceAccountID,
		DestinationAccountID: rec.DestinationAccountID,
		AmountCents:          rec.Amount,
		Amount:               domain.FormatCents(rec.Amount),
		Status:               rec.Status,
	}, nil
}
