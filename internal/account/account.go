// Package account implements the event-sourced ledger account aggregate: one
// account's balance and overdraft limit, rebuilt by folding its own history.
package account

import (
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
)

// StreamPrefix namespaces account streams in the event store.
const StreamPrefix = "account-"

// Account is the replayed state of one ledger account. The invariant held at
// all times is Balance >= -OverdraftLimit; only debit-polarity commands are
// checked against it, never credits.
type Account struct {
	ID             string
	OverdraftLimit int64
	Balance        int64
}

func New() *Account { return &Account{} }

// Exists reports whether any history was replayed into this state.
func (a *Account) Exists() bool { return a.ID != "" }

// CanCover reports whether a decrease of amount keeps the balance within the
// overdraft limit.
func (a *Account) CanCover(amount int64) bool {
	return amount <= a.Balance+a.OverdraftLimit
}

// Apply folds one event into the account state. Money movements are handled
// generically by polarity; signal events fall through with no effect.
func (a *Account) Apply(evt domain.Event) {
	switch created := evt.(type) {
	case *domain.AccountCreated:
		a.ID = created.AccountID
		a.OverdraftLimit = created.OverdraftLimit
		a.Balance = 0
		return
	case domain.AccountCreated:
		a.ID = created.AccountID
		a.OverdraftLimit = created.OverdraftLimit
		a.Balance = 0
		return
	}
	movement, ok := evt.(domain.MoneyMovement)
	if !ok {
		return
	}
	switch movement.MovementPolarity() {
	case domain.PolarityIncrease:
		a.Balance += movement.MovementAmount()
	case domain.PolarityDecrease:
		a.Balance -= movement.MovementAmount()
	}
}
