// Package reconcile verifies ledger integrity invariants by replaying every
// account stream from the event store.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayo6706/bank-transfer-saga/internal/account"
	"github.com/ayo6706/bank-transfer-saga/internal/aggregate"
	"github.com/ayo6706/bank-transfer-saga/internal/eventstore"
	"github.com/ayo6706/bank-transfer-saga/internal/observability"
	"github.com/ayo6706/bank-transfer-saga/internal/saga"
	"go.uber.org/zap"
)

// Checker sweeps all account streams and reports invariant violations. It
// observes only; in-flight transfers are counted, never forced.
type Checker struct {
	store    eventstore.Store
	accounts *aggregate.Repository[*account.Account]
	sagas    saga.StateStore
}

func NewChecker(store eventstore.Store, accounts *aggregate.Repository[*account.Account], sagas saga.StateStore) *Checker {
	return &Checker{store: store, accounts: accounts, sagas: sagas}
}

// Report summarizes one reconciliation sweep.
type Report struct {
	Accounts   int
	Breaches   int
	NetBalance int64
	InFlight   int64
}

// Run replays every account and checks balance >= -overdraftLimit. A breach
// can only come from store corruption or a bug in the debit path, so it is
// reported loudly rather than repaired.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	streamIDs, err := c.store.StreamIDs(ctx, account.StreamPrefix)
	if err != nil {
		return Report{}, fmt.Errorf("list account streams: %w", err)
	}

	report := Report{Accounts: len(streamIDs)}
	for _, streamID := range streamIDs {
		id := strings.TrimPrefix(streamID, account.StreamPrefix)
		acc, _, err := c.accounts.Load(ctx, id)
		if err != nil {
			return report, fmt.Errorf("replay account %s: %w", id, err)
		}
		report.NetBalance += acc.Balance
		if acc.Balance < -acc.OverdraftLimit {
			report.Breaches++
			observability.IncrementOverdraftBreach(acc.ID)
			zap.L().Error("CRITICAL: account below overdraft limit",
				zap.String("account_id", acc.ID),
				zap.Int64("balance_cents", acc.Balance),
				zap.Int64("overdraft_limit_cents", acc.OverdraftLimit))
		}
	}

	report.InFlight, err = c.sagas.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("count in-flight transfers: %w", err)
	}

	if report.Breaches == 0 {
		zap.L().Info("ledger reconciled",
			zap.Int("accounts", report.Accounts),
			zap.Int64("net_balance_cents", report.NetBalance),
			zap.Int64("transfers_in_flight", report.InFlight))
	}
	return report, nil
}
