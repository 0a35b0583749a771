// Package transfer implements the transfer record aggregate: the declared
// intent and terminal status of one transfer. It is bookkeeping the
// coordinator drives, not a decision-maker.
package transfer

import (
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
)

// StreamPrefix namespaces transfer streams in the event store.
const StreamPrefix = "transfer-"

// Transfer statuses. STARTED is initial; COMPLETED and FAILED are terminal
// and mutually exclusive.
const (
	StatusStarted   = "STARTED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Transfer is the replayed state of one transfer record.
type Transfer struct {
	TransferID           string
	SourceAccountID      string
	DestinationAccountID string
	Amount               int64
	Status               string
}

func New() *Transfer { return &Transfer{} }

// Exists reports whether any history was replayed into this state.
func (t *Transfer) Exists() bool { return t.TransferID != "" }

// Terminal reports whether the record has reached COMPLETED or FAILED.
func (t *Transfer) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// Apply folds one event into the transfer state.
func (t *Transfer) Apply(evt domain.Event) {
	switch e := evt.(type) {
	case *domain.TransferCreated:
		t.applyCreated(*e)
	case domain.TransferCreated:
		t.applyCreated(e)
	case *domain.TransferCompleted, domain.TransferCompleted:
		t.Status = StatusCompleted
	case *domain.TransferFailed, domain.TransferFailed:
		t.Status = StatusFailed
	}
}

func (t *Transfer) applyCreated(e domain.TransferCreated) {
	t.TransferID = e.TransferID
	t.SourceAccountID = e.SourceAccountID
	t.DestinationAccountID = e.DestinationAccountID
	t.Amount = e.Amount
	t.Status = StatusStarted
}
