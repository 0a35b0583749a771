// Package saga implements the transfer coordinator: a process manager keyed
// by transfer id that reacts to account and transfer events and drives each
// transfer to completion or compensated failure.
package saga

import (
	"context"
	"sync"
)

// Phase is the coordinator's position in the transfer protocol. A state row
// exists only between the starting event and the terminal transition.
type Phase string

const (
	PhaseAwaitingDebit  Phase = "AWAITING_DEBIT"
	PhaseAwaitingCredit Phase = "AWAITING_CREDIT"
)

// State is one in-flight coordinator instance. Source, destination and
// amount are captured from the transfer-created event and held only long
// enough to build the follow-up and compensation commands.
type State struct {
	TransferID           string `json:"transfer_id"`
	Phase                Phase  `json:"phase"`
	SourceAccountID      string `json:"source_account_id"`
	DestinationAccountID string `json:"destination_account_id"`
	Amount               int64  `json:"amount"`
}

// StateStore is the persisted keyed state table of coordinator instances.
// Get returns nil for an absent key; absence is how re-deliveries after a
// terminal transition are discarded.
type StateStore interface {
	Get(ctx context.Context, transferID string) (*State, error)
	Put(ctx context.Context, state *State) error
	Delete(ctx context.Context, transferID string) error
	Count(ctx context.Context) (int64, error)
}

// MemoryStateStore keeps coordinator state in process. Used by tests and by
// runs without Redis.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]State)}
}

func (s *MemoryStateStore) Get(ctx context.Context, transferID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[transferID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (s *MemoryStateStore) Put(ctx context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.TransferID] = *state
	return nil
}

func (s *MemoryStateStore) Delete(ctx context.Context, transferID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, transferID)
	return nil
}

func (s *MemoryStateStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.states)), nil
}
