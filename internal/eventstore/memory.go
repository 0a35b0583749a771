package eventstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
)

// MemoryStore is an in-process Store used by tests and local runs without a
// database. Appends to the same stream are serialized by the mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]Envelope
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{streams: make(map[string][]Envelope)}
}

func (s *MemoryStore) Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) ([]Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(len(s.streams[streamID]))
	if current != expectedVersion {
		return nil, ErrConcurrencyConflict
	}

	envelopes, err := encode(streamID, current, events, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.streams[streamID] = append(s.streams[streamID], envelopes...)
	return envelopes, nil
}

func (s *MemoryStore) Load(ctx context.Context, streamID string) ([]Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.streams[streamID]
	out := make([]Envelope, len(stream))
	copy(out, stream)
	return out, nil
}

func (s *MemoryStore) StreamIDs(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.streams))
	for id := range s.streams {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
