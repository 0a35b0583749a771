package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
)

var (
	// ErrConcurrencyConflict is returned by Append when the caller's expected
	// version no longer matches the head of the stream.
	ErrConcurrencyConflict = errors.New("event stream version conflict")
)

// Envelope is one recorded event: the durable unit of the append-only log.
type Envelope struct {
	StreamID   string    `json:"stream_id"`
	Version    int64     `json:"version"` // 1-based position within the stream
	EventName  string    `json:"event_name"`
	Payload    []byte    `json:"payload"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Decode unmarshals the payload into its registered event type.
func (e Envelope) Decode() (domain.Event, error) {
	evt, ok := domain.NewEvent(e.EventName)
	if !ok {
		return nil, fmt.Errorf("unknown event type %q in stream %s", e.EventName, e.StreamID)
	}
	if err := json.Unmarshal(e.Payload, evt); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", e.EventName, err)
	}
	return evt, nil
}

// Store is the append-only event log. Streams are the sole source of truth:
// no aggregate state survives a restart except what replay rebuilds.
type Store interface {
	// Append atomically appends events after expectedVersion (0 for a new
	// stream) and returns the recorded envelopes in order. It fails with
	// ErrConcurrencyConflict when expectedVersion is stale.
	Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) ([]Envelope, error)
	// Load returns the full stream in emission order. A missing stream is an
	// empty slice, not an error.
	Load(ctx context.Context, streamID string) ([]Envelope, error)
	// StreamIDs lists streams whose id starts with prefix.
	StreamIDs(ctx context.Context, prefix string) ([]string, error)
}

func encode(streamID string, fromVersion int64, events []domain.Event, now time.Time) ([]Envelope, error) {
	envelopes := make([]Envelope, 0, len(events))
	for i, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return nil, fmt.Errorf("encode %s event: %w", evt.EventName(), err)
		}
		envelopes = append(envelopes, Envelope{
			StreamID:   streamID,
			Version:    fromVersion + int64(i) + 1,
			EventName:  evt.EventName(),
			Payload:    payload,
			RecordedAt: now,
		})
	}
	return envelopes, nil
}
