package aggregate

import (
	"context"
	"fmt"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/eventstore"
)

// Root is event-sourced aggregate state. Apply folds one event into the
// state; it must be total: events it does not care about are ignored.
type Root interface {
	Apply(evt domain.Event)
}

// Replay folds a recorded stream into agg in emission order.
func Replay[T Root](agg T, envelopes []eventstore.Envelope) error {
	for _, env := range envelopes {
		evt, err := env.Decode()
		if err != nil {
			return fmt.Errorf("replay %s: %w", env.StreamID, err)
		}
		agg.Apply(evt)
	}
	return nil
}

// Repository loads and appends one aggregate kind. The stream id is the
// aggregate id under a per-kind prefix, e.g. "account-" + id.
type Repository[T Root] struct {
	store   eventstore.Store
	prefix  string
	factory func() T
}

func NewRepository[T Root](store eventstore.Store, streamPrefix string, factory func() T) *Repository[T] {
	return &Repository[T]{store: store, prefix: streamPrefix, factory: factory}
}

// StreamPrefix returns the prefix shared by all streams of this kind.
func (r *Repository[T]) StreamPrefix() string { return r.prefix }

// StreamID returns the stream id for one aggregate instance.
func (r *Repository[T]) StreamID(id string) string { return r.prefix + id }

// Load rebuilds the aggregate with the given id by replaying its stream.
// A version of 0 means no history exists for the id.
func (r *Repository[T]) Load(ctx context.Context, id string) (T, int64, error) {
	agg := r.factory()
	envelopes, err := r.store.Load(ctx, r.StreamID(id))
	if err != nil {
		return agg, 0, err
	}
	if err := Replay(agg, envelopes); err != nil {
		return agg, 0, err
	}
	return agg, int64(len(envelopes)), nil
}

// Append durably records events for the aggregate at expectedVersion and
// returns the envelopes for publication.
func (r *Repository[T]) Append(ctx context.Context, id string, expectedVersion int64, events ...domain.Event) ([]eventstore.Envelope, error) {
	if len(events) == 0 {
		return nil, nil
	}
	return r.store.Append(ctx, r.StreamID(id), expectedVersion, events)
}
