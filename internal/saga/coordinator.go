package saga

import (
	"context"

	"github.com/ayo6706/bank-transfer-saga/internal/bus"
	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/observability"
	"go.uber.org/zap"
)

// Terminal outcomes reported to metrics.
const (
	outcomeCompleted = "DONE_SUCCESS"
	outcomeFailed    = "DONE_FAILED"
)

// Coordinator is the transfer saga. It subscribes to events from both
// aggregate kinds, correlates them by transfer id, and issues follow-up
// commands until the transfer completes or fails with compensation.
//
// Every command it dispatches is fire-and-forget: the coordinator has no
// synchronous caller to surface errors to, so failures are logged. Ordering
// within one transfer id is guaranteed by the event bus; duplicate
// deliveries are discarded by phase checks and by state-row absence after
// the terminal transition.
type Coordinator struct {
	commands    *bus.CommandBus
	states      StateStore
	transitions map[string]func(ctx context.Context, evt domain.Event)
}

func NewCoordinator(commands *bus.CommandBus, states StateStore) *Coordinator {
	c := &Coordinator{commands: commands, states: states}
	c.transitions = map[string]func(ctx context.Context, evt domain.Event){
		domain.EventTransferCreated:     c.onTransferCreated,
		domain.EventSourceNotFound:      c.onSourceNotFound,
		domain.EventSourceDebitRejected: c.onSourceDebitRejected,
		domain.EventSourceDebited:       c.onSourceDebited,
		domain.EventDestinationNotFound: c.onDestinationNotFound,
		domain.EventDestinationCredited: c.onDestinationCredited,
	}
	return c
}

// Register subscribes the coordinator to every event type in its transition
// table.
func (c *Coordinator) Register(events *bus.EventBus) {
	names := make([]string, 0, len(c.transitions))
	for name := range c.transitions {
		names = append(names, name)
	}
	events.Subscribe(c.Handle, names...)
}

// Handle routes one event through the transition table.
func (c *Coordinator) Handle(ctx context.Context, evt domain.Event) {
	transition, ok := c.transitions[evt.EventName()]
	if !ok {
		return
	}
	if correlated, ok := evt.(domain.Correlated); ok {
		zap.L().Debug("saga event received",
			zap.String("event", evt.EventName()),
			zap.String("transfer_id", correlated.CorrelationID()))
	}
	transition(ctx, evt)
}

// onTransferCreated starts the saga instance and issues the debit command.
func (c *Coordinator) onTransferCreated(ctx context.Context, evt domain.Event) {
	created, ok := eventAs[domain.TransferCreated](evt)
	if !ok {
		return
	}

	existing, err := c.states.Get(ctx, created.TransferID)
	if err != nil {
		zap.L().Error("saga state lookup failed", zap.String("transfer_id", created.TransferID), zap.Error(err))
		return
	}
	if existing != nil {
		return // duplicate start
	}

	state := &State{
		TransferID:           created.TransferID,
		Phase:                PhaseAwaitingDebit,
		SourceAccountID:      created.SourceAccountID,
		DestinationAccountID: created.DestinationAccountID,
		Amount:               created.Amount,
	}
	if err := c.states.Put(ctx, state); err != nil {
		zap.L().Error("saga state persist failed", zap.String("transfer_id", created.TransferID), zap.Error(err))
		return
	}
	observability.AddActiveSagas(1)
	observability.IncrementSagaTransition(string(PhaseAwaitingDebit))

	c.commands.DispatchLogged(ctx, domain.DebitSource{
		AccountID:  created.SourceAccountID,
		TransferID: created.TransferID,
		Amount:     created.Amount,
	})
}

// onSourceNotFound ends the saga: nothing was debited, so failing the
// transfer record is the whole cleanup.
func (c *Coordinator) onSourceNotFound(ctx context.Context, evt domain.Event) {
	notFound, ok := eventAs[domain.SourceNotFound](evt)
	if !ok {
		return
	}
	c.failWithoutCompensation(ctx, notFound.TransferID)
}

// onSourceDebitRejected ends the saga the same way: the rejected debit had
// no balance effect.
func (c *Coordinator) onSourceDebitRejected(ctx context.Context, evt domain.Event) {
	rejected, ok := eventAs[domain.SourceDebitRejected](evt)
	if !ok {
		return
	}
	c.failWithoutCompensation(ctx, rejected.TransferID)
}

// onSourceDebited advances to the credit leg.
func (c *Coordinator) onSourceDebited(ctx context.Context, evt domain.Event) {
	debited, ok := eventAs[domain.SourceDebited](evt)
	if !ok {
		return
	}

	state := c.stateInPhase(ctx, debited.TransferID, PhaseAwaitingDebit)
	if state == nil {
		return
	}
	state.Phase = PhaseAwaitingCredit
	if err := c.states.Put(ctx, state); err != nil {
		zap.L().Error("saga state persist failed", zap.String("transfer_id", state.TransferID), zap.Error(err))
		return
	}
	observability.IncrementSagaTransition(string(PhaseAwaitingCredit))

	c.commands.DispatchLogged(ctx, domain.CreditDestination{
		AccountID:  state.DestinationAccountID,
		TransferID: debited.TransferID,
		Amount:     debited.Amount,
	})
}

// onDestinationNotFound compensates: the debited money must land somewhere,
// so it is returned to the source before the record is marked failed. The
// order matters for auditability.
func (c *Coordinator) onDestinationNotFound(ctx context.Context, evt domain.Event) {
	notFound, ok := eventAs[domain.DestinationNotFound](evt)
	if !ok {
		return
	}

	state := c.stateInPhase(ctx, notFound.TransferID, PhaseAwaitingCredit)
	if state == nil {
		return
	}
	c.end(ctx, state.TransferID, outcomeFailed)

	c.commands.DispatchLogged(ctx, domain.ReturnTransferFunds{
		AccountID: state.SourceAccountID,
		Amount:    state.Amount,
	})
	c.commands.DispatchLogged(ctx, domain.MarkTransferFailed{TransferID: state.TransferID})
}

// onDestinationCredited completes the transfer.
func (c *Coordinator) onDestinationCredited(ctx context.Context, evt domain.Event) {
	credited, ok := eventAs[domain.DestinationCredited](evt)
	if !ok {
		return
	}

	state := c.stateInPhase(ctx, credited.TransferID, PhaseAwaitingCredit)
	if state == nil {
		return
	}
	c.end(ctx, state.TransferID, outcomeCompleted)

	c.commands.DispatchLogged(ctx, domain.MarkTransferCompleted{TransferID: state.TransferID})
}

// failWithoutCompensation ends a saga still awaiting its debit outcome.
func (c *Coordinator) failWithoutCompensation(ctx context.Context, transferID string) {
	state := c.stateInPhase(ctx, transferID, PhaseAwaitingDebit)
	if state == nil {
		return
	}
	c.end(ctx, transferID, outcomeFailed)

	c.commands.DispatchLogged(ctx, domain.MarkTransferFailed{TransferID: transferID})
}

// stateInPhase loads the instance and discards events that do not match the
// expected phase. Absent state means the saga already ended; a phase
// mismatch means the event is a duplicate the saga has advanced past.
func (c *Coordinator) stateInPhase(ctx context.Context, transferID string, phase Phase) *State {
	state, err := c.states.Get(ctx, transferID)
	if err != nil {
		zap.L().Error("saga state lookup failed", zap.String("transfer_id", transferID), zap.Error(err))
		return nil
	}
	if state == nil || state.Phase != phase {
		return nil
	}
	return state
}

// end removes the instance before the closing commands go out, so any
// re-delivery after this point finds no state and is a no-op.
func (c *Coordinator) end(ctx context.Context, transferID, outcome string) {
	if err := c.states.Delete(ctx, transferID); err != nil {
		zap.L().Error("saga state delete failed", zap.String("transfer_id", transferID), zap.Error(err))
		return
	}
	observability.AddActiveSagas(-1)
	observability.IncrementSagaTransition(outcome)
	zap.L().Info("transfer saga ended",
		zap.String("transfer_id", transferID),
		zap.String("outcome", outcome))
}

// eventAs normalizes pointer and value forms of a published event.
func eventAs[T domain.Event](evt domain.Event) (T, bool) {
	if v, ok := evt.(T); ok {
		return v, true
	}
	if p, ok := any(evt).(*T); ok {
		return *p, true
	}
	var zero T
	return zero, false
}
