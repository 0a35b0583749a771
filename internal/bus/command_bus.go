package bus

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/ayo6706/bank-transfer-saga/internal/domain"
	"github.com/ayo6706/bank-transfer-saga/internal/observability"
	"go.uber.org/zap"
)

// ErrNoHandler is returned when a command has no registered handler.
var ErrNoHandler = errors.New("no handler registered for command")

// CommandHandler executes one command against its target aggregate. It
// appends any resulting events durably before returning them; the bus
// publishes the returned events once the target's lock is released.
type CommandHandler func(ctx context.Context, cmd domain.Command) ([]domain.Event, error)

const commandStripes = 64

// CommandBus routes commands to aggregate handlers through an explicit
// routing table built at startup. Commands for the same target id are
// serialized on a striped lock; different targets run in parallel.
type CommandBus struct {
	handlers map[string]CommandHandler
	locks    [commandStripes]sync.Mutex
	events   *EventBus
}

func NewCommandBus(events *EventBus) *CommandBus {
	return &CommandBus{
		handlers: make(map[string]CommandHandler),
		events:   events,
	}
}

// Register binds a command name to its handler. Duplicate registration is a
// wiring bug and fails loudly at startup.
func (b *CommandBus) Register(name string, handler CommandHandler) {
	if _, exists := b.handlers[name]; exists {
		panic(fmt.Sprintf("command handler already registered: %s", name))
	}
	b.handlers[name] = handler
}

// Dispatch routes the command to its handler, holding the target's lock for
// the duration of the handler, then publishes the resulting events. The
// publish happens outside the lock so follow-up commands triggered by
// subscribers cannot deadlock on the same stripe.
func (b *CommandBus) Dispatch(ctx context.Context, cmd domain.Command) error {
	handler, ok := b.handlers[cmd.CommandName()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoHandler, cmd.CommandName())
	}

	lock := &b.locks[stripe(cmd.TargetID())]
	lock.Lock()
	events, err := handler(ctx, cmd)
	lock.Unlock()

	if err != nil {
		observability.IncrementCommandDispatch(cmd.CommandName(), "error")
		return err
	}
	observability.IncrementCommandDispatch(cmd.CommandName(), "ok")

	if len(events) > 0 && b.events != nil {
		b.events.Publish(ctx, events...)
	}
	return nil
}

// DispatchLogged dispatches a command whose caller has no synchronous error
// path, logging failures instead of returning them. The transfer coordinator
// uses it for every follow-up command it issues.
func (b *CommandBus) DispatchLogged(ctx context.Context, cmd domain.Command) {
	if err := b.Dispatch(ctx, cmd); err != nil {
		zap.L().Error("command dispatch failed",
			zap.String("command", cmd.CommandName()),
			zap.String("target_id", cmd.TargetID()),
			zap.Error(err))
	}
}

func stripe(targetID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(targetID))
	return h.Sum32() % commandStripes
}
