package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FireRat666/Banter-Reversi/internal/game"
	"github.com/FireRat666/Banter-Reversi/internal/property"
	"github.com/FireRat666/Banter-Reversi/internal/render"
)

const (
	// DefaultPollInterval is how often WaitForInitialState checks for the
	// local identity.
	DefaultPollInterval = 200 * time.Millisecond

	// DefaultReadyTimeout bounds WaitForInitialState.
	DefaultReadyTimeout = 30 * time.Second

	// DefaultInstance is used when no instance is configured.
	DefaultInstance = "default"

	tracerName = "github.com/FireRat666/Banter-Reversi/internal/coordinator"
)

// Coordinator synchronizes one engine with the shared property space and
// feeds a render consumer.
//
// The engine is only touched while the sync lock is held.
type Coordinator struct {
	engine   *game.Engine
	store    property.Store
	consumer render.Consumer

	key          string
	pollInterval time.Duration
	readyTimeout time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer

	lock  *SyncLock
	queue *eventQueue

	mu   sync.Mutex
	last render.State
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithInstance selects the game instance, and with it the property key.
func WithInstance(instance string) Option {
	return func(c *Coordinator) {
		c.key = property.PropertyKey(instance)
	}
}

// WithPollInterval sets how often the readiness wait checks for identity.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithReadyTimeout bounds the readiness wait.
func WithReadyTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.readyTimeout = d
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for handler spans. Defaults to the
// global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a coordinator. The coordinator owns engine from here on;
// callers must not use it directly.
func New(engine *game.Engine, store property.Store, consumer render.Consumer, opts ...Option) *Coordinator {
	if consumer == nil {
		consumer = render.Discard
	}
	c := &Coordinator{
		engine:       engine,
		store:        store,
		consumer:     consumer,
		key:          property.PropertyKey(DefaultInstance),
		pollInterval: DefaultPollInterval,
		readyTimeout: DefaultReadyTimeout,
		logger:       slog.Default(),
		tracer:       otel.Tracer(tracerName),
		lock:         NewSyncLock(),
		queue:        newEventQueue(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("key", c.key)
	c.last = render.Derive(engine.State())
	return c
}

// Key returns the property key of this coordinator's game.
func (c *Coordinator) Key() string { return c.key }

// RenderState returns the most recently emitted render state.
func (c *Coordinator) RenderState() render.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Busy reports whether an update is in progress.
func (c *Coordinator) Busy() bool { return c.lock.Held() }

// HandleLocalMove attempts a move for the player whose turn it is.
//
// The move is rejected with ErrBusy while another update holds the lock and
// with ErrGameOver once the game has ended. A move the engine refuses is
// reported as an INVALID_MOVE SyncError and nothing is emitted. A failed
// publish is logged only: the local move stands.
func (c *Coordinator) HandleLocalMove(ctx context.Context, row, col int) error {
	ctx, span := c.tracer.Start(ctx, "coordinator.HandleLocalMove",
		trace.WithAttributes(attribute.Int("row", row), attribute.Int("col", col)))
	defer span.End()

	if !c.lock.TryAcquire() {
		span.SetStatus(codes.Error, "busy")
		return ErrBusy
	}
	defer c.lock.Release()

	if c.engine.GameOver() {
		span.SetStatus(codes.Error, "game over")
		return ErrGameOver
	}

	mover := c.engine.CurrentPlayer()
	if err := c.engine.TryMove(row, col); err != nil {
		span.SetStatus(codes.Error, "invalid move")
		return newInvalidMoveError(row, col, err)
	}
	c.logger.Debug("move applied", "player", mover, "row", row, "col", col)
	c.noteTurn(mover)

	c.publish(ctx, span)
	c.emit()
	return nil
}

// HandleReset restarts the game and publishes the opening position. It is
// allowed on a finished game.
func (c *Coordinator) HandleReset(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "coordinator.HandleReset")
	defer span.End()

	if !c.lock.TryAcquire() {
		span.SetStatus(codes.Error, "busy")
		return ErrBusy
	}
	defer c.lock.Release()

	c.engine.Reset()
	c.logger.Info("game reset")

	c.publish(ctx, span)
	c.emit()
	return nil
}

// HandleRemoteChange reconciles with the store after a change notification.
// Notifications that do not name this game's key are ignored.
//
// A malformed stored value is logged and leaves the engine untouched.
func (c *Coordinator) HandleRemoteChange(ctx context.Context, keys []string) error {
	if !slices.Contains(keys, c.key) {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "coordinator.HandleRemoteChange")
	defer span.End()

	if err := c.lock.Acquire(ctx); err != nil {
		return err
	}
	defer c.lock.Release()

	_, err := c.pull(ctx, span)
	return err
}

// WaitForInitialState blocks until the local participant is identified,
// then loads the stored game. When none exists yet the engine's current
// state is published so later peers join this game.
//
// Returns ErrNotReady if no identity appears within the ready timeout.
func (c *Coordinator) WaitForInitialState(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "coordinator.WaitForInitialState")
	defer span.End()

	if err := c.waitIdentity(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := c.lock.Acquire(ctx); err != nil {
		return err
	}
	defer c.lock.Release()

	found, err := c.pull(ctx, span)
	if err != nil {
		return err
	}
	if !found {
		c.logger.Info("no stored game, publishing fresh state")
		c.publish(ctx, span)
		c.emit()
	}
	return nil
}

func (c *Coordinator) waitIdentity(ctx context.Context) error {
	deadline := time.NewTimer(c.readyTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		if user, ok := c.store.LocalUser(); ok {
			c.logger.Debug("local participant identified", "user", user)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			c.logger.Warn("local participant not identified", "timeout", c.readyTimeout)
			return ErrNotReady
		case <-ticker.C:
		}
	}
}

// pull loads the stored snapshot into the engine and emits it. Reports
// whether a snapshot was stored. Caller must hold the lock.
func (c *Coordinator) pull(ctx context.Context, span trace.Span) (bool, error) {
	v, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.logger.Error("read game state failed", "error", err)
		span.RecordError(err)
		return false, newReadFailureError(c.key, err)
	}
	if !ok {
		return false, nil
	}

	st, err := game.Decode(v.Data)
	if err != nil {
		c.logger.Warn("DeserializationFailure: ignoring stored game state",
			"scope", v.Scope, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(ErrCodeDeserialization))
		return true, newDeserializationError(c.key, err)
	}

	c.engine.LoadState(st)
	span.SetAttributes(attribute.String("scope", string(v.Scope)))
	c.emit()
	return true, nil
}

// publish writes the engine state to the store. Failures are logged and
// recorded on span; the local state is kept either way.
func (c *Coordinator) publish(ctx context.Context, span trace.Span) {
	data, err := game.Encode(c.engine.State())
	if err == nil {
		err = c.store.SetPublic(ctx, c.key, data)
	}
	if err != nil {
		c.logger.Error("publish game state failed", "error", err)
		span.RecordError(err)
	}
}

// emit derives the render state and hands it to the consumer. Caller must
// hold the lock.
func (c *Coordinator) emit() {
	s := render.Derive(c.engine.State())
	c.mu.Lock()
	c.last = s
	c.mu.Unlock()
	c.consumer.Update(s)
}

// noteTurn logs the outcome of mover's move.
func (c *Coordinator) noteTurn(mover game.Cell) {
	switch {
	case c.engine.GameOver():
		black, white, _ := c.engine.Counts()
		c.logger.Info("game over", "winner", c.engine.Winner(), "black", black, "white", white)
	case c.engine.ExtraTurn():
		c.logger.Info(fmt.Sprintf("%s has no valid moves, %s moves again", mover.Opponent(), mover),
			"skipped", mover.Opponent())
	}
}

// Enqueue submits an event to the Run loop. Returns false after Stop.
func (c *Coordinator) Enqueue(e Event) bool {
	return c.queue.Enqueue(e)
}

// Click implements render.Input.
func (c *Coordinator) Click(row, col int) { c.Enqueue(Click(row, col)) }

// Reset implements render.Input.
func (c *Coordinator) Reset() { c.Enqueue(Reset()) }

// Run processes events until ctx is done or Stop is called. Store
// notifications are forwarded into the queue for the duration of Run.
func (c *Coordinator) Run(ctx context.Context) error {
	c.logger.Info("coordinator starting")

	fwdCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.forwardChanges(fwdCtx)

	for {
		if e, ok := c.queue.TryDequeue(); ok {
			if err := c.process(ctx, e); err != nil {
				c.logEventError(e, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			c.logger.Info("coordinator stopping: context cancelled")
			c.queue.Close()
			return ctx.Err()
		case <-c.queue.Wait():
			// The signal channel is closed by Stop.
			if c.queue.Len() == 0 && c.stopped() {
				c.logger.Info("coordinator stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run returns once the queue is drained.
func (c *Coordinator) Stop() {
	c.queue.Close()
}

func (c *Coordinator) stopped() bool {
	c.queue.mu.Lock()
	defer c.queue.mu.Unlock()
	return c.queue.closed
}

func (c *Coordinator) forwardChanges(ctx context.Context) {
	changes := c.store.Changes()
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if !c.Enqueue(RemoteChange(ch.Keys...)) {
				return
			}
		}
	}
}

// process routes one event. Called only from Run.
func (c *Coordinator) process(ctx context.Context, e Event) error {
	switch e.Type {
	case EventClick:
		return c.HandleLocalMove(ctx, e.Row, e.Col)
	case EventReset:
		return c.HandleReset(ctx)
	case EventRemoteChange:
		return c.HandleRemoteChange(ctx, e.Keys)
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (c *Coordinator) logEventError(e Event, err error) {
	switch {
	case IsBusy(err), IsGameOver(err), IsInvalidMove(err):
		c.logger.Debug("event rejected", "event", e.Type, "row", e.Row, "col", e.Col, "error", err)
	case IsDeserializationFailure(err), IsReadFailure(err):
		// Already logged by the handler.
	default:
		c.logger.Error("event failed", "event", e.Type, "error", err)
	}
}
