package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/ir"
	"github.com/roach88/motion/internal/state"
	"github.com/roach88/motion/internal/timeline"
)

// Journal records dispatched messages and end-of-session state hashes.
// Implemented by *store.Store.
type Journal interface {
	Append(ctx context.Context, session string, seq int64, m state.Message) error
	WriteSnapshot(ctx context.Context, session string, seq int64, hash string) error
}

// SeqClock hands out journal sequence numbers. *Clock implements it.
type SeqClock interface {
	Next() int64
	Current() int64
}

// DefaultMaxCascadeSteps is the default per-frame cascade quota.
const DefaultMaxCascadeSteps = 1000

// DefaultThrottle is the default coalescing interval for high-frequency
// input (scroll, resize, pointer movement).
const DefaultThrottle = 12 * time.Millisecond

const maxRecordedErrors = 64

// Engine is the orchestrator: it binds events, starts action groups,
// renders instances, and cascades carriers.
//
// The engine is single-threaded. Every method except Enqueue, Close, and
// Run must be called from one goroutine: the Run loop when the engine is
// hosted, or the test goroutine when a test drives it directly. Host input
// handlers and frame callbacks run on that same goroutine.
type Engine struct {
	store    *state.Store
	doc      host.Document
	frames   host.FrameSource
	plugins  *host.Plugins
	notifier host.Notifier
	logger   *slog.Logger

	clock   SeqClock // journal seq
	ids     *Clock   // instance and listener ids
	queue   *taskQueue
	tokens  SessionTokenGenerator
	journal Journal
	session string

	maxCascadeSteps int
	quota           *CascadeQuota
	throttle        float64 // ms

	removers        map[uint64]func()
	throttles       []*throttle
	pluginInstances map[timeline.ID]any
	loopGen         int

	prevInstances state.InstanceSet
	prevRequest   state.RequestState

	errors []error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithJournal records every dispatched message under a per-session token.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithClock sets the journal seq clock, for continuing an existing journal.
func WithClock(c SeqClock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTokenGenerator sets the session token generator. Default: UUIDv7.
func WithTokenGenerator(g SessionTokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// WithMaxCascadeSteps sets the per-frame cascade quota.
func WithMaxCascadeSteps(n int) Option {
	return func(e *Engine) { e.maxCascadeSteps = n }
}

// WithThrottle sets the input coalescing interval. Zero disables
// throttling.
func WithThrottle(d time.Duration) Option {
	return func(e *Engine) { e.throttle = float64(d.Microseconds()) / 1000 }
}

// WithPlugins sets the plugin table.
func WithPlugins(p *host.Plugins) Option {
	return func(e *Engine) { e.plugins = p }
}

// WithNotifier receives animation start and stop notifications.
func WithNotifier(n host.Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// New creates an engine driving doc with frames from frames.
func New(doc host.Document, frames host.FrameSource, opts ...Option) *Engine {
	e := &Engine{
		doc:             doc,
		frames:          frames,
		plugins:         host.NewPlugins(),
		logger:          slog.Default(),
		clock:           NewClock(),
		ids:             NewClock(),
		queue:           newTaskQueue(),
		tokens:          UUIDv7Generator{},
		maxCascadeSteps: DefaultMaxCascadeSteps,
		throttle:        float64(DefaultThrottle.Microseconds()) / 1000,
		removers:        make(map[uint64]func()),
		pluginInstances: make(map[timeline.ID]any),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.quota = NewCascadeQuota(e.maxCascadeSteps)
	e.store = state.NewStore()
	e.store.Subscribe(e.observe)
	return e
}

// State returns the current state tree.
func (e *Engine) State() state.State {
	return e.store.State()
}

// Session returns the current journal session token, or "" when no
// message has been recorded since the last stop.
func (e *Engine) Session() string {
	return e.session
}

// Errors returns the most recent runtime errors, oldest first.
func (e *Engine) Errors() []error {
	return append([]error(nil), e.errors...)
}

// Dispatch records a message in the journal and applies it.
//
// Dispatch panics if called from inside a reducer; everything the engine
// does in response to a change runs after the reducer returns.
func (e *Engine) Dispatch(m state.Message) {
	e.record(m)
	e.store.MustDispatch(m)
}

func (e *Engine) record(m state.Message) {
	if e.journal == nil {
		return
	}
	if e.session == "" {
		e.session = e.tokens.Generate()
	}
	seq := e.clock.Next()
	if err := e.journal.Append(context.Background(), e.session, seq, m); err != nil {
		e.logger.Error("journal append failed",
			"session", e.session,
			"seq", seq,
			"kind", m.Kind(),
			"error", err,
		)
	}
}

func (e *Engine) report(err *RuntimeError) {
	e.logger.Warn("runtime error",
		"code", err.Code,
		"event", err.EventID,
		"list", err.ActionListID,
		"error", err.Message,
	)
	if len(e.errors) == maxRecordedErrors {
		e.errors = e.errors[1:]
	}
	e.errors = append(e.errors, err)
}

// Start activates a session. model, when non-nil, replaces the imported
// data first. With allowEvents the engine binds every event's input
// listeners; the render loop starts either way. Start on an active session
// only imports the model.
//
// A model that uses a plugin action type with no registered plugin is
// rejected with a PLUGIN_NOT_REGISTERED error before anything is imported.
func (e *Engine) Start(model *ir.Model, allowEvents bool) error {
	if model != nil {
		if err := e.checkPlugins(model); err != nil {
			return err
		}
		e.Dispatch(state.DataImported{Model: model})
	}

	st := e.store.State()
	if st.Session.Active {
		return nil
	}

	// A new journal session carries its own copy of the data.
	if model == nil && st.Data != nil && e.journal != nil {
		e.Dispatch(state.DataImported{Model: st.Data})
	}

	e.Dispatch(state.SessionInitialized{HasBoundaryNodes: e.doc.HasBoundaryNodes()})
	if allowEvents {
		e.bindEvents()
	}
	e.Dispatch(state.SessionStarted{})

	e.logger.Info("session started",
		"session", e.session,
		"events", allowEvents,
		"listeners", len(e.removers),
	)

	e.startLoop()
	return nil
}

// checkPlugins finds the first plugin action type in the model, timed or
// continuous, that has no registered plugin.
func (e *Engine) checkPlugins(model *ir.Model) error {
	check := func(listID string, item ir.ActionItem) error {
		if ir.RenderTypeOf(item.ActionTypeID) != ir.RenderPlugin {
			return nil
		}
		if _, ok := e.plugins.Get(item.ActionTypeID); !ok {
			return NewPluginError(listID, string(item.ActionTypeID))
		}
		return nil
	}
	for _, id := range sortedKeys(model.ActionLists) {
		l := model.ActionLists[id]
		for _, g := range l.ActionItemGroups {
			for _, item := range g.ActionItems {
				if err := check(id, item); err != nil {
					return err
				}
			}
		}
		for _, pg := range l.ContinuousParameterGroups {
			for _, ag := range pg.ContinuousActionGroups {
				for _, item := range ag.ActionItems {
					if err := check(id, item); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// Stop removes every bound listener and ends the session. Safe to call on
// an inactive session.
func (e *Engine) Stop() {
	st := e.store.State()
	if !st.Session.Active {
		return
	}

	for _, l := range st.Session.Listeners {
		if remove, ok := e.removers[l.ID]; ok {
			remove()
		}
	}
	e.removers = make(map[uint64]func())
	e.throttles = nil

	e.snapshot()
	e.Dispatch(state.SessionStopped{})
	e.pluginInstances = make(map[timeline.ID]any)
	e.loopGen++

	e.logger.Info("session stopped", "session", e.session, "seq", e.clock.Current())
	e.session = ""
}

// snapshot records the hash of the state the session reached, at the seq
// of the last message before the stop.
func (e *Engine) snapshot() {
	if e.journal == nil || e.session == "" {
		return
	}
	hash, err := e.store.State().Hash()
	if err != nil {
		e.logger.Error("snapshot hash failed", "session", e.session, "error", err)
		return
	}
	if err := e.journal.WriteSnapshot(context.Background(), e.session, e.clock.Current(), hash); err != nil {
		e.logger.Error("snapshot write failed", "session", e.session, "error", err)
	}
}

// Enqueue submits a task for the Run loop. Safe from any goroutine.
// Returns false once the engine is closed.
func (e *Engine) Enqueue(t Task) bool {
	return e.queue.Enqueue(t)
}

// Run executes queued tasks until ctx is cancelled or Close is called.
// Must be called from exactly one goroutine, which then owns the engine.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("engine starting")

	for {
		if task, ok := e.queue.TryDequeue(); ok {
			e.runTask(task)
			continue
		}

		select {
		case <-ctx.Done():
			e.logger.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case _, open := <-e.queue.Wait():
			// The signal channel closes with the queue.
			if !open && e.queue.Len() == 0 {
				e.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// runTask runs one task, logging instead of propagating a panic.
func (e *Engine) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("task panicked", "panic", r)
		}
	}()
	task()
}

// Close stops accepting tasks. Run drains what is queued, then returns.
func (e *Engine) Close() {
	e.queue.Close()
}

func (e *Engine) notify(kind host.NotificationKind, in *timeline.Instance) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(host.Notification{
		Kind:         kind,
		InstanceID:   in.ID,
		ElementID:    in.ElementID,
		ActionListID: in.ActionListID,
		ActionTypeID: string(in.ActionTypeID()),
	})
}
