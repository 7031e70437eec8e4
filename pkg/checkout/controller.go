package checkout

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/eshtarek/storefront/pkg/async"
	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/logger"
	"github.com/eshtarek/storefront/pkg/statemachine"
	"github.com/eshtarek/storefront/pkg/subscription"
)

// Creator creates checkout sessions. *subscription.Client satisfies it.
type Creator interface {
	CreateCheckoutSession(ctx context.Context, req subscription.CheckoutRequest) (*subscription.CheckoutSession, error)
}

type event string

const (
	evStart    event = "start"
	evPresent  event = "present"
	evFail     event = "fail"
	evComplete event = "complete"
	evReset    event = "reset"
)

// Controller is the checkout dialog of one page. It is safe for concurrent
// use; View calls are made while holding its lock.
type Controller struct {
	creator    Creator
	bus        *eventbus.Bus
	view       View
	logger     *slog.Logger
	origins    []string
	resetDelay time.Duration
	after      AfterFunc

	machine  *statemachine.Machine[State, event]
	attempts async.Generation
	start    sync.Once

	mu        sync.Mutex
	open      bool
	last      *subscription.SubscribeEvent
	stopReset func() bool
}

// New creates a Controller. Panics if a dependency is nil.
func New(creator Creator, bus *eventbus.Bus, view View, opts ...Option) *Controller {
	if creator == nil || bus == nil || view == nil {
		panic("checkout: creator, bus and view are required")
	}
	c := &Controller{
		creator:    creator,
		bus:        bus,
		view:       view,
		logger:     logger.Discard(),
		origins:    slices.Clone(DefaultOrigins),
		resetDelay: DefaultResetDelay,
		after:      timeAfterFunc,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("checkout"))
	c.machine = statemachine.MustNew(StateLoading,
		statemachine.WithWildcard[State](evStart, StateLoading),
		statemachine.WithWildcard[State](evReset, StateLoading),
		statemachine.WithTransition(StateLoading, evPresent, StatePresenting),
		statemachine.WithTransition(StateLoading, evFail, StateError),
		statemachine.WithTransition(StatePresenting, evFail, StateError),
		statemachine.WithTransition(StatePresenting, evComplete, StateSuccess),
		statemachine.WithOnEnter(func(_, to State, _ event) {
			c.view.ShowState(to)
		}),
	)
	return c
}

// Start listens for subscribe requests until ctx ends. Attempts started by
// those requests run under ctx. Only the first call has an effect.
func (c *Controller) Start(ctx context.Context) {
	c.start.Do(func() {
		eventbus.Subscribe(ctx, c.bus, subscription.TopicSubscribe, func(_ context.Context, e subscription.SubscribeEvent) {
			c.mu.Lock()
			c.last = &e
			c.mu.Unlock()
			c.attempt(ctx, e.Request())
		})
	})
}

// Retry repeats the last subscribe request. It reports false, doing
// nothing, when no request has been seen yet.
func (c *Controller) Retry(ctx context.Context) bool {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()
	if last == nil {
		return false
	}
	c.attempt(ctx, last.Request())
	return true
}

// Close closes the dialog and clears the frame. Any attempt still in flight
// is dropped when it completes.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
}

// HandleMessage applies a message posted by the checkout frame and reports
// whether it changed anything. Messages from untrusted origins, of unknown
// shape, or that do not fit the current state are dropped.
func (c *Controller) HandleMessage(ctx context.Context, msg Message) bool {
	if !allowed(c.origins, msg.Origin) {
		return false
	}
	kind := classify(msg.Data)
	if kind == messageUnknown {
		return false
	}

	c.mu.Lock()
	presenting := c.open && c.machine.Is(StatePresenting)
	switch {
	case kind == messageComplete && presenting:
		c.fire(ctx, evComplete)
		c.mu.Unlock()
		c.logger.InfoContext(ctx, "checkout completed", logger.Origin(msg.Origin))
		if err := eventbus.Publish(ctx, c.bus, subscription.TopicCheckoutComplete, subscription.CheckoutCompleteEvent{
			Origin: msg.Origin,
			Data:   maps.Clone(msg.Data),
		}); err != nil {
			c.logger.DebugContext(ctx, "completion not delivered", logger.Error(err))
		}
		return true
	case kind == messageError && presenting:
		c.fire(ctx, evFail)
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "checkout frame reported an error", logger.Origin(msg.Origin))
		return true
	case kind == messageClose && c.open:
		c.close()
		c.mu.Unlock()
		return true
	default:
		c.mu.Unlock()
		return false
	}
}

// State returns the dialog sub-state.
func (c *Controller) State() State {
	return c.machine.Current()
}

// Open reports whether the dialog is open.
func (c *Controller) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Controller) attempt(ctx context.Context, req subscription.CheckoutRequest) {
	gen := c.attempts.Next()

	c.mu.Lock()
	c.cancelReset()
	c.open = true
	c.view.Open()
	c.fire(ctx, evStart)
	c.view.SetSubscribeBusy(true)
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "checkout attempt started", logger.Attempt(gen), logger.PlanID(req.PlanID))

	async.Async(ctx, req, c.creator.CreateCheckoutSession).Then(func(cs *subscription.CheckoutSession, err error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.attempts.IsCurrent(gen) {
			c.logger.DebugContext(ctx, "discarding stale checkout session", logger.Attempt(gen))
			return
		}
		c.view.SetSubscribeBusy(false)

		if err == nil && !cs.Usable() {
			err = subscription.ErrNoCheckoutURL
		}
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "checkout failed", logger.Attempt(gen), logger.Error(err))
			c.fire(ctx, evFail)
		case !cs.Embed:
			c.close()
			c.view.Navigate(cs.URL)
		default:
			c.view.SetFrameSource(cs.URL)
			c.fire(ctx, evPresent)
		}
	})
}

// close must be called with c.mu held.
func (c *Controller) close() {
	c.attempts.Invalidate()
	c.open = false
	c.view.Close()
	c.view.SetFrameSource("")
	c.view.SetSubscribeBusy(false)

	c.cancelReset()
	gen := c.attempts.Current()
	c.stopReset = c.after(c.resetDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.open || !c.attempts.IsCurrent(gen) {
			return
		}
		c.stopReset = nil
		c.fire(context.Background(), evReset)
	})
}

func (c *Controller) cancelReset() {
	if c.stopReset != nil {
		c.stopReset()
		c.stopReset = nil
	}
}

func (c *Controller) fire(ctx context.Context, ev event) {
	if err := c.machine.Fire(ev); err != nil {
		c.logger.DebugContext(ctx, "ignored checkout event",
			logger.Event(string(ev)),
			logger.State(string(c.machine.Current())),
			logger.Error(err),
		)
	}
}
