package planselector

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/eshtarek/storefront/pkg/async"
	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/logger"
	"github.com/eshtarek/storefront/pkg/statemachine"
	"github.com/eshtarek/storefront/pkg/subscription"
)

// PlanSource lists plans once the session is ready. *subscription.Client
// satisfies it.
type PlanSource interface {
	Ready() bool
	ListPlans(ctx context.Context, productID string) ([]subscription.Plan, error)
}

// Selection is the customer's current choice.
type Selection struct {
	Plan      subscription.Plan
	Frequency string
}

type event string

const (
	evFetch  event = "fetch"
	evLoaded event = "loaded"
	evEmpty  event = "empty"
	evFailed event = "failed"
)

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the selector logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// Selector is the plan picker of one product page.
type Selector struct {
	productID string
	source    PlanSource
	bus       *eventbus.Bus
	view      View
	format    Formatter
	logger    *slog.Logger

	machine  *statemachine.Machine[State, event]
	fetches  async.Generation
	activate sync.Once
	waiter   waiter

	mu        sync.Mutex
	plans     []subscription.Plan
	selected  *subscription.Plan
	frequency string
}

// New creates a Selector for productID. Panics if a dependency is nil.
func New(productID string, source PlanSource, bus *eventbus.Bus, view View, format Formatter, opts ...Option) *Selector {
	if source == nil || bus == nil || view == nil || format == nil {
		panic("planselector: source, bus, view and formatter are required")
	}
	s := &Selector{
		productID: productID,
		source:    source,
		bus:       bus,
		view:      view,
		format:    format,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("planselector"), logger.ProductID(productID))
	s.machine = statemachine.MustNew(StateLoading,
		statemachine.WithWildcard[State](evFetch, StateLoading),
		statemachine.WithTransition(StateLoading, evLoaded, StateContainer),
		statemachine.WithTransition(StateLoading, evEmpty, StateEmpty),
		statemachine.WithTransition(StateLoading, evFailed, StateError),
		statemachine.WithOnEnter(func(_, to State, _ event) {
			s.view.ShowState(to)
		}),
	)
	return s
}

// Activate shows the loading state and fetches plans as soon as the
// session is ready. Only the first call has an effect. ctx bounds the
// waits and every fetch they start.
func (s *Selector) Activate(ctx context.Context) {
	s.activate.Do(func() {
		s.mu.Lock()
		s.view.ShowState(StateLoading)
		s.view.SetSubscribeEnabled(false)
		s.mu.Unlock()

		if s.source.Ready() {
			s.fetch(ctx)
			return
		}

		s.waiter.add(eventbus.Once(ctx, s.bus, subscription.TopicReady, func(context.Context, subscription.ReadyEvent) {
			if s.waiter.finish() {
				s.fetch(ctx)
			}
		}))
		s.waiter.add(eventbus.Once(ctx, s.bus, subscription.TopicError, func(_ context.Context, e subscription.ErrorEvent) {
			if s.waiter.finish() {
				s.fail(ctx, e.Err)
			}
		}))
		// The session may have become ready between the check and the
		// subscriptions.
		if s.source.Ready() && s.waiter.finish() {
			s.fetch(ctx)
		}
	})
}

// Retry re-enters loading and fetches again.
func (s *Selector) Retry(ctx context.Context) {
	s.fetch(ctx)
}

// SelectPlan makes planID the selected plan and resets the frequency to the
// plan's default.
func (s *Selector) SelectPlan(planID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.plans, func(p subscription.Plan) bool { return p.ID == planID })
	if i < 0 {
		return ErrUnknownPlan
	}
	s.selectPlan(s.plans[i])
	return nil
}

// SelectFrequency switches the frequency of the selected plan. The selected
// plan never changes.
func (s *Selector) SelectFrequency(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected == nil {
		return ErrNoSelection
	}
	if !s.selected.HasFrequency(value) {
		return ErrInvalidFrequency
	}
	s.frequency = value
	if len(s.selected.Frequencies) > 1 {
		s.view.RenderFrequencies(frequencyOptions(*s.selected), value)
	}
	s.view.ShowSummary(s.summary())
	return nil
}

// Subscribe publishes subscription.TopicSubscribe for the current
// selection. It returns ErrNoSelection when no plan or frequency is set.
func (s *Selector) Subscribe(ctx context.Context) error {
	sel, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	s.logger.InfoContext(ctx, "subscribe requested",
		logger.PlanID(sel.Plan.ID),
		slog.String("frequency", sel.Frequency),
	)
	return eventbus.Publish(ctx, s.bus, subscription.TopicSubscribe, subscription.SubscribeEvent{
		PlanID:    sel.Plan.ID,
		Frequency: sel.Frequency,
		ProductID: s.productID,
		Plan:      sel.Plan,
	})
}

// Selection returns the current plan and frequency.
func (s *Selector) Selection() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil || s.frequency == "" {
		return Selection{}, false
	}
	return Selection{Plan: *s.selected, Frequency: s.frequency}, true
}

// Plans returns the plans currently shown.
func (s *Selector) Plans() []subscription.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.plans)
}

// State returns the visible state.
func (s *Selector) State() State {
	return s.machine.Current()
}

// ProductID returns the product the selector is bound to.
func (s *Selector) ProductID() string {
	return s.productID
}

// Reset clears plans and selection, drops in-flight fetches and returns to
// loading.
func (s *Selector) Reset() {
	s.fetches.Invalidate()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
	s.machine.Reset()
	s.view.ShowState(StateLoading)
}

// Close stops waiting for the session and drops in-flight fetches.
func (s *Selector) Close() {
	s.waiter.finish()
	s.fetches.Invalidate()
}

func (s *Selector) fetch(ctx context.Context) {
	gen := s.fetches.Next()

	s.mu.Lock()
	s.fire(ctx, evFetch)
	s.view.SetSubscribeEnabled(false)
	s.mu.Unlock()

	async.Async(ctx, s.productID, s.source.ListPlans).Then(func(plans []subscription.Plan, err error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.fetches.IsCurrent(gen) {
			s.logger.DebugContext(ctx, "discarding stale plan listing", logger.Attempt(gen))
			return
		}
		s.apply(ctx, plans, err)
	})
}

// apply must be called with s.mu held.
func (s *Selector) apply(ctx context.Context, plans []subscription.Plan, err error) {
	switch {
	case err != nil:
		s.logger.ErrorContext(ctx, "failed to load plans", logger.Error(err))
		s.clear()
		s.fire(ctx, evFailed)
	case len(plans) == 0:
		s.clear()
		s.fire(ctx, evEmpty)
	default:
		s.plans = slices.Clone(plans)
		s.selected, s.frequency = nil, ""
		s.view.RenderPlans(s.cards())
		s.fire(ctx, evLoaded)
		s.selectPlan(s.plans[0])
	}
}

func (s *Selector) fail(ctx context.Context, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.WarnContext(ctx, "session failed, plans unavailable", logger.Error(err))
	s.clear()
	s.fire(ctx, evFailed)
}

// selectPlan must be called with s.mu held.
func (s *Selector) selectPlan(p subscription.Plan) {
	s.selected = &p
	s.view.MarkSelected(p.ID)

	s.frequency = p.DefaultFrequency()
	if len(p.Frequencies) > 1 {
		s.view.RenderFrequencies(frequencyOptions(p), s.frequency)
	} else {
		s.view.HideFrequencies()
	}
	s.view.ShowSummary(s.summary())
	s.view.SetSubscribeEnabled(true)
}

func (s *Selector) clear() {
	s.plans = nil
	s.selected = nil
	s.frequency = ""
	s.view.HideFrequencies()
	s.view.SetSubscribeEnabled(false)
}

func (s *Selector) fire(ctx context.Context, ev event) {
	if err := s.machine.Fire(ev); err != nil {
		s.logger.DebugContext(ctx, "ignored plan selector event",
			logger.Event(string(ev)),
			logger.State(string(s.machine.Current())),
			logger.Error(err),
		)
	}
}

func (s *Selector) cards() []Card {
	cards := make([]Card, len(s.plans))
	for i, p := range s.plans {
		cards[i] = Card{
			PlanID:      p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       s.format.FormatPrice(p.Price, p.Currency),
			Popular:     p.IsPopular || i == 0,
		}
		if p.SavingsPercent > 0 {
			pct := strconv.FormatFloat(p.SavingsPercent, 'f', -1, 64)
			cards[i].Savings = strings.Replace(s.format.T("savePercent"), "%s", pct, 1)
		}
	}
	return cards
}

func (s *Selector) summary() Summary {
	p := s.selected
	label := s.format.FormatFrequency(s.frequency)
	for _, f := range p.Frequencies {
		if f.Value == s.frequency {
			label = f.Label
			break
		}
	}
	return Summary{
		PlanName:     p.Name,
		Frequency:    label,
		Price:        s.format.FormatPrice(p.Price, p.Currency),
		FreeShipping: p.FreeShipping,
	}
}

func frequencyOptions(p subscription.Plan) []FrequencyOption {
	opts := make([]FrequencyOption, len(p.Frequencies))
	for i, f := range p.Frequencies {
		opts[i] = FrequencyOption{Value: f.Value, Label: f.Label}
	}
	return opts
}

// waiter removes the session waits once either of them fires.
type waiter struct {
	mu   sync.Mutex
	done bool
	subs []eventbus.Subscription
}

func (w *waiter) add(sub eventbus.Subscription) {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	w.subs = append(w.subs, sub)
	w.mu.Unlock()
}

// finish reports whether this call was the first.
func (w *waiter) finish() bool {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return false
	}
	w.done = true
	subs := w.subs
	w.subs = nil
	w.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return true
}
