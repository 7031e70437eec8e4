package planselector_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/planselector"
	"github.com/eshtarek/storefront/pkg/subscription"
)

type recordingView struct {
	mu          sync.Mutex
	states      []planselector.State
	cards       []planselector.Card
	selected    string
	frequencies []planselector.FrequencyOption
	freqShown   bool
	freqMarked  string
	summary     *planselector.Summary
	subscribe   bool
}

func (v *recordingView) ShowState(s planselector.State) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.states = append(v.states, s)
}

func (v *recordingView) RenderPlans(cards []planselector.Card) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards = cards
}

func (v *recordingView) MarkSelected(planID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = planID
}

func (v *recordingView) RenderFrequencies(opts []planselector.FrequencyOption, selected string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frequencies, v.freqShown, v.freqMarked = opts, true, selected
}

func (v *recordingView) HideFrequencies() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.freqShown = false
}

func (v *recordingView) ShowSummary(s planselector.Summary) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.summary = &s
}

func (v *recordingView) SetSubscribeEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subscribe = enabled
}

func (v *recordingView) snapshot() recordingView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return recordingView{
		states:      append([]planselector.State(nil), v.states...),
		cards:       v.cards,
		selected:    v.selected,
		frequencies: v.frequencies,
		freqShown:   v.freqShown,
		freqMarked:  v.freqMarked,
		summary:     v.summary,
		subscribe:   v.subscribe,
	}
}

type fakeSource struct {
	ready atomic.Bool
	calls atomic.Int32

	mu    sync.Mutex
	plans []subscription.Plan
	err   error
	gate  chan struct{}
}

func (f *fakeSource) Ready() bool { return f.ready.Load() }

func (f *fakeSource) ListPlans(ctx context.Context, _ string) ([]subscription.Plan, error) {
	f.calls.Add(1)
	f.mu.Lock()
	plans, err, gate := f.plans, f.err, f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return plans, err
}

func (f *fakeSource) set(plans []subscription.Plan, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plans, f.err = plans, err
}

type fakeFormatter struct{}

func (fakeFormatter) T(key string) string {
	if key == "savePercent" {
		return "Save %s%"
	}
	return key
}

func (fakeFormatter) FormatPrice(amount float64, currency string) string {
	return currency + " " + strconv.FormatFloat(amount, 'f', -1, 64)
}

func (fakeFormatter) FormatFrequency(value string) string { return "per " + value }

var (
	weeklyMonthly = subscription.Plan{
		ID: "p1", Name: "Family", Price: 100, Currency: "SAR", FreeShipping: true, SavingsPercent: 10,
		Frequencies: []subscription.Frequency{{Value: "weekly", Label: "Weekly"}, {Value: "monthly", Label: "Monthly"}},
	}
	single = subscription.Plan{
		ID: "p2", Name: "Solo", Price: 40, Currency: "SAR", IsPopular: true,
		Frequencies: []subscription.Frequency{{Value: "quarterly", Label: "Quarterly"}},
	}
	bare = subscription.Plan{ID: "p3", Name: "Bare", Price: 10, Currency: "SAR"}
)

type fixture struct {
	bus    *eventbus.Bus
	source *fakeSource
	view   *recordingView
	sel    *planselector.Selector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		bus:    eventbus.New(),
		source: &fakeSource{},
		view:   &recordingView{},
	}
	t.Cleanup(func() { _ = f.bus.Close() })
	f.sel = planselector.New("prod-1", f.source, f.bus, f.view, fakeFormatter{})
	return f
}

func (f *fixture) waitState(t *testing.T, want planselector.State) {
	t.Helper()
	require.Eventually(t, func() bool { return f.sel.State() == want }, time.Second, time.Millisecond)
}

func loaded(t *testing.T, plans ...subscription.Plan) *fixture {
	t.Helper()
	f := newFixture(t)
	f.source.ready.Store(true)
	f.source.set(plans, nil)
	f.sel.Activate(context.Background())
	f.waitState(t, planselector.StateContainer)
	return f
}

func TestActivate(t *testing.T) {
	t.Parallel()

	t.Run("ready source loads plans and selects the first", func(t *testing.T) {
		t.Parallel()
		f := loaded(t, weeklyMonthly, single)

		got := f.view.snapshot()
		assert.Equal(t, planselector.StateContainer, got.states[len(got.states)-1])
		assert.Equal(t, "p1", got.selected)
		assert.True(t, got.subscribe)

		sel, ok := f.sel.Selection()
		require.True(t, ok)
		assert.Equal(t, "p1", sel.Plan.ID)
		assert.Equal(t, "weekly", sel.Frequency)
	})

	t.Run("cards carry badges and formatted prices", func(t *testing.T) {
		t.Parallel()
		f := loaded(t, weeklyMonthly, single, bare)

		cards := f.view.snapshot().cards
		require.Len(t, cards, 3)
		assert.Equal(t, planselector.Card{
			PlanID: "p1", Name: "Family", Price: "SAR 100", Popular: true, Savings: "Save 10%",
		}, cards[0])
		assert.True(t, cards[1].Popular)
		assert.False(t, cards[2].Popular)
		assert.Empty(t, cards[2].Savings)
	})

	t.Run("empty listing shows empty and keeps subscribe disabled", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.source.ready.Store(true)
		f.sel.Activate(context.Background())
		f.waitState(t, planselector.StateEmpty)

		got := f.view.snapshot()
		assert.False(t, got.subscribe)
		assert.Nil(t, got.summary)
		_, ok := f.sel.Selection()
		assert.False(t, ok)
		assert.ErrorIs(t, f.sel.Subscribe(context.Background()), planselector.ErrNoSelection)
	})

	t.Run("listing error shows error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.source.ready.Store(true)
		f.source.set(nil, errors.New("boom"))
		f.sel.Activate(context.Background())
		f.waitState(t, planselector.StateError)
	})

	t.Run("waits for ready and fetches exactly once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.source.set([]subscription.Plan{bare}, nil)
		f.sel.Activate(context.Background())
		f.sel.Activate(context.Background())

		assert.Equal(t, planselector.StateLoading, f.sel.State())
		assert.Zero(t, f.source.calls.Load())
		assert.Equal(t, 1, f.bus.Len(subscription.TopicReady.Name()))
		assert.Equal(t, 1, f.bus.Len(subscription.TopicError.Name()))

		f.source.ready.Store(true)
		ctx := context.Background()
		require.NoError(t, eventbus.Publish(ctx, f.bus, subscription.TopicReady, subscription.ReadyEvent{}))
		require.NoError(t, eventbus.Publish(ctx, f.bus, subscription.TopicReady, subscription.ReadyEvent{}))
		require.NoError(t, eventbus.Publish(ctx, f.bus, subscription.TopicError, subscription.ErrorEvent{Err: errors.New("late")}))

		f.waitState(t, planselector.StateContainer)
		assert.Equal(t, int32(1), f.source.calls.Load())
		assert.Zero(t, f.bus.Len(subscription.TopicReady.Name()))
		assert.Zero(t, f.bus.Len(subscription.TopicError.Name()))
	})

	t.Run("session error shows error and removes both waits", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.sel.Activate(context.Background())

		ctx := context.Background()
		require.NoError(t, eventbus.Publish(ctx, f.bus, subscription.TopicError, subscription.ErrorEvent{Err: errors.New("down")}))
		assert.Equal(t, planselector.StateError, f.sel.State())
		assert.Zero(t, f.bus.Len(subscription.TopicReady.Name()))

		require.NoError(t, eventbus.Publish(ctx, f.bus, subscription.TopicReady, subscription.ReadyEvent{}))
		assert.Equal(t, planselector.StateError, f.sel.State())
		assert.Zero(t, f.source.calls.Load())
	})

	t.Run("concurrent ready and error start at most one fetch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.source.set([]subscription.Plan{bare}, nil)
		f.sel.Activate(context.Background())
		f.source.ready.Store(true)

		ctx := context.Background()
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_ = eventbus.Publish(ctx, f.bus, subscription.TopicReady, subscription.ReadyEvent{})
			}()
			go func() {
				defer wg.Done()
				_ = eventbus.Publish(ctx, f.bus, subscription.TopicError, subscription.ErrorEvent{Err: errors.New("x")})
			}()
		}
		wg.Wait()

		require.Eventually(t, func() bool {
			s := f.sel.State()
			return s == planselector.StateContainer || s == planselector.StateError
		}, time.Second, time.Millisecond)
		assert.LessOrEqual(t, f.source.calls.Load(), int32(1))
	})
}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("retry after error reloads", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.source.ready.Store(true)
		f.source.set(nil, errors.New("boom"))
		f.sel.Activate(context.Background())
		f.waitState(t, planselector.StateError)

		f.source.set([]subscription.Plan{bare}, nil)
		f.sel.Retry(context.Background())
		f.waitState(t, planselector.StateContainer)
		assert.Equal(t, int32(2), f.source.calls.Load())
	})

	t.Run("newer fetch wins over a stale one", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.source.ready.Store(true)
		gate := make(chan struct{})
		f.source.mu.Lock()
		f.source.gate = gate
		f.source.mu.Unlock()
		f.source.set(nil, errors.New("stale failure"))

		f.sel.Activate(context.Background())
		require.Eventually(t, func() bool { return f.source.calls.Load() == 1 }, time.Second, time.Millisecond)

		f.source.mu.Lock()
		f.source.gate = nil
		f.source.mu.Unlock()
		f.source.set([]subscription.Plan{bare}, nil)
		f.sel.Retry(context.Background())
		f.waitState(t, planselector.StateContainer)

		close(gate)
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, planselector.StateContainer, f.sel.State())
	})
}

func TestSelection(t *testing.T) {
	t.Parallel()

	t.Run("switching frequency keeps the plan", func(t *testing.T) {
		t.Parallel()
		f := loaded(t, weeklyMonthly, single)

		got := f.view.snapshot()
		assert.True(t, got.freqShown)
		assert.Equal(t, "weekly", got.freqMarked)
		assert.Equal(t, []planselector.FrequencyOption{{Value: "weekly", Label: "Weekly"}, {Value: "monthly", Label: "Monthly"}}, got.frequencies)

		require.NoError(t, f.sel.SelectFrequency("monthly"))
		sel, _ := f.sel.Selection()
		assert.Equal(t, "p1", sel.Plan.ID)
		assert.Equal(t, "monthly", sel.Frequency)
		got = f.view.snapshot()
		assert.Equal(t, "monthly", got.freqMarked)
		assert.Equal(t, "Monthly", got.summary.Frequency)
	})

	t.Run("selecting another plan resets the frequency", func(t *testing.T) {
		t.Parallel()
		f := loaded(t, weeklyMonthly, single)
		require.NoError(t, f.sel.SelectFrequency("monthly"))

		require.NoError(t, f.sel.SelectPlan("p2"))
		sel, _ := f.sel.Selection()
		assert.Equal(t, "quarterly", sel.Frequency)
		assert.False(t, f.view.snapshot().freqShown)

		require.NoError(t, f.sel.SelectPlan("p1"))
		sel, _ = f.sel.Selection()
		assert.Equal(t, "weekly", sel.Frequency)
	})

	t.Run("plan without frequencies defaults to monthly", func(t *testing.T) {
		t.Parallel()
		f := loaded(t, bare)

		sel, ok := f.sel.Selection()
		require.True(t, ok)
		assert.Equal(t, "monthly", sel.Frequency)
		assert.Equal(t, planselector.Summary{
			PlanName: "Bare", Frequency: "per monthly", Price: "SAR 10",
		}, *f.view.snapshot().summary)
	})

	t.Run("summary shows shipping", func(t *testing.T) {
		t.Parallel()
		f := loaded(t, weeklyMonthly)
		summary := f.view.snapshot().summary
		require.NotNil(t, summary)
		assert.True(t, summary.FreeShipping)
		assert.Equal(t, "Family", summary.PlanName)
	})

	t.Run("invalid choices are rejected", func(t *testing.T) {
		t.Parallel()
		f := loaded(t, weeklyMonthly)

		assert.ErrorIs(t, f.sel.SelectPlan("nope"), planselector.ErrUnknownPlan)
		assert.ErrorIs(t, f.sel.SelectFrequency("yearly"), planselector.ErrInvalidFrequency)

		sel, _ := f.sel.Selection()
		assert.Equal(t, "weekly", sel.Frequency)
	})

	t.Run("frequency without a plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		assert.ErrorIs(t, f.sel.SelectFrequency("weekly"), planselector.ErrNoSelection)
	})
}

func TestSubscribe(t *testing.T) {
	t.Parallel()

	f := loaded(t, weeklyMonthly, single)
	require.NoError(t, f.sel.SelectFrequency("monthly"))

	var events []subscription.SubscribeEvent
	eventbus.Subscribe(context.Background(), f.bus, subscription.TopicSubscribe, func(_ context.Context, e subscription.SubscribeEvent) {
		events = append(events, e)
	})

	require.NoError(t, f.sel.Subscribe(context.Background()))
	require.Len(t, events, 1)
	assert.Equal(t, "p1", events[0].PlanID)
	assert.Equal(t, "monthly", events[0].Frequency)
	assert.Equal(t, "prod-1", events[0].ProductID)
	assert.Equal(t, weeklyMonthly, events[0].Plan)
	assert.Equal(t, subscription.CheckoutRequest{PlanID: "p1", Frequency: "monthly", ProductID: "prod-1"}, events[0].Request())
}

func TestReset(t *testing.T) {
	t.Parallel()

	f := loaded(t, weeklyMonthly)
	f.sel.Reset()

	assert.Equal(t, planselector.StateLoading, f.sel.State())
	assert.Empty(t, f.sel.Plans())
	_, ok := f.sel.Selection()
	assert.False(t, ok)
	got := f.view.snapshot()
	assert.False(t, got.subscribe)
	assert.Equal(t, planselector.StateLoading, got.states[len(got.states)-1])
}
