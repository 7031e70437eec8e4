package storefront

import (
	"context"
	"slices"
	"sync"

	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/locale"
	"github.com/eshtarek/storefront/pkg/planselector"
)

// region names a part of the page that is re-sent as a whole when it
// changes.
type region string

const (
	regionPlans    region = "plans"
	regionCheckout region = "checkout"
	regionHeader   region = "header"
	regionSignals  region = "signals"
	regionRedirect region = "redirect"
)

var allRegions = []region{regionHeader, regionPlans, regionCheckout, regionSignals, regionRedirect}

var topicUpdate = eventbus.NewTopic[region]("storefront:update")

type planModel struct {
	State            planselector.State
	Cards            []planselector.Card
	Selected         string
	Frequencies      []planselector.FrequencyOption
	Frequency        string
	Summary          *planselector.Summary
	SubscribeEnabled bool
}

type checkoutModel struct {
	Open     bool
	State    checkout.State
	FrameSrc string
}

// snapshot is a consistent copy of everything the browser shows.
type snapshot struct {
	Plans    planModel
	Checkout checkoutModel
	Header   locale.Header
	Busy     bool
	Redirect string
}

// pageView holds the render model of one page and announces changed
// regions on the page bus. Its lock is never held while calling out.
type pageView struct {
	bus *eventbus.Bus

	mu    sync.Mutex
	state snapshot
}

func newPageView(bus *eventbus.Bus) *pageView {
	return &pageView{
		bus: bus,
		state: snapshot{
			Plans:    planModel{State: planselector.StateLoading},
			Checkout: checkoutModel{State: checkout.StateLoading},
			Header:   locale.HeaderState(nil),
		},
	}
}

// pendingRegions collects the regions a stream still has to send. Marking
// never blocks and never loses a region: repeated marks of one region
// coalesce into a single send on the next wake-up.
type pendingRegions struct {
	mu     sync.Mutex
	marked map[region]struct{}
	wake   chan struct{}
}

func newPendingRegions() *pendingRegions {
	return &pendingRegions{
		marked: make(map[region]struct{}, len(allRegions)),
		wake:   make(chan struct{}, 1),
	}
}

func (p *pendingRegions) mark(_ context.Context, r region) {
	p.mu.Lock()
	p.marked[r] = struct{}{}
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// take returns the marked regions in page order, redirect last, and clears
// them.
func (p *pendingRegions) take() []region {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]region, 0, len(p.marked))
	for _, r := range allRegions {
		if _, ok := p.marked[r]; ok {
			out = append(out, r)
		}
	}
	clear(p.marked)
	return out
}

func (v *pageView) update(r region, fn func(s *snapshot)) {
	v.mu.Lock()
	fn(&v.state)
	v.mu.Unlock()
	// The bus is closed once the page is gone; nobody is listening then.
	_ = eventbus.Publish(context.Background(), v.bus, topicUpdate, r)
}

func (v *pageView) snapshot() snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Plans.Cards = slices.Clone(s.Plans.Cards)
	s.Plans.Frequencies = slices.Clone(s.Plans.Frequencies)
	if s.Plans.Summary != nil {
		sum := *s.Plans.Summary
		s.Plans.Summary = &sum
	}
	return s
}

// takeRedirect returns the pending navigation once.
func (v *pageView) takeRedirect() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	url := v.state.Redirect
	v.state.Redirect = ""
	return url
}

func (v *pageView) setHeader(h locale.Header) {
	v.update(regionHeader, func(s *snapshot) { s.Header = h })
}

// planView adapts pageView to planselector.View.
type planView struct{ *pageView }

var _ planselector.View = planView{}

func (v planView) ShowState(st planselector.State) {
	v.update(regionPlans, func(s *snapshot) { s.Plans.State = st })
}

func (v planView) RenderPlans(cards []planselector.Card) {
	v.update(regionPlans, func(s *snapshot) {
		s.Plans.Cards = slices.Clone(cards)
		s.Plans.Selected = ""
	})
}

func (v planView) MarkSelected(planID string) {
	v.update(regionPlans, func(s *snapshot) { s.Plans.Selected = planID })
}

func (v planView) RenderFrequencies(opts []planselector.FrequencyOption, selected string) {
	v.update(regionPlans, func(s *snapshot) {
		s.Plans.Frequencies = slices.Clone(opts)
		s.Plans.Frequency = selected
	})
}

func (v planView) HideFrequencies() {
	v.update(regionPlans, func(s *snapshot) {
		s.Plans.Frequencies = nil
		s.Plans.Frequency = ""
	})
}

func (v planView) ShowSummary(sum planselector.Summary) {
	v.update(regionPlans, func(s *snapshot) { s.Plans.Summary = &sum })
}

func (v planView) SetSubscribeEnabled(enabled bool) {
	v.update(regionSignals, func(s *snapshot) { s.Plans.SubscribeEnabled = enabled })
}

// checkoutView adapts pageView to checkout.View.
type checkoutView struct{ *pageView }

var _ checkout.View = checkoutView{}

func (v checkoutView) Open() {
	v.update(regionCheckout, func(s *snapshot) { s.Checkout.Open = true })
}

func (v checkoutView) Close() {
	v.update(regionCheckout, func(s *snapshot) { s.Checkout.Open = false })
}

func (v checkoutView) ShowState(st checkout.State) {
	v.update(regionCheckout, func(s *snapshot) { s.Checkout.State = st })
}

func (v checkoutView) SetFrameSource(url string) {
	v.update(regionCheckout, func(s *snapshot) { s.Checkout.FrameSrc = url })
}

func (v checkoutView) SetSubscribeBusy(busy bool) {
	v.update(regionSignals, func(s *snapshot) { s.Busy = busy })
}

func (v checkoutView) Navigate(url string) {
	v.update(regionRedirect, func(s *snapshot) { s.Redirect = url })
}
