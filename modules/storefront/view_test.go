package storefront

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/i18n"
	"github.com/eshtarek/storefront/pkg/locale"
	"github.com/eshtarek/storefront/pkg/planselector"
)

func TestPageView(t *testing.T) {
	t.Parallel()

	t.Run("announces the changed region", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		t.Cleanup(func() { _ = bus.Close() })
		v := newPageView(bus)

		updates, _ := eventbus.Channel(context.Background(), bus, topicUpdate, 8)
		planView{v}.SetSubscribeEnabled(true)
		checkoutView{v}.Open()
		planView{v}.ShowState(planselector.StateContainer)

		assert.Equal(t, regionSignals, <-updates)
		assert.Equal(t, regionCheckout, <-updates)
		assert.Equal(t, regionPlans, <-updates)

		s := v.snapshot()
		assert.True(t, s.Plans.SubscribeEnabled)
		assert.True(t, s.Checkout.Open)
		assert.Equal(t, planselector.StateContainer, s.Plans.State)
	})

	t.Run("pending regions coalesce and keep redirect last", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		t.Cleanup(func() { _ = bus.Close() })
		v := newPageView(bus)
		pending := newPendingRegions()
		eventbus.Subscribe(context.Background(), bus, topicUpdate, pending.mark)

		cv := checkoutView{v}
		for range 500 {
			cv.ShowState(checkout.StateLoading)
			cv.SetSubscribeBusy(true)
		}
		cv.Navigate("https://pay.example.com/s/1")
		planView{v}.ShowState(planselector.StateContainer)

		select {
		case <-pending.wake:
		default:
			require.Fail(t, "no wake-up signalled")
		}
		assert.Equal(t, []region{regionPlans, regionCheckout, regionSignals, regionRedirect}, pending.take())
		assert.Empty(t, pending.take())
		assert.Equal(t, "https://pay.example.com/s/1", v.takeRedirect())
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		t.Parallel()
		v := newPageView(eventbus.New())
		pv := planView{v}
		pv.RenderPlans([]planselector.Card{{PlanID: "p1", Name: "Basic"}})
		pv.ShowSummary(planselector.Summary{PlanName: "Basic"})

		s := v.snapshot()
		s.Plans.Cards[0].Name = "changed"
		s.Plans.Summary.PlanName = "changed"

		again := v.snapshot()
		assert.Equal(t, "Basic", again.Plans.Cards[0].Name)
		assert.Equal(t, "Basic", again.Plans.Summary.PlanName)
	})

	t.Run("redirect is taken once", func(t *testing.T) {
		t.Parallel()
		v := newPageView(eventbus.New())
		checkoutView{v}.Navigate("https://checkout.eshtarek.com/s/1")

		assert.Equal(t, "https://checkout.eshtarek.com/s/1", v.takeRedirect())
		assert.Empty(t, v.takeRedirect())
	})

	t.Run("closed bus is ignored", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		require.NoError(t, bus.Close())
		v := newPageView(bus)

		assert.NotPanics(t, func() { checkoutView{v}.SetSubscribeBusy(true) })
		assert.True(t, v.snapshot().Busy)
	})

	t.Run("frequencies hide with the selection", func(t *testing.T) {
		t.Parallel()
		v := newPageView(eventbus.New())
		pv := planView{v}
		pv.RenderFrequencies([]planselector.FrequencyOption{{Value: "1", Label: "Weekly"}}, "1")
		assert.Equal(t, "1", v.snapshot().Plans.Frequency)

		pv.HideFrequencies()
		s := v.snapshot()
		assert.Empty(t, s.Plans.Frequencies)
		assert.Empty(t, s.Plans.Frequency)
	})
}

func testRenderer(t *testing.T) renderer {
	t.Helper()
	tr := i18n.NewTranslator(i18n.Builtin())
	return renderer{
		cfg:       Config{BasePath: "/shop", Countries: []string{"sa", "ae"}, DatastarScript: "/ds.js"}.normalized(),
		loc:       i18n.NewLocalizer(tr, "en"),
		languages: languagesOf(tr),
		pageID:    "page-1",
		path:      "/en/products/42",
		portalURL: "https://portal.example.com",
	}
}

func html(t *testing.T, fn func(*htmlWriter)) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, component(fn).Render(context.Background(), &buf))
	return buf.String()
}

func TestRenderer(t *testing.T) {
	t.Parallel()

	t.Run("plans escape user content", func(t *testing.T) {
		t.Parallel()
		r := testRenderer(t)
		out := html(t, func(h *htmlWriter) {
			r.writePlans(h, planModel{
				State:    planselector.StateContainer,
				Cards:    []planselector.Card{{PlanID: "p1", Name: "<b>Basic</b>", Price: "SAR 49.00", Popular: true}},
				Selected: "p1",
				Summary:  &planselector.Summary{PlanName: "Basic", FreeShipping: true},
			}, false)
		})

		assert.Contains(t, out, `id="eshtarek-plans"`)
		assert.Contains(t, out, "&lt;b&gt;Basic&lt;/b&gt;")
		assert.NotContains(t, out, "<b>Basic</b>")
		assert.Contains(t, out, `class="plan-card selected"`)
		assert.Contains(t, out, "/shop/pages/page-1/plans/p1/select")
		assert.Contains(t, out, "Free shipping")
		assert.Contains(t, out, "Most popular")
		assert.Contains(t, out, " disabled ")
	})

	t.Run("subscribe enabled when a plan is chosen", func(t *testing.T) {
		t.Parallel()
		r := testRenderer(t)
		out := html(t, func(h *htmlWriter) {
			r.writePlans(h, planModel{State: planselector.StateContainer, SubscribeEnabled: true}, false)
		})
		assert.NotContains(t, out, " disabled ")
		assert.Contains(t, out, "data-attr:disabled")
	})

	t.Run("plan error offers retry", func(t *testing.T) {
		t.Parallel()
		r := testRenderer(t)
		out := html(t, func(h *htmlWriter) { r.writePlans(h, planModel{State: planselector.StateError}, false) })
		assert.Contains(t, out, "/shop/pages/page-1/plans/retry")
		assert.Contains(t, out, "Try again")
	})

	t.Run("checkout states", func(t *testing.T) {
		t.Parallel()
		r := testRenderer(t)

		out := html(t, func(h *htmlWriter) {
			r.writeCheckout(h, checkoutModel{Open: true, State: checkout.StatePresenting, FrameSrc: "https://checkout.eshtarek.com/s/1"})
		})
		assert.Contains(t, out, `<iframe allow="payment" src="https://checkout.eshtarek.com/s/1"`)
		assert.NotContains(t, out, " hidden")

		out = html(t, func(h *htmlWriter) {
			r.writeCheckout(h, checkoutModel{Open: true, State: checkout.StateSuccess})
		})
		assert.Contains(t, out, `href="https://portal.example.com"`)
		assert.Contains(t, out, "Manage subscription")

		out = html(t, func(h *htmlWriter) { r.writeCheckout(h, checkoutModel{State: checkout.StateLoading}) })
		assert.Contains(t, out, " hidden")
	})

	t.Run("checkout closes from button, backdrop and escape", func(t *testing.T) {
		t.Parallel()
		r := testRenderer(t)
		closeAction := "@post(&#39;/shop/pages/page-1/checkout/close&#39;)"

		out := html(t, func(h *htmlWriter) {
			r.writeCheckout(h, checkoutModel{Open: true, State: checkout.StateLoading})
		})
		assert.Contains(t, out, `<div class="eshtarek-backdrop" id="eshtarek-checkout" data-on:click="evt.target === el &amp;&amp; `+closeAction+`"`)
		assert.Contains(t, out, `data-on:keydown__window="evt.key === &#39;Escape&#39; &amp;&amp; `+closeAction+`"`)
		assert.Contains(t, out, `<button type="button" class="close" aria-label="Close" data-on:click="`+closeAction+`"`)
		assert.Contains(t, out, `<div class="eshtarek-modal" role="dialog" aria-modal="true" data-state="loading">`)

		out = html(t, func(h *htmlWriter) { r.writeCheckout(h, checkoutModel{State: checkout.StateLoading}) })
		assert.NotContains(t, out, "keydown")
	})

	t.Run("header follows the customer", func(t *testing.T) {
		t.Parallel()
		r := testRenderer(t)

		out := html(t, func(h *htmlWriter) { r.writeHeader(h, locale.HeaderState(nil)) })
		assert.Contains(t, out, `<a id="header-login-btn" href="/shop/account/login">`)
		assert.Contains(t, out, `<a id="header-profile-btn" href="/account-profile" hidden>`)

		out = html(t, func(h *htmlWriter) { r.writeHeader(h, locale.HeaderState(&locale.Customer{Name: "Sara"})) })
		assert.Contains(t, out, `href="/shop/account/login" hidden>`)
		assert.Contains(t, out, "Sara")
		assert.Contains(t, out, `<option value="en" selected>`)
	})

	t.Run("page document", func(t *testing.T) {
		t.Parallel()
		r := testRenderer(t)
		v := newPageView(eventbus.New())

		var buf bytes.Buffer
		require.NoError(t, r.productPage(v.snapshot()).Render(context.Background(), &buf))
		out := buf.String()

		assert.Contains(t, out, `<html lang="en" dir="ltr">`)
		assert.Contains(t, out, `src="/ds.js"`)
		assert.Contains(t, out, `data-init="@get(&#39;/shop/pages/page-1/stream&#39;)"`)
		assert.Contains(t, out, `"/shop/pages/page-1/checkout/messages"`)
	})
}

func TestConfigNormalized(t *testing.T) {
	t.Parallel()

	cfg := Config{BasePath: " /shop/ "}.normalized()
	assert.Equal(t, "/shop", cfg.BasePath)
	assert.Equal(t, 1024, cfg.PageCapacity)
	assert.Equal(t, "lang", cfg.LocaleCookie)
	assert.Equal(t, "ar-SA", cfg.DefaultLocale)
	assert.Equal(t, checkout.DefaultResetDelay, cfg.ResetDelay)
	assert.Equal(t, []string{"sa"}, cfg.Countries)
}
