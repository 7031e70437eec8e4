package storefront

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/i18n"
	"github.com/eshtarek/storefront/pkg/locale"
	"github.com/eshtarek/storefront/pkg/planselector"
)

// Element ids patched by the stream.
const (
	idHeader   = "eshtarek-header"
	idPlans    = "eshtarek-plans"
	idCheckout = "eshtarek-checkout"
)

// renderer turns a page snapshot into HTML.
type renderer struct {
	cfg       Config
	loc       *i18n.Localizer
	languages []string
	pageID    string
	path      string
	portalURL string
}

func (r renderer) action(parts ...string) string {
	return r.cfg.BasePath + "/pages/" + url.PathEscape(r.pageID) + "/" + strings.Join(parts, "/")
}

func (r renderer) post(parts ...string) string {
	return "@post('" + r.action(parts...) + "')"
}

type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (h *htmlWriter) flag(name string, on bool) {
	if on {
		h.raw(" ", name)
	}
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(h)
		return h.err
	})
}

func signals(s snapshot) map[string]any {
	return map[string]any{
		"subscribeBusy":    s.Busy,
		"subscribeEnabled": s.Plans.SubscribeEnabled,
	}
}

// productPage is the full document of a product page.
func (r renderer) productPage(s snapshot) templ.Component {
	initial, _ := json.Marshal(signals(s))
	return component(func(h *htmlWriter) {
		h.raw("<!doctype html><html")
		h.attr("lang", r.loc.Language())
		h.attr("dir", r.loc.Direction())
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(r.loc.T("choosePlan"))
		h.raw(`</title><script type="module"`)
		h.attr("src", r.cfg.DatastarScript)
		h.raw("></script></head><body")
		h.attr("data-signals", string(initial))
		h.raw(">")
		r.writeHeader(h, s.Header)
		h.raw("<main")
		h.attr("data-init", "@get('"+r.action("stream")+"')")
		h.raw(">")
		r.writePlans(h, s.Plans, s.Busy)
		r.writeCheckout(h, s.Checkout)
		h.raw("</main>")
		r.writeBridge(h)
		h.raw("</body></html>")
	})
}

func (r renderer) header(hd locale.Header) templ.Component {
	return component(func(h *htmlWriter) { r.writeHeader(h, hd) })
}

func (r renderer) plans(m planModel, busy bool) templ.Component {
	return component(func(h *htmlWriter) { r.writePlans(h, m, busy) })
}

func (r renderer) checkout(m checkoutModel) templ.Component {
	return component(func(h *htmlWriter) { r.writeCheckout(h, m) })
}

func (r renderer) writeHeader(h *htmlWriter, hd locale.Header) {
	profile := locale.ProfileURL(r.cfg.ProfileURL)

	h.raw("<header")
	h.attr("id", idHeader)
	h.raw("><form data-locale-form")
	h.attr("method", "post")
	h.attr("action", r.cfg.BasePath+"/locale")
	h.raw(`><input type="hidden" name="path"`)
	h.attr("value", r.path)
	h.raw("><label>")
	h.text(r.loc.T("country"))
	h.raw(` <select name="country">`)
	current := r.loc.Country()
	if current == "" {
		current = strings.ToLower(r.cfg.DefaultCountry)
	}
	for _, c := range r.cfg.Countries {
		h.raw("<option")
		h.attr("value", c)
		h.flag("selected", strings.EqualFold(c, current))
		h.raw(">")
		h.text(strings.ToUpper(c))
		h.raw("</option>")
	}
	h.raw("</select></label><label>")
	h.text(r.loc.T("language"))
	h.raw(` <select name="language">`)
	for _, lang := range r.languages {
		h.raw("<option")
		h.attr("value", lang)
		h.flag("selected", lang == r.loc.Language())
		h.raw(">")
		h.text(lang)
		h.raw("</option>")
	}
	h.raw(`</select></label><button type="submit">`)
	h.text(r.loc.T("apply"))
	h.raw("</button></form>")

	h.raw(`<a id="header-login-btn"`)
	h.attr("href", r.cfg.BasePath+"/account/login")
	h.flag("hidden", !hd.ShowLogin)
	h.raw(">")
	h.text(r.loc.T("login"))
	h.raw(`</a><a id="header-profile-btn"`)
	h.attr("href", profile)
	h.flag("hidden", !hd.ShowProfile)
	h.raw(">")
	h.text(r.loc.T("profile"))
	if hd.CustomerName != "" {
		h.raw(" <span class=\"customer-name\">")
		h.text(hd.CustomerName)
		h.raw("</span>")
	}
	h.raw(`</a><nav id="mobile-logged-in-links"`)
	h.flag("hidden", !hd.MobileLoggedIn)
	h.raw("><a")
	h.attr("href", profile)
	h.raw(">")
	h.text(r.loc.T("profile"))
	h.raw("</a></nav></header>")
}

func (r renderer) writePlans(h *htmlWriter, m planModel, busy bool) {
	h.raw("<section")
	h.attr("id", idPlans)
	h.attr("data-state", string(m.State))
	h.raw("><h2>")
	h.text(r.loc.T("choosePlan"))
	h.raw("</h2>")

	switch m.State {
	case planselector.StateLoading:
		h.raw(`<div class="eshtarek-loading" role="status">`)
		h.text(r.loc.T("loadingPlans"))
		h.raw("</div>")
	case planselector.StateEmpty:
		h.raw(`<div class="eshtarek-empty">`)
		h.text(r.loc.T("plansEmpty"))
		h.raw("</div>")
	case planselector.StateError:
		h.raw(`<div class="eshtarek-error" role="alert"><p>`)
		h.text(r.loc.T("plansError"))
		h.raw(`</p><button type="button"`)
		h.attr("data-on:click", r.post("plans", "retry"))
		h.raw(">")
		h.text(r.loc.T("retry"))
		h.raw("</button></div>")
	case planselector.StateContainer:
		r.writeCards(h, m)
		r.writeFrequencies(h, m)
		r.writeSummary(h, m.Summary)
	}

	h.raw(`<button type="button" id="eshtarek-subscribe"`)
	h.flag("disabled", !m.SubscribeEnabled || busy)
	h.attr("data-attr:disabled", "!$subscribeEnabled || $subscribeBusy")
	h.attr("data-on:click", r.post("subscribe"))
	h.raw(">")
	h.text(r.loc.T("subscribe"))
	h.raw(`<span class="spinner" data-show="$subscribeBusy"`)
	h.flag("hidden", !busy)
	h.raw("></span></button></section>")
}

func (r renderer) writeCards(h *htmlWriter, m planModel) {
	h.raw(`<ul class="eshtarek-plan-cards">`)
	for _, c := range m.Cards {
		class := "plan-card"
		if c.PlanID == m.Selected {
			class += " selected"
		}
		h.raw("<li")
		h.attr("class", class)
		h.attr("data-plan-id", c.PlanID)
		h.attr("aria-selected", boolString(c.PlanID == m.Selected))
		h.attr("data-on:click", r.post("plans", url.PathEscape(c.PlanID), "select"))
		h.raw(">")
		if c.Popular {
			h.raw(`<span class="badge popular">`)
			h.text(r.loc.T("mostPopular"))
			h.raw("</span>")
		}
		if c.Savings != "" {
			h.raw(`<span class="badge savings">`)
			h.text(c.Savings)
			h.raw("</span>")
		}
		h.raw("<h3>")
		h.text(c.Name)
		h.raw("</h3>")
		if c.Description != "" {
			h.raw("<p>")
			h.text(c.Description)
			h.raw("</p>")
		}
		h.raw(`<span class="price">`)
		h.text(c.Price)
		h.raw("</span></li>")
	}
	h.raw("</ul>")
}

func (r renderer) writeFrequencies(h *htmlWriter, m planModel) {
	if len(m.Frequencies) == 0 {
		return
	}
	h.raw(`<div class="eshtarek-frequencies"><h3>`)
	h.text(r.loc.T("chooseFrequency"))
	h.raw("</h3>")
	for _, f := range m.Frequencies {
		h.raw(`<button type="button"`)
		h.attr("data-frequency", f.Value)
		h.attr("aria-pressed", boolString(f.Value == m.Frequency))
		h.attr("data-on:click", r.post("frequencies", url.PathEscape(f.Value), "select"))
		h.raw(">")
		h.text(f.Label)
		h.raw("</button>")
	}
	h.raw("</div>")
}

func (r renderer) writeSummary(h *htmlWriter, sum *planselector.Summary) {
	if sum == nil {
		return
	}
	h.raw(`<div class="eshtarek-summary"><h3>`)
	h.text(r.loc.T("summary"))
	h.raw(`</h3><p class="plan">`)
	h.text(sum.PlanName)
	h.raw(`</p><p class="frequency">`)
	h.text(sum.Frequency)
	h.raw(`</p><p class="price">`)
	h.text(sum.Price)
	h.raw("</p>")
	if sum.FreeShipping {
		h.raw(`<p class="shipping">`)
		h.text(r.loc.T("freeShipping"))
		h.raw("</p>")
	}
	h.raw("</div>")
}

// writeCheckout renders the modal inside its backdrop. The close button, a
// click on the backdrop itself and Escape all close it; Escape is only bound
// while the modal is open.
func (r renderer) writeCheckout(h *htmlWriter, m checkoutModel) {
	closeAction := r.post("checkout", "close")

	h.raw(`<div class="eshtarek-backdrop"`)
	h.attr("id", idCheckout)
	h.flag("hidden", !m.Open)
	h.attr("data-on:click", "evt.target === el && "+closeAction)
	if m.Open {
		h.attr("data-on:keydown__window", "evt.key === 'Escape' && "+closeAction)
	}
	h.raw(`><div class="eshtarek-modal" role="dialog" aria-modal="true"`)
	h.attr("data-state", string(m.State))
	h.raw(`><button type="button" class="close"`)
	h.attr("aria-label", r.loc.T("close"))
	h.attr("data-on:click", closeAction)
	h.raw(">&times;</button>")

	switch m.State {
	case checkout.StateLoading:
		h.raw(`<div class="eshtarek-loading" role="status">`)
		h.text(r.loc.T("checkoutLoading"))
		h.raw("</div>")
	case checkout.StatePresenting:
		if m.FrameSrc != "" {
			h.raw(`<iframe allow="payment"`)
			h.attr("src", m.FrameSrc)
			h.attr("title", r.loc.T("subscribe"))
			h.raw("></iframe>")
		}
	case checkout.StateSuccess:
		h.raw(`<div class="eshtarek-success"><p>`)
		h.text(r.loc.T("checkoutSuccess"))
		h.raw(`</p><a target="_blank" rel="noopener"`)
		h.attr("href", r.portalURL)
		h.raw(">")
		h.text(r.loc.T("manageSubscription"))
		h.raw("</a></div>")
	case checkout.StateError:
		h.raw(`<div class="eshtarek-error" role="alert"><p>`)
		h.text(r.loc.T("checkoutError"))
		h.raw(`</p><button type="button"`)
		h.attr("data-on:click", r.post("checkout", "retry"))
		h.raw(">")
		h.text(r.loc.T("retry"))
		h.raw("</button></div>")
	}
	h.raw("</div></div>")
}

// writeBridge forwards window messages from the checkout frame and the
// store platform's customer event to the page endpoints, and releases the
// page when the browser leaves it.
func (r renderer) writeBridge(h *htmlWriter) {
	messages, _ := json.Marshal(r.action("checkout", "messages"))
	customer, _ := json.Marshal(r.action("customer"))
	release, _ := json.Marshal(r.action("release"))
	h.raw("<script>(function(){",
		"function send(u,b){fetch(u,{method:'POST',headers:{'Content-Type':'application/json'},body:JSON.stringify(b)});}",
		"window.addEventListener('message',function(e){var d=e.data;",
		"if(typeof d==='string'){try{d=JSON.parse(d);}catch(_){return;}}",
		"if(!d||typeof d!=='object')return;send(", string(messages), ",{origin:e.origin,data:d});});",
		"document.addEventListener('zid-customer-fetched',function(e){var c=e.detail&&e.detail.customer;",
		"send(", string(customer), ",{name:c&&c.name?String(c.name):''});});",
		"window.addEventListener('pagehide',function(){navigator.sendBeacon(", string(release), ");});",
		"window.addEventListener('pageshow',function(e){if(e.persisted)location.reload();});",
		"})();</script>")
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// languagesOf returns the sorted languages offered in the switcher.
func languagesOf(tr *i18n.Translator) []string {
	langs := slices.Clone(tr.Languages())
	slices.Sort(langs)
	return langs
}
