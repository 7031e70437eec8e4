package storefront

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eshtarek/storefront/handler"
	"github.com/eshtarek/storefront/pkg/binder"
	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/locale"
	"github.com/eshtarek/storefront/pkg/logger"
	"github.com/eshtarek/storefront/pkg/planselector"
	"github.com/eshtarek/storefront/pkg/sanitizer"
)

// PageHeader carries the id of a freshly opened page.
const PageHeader = "X-Storefront-Page"

var (
	errUnknownPlan      = handler.NewHTTPError(http.StatusNotFound, "unknown_plan")
	errInvalidFrequency = handler.NewHTTPError(http.StatusBadRequest, "invalid_frequency")
	errNoSelection      = handler.NewHTTPError(http.StatusConflict, "no_selection")
)

func (m *Module) routes(r chi.Router) {
	path := binder.Path(chi.URLParam)

	r.Get("/products/{productID}", handler.Wrap(m.productPage,
		handler.WithBinders[productRequest](path),
		handler.WithErrorHandler[productRequest](m.errorHandler),
	))
	r.Post("/locale", handler.Wrap(m.switchLocale,
		handler.WithBinders[localeRequest](binder.Form()),
		handler.WithErrorHandler[localeRequest](m.errorHandler),
	))
	r.Get("/account/login", handler.Wrap(m.login,
		handler.WithErrorHandler[struct{}](m.errorHandler),
	))

	r.Route("/pages/{pageID}", func(r chi.Router) {
		r.Get("/stream", handler.Wrap(m.stream,
			handler.WithBinders[pageRequest](path),
			handler.WithErrorHandler[pageRequest](m.errorHandler),
		))
		r.Post("/release", handler.Wrap(m.releasePage,
			handler.WithBinders[pageRequest](path),
			handler.WithErrorHandler[pageRequest](m.errorHandler),
		))
		r.Group(m.actions)
	})
}

// actions are the throttled page interactions.
func (m *Module) actions(r chi.Router) {
	path := binder.Path(chi.URLParam)
	r.Use(m.throttle)

	r.Post("/plans/retry", handler.Wrap(m.retryPlans,
		handler.WithBinders[pageRequest](path),
		handler.WithErrorHandler[pageRequest](m.errorHandler),
	))
	r.Post("/plans/{planID}/select", handler.Wrap(m.selectPlan,
		handler.WithBinders[planRequest](path),
		handler.WithErrorHandler[planRequest](m.errorHandler),
	))
	r.Post("/frequencies/{value}/select", handler.Wrap(m.selectFrequency,
		handler.WithBinders[frequencyRequest](path),
		handler.WithErrorHandler[frequencyRequest](m.errorHandler),
	))
	r.Post("/subscribe", handler.Wrap(m.subscribe,
		handler.WithBinders[pageRequest](path),
		handler.WithErrorHandler[pageRequest](m.errorHandler),
	))
	r.Post("/checkout/close", handler.Wrap(m.closeCheckout,
		handler.WithBinders[pageRequest](path),
		handler.WithErrorHandler[pageRequest](m.errorHandler),
	))
	r.Post("/checkout/retry", handler.Wrap(m.retryCheckout,
		handler.WithBinders[pageRequest](path),
		handler.WithErrorHandler[pageRequest](m.errorHandler),
	))
	// Path last, so the body cannot override the page id.
	r.Post("/checkout/messages", handler.Wrap(m.checkoutMessage,
		handler.WithBinders[messageRequest](binder.JSON(), path),
		handler.WithErrorHandler[messageRequest](m.errorHandler),
	))
	r.Post("/customer", handler.Wrap(m.customer,
		handler.WithBinders[customerRequest](binder.JSON(), path),
		handler.WithErrorHandler[customerRequest](m.errorHandler),
	))
}

type productRequest struct {
	ProductID string `path:"productID"`
}

type pageRequest struct {
	PageID string `path:"pageID" json:"-"`
}

type planRequest struct {
	PageID string `path:"pageID"`
	PlanID string `path:"planID"`
}

type frequencyRequest struct {
	PageID string `path:"pageID"`
	Value  string `path:"value"`
}

type messageRequest struct {
	PageID string         `path:"pageID" json:"-"`
	Origin string         `path:"-" json:"origin"`
	Data   map[string]any `path:"-" json:"data"`
}

type customerRequest struct {
	PageID string `path:"pageID" json:"-"`
	Name   string `path:"-" json:"name"`
}

type localeRequest struct {
	Country  string `form:"country"`
	Language string `form:"language"`
	Path     string `form:"path"`
}

func (m *Module) productPage(ctx handler.Context, req productRequest) handler.Response {
	if req.ProductID == "" {
		return handler.Error(handler.ErrNotFound)
	}
	p, err := m.open(ctx, req.ProductID)
	if err != nil {
		return handler.Error(err)
	}
	ctx.ResponseWriter().Header().Set(PageHeader, p.ID())
	ctx.ResponseWriter().Header().Set("Cache-Control", "no-store")
	return handler.Page(p.renderer(m.cfg, m.languages).productPage(p.view.snapshot()))
}

// stream replays every region and then follows the page's updates until
// the client goes away or the page is closed.
func (m *Module) stream(_ handler.Context, req pageRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.SSE(func(s handler.Stream) error {
		// The stream outlives the server write timeout.
		_ = http.NewResponseController(s.ResponseWriter()).SetWriteDeadline(time.Time{})

		// Subscribe before the replay so nothing published in between is lost.
		pending := newPendingRegions()
		sub := eventbus.Subscribe(s, p.bus, topicUpdate, pending.mark)
		defer sub.Unsubscribe()

		rd := p.renderer(m.cfg, m.languages)
		for _, rg := range allRegions {
			if err := m.send(s, p, rd, rg); err != nil {
				m.logger.DebugContext(s, "stream ended during replay", logger.PageID(p.ID()), logger.Error(err))
				return nil
			}
		}
		for {
			select {
			case <-s.Done():
				return nil
			case <-p.Done():
				return nil
			case <-pending.wake:
				for _, rg := range pending.take() {
					if err := m.send(s, p, rd, rg); err != nil {
						m.logger.DebugContext(s, "stream ended", logger.PageID(p.ID()), logger.Error(err))
						return nil
					}
				}
			}
		}
	})
}

func (m *Module) send(s handler.Stream, p *Page, rd renderer, rg region) error {
	snap := p.view.snapshot()
	switch rg {
	case regionHeader:
		return s.Patch(rd.header(snap.Header))
	case regionPlans:
		return s.Patch(rd.plans(snap.Plans, snap.Busy))
	case regionCheckout:
		return s.Patch(rd.checkout(snap.Checkout))
	case regionSignals:
		return s.Signals(signals(snap))
	case regionRedirect:
		if url := p.view.takeRedirect(); url != "" {
			return s.Redirect(url)
		}
	}
	return nil
}

func (m *Module) releasePage(_ handler.Context, req pageRequest) handler.Response {
	m.release(req.PageID)
	return handler.Empty()
}

func (m *Module) retryPlans(_ handler.Context, req pageRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	p.selector.Retry(p.ctx)
	return handler.Empty()
}

func (m *Module) selectPlan(_ handler.Context, req planRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	if err := p.selector.SelectPlan(req.PlanID); err != nil {
		return handler.Error(selectionError(err))
	}
	return handler.Empty()
}

func (m *Module) selectFrequency(_ handler.Context, req frequencyRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	if err := p.selector.SelectFrequency(req.Value); err != nil {
		return handler.Error(selectionError(err))
	}
	return handler.Empty()
}

func (m *Module) subscribe(_ handler.Context, req pageRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	// The checkout outlives the request; it is bound to the page instead.
	if err := p.selector.Subscribe(p.ctx); err != nil {
		if errors.Is(err, eventbus.ErrBusClosed) {
			return handler.Error(errors.Join(ErrPageNotFound, err))
		}
		return handler.Error(selectionError(err))
	}
	return handler.Empty()
}

func (m *Module) closeCheckout(_ handler.Context, req pageRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	p.checkout.Close()
	return handler.Empty()
}

func (m *Module) retryCheckout(_ handler.Context, req pageRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	if !p.checkout.Retry(p.ctx) {
		return handler.Error(errNoSelection)
	}
	return handler.Empty()
}

func (m *Module) checkoutMessage(ctx handler.Context, req messageRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	handled := p.checkout.HandleMessage(ctx, checkout.Message{Origin: req.Origin, Data: req.Data})
	return handler.JSON(map[string]bool{"handled": handled})
}

func (m *Module) customer(_ handler.Context, req customerRequest) handler.Response {
	p, err := m.page(req.PageID)
	if err != nil {
		return handler.Error(err)
	}
	p.SetCustomer(&locale.Customer{Name: sanitizer.DisplayName(req.Name)})
	return handler.Empty()
}

func (m *Module) switchLocale(ctx handler.Context, req localeRequest) handler.Response {
	loc := m.localizer(ctx)
	country := loc.Country()
	if country == "" {
		country = m.cfg.DefaultCountry
	}
	nav := locale.Navigator{
		DefaultCountry:  m.cfg.DefaultCountry,
		CurrentLanguage: loc.Language(),
		CurrentCountry:  country,
	}
	return handler.Redirect(nav.URL(req.Path, req.Country, req.Language))
}

func (m *Module) login(handler.Context, struct{}) handler.Response {
	return handler.Redirect(locale.ProfileURL(m.cfg.ProfileURL))
}

func selectionError(err error) error {
	switch {
	case errors.Is(err, planselector.ErrUnknownPlan):
		return errors.Join(errUnknownPlan, err)
	case errors.Is(err, planselector.ErrInvalidFrequency):
		return errors.Join(errInvalidFrequency, err)
	case errors.Is(err, planselector.ErrNoSelection):
		return errors.Join(errNoSelection, err)
	default:
		return err
	}
}
