package storefront

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/i18n"
	"github.com/eshtarek/storefront/pkg/locale"
	"github.com/eshtarek/storefront/pkg/logger"
	"github.com/eshtarek/storefront/pkg/metrics"
	"github.com/eshtarek/storefront/pkg/planselector"
	"github.com/eshtarek/storefront/pkg/subscription"
)

// Page is one browser page load: its own bus, session client, plan
// selector and checkout controller.
type Page struct {
	id        string
	productID string
	path      string
	localizer *i18n.Localizer
	navigator locale.Navigator
	logger    *slog.Logger
	metrics   *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	bus      *eventbus.Bus
	client   *subscription.Client
	selector *planselector.Selector
	checkout *checkout.Controller
	view     *pageView

	start sync.Once
	close sync.Once
}

type pageDeps struct {
	cfg         Config
	log         *slog.Logger
	clientOpts  []subscription.Option
	checkoutOps []checkout.Option
	metrics     *metrics.Metrics
}

func newPage(id, productID, path string, loc *i18n.Localizer, deps pageDeps) *Page {
	log := deps.log.With(logger.PageID(id), logger.ProductID(productID))
	ctx, cancel := context.WithCancel(context.Background())
	bus := eventbus.New(eventbus.WithLogger(log))
	view := newPageView(bus)

	clientOpts := append([]subscription.Option{subscription.WithLogger(log)}, deps.clientOpts...)
	client := subscription.NewClient(deps.cfg.Subscription, bus, clientOpts...)
	cfg := client.Config()

	checkoutOpts := append([]checkout.Option{
		checkout.WithLogger(log),
		checkout.WithAllowedOrigins(cfg.APIURL, cfg.PortalURL),
		checkout.WithResetDelay(deps.cfg.ResetDelay),
	}, deps.checkoutOps...)

	country := loc.Country()
	if country == "" {
		country = strings.ToLower(deps.cfg.DefaultCountry)
	}

	return &Page{
		id:        id,
		productID: productID,
		path:      path,
		localizer: loc,
		navigator: locale.Navigator{
			DefaultCountry:  deps.cfg.DefaultCountry,
			CurrentLanguage: loc.Language(),
			CurrentCountry:  country,
		},
		logger:   log,
		metrics:  deps.metrics,
		ctx:      ctx,
		cancel:   cancel,
		bus:      bus,
		client:   client,
		selector: planselector.New(productID, client, bus, planView{view}, loc, planselector.WithLogger(log)),
		checkout: checkout.New(client, bus, checkoutView{view}, checkoutOpts...),
		view:     view,
	}
}

// ID returns the page identifier used in action URLs.
func (p *Page) ID() string { return p.id }

// ProductID returns the product the page sells.
func (p *Page) ProductID() string { return p.productID }

// Selector returns the page's plan selector.
func (p *Page) Selector() *planselector.Selector { return p.selector }

// Checkout returns the page's checkout controller.
func (p *Page) Checkout() *checkout.Controller { return p.checkout }

// Client returns the page's session client.
func (p *Page) Client() *subscription.Client { return p.client }

// Start wires the components and begins session initialization. Only the
// first call has an effect.
func (p *Page) Start() {
	p.start.Do(func() {
		eventbus.Subscribe(p.ctx, p.bus, subscription.TopicCheckoutComplete, func(ctx context.Context, e subscription.CheckoutCompleteEvent) {
			p.logger.InfoContext(ctx, "subscription checkout completed", logger.Origin(e.Origin))
			p.metrics.Checkout(metrics.CheckoutCompleted)
		})
		p.observe()
		p.selector.Activate(p.ctx)
		p.checkout.Start(p.ctx)

		// The client logs failures and publishes subscription.TopicError.
		go func() { _ = p.client.Initialize(p.ctx) }()
	})
}

// Close stops every component and ends open streams.
func (p *Page) Close() {
	p.close.Do(func() {
		p.cancel()
		p.selector.Close()
		p.checkout.Close()
		_ = p.bus.Close()
		p.metrics.PageClosed()
		p.logger.Debug("page closed")
	})
}

// SetCustomer updates the account header for the signed-in customer.
func (p *Page) SetCustomer(c *locale.Customer) {
	p.view.setHeader(locale.HeaderState(c))
}

// LocaleURL returns the locale switch URL for the page.
func (p *Page) LocaleURL(path, country, language string) string {
	if path == "" {
		path = p.path
	}
	return p.navigator.URL(path, country, language)
}

func (p *Page) renderer(cfg Config, languages []string) renderer {
	return renderer{
		cfg:       cfg,
		loc:       p.localizer,
		languages: languages,
		pageID:    p.id,
		path:      p.path,
		portalURL: p.client.PortalURL(),
	}
}

// Done is closed once the page is closed.
func (p *Page) Done() <-chan struct{} { return p.ctx.Done() }

func (p *Page) observe() {
	if p.metrics == nil {
		return
	}
	eventbus.Subscribe(p.ctx, p.bus, subscription.TopicReady, func(context.Context, subscription.ReadyEvent) {
		p.metrics.Session(true)
	})
	eventbus.Subscribe(p.ctx, p.bus, subscription.TopicError, func(context.Context, subscription.ErrorEvent) {
		p.metrics.Session(false)
	})
	eventbus.Subscribe(p.ctx, p.bus, subscription.TopicSubscribe, func(context.Context, subscription.SubscribeEvent) {
		p.metrics.Checkout(metrics.CheckoutRequested)
	})
	eventbus.Subscribe(p.ctx, p.bus, subscription.TopicCheckoutCreated, func(context.Context, subscription.CheckoutCreatedEvent) {
		p.metrics.Checkout(metrics.CheckoutCreated)
	})
	eventbus.Subscribe(p.ctx, p.bus, subscription.TopicCheckoutError, func(context.Context, subscription.CheckoutErrorEvent) {
		p.metrics.Checkout(metrics.CheckoutFailed)
	})
}
