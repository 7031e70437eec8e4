package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eshtarek/storefront/pkg/eventbus"
	"github.com/eshtarek/storefront/pkg/logger"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The default carries a
// cookie jar so cookies set during initialization are sent later.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTransport sets the round tripper of the default HTTP client. It has
// no effect together with WithHTTPClient.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to the subscription backend on behalf of one page.
// It is safe for concurrent use.
type Client struct {
	cfg       Config
	bus       *eventbus.Bus
	http      *http.Client
	transport http.RoundTripper
	logger    *slog.Logger

	started atomic.Bool

	mu      sync.RWMutex
	session *Session
}

// NewClient creates a client publishing lifecycle events on bus.
// Panics if bus is nil.
func NewClient(cfg Config, bus *eventbus.Bus, opts ...Option) *Client {
	if bus == nil {
		panic("subscription: event bus is required")
	}
	c := &Client{
		cfg:    cfg.normalized(),
		bus:    bus,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		jar, _ := cookiejar.New(nil)
		c.http = &http.Client{Timeout: defaultTimeout, Jar: jar, Transport: c.transport}
	}
	c.logger = c.logger.With(logger.Component("subscription"), logger.StoreID(c.cfg.StoreID))
	return c
}

// Config returns the normalized configuration.
func (c *Client) Config() Config { return c.cfg }

// PortalURL returns the customer portal base URL.
func (c *Client) PortalURL() string { return c.cfg.PortalURL }

// Ready reports whether the session has been initialized.
func (c *Client) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil
}

// Session returns a copy of the initialized session.
func (c *Client) Session() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Session{}, false
	}
	return c.session.clone(), true
}

// Initialize restores the platform session. Only the first call reaches the
// network; later calls return ErrAlreadyInitialized.
func (c *Client) Initialize(ctx context.Context) error {
	if c.cfg.StoreID == "" {
		c.logger.WarnContext(ctx, "no store id configured, subscriptions disabled",
			logger.Event("init_skipped"))
		return ErrMissingStoreID
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}

	session, err := c.initialize(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "session initialization failed", logger.Error(err))
		c.publish(ctx, func() error {
			return eventbus.Publish(ctx, c.bus, TopicError, ErrorEvent{Err: err})
		})
		return err
	}

	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "session restored", logger.Event("ready"))
	c.publish(ctx, func() error {
		return eventbus.Publish(ctx, c.bus, TopicReady, ReadyEvent{Session: session.clone()})
	})
	return nil
}

func (c *Client) initialize(ctx context.Context) (Session, error) {
	endpoint := fmt.Sprintf("%s/platform/zid/init/%s/", c.cfg.APIURL, url.PathEscape(c.cfg.StoreID))
	body, err := c.do(ctx, "init", http.MethodGet, endpoint, nil, "")
	if err != nil {
		return Session{}, err
	}
	return decodeSession(c.cfg.StoreID, body)
}

// ListPlans returns the plans offered for productID. Failures other than
// context cancellation are logged and yield an empty slice.
func (c *Client) ListPlans(ctx context.Context, productID string) ([]Plan, error) {
	token, ok := c.token()
	if !ok {
		c.logger.WarnContext(ctx, "plans requested before session is ready", logger.ProductID(productID))
		return []Plan{}, nil
	}

	endpoint := fmt.Sprintf("%s/api/v1/plans/?product_id=%s", c.cfg.APIURL, url.QueryEscape(productID))
	body, err := c.do(ctx, "plans", http.MethodGet, endpoint, nil, token)
	if err == nil {
		var plans []Plan
		if plans, err = decodePlans(body); err == nil {
			return plans, nil
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	c.logger.ErrorContext(ctx, "failed to fetch plans", logger.ProductID(productID), logger.Error(err))
	return []Plan{}, nil
}

type checkoutBody struct {
	PlanID    string `json:"plan_id"`
	Frequency string `json:"frequency"`
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
}

// CreateCheckoutSession asks the backend for a payment flow. It returns
// ErrSessionNotReady, without publishing, before initialization.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	token, ok := c.token()
	if !ok {
		c.logger.WarnContext(ctx, "checkout requested before session is ready", logger.PlanID(req.PlanID))
		return nil, ErrSessionNotReady
	}

	session, err := c.createCheckout(ctx, req, token)
	if err != nil {
		c.logger.ErrorContext(ctx, "checkout creation failed",
			logger.PlanID(req.PlanID),
			logger.ProductID(req.ProductID),
			logger.Error(err),
		)
		c.publish(ctx, func() error {
			return eventbus.Publish(ctx, c.bus, TopicCheckoutError, CheckoutErrorEvent{Request: req, Err: err})
		})
		return nil, err
	}

	c.publish(ctx, func() error {
		return eventbus.Publish(ctx, c.bus, TopicCheckoutCreated, CheckoutCreatedEvent{Checkout: session.clone()})
	})
	return &session, nil
}

func (c *Client) createCheckout(ctx context.Context, req CheckoutRequest, token string) (CheckoutSession, error) {
	payload, err := json.Marshal(checkoutBody{
		PlanID:    req.PlanID,
		Frequency: req.Frequency,
		ProductID: req.ProductID,
		StoreID:   c.cfg.StoreID,
	})
	if err != nil {
		return CheckoutSession{}, err
	}
	body, err := c.do(ctx, "checkout", http.MethodPost, c.cfg.APIURL+"/api/v1/checkout/create/", payload, token)
	if err != nil {
		return CheckoutSession{}, err
	}
	return decodeCheckout(body)
}

func (c *Client) token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", false
	}
	return c.session.Token, true
}

// do performs a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, endpoint string, payload []byte, token string) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if op != "init" {
		req.Header.Set("X-Session-Token", token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode}
	}
	c.logger.DebugContext(ctx, "eshtarek request done",
		slog.String("op", op),
		logger.Status(resp.StatusCode),
	)
	return data, nil
}

func (c *Client) publish(ctx context.Context, fn func() error) {
	if err := fn(); err != nil {
		c.logger.DebugContext(ctx, "event not delivered", logger.Error(err))
	}
}
