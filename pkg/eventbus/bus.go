package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// Topic names a notification and fixes its payload type.
type Topic[T any] struct {
	name string
}

// NewTopic creates a topic. Panics on an empty name.
func NewTopic[T any](name string) Topic[T] {
	if name == "" {
		panic("eventbus: topic name cannot be empty")
	}
	return Topic[T]{name: name}
}

// Name returns the topic name.
func (t Topic[T]) Name() string { return t.name }

// Subscription is a handle to a registered handler.
type Subscription interface {
	// Unsubscribe removes the handler. It is idempotent.
	Unsubscribe()
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report recovered handler panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// Bus dispatches typed payloads to subscribers. All methods are safe for
// concurrent use.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]*subscriber
	nextID uint64
	closed bool
	logger *slog.Logger
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		topics: make(map[string][]*subscriber),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type subscriber struct {
	id      uint64
	topic   string
	fn      func(ctx context.Context, payload any)
	once    bool
	removed atomic.Bool
	stop    atomic.Pointer[func() bool]
	release func()
	bus     *Bus
}

func (s *subscriber) Unsubscribe() {
	s.bus.remove(s)
}

// Subscribe registers fn for every payload published on topic until ctx is
// cancelled, the subscription is removed or the bus is closed.
func Subscribe[T any](ctx context.Context, b *Bus, topic Topic[T], fn func(ctx context.Context, payload T)) Subscription {
	return b.add(ctx, topic.name, false, wrap(fn), nil)
}

// Once registers fn for the next payload published on topic only.
// The subscription is removed before fn runs.
func Once[T any](ctx context.Context, b *Bus, topic Topic[T], fn func(ctx context.Context, payload T)) Subscription {
	return b.add(ctx, topic.name, true, wrap(fn), nil)
}

// Channel returns a channel receiving payloads published on topic.
// A payload is dropped for this consumer when its buffer is full.
// The channel is closed once the subscription ends.
func Channel[T any](ctx context.Context, b *Bus, topic Topic[T], buffer int) (<-chan T, Subscription) {
	ch := make(chan T, max(buffer, 1))
	var (
		mu     sync.Mutex
		closed bool
	)
	send := func(_ context.Context, payload any) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- payload.(T):
		default:
		}
	}
	release := func() {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}
	return ch, b.add(ctx, topic.name, false, send, release)
}

// Publish delivers payload to every current subscriber of topic.
func Publish[T any](ctx context.Context, b *Bus, topic Topic[T], payload T) error {
	subs, err := b.snapshot(topic.name)
	if err != nil {
		return err
	}
	for _, s := range subs {
		b.deliver(ctx, s, payload)
	}
	return nil
}

// Close removes every subscription. Publishing afterwards returns ErrBusClosed.
// Close is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var all []*subscriber
	for _, subs := range b.topics {
		all = append(all, subs...)
	}
	clear(b.topics)
	b.mu.Unlock()

	for _, s := range all {
		s.finish()
	}
	return nil
}

// Len reports the number of active subscriptions on topic name.
func (b *Bus) Len(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func wrap[T any](fn func(ctx context.Context, payload T)) func(context.Context, any) {
	if fn == nil {
		panic("eventbus: handler cannot be nil")
	}
	return func(ctx context.Context, payload any) {
		fn(ctx, payload.(T))
	}
}

func (b *Bus) add(ctx context.Context, topic string, once bool, fn func(context.Context, any), release func()) *subscriber {
	s := &subscriber{
		topic:   topic,
		fn:      fn,
		once:    once,
		release: release,
		bus:     b,
	}

	if ctx != nil && ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() { b.remove(s) })
		s.stop.Store(&stop)
	}

	b.mu.Lock()
	if b.closed || s.removed.Load() {
		b.mu.Unlock()
		s.finish()
		return s
	}
	b.nextID++
	s.id = b.nextID
	b.topics[topic] = append(b.topics[topic], s)
	b.mu.Unlock()

	return s
}

func (b *Bus) remove(s *subscriber) {
	if !s.finish() {
		return
	}
	b.detach(s)
}

func (b *Bus) detach(s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[s.topic]
	if !ok {
		return
	}
	subs = slices.DeleteFunc(subs, func(x *subscriber) bool { return x == s })
	if len(subs) == 0 {
		delete(b.topics, s.topic)
		return
	}
	b.topics[s.topic] = subs
}

// finish marks the subscriber removed and releases its resources.
// It reports whether this call did the work.
func (s *subscriber) finish() bool {
	if !s.removed.CompareAndSwap(false, true) {
		return false
	}
	if stop := s.stop.Load(); stop != nil {
		(*stop)()
	}
	if s.release != nil {
		s.release()
	}
	return true
}

func (b *Bus) snapshot(topic string) ([]*subscriber, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return slices.Clone(b.topics[topic]), nil
}

func (b *Bus) deliver(ctx context.Context, s *subscriber, payload any) {
	if s.once {
		if !s.finish() {
			return
		}
		b.detach(s)
	} else if s.removed.Load() {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "eventbus handler panicked",
				slog.String("topic", s.topic),
				slog.Any("error", fmt.Errorf("%v", r)),
			)
		}
	}()
	s.fn(ctx, payload)
}
