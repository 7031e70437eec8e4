package eventbus_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshtarek/storefront/pkg/eventbus"
)

type greeting struct {
	Text string
}

var (
	greetings = eventbus.NewTopic[greeting]("test:greeting")
	counters  = eventbus.NewTopic[int]("test:counter")
)

func TestSubscribe(t *testing.T) {
	t.Run("delivers every publish in registration order", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		var got []string
		eventbus.Subscribe(ctx, bus, greetings, func(_ context.Context, g greeting) {
			got = append(got, "a:"+g.Text)
		})
		eventbus.Subscribe(ctx, bus, greetings, func(_ context.Context, g greeting) {
			got = append(got, "b:"+g.Text)
		})

		require.NoError(t, eventbus.Publish(ctx, bus, greetings, greeting{Text: "hi"}))
		require.NoError(t, eventbus.Publish(ctx, bus, greetings, greeting{Text: "bye"}))

		assert.Equal(t, []string{"a:hi", "b:hi", "a:bye", "b:bye"}, got)
	})

	t.Run("topics are isolated", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		called := false
		eventbus.Subscribe(ctx, bus, counters, func(context.Context, int) { called = true })

		require.NoError(t, eventbus.Publish(ctx, bus, greetings, greeting{}))
		assert.False(t, called)
	})

	t.Run("unsubscribe is idempotent", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		calls := 0
		sub := eventbus.Subscribe(ctx, bus, counters, func(context.Context, int) { calls++ })
		sub.Unsubscribe()
		sub.Unsubscribe()

		require.NoError(t, eventbus.Publish(ctx, bus, counters, 1))
		assert.Zero(t, calls)
		assert.Zero(t, bus.Len(counters.Name()))
	})

	t.Run("context cancellation removes the subscription", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx, cancel := context.WithCancel(context.Background())
		var calls atomic.Int32
		eventbus.Subscribe(ctx, bus, counters, func(context.Context, int) { calls.Add(1) })

		cancel()
		require.Eventually(t, func() bool { return bus.Len(counters.Name()) == 0 }, time.Second, 5*time.Millisecond)

		require.NoError(t, eventbus.Publish(context.Background(), bus, counters, 1))
		assert.Zero(t, calls.Load())
	})

	t.Run("handler may unsubscribe itself while publishing", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		calls := 0
		var sub eventbus.Subscription
		sub = eventbus.Subscribe(ctx, bus, counters, func(context.Context, int) {
			calls++
			sub.Unsubscribe()
		})

		require.NoError(t, eventbus.Publish(ctx, bus, counters, 1))
		require.NoError(t, eventbus.Publish(ctx, bus, counters, 2))
		assert.Equal(t, 1, calls)
	})

	t.Run("panicking handler does not stop delivery", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		reached := false
		eventbus.Subscribe(ctx, bus, counters, func(context.Context, int) { panic("boom") })
		eventbus.Subscribe(ctx, bus, counters, func(context.Context, int) { reached = true })

		require.NoError(t, eventbus.Publish(ctx, bus, counters, 1))
		assert.True(t, reached)
	})
}

func TestOnce(t *testing.T) {
	t.Run("fires at most once", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		calls := 0
		eventbus.Once(ctx, bus, counters, func(context.Context, int) { calls++ })

		require.NoError(t, eventbus.Publish(ctx, bus, counters, 1))
		require.NoError(t, eventbus.Publish(ctx, bus, counters, 2))

		assert.Equal(t, 1, calls)
		assert.Zero(t, bus.Len(counters.Name()))
	})

	t.Run("fires at most once under concurrent publish", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		var calls atomic.Int32
		eventbus.Once(ctx, bus, counters, func(context.Context, int) { calls.Add(1) })

		var wg sync.WaitGroup
		for i := range 32 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = eventbus.Publish(ctx, bus, counters, i)
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unsubscribed before publish never fires", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		calls := 0
		sub := eventbus.Once(ctx, bus, counters, func(context.Context, int) { calls++ })
		sub.Unsubscribe()

		require.NoError(t, eventbus.Publish(ctx, bus, counters, 1))
		assert.Zero(t, calls)
	})

	t.Run("handler may publish re-entrantly", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		var got []int
		eventbus.Subscribe(ctx, bus, counters, func(_ context.Context, n int) { got = append(got, n) })
		eventbus.Once(ctx, bus, greetings, func(ctx context.Context, _ greeting) {
			_ = eventbus.Publish(ctx, bus, counters, 7)
		})

		require.NoError(t, eventbus.Publish(ctx, bus, greetings, greeting{}))
		require.NoError(t, eventbus.Publish(ctx, bus, greetings, greeting{}))
		assert.Equal(t, []int{7}, got)
	})
}

func TestChannel(t *testing.T) {
	t.Run("receives published payloads", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		ch, sub := eventbus.Channel(ctx, bus, counters, 4)
		defer sub.Unsubscribe()

		require.NoError(t, eventbus.Publish(ctx, bus, counters, 1))
		require.NoError(t, eventbus.Publish(ctx, bus, counters, 2))

		assert.Equal(t, 1, <-ch)
		assert.Equal(t, 2, <-ch)
	})

	t.Run("full buffer drops instead of blocking", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ctx := context.Background()
		ch, sub := eventbus.Channel(ctx, bus, counters, 1)
		defer sub.Unsubscribe()

		for i := range 10 {
			require.NoError(t, eventbus.Publish(ctx, bus, counters, i))
		}

		assert.Equal(t, 0, <-ch)
		select {
		case v := <-ch:
			t.Fatalf("unexpected payload %d", v)
		default:
		}
	})

	t.Run("unsubscribe closes the channel", func(t *testing.T) {
		bus := eventbus.New()
		defer bus.Close()

		ch, sub := eventbus.Channel(context.Background(), bus, counters, 1)
		sub.Unsubscribe()

		_, ok := <-ch
		assert.False(t, ok)
	})
}

func TestClose(t *testing.T) {
	t.Run("publish after close fails", func(t *testing.T) {
		bus := eventbus.New()
		require.NoError(t, bus.Close())
		require.NoError(t, bus.Close())

		err := eventbus.Publish(context.Background(), bus, counters, 1)
		assert.ErrorIs(t, err, eventbus.ErrBusClosed)
	})

	t.Run("close ends channel subscriptions", func(t *testing.T) {
		bus := eventbus.New()
		ch, _ := eventbus.Channel(context.Background(), bus, counters, 1)

		require.NoError(t, bus.Close())

		_, ok := <-ch
		assert.False(t, ok)
	})

	t.Run("subscribe after close returns an inert subscription", func(t *testing.T) {
		bus := eventbus.New()
		require.NoError(t, bus.Close())

		ch, sub := eventbus.Channel(context.Background(), bus, counters, 1)
		sub.Unsubscribe()

		_, ok := <-ch
		assert.False(t, ok)
	})
}
