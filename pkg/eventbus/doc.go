// Package eventbus provides a typed, in-process publish/subscribe bus used to
// decouple storefront components from each other.
//
// Topics carry their payload type, so a publisher and its subscribers agree on
// the payload shape at compile time:
//
//	var Ready = eventbus.NewTopic[ReadyEvent]("eshtarek:ready")
//
//	bus := eventbus.New()
//	defer bus.Close()
//
//	eventbus.Once(ctx, bus, Ready, func(ctx context.Context, e ReadyEvent) {
//		// runs at most once
//	})
//
//	_ = eventbus.Publish(ctx, bus, Ready, ReadyEvent{})
//
// Publish delivers synchronously to a snapshot of the subscribers taken at
// publish time, in registration order. Handlers run outside the bus lock and
// may subscribe, unsubscribe or publish again.
//
// Streaming consumers can use Channel, which drops payloads for a consumer
// whose buffer is full instead of blocking the publisher.
package eventbus
