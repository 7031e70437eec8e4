// Package subscription is the storefront's client for the Eshtarek
// subscription backend.
//
// A Client owns one session per page: it initializes the session once,
// lists plans for a product and creates checkout sessions. Every lifecycle
// change is announced on an eventbus.Bus so that other components can react
// without holding a reference to the client:
//
//	bus := eventbus.New()
//	client := subscription.NewClient(cfg, bus, subscription.WithLogger(log))
//
//	eventbus.Once(ctx, bus, subscription.TopicReady, func(ctx context.Context, e subscription.ReadyEvent) {
//		plans, _ := client.ListPlans(ctx, productID)
//		...
//	})
//	go client.Initialize(ctx)
//
// # Failure model
//
// A missing store id disables the client: Initialize logs a warning and
// returns ErrMissingStoreID without touching the network, and the client
// never becomes ready.
//
// ListPlans never fails loudly. Transport errors, unexpected statuses and
// malformed bodies are logged and produce an empty slice; only context
// cancellation is returned to the caller.
//
// CreateCheckoutSession returns ErrSessionNotReady before initialization
// and otherwise reports every failure both as a returned error and as a
// TopicCheckoutError event.
//
// # Validation
//
// Backend payloads are decoded into typed values at the boundary. A plan
// without id or name, or with a negative or non-numeric price, rejects the
// whole plan list. A checkout response must carry an absolute http(s)
// checkout_url; an absent embed flag means embedded presentation.
package subscription
