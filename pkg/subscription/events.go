package subscription

import "github.com/eshtarek/storefront/pkg/eventbus"

// ReadyEvent is published once the session is initialized.
type ReadyEvent struct {
	Session Session
}

// ErrorEvent is published when session initialization fails.
type ErrorEvent struct {
	Err error
}

// CheckoutCreatedEvent carries a successfully created checkout session.
type CheckoutCreatedEvent struct {
	Checkout CheckoutSession
}

// CheckoutErrorEvent is published when checkout creation fails.
type CheckoutErrorEvent struct {
	Request CheckoutRequest
	Err     error
}

// SubscribeEvent asks for a checkout of the selected plan.
type SubscribeEvent struct {
	PlanID    string
	Frequency string
	ProductID string
	Plan      Plan
}

// Request returns the checkout request described by the event.
func (e SubscribeEvent) Request() CheckoutRequest {
	return CheckoutRequest{PlanID: e.PlanID, Frequency: e.Frequency, ProductID: e.ProductID}
}

// CheckoutCompleteEvent re-broadcasts a completion message received from a
// trusted checkout frame.
type CheckoutCompleteEvent struct {
	Origin string
	Data   map[string]any
}

var (
	TopicReady            = eventbus.NewTopic[ReadyEvent]("eshtarek:ready")
	TopicError            = eventbus.NewTopic[ErrorEvent]("eshtarek:error")
	TopicCheckoutCreated  = eventbus.NewTopic[CheckoutCreatedEvent]("eshtarek:checkout:created")
	TopicCheckoutError    = eventbus.NewTopic[CheckoutErrorEvent]("eshtarek:checkout:error")
	TopicSubscribe        = eventbus.NewTopic[SubscribeEvent]("eshtarek:subscribe")
	TopicCheckoutComplete = eventbus.NewTopic[CheckoutCompleteEvent]("eshtarek:checkout:complete")
)
