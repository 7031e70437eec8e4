// Package planselector drives the plan picker on a product page.
//
// A Selector fetches plans from a PlanSource, shows one of four exclusive
// states (loading, container, empty, error) through a View, tracks the
// customer's plan and frequency, and publishes subscription.TopicSubscribe
// when the customer asks to subscribe. It never talks to checkout directly.
//
// Activation waits for the session when it is not ready yet. The waits on
// subscription.TopicReady and subscription.TopicError are one-shot and the
// first to fire removes both, so one initialization starts at most one
// fetch. A newer fetch (a retry) supersedes an older one still in flight.
//
// All View calls happen while the Selector holds its lock; a View must not
// call back into the Selector.
package planselector
