// Package checkout runs the checkout dialog of a product page.
//
// A Controller listens for subscription.TopicSubscribe, asks a Creator for
// a checkout session and presents it either inside the dialog's frame or,
// when the backend says embed is false, by navigating the whole page.
// Messages posted by the checkout frame are accepted only from allow-listed
// origins and only in states where they make sense.
//
// Every attempt takes a new generation number and closing the dialog
// retires the current one, so a session created after the customer gave up
// or retried is dropped instead of reopening the frame. The newest attempt
// always wins.
//
// Closing clears the frame at once and returns the dialog to its loading
// state after a short delay, unless a newer attempt has reopened it first.
package checkout
