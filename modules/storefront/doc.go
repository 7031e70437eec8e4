// Package storefront serves Eshtarek subscription product pages.
//
// Every page load opens a Page with its own event bus, session client, plan
// selector and checkout controller. The browser renders the initial document
// and then follows a Datastar event stream that patches the plan section,
// the checkout dialog and the account header as the components change.
// User actions are plain POSTs answered with 204; their effects travel back
// over the stream.
//
//	shop := storefront.New(cfg, translator, storefront.WithLogger(log))
//	defer shop.Close()
//	router.Mount("/", shop.Handle())
//
// Pages live in a bounded registry. The least recently used page is closed
// when the registry is full, and the browser releases its page on pagehide.
package storefront
