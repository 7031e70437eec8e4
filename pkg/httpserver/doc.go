// Package httpserver runs the storefront's http.Server with graceful
// shutdown.
//
// Run binds the listener before serving, so a bad address fails at once with
// ErrStart. It then serves until the context ends, SIGINT or SIGTERM arrives,
// or Shutdown is called. Shutdown hooks registered with OnShutdown run when
// the drain begins; anything still open after the shutdown timeout is closed.
//
//	srv := httpserver.New(cfg,
//		httpserver.WithLogger(log),
//		httpserver.OnShutdown(func() { _ = shop.Close() }),
//	)
//	r.Get("/healthz", httpserver.HealthCheckHandler(log, shop.Ready))
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
