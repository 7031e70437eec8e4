// Package logger builds the *slog.Logger used across the storefront.
//
// New applies functional options on top of JSON, INFO and stdout, and wraps
// the handler so that context extractors add request-scoped values to every
// record. LOG_LEVEL and LOG_FORMAT (Config) override the environment:
//
//	opts, err := logCfg.Options()
//	log := logger.New(append([]logger.Option{
//		logger.WithEnvironment(cfg.Env, "storefront"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	}, opts...)...)
//	log.WarnContext(ctx, "plan listing failed",
//		logger.Component("subscription"),
//		logger.ProductID(productID),
//		logger.Error(err),
//	)
//
// Components that accept a logger default to Discard so that libraries stay
// silent unless the application opts in.
//
// Attribute helpers in attr.go keep key names consistent; helpers for
// optional values return an empty slog.Attr, which slog drops.
package logger
