package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eshtarek/storefront/pkg/logger"
)

type errorInfo struct {
	StatusCode int
	Message    string
	Level      slog.Level
}

func classify(err error) errorInfo {
	info := errorInfo{
		StatusCode: http.StatusInternalServerError,
		Message:    "internal_server_error",
		Level:      slog.LevelError,
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		info.StatusCode = httpErr.Code
		info.Message = httpErr.Key
	}
	if info.StatusCode < http.StatusInternalServerError {
		info.Level = slog.LevelWarn
	}
	return info
}

// NewErrorHandler logs err and answers with its status code. Errors that
// are not HTTPErrors become 500s without leaking their text.
func NewErrorHandler(log *slog.Logger) ErrorHandler {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		info := classify(err)
		r := ctx.Request()
		log.LogAttrs(ctx, info.Level, "request failed",
			logger.Component("http"),
			logger.Error(err),
			logger.Status(info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Bool("datastar", IsDataStar(r)),
		)
		http.Error(ctx.ResponseWriter(), info.Message, info.StatusCode)
	}
}
