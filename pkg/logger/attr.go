package logger

import "log/slog"

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a bus topic or UI event under "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// StoreID records the store identifier under "store_id".
func StoreID(id string) slog.Attr {
	return optionalString("store_id", id)
}

// ProductID records the product identifier under "product_id".
func ProductID(id string) slog.Attr {
	return optionalString("product_id", id)
}

// PlanID records the plan identifier under "plan_id".
func PlanID(id string) slog.Attr {
	return optionalString("plan_id", id)
}

// PageID records the storefront page identifier under "page_id".
func PageID(id string) slog.Attr {
	return optionalString("page_id", id)
}

// Origin records a message origin under "origin".
func Origin(origin string) slog.Attr {
	return optionalString("origin", origin)
}

// Attempt records a checkout attempt generation under "attempt".
func Attempt(n uint64) slog.Attr {
	return slog.Uint64("attempt", n)
}

// Status records an HTTP status code under "status".
func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

// RequestID records the request identifier under "request_id".
func RequestID(id string) slog.Attr {
	return optionalString("request_id", id)
}

// State records a UI state name under "state".
func State(name string) slog.Attr {
	return optionalString("state", name)
}

func optionalString(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}
