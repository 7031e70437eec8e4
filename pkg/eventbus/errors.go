package eventbus

import "errors"

var (
	// ErrBusClosed is returned when publishing on a closed bus.
	ErrBusClosed = errors.New("eventbus: bus is closed")
)
