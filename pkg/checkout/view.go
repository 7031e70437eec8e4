package checkout

// State is the visible sub-state of the checkout dialog.
type State string

const (
	StateLoading    State = "loading"
	StatePresenting State = "iframe"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// View renders the checkout dialog.
type View interface {
	Open()
	Close()
	ShowState(State)
	// SetFrameSource points the embedded frame at url; "" clears it.
	SetFrameSource(url string)
	SetSubscribeBusy(bool)
	// Navigate sends the whole page to url.
	Navigate(url string)
}
