package planselector

// State is the visible state of the plan picker.
type State string

const (
	StateLoading   State = "loading"
	StateContainer State = "container"
	StateEmpty     State = "empty"
	StateError     State = "error"
)

// Card is the display data of one plan.
type Card struct {
	PlanID      string
	Name        string
	Description string
	Price       string
	Popular     bool
	// Savings is the translated savings badge, empty when the plan has none.
	Savings string
}

// FrequencyOption is one button of the frequency picker.
type FrequencyOption struct {
	Value string
	Label string
}

// Summary describes the current selection.
type Summary struct {
	PlanName     string
	Frequency    string
	Price        string
	FreeShipping bool
}

// View renders the plan picker.
type View interface {
	ShowState(State)
	RenderPlans([]Card)
	MarkSelected(planID string)
	RenderFrequencies(options []FrequencyOption, selected string)
	HideFrequencies()
	ShowSummary(Summary)
	SetSubscribeEnabled(bool)
}

// Formatter localizes labels and prices. *i18n.Localizer satisfies it.
type Formatter interface {
	T(key string) string
	FormatPrice(amount float64, currency string) string
	FormatFrequency(value string) string
}
