package subscription

import "maps"

// DefaultFrequency is used when a plan declares no frequency at all.
const DefaultFrequency = "monthly"

// Session is the state returned by platform initialization.
type Session struct {
	StoreID string
	Token   string
	// Data is the full init payload.
	Data map[string]any
}

func (s Session) clone() Session {
	s.Data = maps.Clone(s.Data)
	return s
}

// Frequency is one billing cadence offered by a plan.
type Frequency struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Plan is a subscription offering for a product.
type Plan struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	Price          float64     `json:"price"`
	Currency       string      `json:"currency"`
	IsPopular      bool        `json:"is_popular,omitempty"`
	SavingsPercent float64     `json:"savings_percent,omitempty"`
	FreeShipping   bool        `json:"free_shipping,omitempty"`
	Frequency      string      `json:"frequency,omitempty"`
	Frequencies    []Frequency `json:"frequencies,omitempty"`
}

// DefaultFrequency returns the frequency a plan starts with: its first
// declared frequency, its single implicit frequency, or monthly.
func (p Plan) DefaultFrequency() string {
	if len(p.Frequencies) > 0 {
		return p.Frequencies[0].Value
	}
	if p.Frequency != "" {
		return p.Frequency
	}
	return DefaultFrequency
}

// HasFrequency reports whether value is a valid frequency for the plan.
func (p Plan) HasFrequency(value string) bool {
	if len(p.Frequencies) == 0 {
		return value == p.DefaultFrequency()
	}
	for _, f := range p.Frequencies {
		if f.Value == value {
			return true
		}
	}
	return false
}

// CheckoutRequest identifies what the customer wants to subscribe to.
type CheckoutRequest struct {
	PlanID    string
	Frequency string
	ProductID string
}

// CheckoutSession describes how to present a payment flow.
type CheckoutSession struct {
	URL   string
	Embed bool
	// Raw is the full response body.
	Raw map[string]any
}

// Usable reports whether the session carries an absolute http(s) URL that
// can be shown or navigated to.
func (c *CheckoutSession) Usable() bool {
	return c != nil && isAbsoluteHTTPURL(c.URL)
}

func (c CheckoutSession) clone() CheckoutSession {
	c.Raw = maps.Clone(c.Raw)
	return c
}
