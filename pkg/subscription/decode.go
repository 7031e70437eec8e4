package subscription

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// wireString accepts a JSON string or number.
type wireString string

func (s *wireString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = wireString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = wireString(n.String())
	return nil
}

// wireNumber accepts a JSON number or a numeric string.
type wireNumber struct {
	value float64
	set   bool
}

func (n *wireNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("expected numeric string, got %q", s)
		}
		n.value, n.set = v, true
		return nil
	}
	if err := json.Unmarshal(b, &n.value); err != nil {
		return fmt.Errorf("expected number, got %s", b)
	}
	n.set = true
	return nil
}

type frequencyWire struct {
	Value wireString `json:"value"`
	Label string     `json:"label"`
}

type planWire struct {
	ID             wireString      `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          wireNumber      `json:"price"`
	Currency       string          `json:"currency"`
	IsPopular      bool            `json:"is_popular"`
	SavingsPercent wireNumber      `json:"savings_percent"`
	FreeShipping   bool            `json:"free_shipping"`
	Frequency      wireString      `json:"frequency"`
	Frequencies    []frequencyWire `json:"frequencies"`
}

func (w planWire) plan() (Plan, error) {
	p := Plan{
		ID:           strings.TrimSpace(string(w.ID)),
		Name:         strings.TrimSpace(w.Name),
		Description:  strings.TrimSpace(w.Description),
		Currency:     strings.ToUpper(strings.TrimSpace(w.Currency)),
		IsPopular:    w.IsPopular,
		FreeShipping: w.FreeShipping,
		Frequency:    strings.TrimSpace(string(w.Frequency)),
	}
	switch {
	case p.ID == "":
		return Plan{}, fmt.Errorf("%w: missing id", ErrInvalidPlan)
	case p.Name == "":
		return Plan{}, fmt.Errorf("%w: plan %s: missing name", ErrInvalidPlan, p.ID)
	case !w.Price.set:
		return Plan{}, fmt.Errorf("%w: plan %s: missing price", ErrInvalidPlan, p.ID)
	case w.Price.value < 0:
		return Plan{}, fmt.Errorf("%w: plan %s: negative price", ErrInvalidPlan, p.ID)
	}
	p.Price = w.Price.value
	if p.Currency == "" {
		p.Currency = "SAR"
	}
	if w.SavingsPercent.set && w.SavingsPercent.value > 0 {
		p.SavingsPercent = w.SavingsPercent.value
	}
	for i, f := range w.Frequencies {
		value := strings.TrimSpace(string(f.Value))
		if value == "" {
			return Plan{}, fmt.Errorf("%w: plan %s: frequency %d has no value", ErrInvalidPlan, p.ID, i)
		}
		label := strings.TrimSpace(f.Label)
		if label == "" {
			label = value
		}
		p.Frequencies = append(p.Frequencies, Frequency{Value: value, Label: label})
	}
	return p, nil
}

type planListWire struct {
	Plans   json.RawMessage `json:"plans"`
	Results json.RawMessage `json:"results"`
}

// decodePlans validates a plan listing. One invalid plan rejects the list.
func decodePlans(body []byte) ([]Plan, error) {
	var list planListWire
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: plans: %w", ErrInvalidResponse, err)
	}
	raw := list.Plans
	if isNull(raw) {
		raw = list.Results
	}
	if isNull(raw) {
		return nil, fmt.Errorf("%w: plans: neither plans nor results present", ErrInvalidResponse)
	}

	var items []planWire
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: plans: %w", ErrInvalidResponse, err)
	}
	plans := make([]Plan, 0, len(items))
	for _, item := range items {
		p, err := item.plan()
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// decodeSession validates the platform init payload.
func decodeSession(storeID string, body []byte) (Session, error) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil || data == nil {
		return Session{}, fmt.Errorf("%w: init: expected a JSON object", ErrInvalidResponse)
	}
	s := Session{StoreID: storeID, Data: data}
	if token, ok := data["token"].(string); ok {
		s.Token = token
	}
	return s, nil
}

type checkoutWire struct {
	CheckoutURL string `json:"checkout_url"`
	Embed       *bool  `json:"embed"`
}

// decodeCheckout validates a checkout creation response.
func decodeCheckout(body []byte) (CheckoutSession, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return CheckoutSession{}, fmt.Errorf("%w: checkout: expected a JSON object", ErrInvalidResponse)
	}
	var w checkoutWire
	if err := json.Unmarshal(body, &w); err != nil {
		return CheckoutSession{}, fmt.Errorf("%w: checkout: %w", ErrInvalidResponse, err)
	}
	if !isAbsoluteHTTPURL(w.CheckoutURL) {
		return CheckoutSession{}, ErrNoCheckoutURL
	}
	return CheckoutSession{
		URL:   strings.TrimSpace(w.CheckoutURL),
		Embed: w.Embed == nil || *w.Embed,
		Raw:   raw,
	}, nil
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
