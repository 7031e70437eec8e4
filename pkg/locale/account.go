package locale

import "strings"

// DefaultProfileURL is where the login action sends visitors.
const DefaultProfileURL = "/account-profile"

// Customer is the signed-in shopper as reported by the store platform.
type Customer struct {
	Name string `json:"name"`
}

// Header describes which account controls are visible.
type Header struct {
	ShowLogin      bool
	ShowProfile    bool
	MobileLoggedIn bool
	CustomerName   string
}

// HeaderState returns the header for customer. Without a named customer only
// the login button is shown.
func HeaderState(customer *Customer) Header {
	if customer == nil || strings.TrimSpace(customer.Name) == "" {
		return Header{ShowLogin: true}
	}
	return Header{
		ShowProfile:    true,
		MobileLoggedIn: true,
		CustomerName:   strings.TrimSpace(customer.Name),
	}
}

// ProfileURL returns the configured profile URL or DefaultProfileURL.
func ProfileURL(configured string) string {
	if s := strings.TrimSpace(configured); s != "" {
		return s
	}
	return DefaultProfileURL
}
