package subscription

import "strings"

const (
	DefaultAPIURL    = "https://api.eshtarek.com"
	DefaultPortalURL = "https://portal.eshtarek.com"
)

// Config is read once per page. StoreID is required for the feature to
// work but not for the application to start.
type Config struct {
	StoreID   string `env:"ESHTAREK_STORE_ID"`
	APIURL    string `env:"ESHTAREK_API_URL" envDefault:"https://api.eshtarek.com"`
	PortalURL string `env:"ESHTAREK_PORTAL_URL" envDefault:"https://portal.eshtarek.com"`
}

// normalized fills in defaults and trims whitespace and trailing slashes.
func (c Config) normalized() Config {
	c.StoreID = strings.TrimSpace(c.StoreID)
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	c.PortalURL = strings.TrimRight(strings.TrimSpace(c.PortalURL), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.PortalURL == "" {
		c.PortalURL = DefaultPortalURL
	}
	return c
}
