package storefront

import (
	"strings"
	"time"

	"github.com/eshtarek/storefront/pkg/checkout"
	"github.com/eshtarek/storefront/pkg/subscription"
)

// Config configures the storefront module.
type Config struct {
	Subscription subscription.Config

	// BasePath is the mount prefix used when building action URLs.
	BasePath         string        `env:"STOREFRONT_BASE_PATH" envDefault:""`
	DefaultLocale    string        `env:"STOREFRONT_DEFAULT_LOCALE" envDefault:"ar-SA"`
	DefaultCountry   string        `env:"STOREFRONT_DEFAULT_COUNTRY" envDefault:"sa"`
	Countries        []string      `env:"STOREFRONT_COUNTRIES" envSeparator:"," envDefault:"sa,ae,kw,bh,qa,om"`
	LocaleCookie     string        `env:"STOREFRONT_LOCALE_COOKIE" envDefault:"lang"`
	TranslationsFile string        `env:"STOREFRONT_TRANSLATIONS_FILE"`
	ProfileURL       string        `env:"STOREFRONT_PROFILE_URL" envDefault:"/account-profile"`
	PageCapacity     int           `env:"STOREFRONT_PAGE_CAPACITY" envDefault:"1024"`
	ResetDelay       time.Duration `env:"STOREFRONT_CHECKOUT_RESET_DELAY" envDefault:"300ms"`
	DatastarScript   string        `env:"STOREFRONT_DATASTAR_SCRIPT" envDefault:"https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"`
}

func (c Config) normalized() Config {
	c.BasePath = strings.TrimRight(strings.TrimSpace(c.BasePath), "/")
	if c.PageCapacity <= 0 {
		c.PageCapacity = 1024
	}
	if c.ResetDelay <= 0 {
		c.ResetDelay = checkout.DefaultResetDelay
	}
	if len(c.Countries) == 0 {
		c.Countries = []string{"sa"}
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "ar-SA"
	}
	if c.LocaleCookie == "" {
		c.LocaleCookie = "lang"
	}
	return c
}
