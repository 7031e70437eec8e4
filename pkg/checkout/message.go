package checkout

import "strings"

// Message is a cross-origin message posted to the page.
type Message struct {
	Origin string         `json:"origin"`
	Data   map[string]any `json:"data"`
}

type messageKind int

const (
	messageUnknown messageKind = iota
	messageComplete
	messageError
	messageClose
)

func classify(data map[string]any) messageKind {
	typ, _ := data["type"].(string)
	status, _ := data["status"].(string)
	typ = strings.TrimPrefix(typ, "eshtarek:")

	switch {
	case typ == "checkout:complete" || status == "success":
		return messageComplete
	case typ == "checkout:error" || status == "error":
		return messageError
	case typ == "checkout:close":
		return messageClose
	default:
		return messageUnknown
	}
}

// DefaultOrigins are always trusted in addition to configured ones.
var DefaultOrigins = []string{
	"https://checkout.eshtarek.com",
	"https://api.eshtarek.com",
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// allowed is a prefix match against the allow-list.
func allowed(origins []string, origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return false
	}
	for _, o := range origins {
		if strings.HasPrefix(origin, o) {
			return true
		}
	}
	return false
}
