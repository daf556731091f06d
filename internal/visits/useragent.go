package visits

import (
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
)

const unknown = "unknown"

// Device classes reported by Classifier.
const (
	DeviceBot     = "bot"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

var botMarkers = []string{"bot", "crawler", "spider", "slurp", "facebookexternalhit", "preview"}

// Client is the classification of a User-Agent header.
type Client struct {
	Browser string
	OS      string
	Device  string
}

// Classifier maps User-Agent strings to browser, OS and device class.
type Classifier struct {
	parser *uaparser.Parser
}

// NewClassifier builds a classifier over the regexes bundled with uap-go.
func NewClassifier() *Classifier {
	return &Classifier{parser: uaparser.NewFromSaved()}
}

// Classify parses userAgent. Empty or unrecognized input yields "unknown" fields.
func (c *Classifier) Classify(userAgent string) Client {
	if strings.TrimSpace(userAgent) == "" {
		return Client{Browser: unknown, OS: unknown, Device: unknown}
	}

	parsed := c.parser.Parse(userAgent)

	client := Client{
		Browser: family(parsed.UserAgent.Family),
		OS:      family(parsed.Os.Family),
	}
	client.Device = deviceClass(parsed, userAgent)

	return client
}

func deviceClass(parsed *uaparser.Client, userAgent string) string {
	lower := strings.ToLower(userAgent)

	if parsed.Device.Family == "Spider" {
		return DeviceBot
	}

	for _, marker := range botMarkers {
		if strings.Contains(lower, marker) {
			return DeviceBot
		}
	}

	switch {
	case strings.Contains(lower, "ipad"), strings.Contains(lower, "tablet"),
		strings.Contains(lower, "android") && !strings.Contains(lower, "mobile"):
		return DeviceTablet
	case strings.Contains(lower, "mobile"), strings.Contains(lower, "iphone"),
		parsed.Os.Family == "iOS", parsed.Os.Family == "Android":
		return DeviceMobile
	case parsed.Os.Family == "Other" || parsed.Os.Family == "":
		return unknown
	default:
		return DeviceDesktop
	}
}

func family(name string) string {
	if name == "" || name == "Other" {
		return unknown
	}

	return name
}
