package device

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ShortIdentifier returns a compact label for logs and dashboards,
// e.g. "Chrome/120.0 (Android mobile, low-end)".
func (i Info) ShortIdentifier() string {
	browser := formatBrowser(i.Browser)
	version := formatVersion(i.BrowserVersion)
	return fmt.Sprintf("%s/%s (%s %s, %s)", browser, version, formatOS(i.OS), i.Type, i.Tier())
}

func formatOS(os OS) string {
	switch os {
	case "", OSUnknown:
		return "Unknown OS"
	case OSiOS:
		return "iOS"
	case OSMacOS:
		return "macOS"
	default:
		return title(string(os))
	}
}

func formatBrowser(b Browser) string {
	if b == "" || b == BrowserUnknown {
		return "Unknown"
	}
	return title(string(b))
}

// title builds a Caser per call: a Caser keeps state and is not safe for
// concurrent use.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// formatVersion keeps major.minor.
func formatVersion(v string) string {
	if v == "" {
		return "?"
	}
	parts := strings.SplitN(v, ".", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ".")
}
