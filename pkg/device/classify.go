package device

import (
	"regexp"
	"slices"
	"strings"
)

// keywords matches when the user agent contains any of its entries.
type keywords []string

func (k keywords) any(ua string) bool {
	for _, w := range k {
		if strings.Contains(ua, w) {
			return true
		}
	}
	return false
}

// Tablet dimensions accepted for touch devices without a tablet UA.
const (
	tabletMinWidth = 768
	tabletMaxWidth = 1024
)

var (
	tabletKeywords = keywords{"ipad", "tablet", "playbook", "silk", "kindle"}
	mobileKeywords = keywords{"mobile", "iphone", "ipod", "android", "blackberry", "iemobile", "opera mini", "windows phone"}
)

// TypeRule classifies a device when Match returns true.
type TypeRule struct {
	Type  Type
	Match func(ua string, touchPoints, width int) bool
}

// TypeRules are evaluated in order. Tablet must precede mobile: a device
// matching both resolves to tablet.
var TypeRules = []TypeRule{
	{
		Type: TypeTablet,
		Match: func(ua string, touchPoints, width int) bool {
			if tabletKeywords.any(ua) {
				return true
			}
			// Android tablets omit the "mobile" token phones carry.
			if strings.Contains(ua, "android") && !strings.Contains(ua, "mobile") {
				return true
			}
			return touchPoints > 1 && width >= tabletMinWidth && width <= tabletMaxWidth
		},
	},
	{
		Type: TypeMobile,
		Match: func(ua string, touchPoints, _ int) bool {
			return mobileKeywords.any(ua) || touchPoints > 0
		},
	},
}

// DetectType classifies the form factor. It never returns an empty value.
func DetectType(userAgent string, touchPoints, width int) Type {
	ua := strings.ToLower(userAgent)
	for _, rule := range TypeRules {
		if rule.Match(ua, touchPoints, width) {
			return rule.Type
		}
	}
	return TypeDesktop
}

// OSRule maps user agent keywords to an operating system.
type OSRule struct {
	OS       OS
	Keywords keywords
}

// OSRules are evaluated in order, first match wins. iPadOS and iOS report
// "mac os x", so iOS precedes macOS; Android reports "linux", so it precedes Linux.
var OSRules = []OSRule{
	{OS: OSiOS, Keywords: keywords{"iphone", "ipad", "ipod"}},
	{OS: OSAndroid, Keywords: keywords{"android"}},
	{OS: OSWindows, Keywords: keywords{"windows", "win64", "win32"}},
	{OS: OSMacOS, Keywords: keywords{"macintosh", "mac os x"}},
	{OS: OSLinux, Keywords: keywords{"linux", "x11", "cros"}},
}

// DetectOS identifies the operating system family.
func DetectOS(userAgent string) OS {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return OSUnknown
	}
	for _, rule := range OSRules {
		if rule.Keywords.any(ua) {
			return rule.OS
		}
	}
	return OSUnknown
}

// BrowserRule detects a browser family. All Keywords must be present and
// none of the Excludes.
type BrowserRule struct {
	Browser   Browser
	Keywords  keywords
	Excludes  keywords
	Version   *regexp.Regexp
	OrderHint int
}

func (r BrowserRule) match(ua string) bool {
	for _, w := range r.Keywords {
		if !strings.Contains(ua, w) {
			return false
		}
	}
	return !r.Excludes.any(ua)
}

// BrowserRules are sorted by OrderHint at init. Chromium derivatives carry a
// "chrome" token, so they must be checked before Chrome.
var BrowserRules = []BrowserRule{
	{
		Browser:   BrowserEdge,
		Keywords:  keywords{"edg"},
		Version:   regexp.MustCompile(`edg(?:e|a|ios)?/([\d.]+)`),
		OrderHint: 10,
	},
	{
		Browser:   BrowserOpera,
		Keywords:  keywords{"opr/"},
		Version:   regexp.MustCompile(`opr/([\d.]+)`),
		OrderHint: 20,
	},
	{
		Browser:   BrowserSamsung,
		Keywords:  keywords{"samsungbrowser"},
		Version:   regexp.MustCompile(`samsungbrowser/([\d.]+)`),
		OrderHint: 30,
	},
	{
		Browser:   BrowserChrome,
		Keywords:  keywords{"chrome"},
		Version:   regexp.MustCompile(`chrome/([\d.]+)`),
		OrderHint: 40,
	},
	{
		Browser:   BrowserChrome,
		Keywords:  keywords{"crios"},
		Version:   regexp.MustCompile(`crios/([\d.]+)`),
		OrderHint: 45,
	},
	{
		Browser:   BrowserFirefox,
		Keywords:  keywords{"firefox"},
		Version:   regexp.MustCompile(`firefox/([\d.]+)`),
		OrderHint: 50,
	},
	{
		Browser:   BrowserFirefox,
		Keywords:  keywords{"fxios"},
		Version:   regexp.MustCompile(`fxios/([\d.]+)`),
		OrderHint: 55,
	},
	{
		Browser:   BrowserSafari,
		Keywords:  keywords{"safari"},
		Excludes:  keywords{"chrome", "chromium", "android"},
		Version:   regexp.MustCompile(`version/([\d.]+)`),
		OrderHint: 60,
	},
}

func init() {
	slices.SortStableFunc(BrowserRules, func(a, b BrowserRule) int {
		return a.OrderHint - b.OrderHint
	})
}

// DetectBrowser identifies the browser family and version.
func DetectBrowser(userAgent string) (Browser, string) {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return BrowserUnknown, ""
	}
	for _, rule := range BrowserRules {
		if !rule.match(ua) {
			continue
		}
		return rule.Browser, extractVersion(ua, rule.Version)
	}
	return BrowserUnknown, ""
}

func extractVersion(ua string, re *regexp.Regexp) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(ua)
	if len(m) < 2 {
		return ""
	}
	if len(m[1]) > 20 {
		return m[1][:20]
	}
	return m[1]
}
