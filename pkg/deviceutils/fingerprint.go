package deviceutils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"slices"
	"strings"
)

// GenerateFingerprint derives a 32-character hex identifier for the client
// from its user agent, Accept headers, low-entropy client hints, IP address
// and the set of stable headers it sends.
func GenerateFingerprint(r *http.Request) string {
	components := []string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		r.Header.Get("Accept"),
		r.Header.Get("Sec-CH-UA"),
		r.Header.Get("Sec-CH-UA-Platform"),
		r.Header.Get("Sec-CH-UA-Mobile"),
		ClientIP(r),
		headerSet(r),
	}

	filtered := slices.DeleteFunc(components, func(s string) bool { return s == "" })
	hash := sha256.Sum256([]byte(strings.Join(filtered, "|")))
	return hex.EncodeToString(hash[:16])
}

// headerSet lists which stable headers are present, in sorted order.
func headerSet(r *http.Request) string {
	var names []string
	for name := range r.Header {
		switch n := strings.ToLower(name); n {
		case "user-agent", "accept", "accept-language", "accept-encoding",
			"connection", "upgrade-insecure-requests", "sec-fetch-dest",
			"sec-fetch-mode", "sec-fetch-site", "cache-control":
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return strings.Join(names, ",")
}

// ClientIP returns the client address, preferring proxy headers in the order
// CF-Connecting-IP, X-Forwarded-For (first valid entry), X-Real-IP, then
// RemoteAddr. It returns "" when no valid address is found.
func ClientIP(r *http.Request) string {
	if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for part := range strings.SplitSeq(fwd, ",") {
			if ip := parseIP(part); ip != "" {
				return ip
			}
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
