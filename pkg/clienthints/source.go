package clienthints

import (
	"context"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/deviceutils"
)

// Source reads device signals from request headers and an optional report.
// Report values take precedence over headers. A Source is immutable.
type Source struct {
	header http.Header
	report Report
}

var (
	_ device.Source            = (*Source)(nil)
	_ deviceutils.MediaQuerier = (*Source)(nil)
)

// FromRequest captures the hint headers of r.
func FromRequest(r *http.Request) *Source {
	return &Source{header: r.Header.Clone()}
}

// NewSource builds a source from headers and a report; either may be empty.
func NewSource(header http.Header, report Report) *Source {
	if header == nil {
		header = http.Header{}
	}
	return &Source{header: header.Clone(), report: report}
}

// WithReport returns a copy of s with rep merged over the current report.
// Fields absent from rep keep their previous values.
func (s *Source) WithReport(rep Report) *Source {
	merged := s.report
	if rep.UserAgent != "" {
		merged.UserAgent = rep.UserAgent
	}
	merged.MaxTouchPoints = pick(rep.MaxTouchPoints, merged.MaxTouchPoints)
	merged.ViewportWidth = pick(rep.ViewportWidth, merged.ViewportWidth)
	merged.ViewportHeight = pick(rep.ViewportHeight, merged.ViewportHeight)
	merged.PixelRatio = pick(rep.PixelRatio, merged.PixelRatio)
	merged.ColorDepth = pick(rep.ColorDepth, merged.ColorDepth)
	merged.SafeArea = pick(rep.SafeArea, merged.SafeArea)
	merged.DeviceMemory = pick(rep.DeviceMemory, merged.DeviceMemory)
	merged.HardwareConcurrency = pick(rep.HardwareConcurrency, merged.HardwareConcurrency)
	merged.Connection = pick(rep.Connection, merged.Connection)
	merged.Battery = pick(rep.Battery, merged.Battery)
	merged.Features = mergeMap(merged.Features, rep.Features)
	merged.Media = mergeMap(merged.Media, rep.Media)

	return &Source{header: s.header, report: merged}
}

// WithConnection returns a copy of s reporting conn.
func (s *Source) WithConnection(conn device.Connection) *Source {
	return s.WithReport(Report{Connection: &conn})
}

// Report returns the merged report.
func (s *Source) Report() Report { return s.report }

func (s *Source) UserAgent() string {
	if s.report.UserAgent != "" {
		return s.report.UserAgent
	}
	return s.header.Get(HeaderUserAgent)
}

func (s *Source) MaxTouchPoints() int {
	if s.report.MaxTouchPoints != nil {
		return *s.report.MaxTouchPoints
	}
	return 0
}

func (s *Source) Viewport() (width, height int) {
	if s.report.ViewportWidth != nil {
		width = *s.report.ViewportWidth
	} else if v, ok := headerInt(s.header, HeaderViewportWidth, HeaderViewportOld); ok {
		width = v
	}
	if s.report.ViewportHeight != nil {
		height = *s.report.ViewportHeight
	} else if v, ok := headerInt(s.header, HeaderViewportHeight); ok {
		height = v
	}
	return width, height
}

func (s *Source) PixelRatio() (float64, bool) {
	if s.report.PixelRatio != nil {
		return *s.report.PixelRatio, true
	}
	return headerFloat(s.header, HeaderDPR, HeaderDPROld)
}

func (s *Source) ColorDepth() (int, bool) {
	if s.report.ColorDepth != nil {
		return *s.report.ColorDepth, true
	}
	return 0, false
}

func (s *Source) SafeAreaInset(side device.Side) (float64, bool) {
	sa := s.report.SafeArea
	if sa == nil {
		return 0, false
	}
	switch side {
	case device.SideTop:
		return sa.Top, true
	case device.SideRight:
		return sa.Right, true
	case device.SideBottom:
		return sa.Bottom, true
	case device.SideLeft:
		return sa.Left, true
	}
	return 0, false
}

func (s *Source) DeviceMemory() (float64, bool) {
	if s.report.DeviceMemory != nil {
		return *s.report.DeviceMemory, true
	}
	return headerFloat(s.header, HeaderDeviceMemory, HeaderDeviceMemoryOld)
}

func (s *Source) HardwareConcurrency() (int, bool) {
	if s.report.HardwareConcurrency != nil {
		return *s.report.HardwareConcurrency, true
	}
	return 0, false
}

// Connection prefers the reported connection, then the ECT, Downlink, RTT and
// Save-Data hints. Missing hint fields are left zero for detection to default.
func (s *Source) Connection() (device.Connection, bool) {
	if s.report.Connection != nil {
		return *s.report.Connection, true
	}

	ect := strings.TrimSpace(s.header.Get(HeaderECT))
	saveData := strings.EqualFold(strings.TrimSpace(s.header.Get(HeaderSaveData)), "on")
	if ect == "" && !saveData {
		return device.Connection{}, false
	}

	c := device.Connection{EffectiveType: ect, SaveData: saveData}
	if v, ok := headerFloat(s.header, HeaderDownlink); ok {
		c.DownlinkMbps = v
	}
	if v, ok := headerInt(s.header, HeaderRTT); ok {
		c.RTTMs = v
	}
	return c, true
}

func (s *Source) Battery(ctx context.Context) (device.Battery, error) {
	if err := ctx.Err(); err != nil {
		return device.Battery{}, err
	}
	if s.report.Battery == nil {
		return device.Battery{}, ErrNotReported
	}
	return *s.report.Battery, nil
}

func (s *Source) HasFeature(_ context.Context, c device.Capability) (bool, error) {
	v, ok := s.report.Features[c]
	if !ok {
		return false, ErrNotReported
	}
	return v, nil
}

// MediaDevices replays the reported camera and microphone grants.
func (s *Source) MediaDevices() device.MediaDevices {
	if s.report.Features == nil {
		return nil
	}
	return reportedMedia{
		device.MediaVideo: s.report.Features[device.CapabilityCamera],
		device.MediaAudio: s.report.Features[device.CapabilityMicrophone],
	}
}

// MatchMedia answers preference media queries from the report or the
// Sec-CH-Prefers-* hints.
func (s *Source) MatchMedia(query string) bool {
	if v, ok := s.report.Media[query]; ok {
		return v
	}
	switch query {
	case deviceutils.QueryReducedMotion:
		return strings.EqualFold(unquote(s.header.Get(HeaderReducedMotion)), "reduce")
	case deviceutils.QueryDarkMode:
		return strings.EqualFold(unquote(s.header.Get(HeaderColorScheme)), "dark")
	}
	return false
}

type reportedMedia map[device.MediaKind]bool

func (m reportedMedia) GetUserMedia(_ context.Context, kind device.MediaKind) (device.MediaStream, error) {
	if !m[kind] {
		return nil, device.ErrPermissionDenied
	}
	return emptyStream{}, nil
}

type emptyStream struct{}

func (emptyStream) Tracks() []device.Track { return nil }

func pick[T any](next, prev *T) *T {
	if next != nil {
		return next
	}
	return prev
}

func mergeMap[K comparable, V any](dst, src map[K]V) map[K]V {
	if len(src) == 0 {
		return dst
	}
	out := make(map[K]V, len(dst)+len(src))
	maps.Copy(out, dst)
	maps.Copy(out, src)
	return out
}

func headerInt(h http.Header, names ...string) (int, bool) {
	for _, n := range names {
		if v, err := strconv.Atoi(unquote(h.Get(n))); err == nil && v >= 0 {
			return v, true
		}
	}
	return 0, false
}

func headerFloat(h http.Header, names ...string) (float64, bool) {
	for _, n := range names {
		if v, err := strconv.ParseFloat(unquote(h.Get(n)), 64); err == nil && v >= 0 {
			return v, true
		}
	}
	return 0, false
}

// unquote strips the structured-header string quotes some hints carry.
func unquote(v string) string {
	return strings.Trim(strings.TrimSpace(v), `"`)
}
