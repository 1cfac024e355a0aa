package device

// Tier is a heuristic device category.
type Tier string

const (
	TierLowEnd   Tier = "low-end"
	TierMidRange Tier = "mid-range"
	TierHighEnd  Tier = "high-end"
)

// Thresholds used by ClassifyTier.
const (
	lowEndMemoryGB  = 4
	lowEndCores     = 4
	highEndMemoryGB = 8
	highEndCores    = 8
)

// ClassifyTier derives the device category from performance signals.
// Low-end is evaluated first, so a device can never be both.
func ClassifyTier(p Performance) Tier {
	switch {
	case p.MemoryGB < lowEndMemoryGB || p.Cores < lowEndCores || p.Connection.IsSlow():
		return TierLowEnd
	case p.MemoryGB >= highEndMemoryGB && p.Cores >= highEndCores && p.Connection.EffectiveType == Connection4G:
		return TierHighEnd
	default:
		return TierMidRange
	}
}

// IsLowEnd is equivalent to ClassifyTier(p) == TierLowEnd.
func IsLowEnd(p Performance) bool { return ClassifyTier(p) == TierLowEnd }

// IsHighEnd is equivalent to ClassifyTier(p) == TierHighEnd.
func IsHighEnd(p Performance) bool { return ClassifyTier(p) == TierHighEnd }
