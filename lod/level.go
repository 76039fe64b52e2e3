// package lod selects discrete detail levels for renderable objects based on
// camera distance, estimated on-screen size, and the adaptive quality
// controller's current performance scaling.
package lod

// Level is a discrete level of detail, ordered by rendering cost. Smaller
// values are more expensive: High renders full geometry, Culled renders
// nothing. The numeric order is load-bearing: comparisons and the Cheaper
// helper rely on larger values meaning less detail.
type Level int

const (
	// LevelHigh is full-detail geometry for objects close to the camera.
	LevelHigh Level = iota
	// LevelMedium is reduced tessellation for mid-range objects.
	LevelMedium
	// LevelLow is minimal geometry for distant or tiny objects.
	LevelLow
	// LevelCulled renders nothing. Objects outside the frustum or too small
	// to see are assigned this level.
	LevelCulled
)

// Cheaper returns the less detailed (numerically larger) of two levels.
//
// Parameters:
//   - a: first level
//   - b: second level
//
// Returns:
//   - Level: whichever level renders less geometry
func Cheaper(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// Downgrade returns the next cheaper level. Low stays Low rather than
// dropping to Culled: performance scaling reduces detail but never hides
// objects on its own. Culled stays Culled.
//
// Returns:
//   - Level: the level one step cheaper, floored at Low
func (l Level) Downgrade() Level {
	switch l {
	case LevelHigh:
		return LevelMedium
	case LevelMedium:
		return LevelLow
	default:
		return l
	}
}

// Rendered reports whether the level produces any geometry at all.
//
// Returns:
//   - bool: true for every level except Culled
func (l Level) Rendered() bool {
	return l != LevelCulled
}

// Multiplier returns the quality multiplier associated with the level,
// in [0, 1]. Hosts scale per-object detail knobs (particle counts, staging
// buffer sizes) by this factor.
//
// Returns:
//   - float32: 1.0 for High down to 0.0 for Culled
func (l Level) Multiplier() float32 {
	switch l {
	case LevelHigh:
		return 1.0
	case LevelMedium:
		return 0.6
	case LevelLow:
		return 0.3
	default:
		return 0.0
	}
}

// String returns a human-readable name for the level.
//
// Returns:
//   - string: "high", "medium", "low", "culled", or "unknown"
func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	case LevelLow:
		return "low"
	case LevelCulled:
		return "culled"
	default:
		return "unknown"
	}
}

// Levels returns all levels in cost order, cheapest last.
// Useful for iterating variant tables.
//
// Returns:
//   - [4]Level: high, medium, low, culled
func Levels() [4]Level {
	return [4]Level{LevelHigh, LevelMedium, LevelLow, LevelCulled}
}

// RenderedLevels returns the levels that own geometry variants, in cost order.
//
// Returns:
//   - [3]Level: high, medium, low
func RenderedLevels() [3]Level {
	return [3]Level{LevelHigh, LevelMedium, LevelLow}
}
