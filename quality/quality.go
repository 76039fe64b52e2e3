// package quality owns the adaptive render-quality state machine. A controller
// watches frame metrics and steps a discrete quality level up or down, guarded
// by hysteresis and a cooldown so that noisy frame times never cause
// oscillation. Each level maps to a fixed, hand-tuned RenderQuality preset
// that is swapped atomically on transition.
package quality

import (
	"fmt"
)

// Level is a discrete quality tier, ordered by rendering expense. Smaller
// values are cheaper: Performance renders the least, Ultra the most. Stepping
// "down" under load means moving toward Performance.
type Level int

const (
	// LevelPerformance is the cheapest tier, used when the frame budget is blown.
	LevelPerformance Level = iota
	// LevelLow trades most visual effects for stable frame times.
	LevelLow
	// LevelMedium is the balanced middle tier.
	LevelMedium
	// LevelHigh is near-full quality with slightly reduced effects.
	LevelHigh
	// LevelUltra is maximum quality with every feature enabled.
	LevelUltra
)

// String returns a human-readable name for the level.
//
// Returns:
//   - string: the level name, or "unknown"
func (l Level) String() string {
	switch l {
	case LevelPerformance:
		return "performance"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelUltra:
		return "ultra"
	default:
		return "unknown"
	}
}

// MarshalText encodes the level as its name for settings files.
//
// Returns:
//   - []byte: the level name
//   - error: always nil
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level from its name.
//
// Parameters:
//   - text: the level name
//
// Returns:
//   - error: non-nil if the name is not a known level
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name back to a Level.
//
// Parameters:
//   - name: one of "performance", "low", "medium", "high", "ultra"
//
// Returns:
//   - Level: the parsed level
//   - error: non-nil if the name is not recognized
func ParseLevel(name string) (Level, error) {
	switch name {
	case "performance":
		return LevelPerformance, nil
	case "low":
		return LevelLow, nil
	case "medium":
		return LevelMedium, nil
	case "high":
		return LevelHigh, nil
	case "ultra":
		return LevelUltra, nil
	default:
		return LevelMedium, fmt.Errorf("unknown quality level %q", name)
	}
}

// Levels returns all quality levels in ascending expense order.
//
// Returns:
//   - [5]Level: performance through ultra
func Levels() [5]Level {
	return [5]Level{LevelPerformance, LevelLow, LevelMedium, LevelHigh, LevelUltra}
}

// RenderQuality is the full preset for one quality level. Exactly one preset
// is active at a time; the controller swaps the whole struct on transition so
// dependents never observe a half-applied mix of settings.
type RenderQuality struct {
	// Level is the tier this preset belongs to.
	Level Level
	// ResolutionScale is the render target scale factor in (0, 1].
	ResolutionScale float32
	// ShadowsEnabled toggles shadow map rendering.
	ShadowsEnabled bool
	// ShadowMapSize is the shadow map edge length in texels.
	ShadowMapSize int
	// MSAASampleCount is the multisample count for the main render target.
	MSAASampleCount int
	// ParticleDensity scales particle system emission in [0, 1].
	ParticleDensity float32
	// AnimationQuality scales animation update rates in [0, 1].
	AnimationQuality float32
	// PostProcessingEnabled toggles the post-processing chain.
	PostProcessingEnabled bool
	// PerformanceScaling is fed to the LOD manager, which downgrades or
	// clamps detail selection as the factor drops.
	PerformanceScaling float32
}

// presets is the fixed table of hand-tuned quality presets, indexed by Level.
var presets = [5]RenderQuality{
	LevelPerformance: {
		Level:                 LevelPerformance,
		ResolutionScale:       0.5,
		ShadowsEnabled:        false,
		ShadowMapSize:         256,
		MSAASampleCount:       1,
		ParticleDensity:       0.1,
		AnimationQuality:      0.25,
		PostProcessingEnabled: false,
		PerformanceScaling:    0.25,
	},
	LevelLow: {
		Level:                 LevelLow,
		ResolutionScale:       0.7,
		ShadowsEnabled:        false,
		ShadowMapSize:         512,
		MSAASampleCount:       1,
		ParticleDensity:       0.25,
		AnimationQuality:      0.5,
		PostProcessingEnabled: false,
		PerformanceScaling:    0.5,
	},
	LevelMedium: {
		Level:                 LevelMedium,
		ResolutionScale:       0.85,
		ShadowsEnabled:        true,
		ShadowMapSize:         1024,
		MSAASampleCount:       2,
		ParticleDensity:       0.5,
		AnimationQuality:      0.75,
		PostProcessingEnabled: true,
		PerformanceScaling:    0.7,
	},
	LevelHigh: {
		Level:                 LevelHigh,
		ResolutionScale:       1.0,
		ShadowsEnabled:        true,
		ShadowMapSize:         2048,
		MSAASampleCount:       4,
		ParticleDensity:       0.8,
		AnimationQuality:      1.0,
		PostProcessingEnabled: true,
		PerformanceScaling:    0.9,
	},
	LevelUltra: {
		Level:                 LevelUltra,
		ResolutionScale:       1.0,
		ShadowsEnabled:        true,
		ShadowMapSize:         4096,
		MSAASampleCount:       4,
		ParticleDensity:       1.0,
		AnimationQuality:      1.0,
		PostProcessingEnabled: true,
		PerformanceScaling:    1.0,
	},
}

// PresetFor returns the hand-tuned preset for a level. Out-of-range levels
// fall back to the Medium preset.
//
// Parameters:
//   - level: the quality level
//
// Returns:
//   - RenderQuality: a copy of the preset
func PresetFor(level Level) RenderQuality {
	if level < LevelPerformance || level > LevelUltra {
		return presets[LevelMedium]
	}
	return presets[level]
}
