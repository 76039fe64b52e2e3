// Package config aggregates the tunable settings of every subsystem into one
// JSON-serializable document. Hosts load a settings file once at startup,
// validate it, and hand the result to the view builder; each field maps onto
// a functional option of the package that owns it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/culling"
	"github.com/Carmen-Shannon/oxy-vis/geometry_pool"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/Carmen-Shannon/oxy-vis/quality"
	"github.com/segmentio/encoding/json"
)

var (
	// ErrQualityRange reports a minimum quality level above the maximum.
	ErrQualityRange = errors.New("quality range conflict")
	// ErrThresholdOrder reports thresholds that are not monotonic in the
	// direction their consumer requires.
	ErrThresholdOrder = errors.New("threshold order conflict")
	// ErrOutOfRange reports a single value outside its legal range.
	ErrOutOfRange = errors.New("value out of range")
)

// Config is the complete settings document. Durations are expressed in
// seconds and quality levels by name, so the serialized form stays editable
// by hand.
type Config struct {
	// TargetFPS is the frame rate the quality controller steers toward.
	TargetFPS float64 `json:"target_fps"`
	// LowerThreshold requests a quality step down when measured performance
	// falls below this fraction of the target.
	LowerThreshold float64 `json:"lower_threshold"`
	// UpperThreshold requests a quality step up when measured performance
	// rises above this fraction of the target.
	UpperThreshold float64 `json:"upper_threshold"`
	// Hysteresis widens both thresholds away from 1.0 by this fraction.
	Hysteresis float64 `json:"hysteresis"`
	// CooldownSeconds is the minimum time between automatic quality
	// transitions.
	CooldownSeconds float64 `json:"cooldown_seconds"`
	// InitialQuality is the preset active before the controller has measured
	// anything.
	InitialQuality quality.Level `json:"initial_quality"`
	// MinQuality is the floor for automatic and manual transitions.
	MinQuality quality.Level `json:"min_quality"`
	// MaxQuality is the ceiling for automatic and manual transitions.
	MaxQuality quality.Level `json:"max_quality"`

	// DistanceThresholds are the camera distances, ascending, at which node
	// detail steps from high to medium, medium to low, and low to culled.
	DistanceThresholds [3]float32 `json:"distance_thresholds"`
	// ScreenThresholds are the projected pixel sizes, descending, below
	// which detail steps down one tier.
	ScreenThresholds [3]float32 `json:"screen_thresholds"`
	// ViewportWidth is the pixel width used for screen coverage estimates.
	ViewportWidth float32 `json:"viewport_width"`
	// NodeRadius is the world-space radius assumed for graph nodes.
	NodeRadius float32 `json:"node_radius"`

	// OcclusionEnabled turns the conservative occlusion stage on.
	OcclusionEnabled bool `json:"occlusion_enabled"`
	// OcclusionGridWidth is the horizontal cell count of the coverage grid.
	OcclusionGridWidth int `json:"occlusion_grid_width"`
	// OcclusionGridHeight is the vertical cell count of the coverage grid.
	OcclusionGridHeight int `json:"occlusion_grid_height"`
	// CacheStaleFrames is how many frames a cached visibility verdict stays
	// servable without being refreshed.
	CacheStaleFrames int `json:"cache_stale_frames"`
	// CachePruneInterval is how often, in frames, stale verdicts are swept.
	// Zero disables sweeping.
	CachePruneInterval int `json:"cache_prune_interval"`

	// MaxObjectsPerPool caps the object count of each geometry pool.
	MaxObjectsPerPool int `json:"max_objects_per_pool"`
	// MaxBytesPerPool caps the payload bytes of each geometry pool.
	MaxBytesPerPool int `json:"max_bytes_per_pool"`
	// GCIntervalSeconds is the cadence of periodic pool maintenance.
	GCIntervalSeconds float64 `json:"gc_interval_seconds"`
	// AgeThresholdSeconds is how long an object may sit idle before periodic
	// maintenance frees it.
	AgeThresholdSeconds float64 `json:"age_threshold_seconds"`
	// PressureThreshold is the usage ratio, in (0, 1], above which pool
	// maintenance runs immediately and frees any idle object.
	PressureThreshold float64 `json:"pressure_threshold"`
	// WarnBytes overrides the derived soft memory ceiling. Zero derives it
	// from the pool byte caps.
	WarnBytes int `json:"warn_bytes"`

	// Workers is the worker pool size for parallel visibility testing. Zero
	// selects one worker per CPU.
	Workers int `json:"workers"`
}

// Default returns the settings every field falls back to. The values are the
// same constants the individual packages default to when built without
// options, so an empty settings file and no settings file behave alike.
//
// Returns:
//   - Config: the default settings document
func Default() Config {
	return Config{
		TargetFPS:           quality.DefaultTargetFPS,
		LowerThreshold:      quality.DefaultLowerThreshold,
		UpperThreshold:      quality.DefaultUpperThreshold,
		Hysteresis:          quality.DefaultHysteresis,
		CooldownSeconds:     quality.DefaultCooldown.Seconds(),
		InitialQuality:      quality.LevelHigh,
		MinQuality:          quality.LevelPerformance,
		MaxQuality:          quality.LevelUltra,
		DistanceThresholds:  lod.DefaultDistanceThresholds,
		ScreenThresholds:    lod.DefaultScreenThresholds,
		ViewportWidth:       lod.DefaultViewportWidth,
		NodeRadius:          lod.DefaultNodeRadius,
		OcclusionEnabled:    false,
		OcclusionGridWidth:  culling.DefaultOcclusionGridWidth,
		OcclusionGridHeight: culling.DefaultOcclusionGridHeight,
		CacheStaleFrames:    culling.DefaultStaleFrames,
		CachePruneInterval:  culling.DefaultPruneInterval,
		MaxObjectsPerPool:   geometry_pool.DefaultMaxObjectsPerPool,
		MaxBytesPerPool:     geometry_pool.DefaultMaxBytesPerPool,
		GCIntervalSeconds:   geometry_pool.DefaultGCInterval.Seconds(),
		AgeThresholdSeconds: geometry_pool.DefaultAgeThreshold.Seconds(),
		PressureThreshold:   geometry_pool.DefaultPressureThreshold,
	}
}

// Validate checks the document for conflicts and illegal values. It returns
// the first problem found, wrapped around one of the package sentinels so
// hosts can classify the failure.
//
// Returns:
//   - error: nil, or the first conflict wrapped around ErrQualityRange,
//     ErrThresholdOrder, or ErrOutOfRange
func (c Config) Validate() error {
	if c.TargetFPS <= 0 {
		return fmt.Errorf("target fps %v: %w", c.TargetFPS, ErrOutOfRange)
	}
	if c.LowerThreshold <= 0 || c.UpperThreshold <= 0 {
		return fmt.Errorf("performance thresholds %v/%v: %w", c.LowerThreshold, c.UpperThreshold, ErrOutOfRange)
	}
	if c.LowerThreshold >= c.UpperThreshold {
		return fmt.Errorf("lower threshold %v not below upper threshold %v: %w", c.LowerThreshold, c.UpperThreshold, ErrThresholdOrder)
	}
	if c.Hysteresis < 0 || c.Hysteresis >= 1 {
		return fmt.Errorf("hysteresis %v: %w", c.Hysteresis, ErrOutOfRange)
	}
	if c.CooldownSeconds <= 0 {
		return fmt.Errorf("cooldown %vs: %w", c.CooldownSeconds, ErrOutOfRange)
	}
	if !validLevel(c.InitialQuality) || !validLevel(c.MinQuality) || !validLevel(c.MaxQuality) {
		return fmt.Errorf("quality level outside %s..%s: %w", quality.LevelPerformance, quality.LevelUltra, ErrOutOfRange)
	}
	if c.MinQuality > c.MaxQuality {
		return fmt.Errorf("min quality %s above max quality %s: %w", c.MinQuality, c.MaxQuality, ErrQualityRange)
	}
	for i, d := range c.DistanceThresholds {
		if d <= 0 {
			return fmt.Errorf("distance threshold %v: %w", d, ErrOutOfRange)
		}
		if i > 0 && d <= c.DistanceThresholds[i-1] {
			return fmt.Errorf("distance thresholds %v not ascending: %w", c.DistanceThresholds, ErrThresholdOrder)
		}
	}
	for i, s := range c.ScreenThresholds {
		if s <= 0 {
			return fmt.Errorf("screen threshold %v: %w", s, ErrOutOfRange)
		}
		if i > 0 && s >= c.ScreenThresholds[i-1] {
			return fmt.Errorf("screen thresholds %v not descending: %w", c.ScreenThresholds, ErrThresholdOrder)
		}
	}
	if c.ViewportWidth <= 0 {
		return fmt.Errorf("viewport width %v: %w", c.ViewportWidth, ErrOutOfRange)
	}
	if c.NodeRadius <= 0 {
		return fmt.Errorf("node radius %v: %w", c.NodeRadius, ErrOutOfRange)
	}
	if c.OcclusionGridWidth <= 0 || c.OcclusionGridHeight <= 0 {
		return fmt.Errorf("occlusion grid %dx%d: %w", c.OcclusionGridWidth, c.OcclusionGridHeight, ErrOutOfRange)
	}
	if c.CacheStaleFrames < 1 {
		return fmt.Errorf("cache stale frames %d: %w", c.CacheStaleFrames, ErrOutOfRange)
	}
	if c.CachePruneInterval < 0 {
		return fmt.Errorf("cache prune interval %d: %w", c.CachePruneInterval, ErrOutOfRange)
	}
	if c.MaxObjectsPerPool <= 0 || c.MaxBytesPerPool <= 0 {
		return fmt.Errorf("pool caps %d objects / %d bytes: %w", c.MaxObjectsPerPool, c.MaxBytesPerPool, ErrOutOfRange)
	}
	if c.GCIntervalSeconds <= 0 {
		return fmt.Errorf("gc interval %vs: %w", c.GCIntervalSeconds, ErrOutOfRange)
	}
	if c.AgeThresholdSeconds < 0 {
		return fmt.Errorf("age threshold %vs: %w", c.AgeThresholdSeconds, ErrOutOfRange)
	}
	if c.PressureThreshold <= 0 || c.PressureThreshold > 1 {
		return fmt.Errorf("pressure threshold %v outside (0, 1]: %w", c.PressureThreshold, ErrOutOfRange)
	}
	if c.WarnBytes < 0 {
		return fmt.Errorf("warn bytes %d: %w", c.WarnBytes, ErrOutOfRange)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, ErrOutOfRange)
	}
	return nil
}

func validLevel(l quality.Level) bool {
	return l >= quality.LevelPerformance && l <= quality.LevelUltra
}

// Load reads and validates a settings file. Fields the file omits keep their
// defaults, so a partial file is a valid way to override just a few values.
//
// Parameters:
//   - path: the settings file to read
//
// Returns:
//   - Config: the loaded settings, or Default() when an error is returned
//   - error: a wrapped read, parse, or validation failure
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Save validates the document and writes it as indented JSON. A config that
// would fail to load is refused rather than persisted.
//
// Parameters:
//   - path: the settings file to write
//
// Returns:
//   - error: a validation, encoding, or write failure
func (c Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Merge overlays the non-zero fields of override onto the receiver and
// returns the combined document. It is the programmatic counterpart of a
// partial settings file: hosts build a Config literal holding only the
// fields they care about and merge it over Default(). Fields whose zero
// value is itself a legal setting, such as hysteresis, warn bytes, workers,
// the occlusion flag, and the performance quality level, inherit the
// receiver's value when zero; overrides that need one of those must spell
// out the full document instead.
//
// Parameters:
//   - override: the partial settings to overlay
//
// Returns:
//   - Config: the combined settings document
func (c Config) Merge(override Config) Config {
	out := c
	out.TargetFPS = common.Coalesce(override.TargetFPS, c.TargetFPS)
	out.LowerThreshold = common.Coalesce(override.LowerThreshold, c.LowerThreshold)
	out.UpperThreshold = common.Coalesce(override.UpperThreshold, c.UpperThreshold)
	out.Hysteresis = common.Coalesce(override.Hysteresis, c.Hysteresis)
	out.CooldownSeconds = common.Coalesce(override.CooldownSeconds, c.CooldownSeconds)
	out.InitialQuality = common.Coalesce(override.InitialQuality, c.InitialQuality)
	out.MinQuality = common.Coalesce(override.MinQuality, c.MinQuality)
	out.MaxQuality = common.Coalesce(override.MaxQuality, c.MaxQuality)
	out.DistanceThresholds = common.Coalesce(override.DistanceThresholds, c.DistanceThresholds)
	out.ScreenThresholds = common.Coalesce(override.ScreenThresholds, c.ScreenThresholds)
	out.ViewportWidth = common.Coalesce(override.ViewportWidth, c.ViewportWidth)
	out.NodeRadius = common.Coalesce(override.NodeRadius, c.NodeRadius)
	out.OcclusionEnabled = common.Coalesce(override.OcclusionEnabled, c.OcclusionEnabled)
	out.OcclusionGridWidth = common.Coalesce(override.OcclusionGridWidth, c.OcclusionGridWidth)
	out.OcclusionGridHeight = common.Coalesce(override.OcclusionGridHeight, c.OcclusionGridHeight)
	out.CacheStaleFrames = common.Coalesce(override.CacheStaleFrames, c.CacheStaleFrames)
	out.CachePruneInterval = common.Coalesce(override.CachePruneInterval, c.CachePruneInterval)
	out.MaxObjectsPerPool = common.Coalesce(override.MaxObjectsPerPool, c.MaxObjectsPerPool)
	out.MaxBytesPerPool = common.Coalesce(override.MaxBytesPerPool, c.MaxBytesPerPool)
	out.GCIntervalSeconds = common.Coalesce(override.GCIntervalSeconds, c.GCIntervalSeconds)
	out.AgeThresholdSeconds = common.Coalesce(override.AgeThresholdSeconds, c.AgeThresholdSeconds)
	out.PressureThreshold = common.Coalesce(override.PressureThreshold, c.PressureThreshold)
	out.WarnBytes = common.Coalesce(override.WarnBytes, c.WarnBytes)
	out.Workers = common.Coalesce(override.Workers, c.Workers)
	return out
}

// Cooldown returns the controller cooldown as a duration.
//
// Returns:
//   - time.Duration: CooldownSeconds converted to a duration
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds * float64(time.Second))
}

// GCInterval returns the pool maintenance cadence as a duration.
//
// Returns:
//   - time.Duration: GCIntervalSeconds converted to a duration
func (c Config) GCInterval() time.Duration {
	return time.Duration(c.GCIntervalSeconds * float64(time.Second))
}

// AgeThreshold returns the idle age limit as a duration.
//
// Returns:
//   - time.Duration: AgeThresholdSeconds converted to a duration
func (c Config) AgeThreshold() time.Duration {
	return time.Duration(c.AgeThresholdSeconds * float64(time.Second))
}
