package config

import (
	"github.com/Carmen-Shannon/oxy-vis/culling"
	"github.com/Carmen-Shannon/oxy-vis/geometry_pool"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/Carmen-Shannon/oxy-vis/quality"
)

// ControllerOptions expands the quality controller's share of the document
// into functional options for quality.NewController.
//
// Returns:
//   - []quality.ControllerOption: options carrying the controller fields
func (c Config) ControllerOptions() []quality.ControllerOption {
	return []quality.ControllerOption{
		quality.WithTargetFPS(c.TargetFPS),
		quality.WithThresholds(c.LowerThreshold, c.UpperThreshold),
		quality.WithHysteresis(c.Hysteresis),
		quality.WithCooldown(c.Cooldown()),
		quality.WithInitialLevel(c.InitialQuality),
		quality.WithLevelRange(c.MinQuality, c.MaxQuality),
	}
}

// LODOptions expands the detail selection share of the document into
// functional options for lod.NewManager.
//
// Returns:
//   - []lod.ManagerOption: options carrying the detail selection fields
func (c Config) LODOptions() []lod.ManagerOption {
	return []lod.ManagerOption{
		lod.WithDistanceThresholds(c.DistanceThresholds),
		lod.WithScreenThresholds(c.ScreenThresholds),
		lod.WithViewportWidth(c.ViewportWidth),
		lod.WithNodeRadius(c.NodeRadius),
	}
}

// CullerOptions expands the visibility share of the document into functional
// options for culling.NewCuller.
//
// Returns:
//   - []culling.CullerOption: options carrying the visibility fields
func (c Config) CullerOptions() []culling.CullerOption {
	return []culling.CullerOption{
		culling.WithOcclusion(c.OcclusionEnabled),
		culling.WithOcclusionGrid(c.OcclusionGridWidth, c.OcclusionGridHeight),
		culling.WithStaleFrames(uint64(c.CacheStaleFrames)),
		culling.WithPruneInterval(uint64(c.CachePruneInterval)),
	}
}

// PoolOptions expands the memory management share of the document into
// functional options for geometry_pool.NewManager.
//
// Returns:
//   - []geometry_pool.ManagerOption: options carrying the pool fields
func (c Config) PoolOptions() []geometry_pool.ManagerOption {
	return []geometry_pool.ManagerOption{
		geometry_pool.WithLimits(c.MaxObjectsPerPool, c.MaxBytesPerPool),
		geometry_pool.WithGCInterval(c.GCInterval()),
		geometry_pool.WithAgeThreshold(c.AgeThreshold()),
		geometry_pool.WithPressureThreshold(c.PressureThreshold),
		geometry_pool.WithWarnBytes(c.WarnBytes),
	}
}
