package view

import (
	"github.com/Carmen-Shannon/oxy-vis/config"
	"github.com/Carmen-Shannon/oxy-vis/culling"
	"github.com/Carmen-Shannon/oxy-vis/geometry"
	"github.com/Carmen-Shannon/oxy-vis/geometry_pool"
	"github.com/Carmen-Shannon/oxy-vis/lod"
	"github.com/Carmen-Shannon/oxy-vis/metrics"
	"github.com/Carmen-Shannon/oxy-vis/quality"
	"github.com/Carmen-Shannon/oxy-vis/upload"
)

// ViewBuilderOption is a functional option for configuring a View.
// Use the With* functions to create options.
type ViewBuilderOption func(v *viewImpl)

// WithConfig applies a full configuration document: the quality, level, culler,
// and pool settings become option bundles for the collaborators NewView
// constructs, and the view-level knobs (radii, worker count, ramp rate) are set
// directly. Collaborators injected through their own With* options take
// precedence over the bundles.
//
// Parameters:
//   - cfg: config.Config, the settings to apply
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithConfig(cfg config.Config) ViewBuilderOption {
	return func(v *viewImpl) {
		v.controllerOptions = append(v.controllerOptions, cfg.ControllerOptions()...)
		v.lodOptions = append(v.lodOptions, cfg.LODOptions()...)
		v.cullerOptions = append(v.cullerOptions, cfg.CullerOptions()...)
		v.poolOptions = append(v.poolOptions, cfg.PoolOptions()...)
		v.nodeRadius = cfg.NodeRadius
		v.edgeRadius = cfg.NodeRadius
		v.rampFPS = int(cfg.TargetFPS)
		if cfg.Workers > 0 {
			v.workers = cfg.Workers
		}
	}
}

// WithQualityController injects a pre-built quality controller, overriding any
// controller settings from WithConfig.
//
// Parameters:
//   - controller: quality.Controller, the controller to use
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithQualityController(controller quality.Controller) ViewBuilderOption {
	return func(v *viewImpl) {
		v.controller = controller
	}
}

// WithCuller injects a pre-built visibility culler.
//
// Parameters:
//   - culler: culling.Culler, the culler to use
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithCuller(culler culling.Culler) ViewBuilderOption {
	return func(v *viewImpl) {
		v.culler = culler
	}
}

// WithDetailManager injects a pre-built level-of-detail manager.
//
// Parameters:
//   - manager: lod.Manager, the manager to use
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithDetailManager(manager lod.Manager) ViewBuilderOption {
	return func(v *viewImpl) {
		v.lodMgr = manager
	}
}

// WithPools injects a pre-built geometry pool manager.
//
// Parameters:
//   - pools: geometry_pool.Manager, the manager to use
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithPools(pools geometry_pool.Manager) ViewBuilderOption {
	return func(v *viewImpl) {
		v.pools = pools
	}
}

// WithFrameMetrics injects a pre-built frame-time tracker.
//
// Parameters:
//   - frames: *metrics.FrameMetrics, the tracker to use
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithFrameMetrics(frames *metrics.FrameMetrics) ViewBuilderOption {
	return func(v *viewImpl) {
		v.frames = frames
	}
}

// WithLibrary injects the mesh variant library used to size staging slots.
//
// Parameters:
//   - library: *geometry.Library, the variant library to use
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithLibrary(library *geometry.Library) ViewBuilderOption {
	return func(v *viewImpl) {
		v.library = library
	}
}

// WithResolutionRamp injects a pre-built resolution ramp, overriding the ramp
// rate from WithConfig.
//
// Parameters:
//   - ramp: *quality.ResolutionRamp, the ramp to use
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithResolutionRamp(ramp *quality.ResolutionRamp) ViewBuilderOption {
	return func(v *viewImpl) {
		v.ramp = ramp
	}
}

// WithUploadSink routes pool buffer creation through the given sink. This is a
// convenience wrapper around the pool manager's own sink option and has no
// effect when a manager is injected with WithPools.
//
// Parameters:
//   - sink: upload.Sink, the GPU upload backend
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithUploadSink(sink upload.Sink) ViewBuilderOption {
	return func(v *viewImpl) {
		v.poolOptions = append(v.poolOptions, geometry_pool.WithSink(sink))
	}
}

// WithWorkers sets the number of worker goroutines used during the parallel
// visibility phase of BeginFrame. Defaults to runtime.NumCPU()-1. Values
// below 1 are clamped to 1, which also disables the parallel phase.
//
// Parameters:
//   - n: the number of visibility workers (minimum 1)
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithWorkers(n int) ViewBuilderOption {
	return func(v *viewImpl) {
		if n < 1 {
			n = 1
		}
		v.workers = n
	}
}

// WithNodeRadius sets the fallback bounding radius for nodes that publish no
// explicit bounds.
//
// Parameters:
//   - radius: the node radius in world units
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithNodeRadius(radius float32) ViewBuilderOption {
	return func(v *viewImpl) {
		v.nodeRadius = radius
	}
}

// WithEdgeRadius sets the padding applied around edge segments when deriving
// their bounding boxes.
//
// Parameters:
//   - radius: the edge padding in world units
//
// Returns:
//   - ViewBuilderOption: option function to apply
func WithEdgeRadius(radius float32) ViewBuilderOption {
	return func(v *viewImpl) {
		v.edgeRadius = radius
	}
}
