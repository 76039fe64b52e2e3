package culling

// CullerOption configures a Culler during construction.
type CullerOption func(*cullerImpl)

// WithOcclusion enables or disables the occlusion stage at construction.
//
// Parameters:
//   - enabled: whether the occlusion stage runs.
//
// Returns:
//   - CullerOption: the option to apply.
func WithOcclusion(enabled bool) CullerOption {
	return func(c *cullerImpl) {
		c.occlusionEnabled = enabled
	}
}

// WithOcclusionGrid sets the occlusion depth-grid resolution.
//
// Parameters:
//   - width: horizontal cell count, 0 for the default.
//   - height: vertical cell count, 0 for the default.
//
// Returns:
//   - CullerOption: the option to apply.
func WithOcclusionGrid(width, height int) CullerOption {
	return func(c *cullerImpl) {
		c.occlusion = NewOcclusionCuller(width, height)
	}
}

// WithStaleFrames sets how many frames a cached verdict survives.
//
// Parameters:
//   - frames: the staleness limit, 0 for DefaultStaleFrames.
//
// Returns:
//   - CullerOption: the option to apply.
func WithStaleFrames(frames uint64) CullerOption {
	return func(c *cullerImpl) {
		c.cache = NewVisibilityCache(frames)
	}
}

// WithPruneInterval sets how many frames pass between cache sweeps.
//
// Parameters:
//   - frames: the sweep cadence, 0 to disable sweeping.
//
// Returns:
//   - CullerOption: the option to apply.
func WithPruneInterval(frames uint64) CullerOption {
	return func(c *cullerImpl) {
		c.pruneInterval = frames
	}
}
