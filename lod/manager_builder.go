package lod

// ManagerOption is a functional option for configuring a Manager.
type ManagerOption func(*managerImpl)

// WithDistanceThresholds sets the ascending distance cutoffs for the
// high/medium/low bands. Objects beyond the last cutoff are culled.
//
// Parameters:
//   - thresholds: ascending world-space distances
//
// Returns:
//   - ManagerOption: functional option to set the distance thresholds
func WithDistanceThresholds(thresholds [3]float32) ManagerOption {
	return func(m *managerImpl) {
		m.distanceThresholds = thresholds
	}
}

// WithScreenThresholds sets the descending minimum pixel sizes for the
// high/medium/low bands. Objects smaller than the last cutoff are culled.
//
// Parameters:
//   - thresholds: descending pixel sizes
//
// Returns:
//   - ManagerOption: functional option to set the screen-size thresholds
func WithScreenThresholds(thresholds [3]float32) ManagerOption {
	return func(m *managerImpl) {
		m.screenThresholds = thresholds
	}
}

// WithViewportWidth sets the assumed viewport pixel width used for screen-size
// estimation.
//
// Parameters:
//   - width: viewport width in pixels
//
// Returns:
//   - ManagerOption: functional option to set the viewport width
func WithViewportWidth(width float32) ManagerOption {
	return func(m *managerImpl) {
		m.viewportWidth = width
	}
}

// WithNodeRadius sets the assumed render radius of graph nodes, also used as
// the minimum radius for edges.
//
// Parameters:
//   - radius: node radius in world units
//
// Returns:
//   - ManagerOption: functional option to set the node radius
func WithNodeRadius(radius float32) ManagerOption {
	return func(m *managerImpl) {
		m.nodeRadius = radius
	}
}

// WithPerformanceScaling sets the initial performance scaling factor.
//
// Parameters:
//   - scaling: the factor in [0, 1]
//
// Returns:
//   - ManagerOption: functional option to set the initial scaling
func WithPerformanceScaling(scaling float32) ManagerOption {
	return func(m *managerImpl) {
		m.performanceScaling = scaling
	}
}
