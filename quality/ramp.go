package quality

import (
	"math"
	"sync"

	"github.com/charmbracelet/harmonica"
)

// ResolutionRamp smooths the applied resolution scale across frames. Preset
// swaps are atomic, but slamming the render target scale in a single frame is
// a visible pop; the ramp spring-animates the applied scale toward the active
// preset's target instead. The preset itself is never modified.
type ResolutionRamp struct {
	mu *sync.Mutex

	spring   harmonica.Spring
	position float64
	velocity float64
	target   float64
}

// NewResolutionRamp creates a ramp updated once per frame at the given frame
// rate, starting settled at full scale. The spring is critically damped, so
// the applied scale approaches its target without overshoot.
//
// Parameters:
//   - fps: the frame rate the ramp is stepped at
//
// Returns:
//   - *ResolutionRamp: the newly created ramp
func NewResolutionRamp(fps int) *ResolutionRamp {
	return &ResolutionRamp{
		mu:       &sync.Mutex{},
		spring:   harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		position: 1.0,
		target:   1.0,
	}
}

// SetTarget points the ramp at a new resolution scale. Called on every
// quality transition with the new preset's scale.
//
// Parameters:
//   - scale: the target resolution scale in (0, 1]
func (r *ResolutionRamp) SetTarget(scale float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = float64(scale)
}

// Step advances the spring by one frame and returns the scale to apply.
// Settles exactly on the target once the remaining distance is negligible.
//
// Returns:
//   - float32: the applied resolution scale for this frame
func (r *ResolutionRamp) Step() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.position, r.velocity = r.spring.Update(r.position, r.velocity, r.target)
	if math.Abs(r.position-r.target) < 1e-3 && math.Abs(r.velocity) < 1e-3 {
		r.position = r.target
		r.velocity = 0
	}
	return float32(r.position)
}

// Applied returns the current scale without advancing the spring.
//
// Returns:
//   - float32: the most recently applied resolution scale
func (r *ResolutionRamp) Applied() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float32(r.position)
}
