package geometry_pool

import (
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/upload"
)

// ManagerOption configures a Manager during construction.
type ManagerOption func(*managerImpl)

// WithSink sets the upload sink handles are brokered through.
//
// Parameters:
//   - sink: the sink, replacing the default NullSink.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithSink(sink upload.Sink) ManagerOption {
	return func(m *managerImpl) {
		if sink != nil {
			m.sink = sink
		}
	}
}

// WithPoolLimits sets one category's object and byte ceilings.
//
// Parameters:
//   - category: the pool to configure.
//   - maxObjects: the object-count ceiling.
//   - maxBytes: the payload byte ceiling.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithPoolLimits(category common.ObjectCategory, maxObjects, maxBytes int) ManagerOption {
	return func(m *managerImpl) {
		if pool, ok := m.pools[category]; ok {
			pool.maxObjects = maxObjects
			pool.maxBytes = maxBytes
		}
	}
}

// WithLimits sets every category's object and byte ceilings at once.
//
// Parameters:
//   - maxObjects: the object-count ceiling per pool.
//   - maxBytes: the payload byte ceiling per pool.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithLimits(maxObjects, maxBytes int) ManagerOption {
	return func(m *managerImpl) {
		for _, pool := range m.pools {
			pool.maxObjects = maxObjects
			pool.maxBytes = maxBytes
		}
	}
}

// WithGCInterval sets how often Maintain collects without pressure.
//
// Parameters:
//   - interval: the collection cadence.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithGCInterval(interval time.Duration) ManagerOption {
	return func(m *managerImpl) {
		if interval > 0 {
			m.gcInterval = interval
		}
	}
}

// WithAgeThreshold sets how long objects may sit idle before cleanup.
//
// Parameters:
//   - age: the idle age limit.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithAgeThreshold(age time.Duration) ManagerOption {
	return func(m *managerImpl) {
		if age > 0 {
			m.ageThreshold = age
		}
	}
}

// WithPressureThreshold sets the usage ratio that triggers immediate
// collection.
//
// Parameters:
//   - ratio: usage over warning threshold, typically below 1.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithPressureThreshold(ratio float64) ManagerOption {
	return func(m *managerImpl) {
		if ratio > 0 {
			m.pressureThreshold = ratio
		}
	}
}

// WithWarnBytes sets the warning threshold pressure is measured against.
//
// Parameters:
//   - bytes: the threshold, 0 to derive it from the pool ceilings.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithWarnBytes(bytes int) ManagerOption {
	return func(m *managerImpl) {
		m.warnBytes = bytes
	}
}

// WithClock sets the time source, letting tests drive aging and GC
// scheduling.
//
// Parameters:
//   - now: the clock function.
//
// Returns:
//   - ManagerOption: the option to apply.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *managerImpl) {
		if now != nil {
			m.clock = now
		}
	}
}
