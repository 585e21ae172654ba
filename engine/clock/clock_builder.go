package clock

import (
	"time"

	"github.com/charmbracelet/log"
)

// FixedStepBuilderOption is a functional option for configuring a FixedStep.
type FixedStepBuilderOption func(c *fixedStep)

// WithStep sets the fixed step length. Non-positive values are ignored.
//
// Parameters:
//   - step: the simulation step
//
// Returns:
//   - FixedStepBuilderOption: option function to apply
func WithStep(step time.Duration) FixedStepBuilderOption {
	return func(c *fixedStep) {
		if step > 0 {
			c.step = step
		}
	}
}

// WithTickRate sets the step from a rate in ticks per second. Non-positive rates are ignored.
//
// Parameters:
//   - hz: ticks per second
//
// Returns:
//   - FixedStepBuilderOption: option function to apply
func WithTickRate(hz float64) FixedStepBuilderOption {
	return func(c *fixedStep) {
		if hz > 0 {
			c.step = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithMaxTicksPerAdvance limits the ticks a single Advance may run. Whole steps beyond the
// limit are discarded so a long stall cannot snowball into ever longer frames.
//
// Parameters:
//   - n: the limit, 0 for unlimited
//
// Returns:
//   - FixedStepBuilderOption: option function to apply
func WithMaxTicksPerAdvance(n int) FixedStepBuilderOption {
	return func(c *fixedStep) {
		c.maxTicks = max(n, 0)
	}
}

// WithTickCallback sets the initial tick callback.
//
// Parameters:
//   - callback: function receiving the step length
//
// Returns:
//   - FixedStepBuilderOption: option function to apply
func WithTickCallback(callback func(step time.Duration)) FixedStepBuilderOption {
	return func(c *fixedStep) {
		c.onTick = callback
	}
}

// WithLogger sets the logger used for dropped step warnings.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - FixedStepBuilderOption: option function to apply
func WithLogger(logger *log.Logger) FixedStepBuilderOption {
	return func(c *fixedStep) {
		c.logger = logger
	}
}

// withNow replaces the wall clock used to time tick callbacks.
func withNow(now func() time.Time) FixedStepBuilderOption {
	return func(c *fixedStep) {
		c.now = now
	}
}
