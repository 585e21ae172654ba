package clock

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/charmbracelet/log"
)

// DefaultStep is the default simulation step, 60 ticks per second.
const DefaultStep = time.Second / 60

// FixedStep decouples simulation updates from the render rate. Variable frame deltas are
// accumulated and drained in whole steps; the remainder carries over to the next frame.
type FixedStep interface {
	// Advance adds dt to the accumulator, then runs the tick callback once per whole step it
	// holds. Negative dt counts as zero.
	//
	// Parameters:
	//   - dt: elapsed wall time since the previous Advance
	//
	// Returns:
	//   - int: the number of ticks run
	Advance(dt time.Duration) int

	// Residual returns the time left in the accumulator, always in [0, Step).
	//
	// Returns:
	//   - time.Duration: the carried-over time
	Residual() time.Duration

	// Step returns the fixed step length.
	//
	// Returns:
	//   - time.Duration: the step
	Step() time.Duration

	// SetTickCallback sets the function run on every tick. A nil callback still counts ticks.
	//
	// Parameters:
	//   - callback: function receiving the step length
	SetTickCallback(callback func(step time.Duration))

	// LastTickDuration returns the wall time spent in the most recent tick, measured even when
	// no callback is set.
	//
	// Returns:
	//   - time.Duration: the callback duration
	LastTickDuration() time.Duration

	// MaxTicksPerAdvance returns the tick limit per Advance, 0 for unlimited.
	//
	// Returns:
	//   - int: the limit
	MaxTicksPerAdvance() int

	// TotalTicks returns the number of ticks run since creation.
	//
	// Returns:
	//   - uint64: the tick count
	TotalTicks() uint64
}

type fixedStep struct {
	mu *sync.Mutex

	step        time.Duration
	accumulator time.Duration
	maxTicks    int
	onTick      func(step time.Duration)
	lastTick    time.Duration
	totalTicks  uint64

	logger *log.Logger
	now    func() time.Time
}

var _ FixedStep = &fixedStep{}

// NewFixedStep creates a FixedStep with a step of DefaultStep and no tick limit.
//
// Parameters:
//   - options: functional options to configure the clock
//
// Returns:
//   - FixedStep: the newly created clock
func NewFixedStep(options ...FixedStepBuilderOption) FixedStep {
	c := &fixedStep{
		mu:   &sync.Mutex{},
		step: DefaultStep,
		now:  time.Now,
	}
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = common.NewLogger("clock")
	}
	return c
}

func (c *fixedStep) Advance(dt time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dt > 0 {
		c.accumulator += dt
	}

	ticks := 0
	for c.accumulator >= c.step {
		if c.maxTicks > 0 && ticks == c.maxTicks {
			dropped := c.accumulator / c.step
			c.accumulator -= dropped * c.step
			c.logger.Warn("dropping simulation steps", "dropped", int64(dropped), "ran", ticks, "step", c.step)
			break
		}
		start := c.now()
		if c.onTick != nil {
			c.onTick(c.step)
		}
		c.lastTick = c.now().Sub(start)
		c.accumulator -= c.step
		c.totalTicks++
		ticks++
	}
	return ticks
}

func (c *fixedStep) Residual() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accumulator
}

func (c *fixedStep) Step() time.Duration {
	return c.step
}

func (c *fixedStep) SetTickCallback(callback func(step time.Duration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = callback
}

func (c *fixedStep) LastTickDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTick
}

func (c *fixedStep) MaxTicksPerAdvance() int {
	return c.maxTicks
}

func (c *fixedStep) TotalTicks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalTicks
}
