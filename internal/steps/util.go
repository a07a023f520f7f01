package steps

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/roach88/driverbdd/internal/behaviour"
)

// SetTimeZone makes name the process time zone by setting TZ and
// time.Local. The change is process-wide and outlives the scenario unless
// the Context is cleaned up, which restores the previous zone.
func SetTimeZone(c *behaviour.Context, name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("%w: time-zone %q: %w", ErrInvalidArgument, name, err)
	}

	c.SaveTimeZone()
	if err := os.Setenv("TZ", name); err != nil {
		return fmt.Errorf("set TZ: %w", err)
	}
	time.Local = loc

	c.Logger.Debug("time-zone set", zap.String("tz", name))
	return nil
}

// maxWaitSeconds bounds the waits a time.Duration can hold.
const maxWaitSeconds = float64(math.MaxInt64) / float64(time.Second)

// Wait blocks for the given number of seconds on the Context clock. The
// argument is parsed before blocking; there is no cancellation.
func Wait(c *behaviour.Context, seconds string) error {
	s, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return fmt.Errorf("%w: seconds %q: %w", ErrInvalidArgument, seconds, err)
	}
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return fmt.Errorf("%w: seconds %q must be a finite non-negative number", ErrInvalidArgument, seconds)
	}
	if s >= maxWaitSeconds {
		return fmt.Errorf("%w: seconds %q exceeds %.0f", ErrInvalidArgument, seconds, maxWaitSeconds)
	}

	c.Clock.Sleep(time.Duration(s * float64(time.Second)))
	return nil
}
