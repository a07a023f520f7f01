package behaviour

import (
	"fmt"
	"os"
	"time"
)

// timeZoneState is the process time zone as it was before the scenario changed it.
type timeZoneState struct {
	env    string
	hadEnv bool
	local  *time.Location
}

// SaveTimeZone records the TZ variable and time.Local. Only the first call
// in a scenario has an effect, so RestoreTimeZone returns to the state from
// before any change.
func (c *Context) SaveTimeZone() {
	if c.tz != nil {
		return
	}
	env, had := os.LookupEnv("TZ")
	c.tz = &timeZoneState{env: env, hadEnv: had, local: time.Local}
}

// RestoreTimeZone undoes time-zone changes made since SaveTimeZone. It is a
// no-op when nothing was saved.
func (c *Context) RestoreTimeZone() error {
	if c.tz == nil {
		return nil
	}
	saved := c.tz
	c.tz = nil

	time.Local = saved.local

	var err error
	if saved.hadEnv {
		err = os.Setenv("TZ", saved.env)
	} else {
		err = os.Unsetenv("TZ")
	}
	if err != nil {
		return fmt.Errorf("restore TZ: %w", err)
	}
	return nil
}
