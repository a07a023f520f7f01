package behaviour

import (
	"context"
	"errors"
	"time"
)

// Reattempt settings for drivers talking to a server, where a check made
// right after a write may not observe it yet.
const (
	DefaultReattemptSleep = 250 * time.Millisecond
	ServerReattemptLimit  = 20
)

// Reattempt runs check until it succeeds or ReattemptLimit attempts have
// failed, sleeping ReattemptSleep on Clock between attempts. The error of
// the last attempt is returned.
func (c *Context) Reattempt(ctx context.Context, check func() error) error {
	limit := max(c.ReattemptLimit, 1)
	for attempt := 1; ; attempt++ {
		err := check()
		if err == nil || attempt >= limit {
			return err
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-c.Clock.After(c.ReattemptSleep):
		}
	}
}
