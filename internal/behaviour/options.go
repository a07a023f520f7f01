package behaviour

import (
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/driverbdd/internal/concept"
)

// OptionSetter applies one named option, given as step text, to transaction options.
type OptionSetter interface {
	Apply(opts *concept.Options, value string) error
}

// OptionSetterFunc adapts a function to OptionSetter.
type OptionSetterFunc func(opts *concept.Options, value string) error

// Apply calls f(opts, value).
func (f OptionSetterFunc) Apply(opts *concept.Options, value string) error {
	return f(opts, value)
}

// DefaultOptionSetters returns a fresh registry of the options every driver supports.
func DefaultOptionSetters() map[string]OptionSetter {
	return map[string]OptionSetter{
		"infer":         boolOption(func(o *concept.Options, v bool) { o.Infer = v }),
		"explain":       boolOption(func(o *concept.Options, v bool) { o.Explain = v }),
		"parallel":      boolOption(func(o *concept.Options, v bool) { o.Parallel = v }),
		"prefetch-size": intOption(func(o *concept.Options, v int) { o.PrefetchSize = v }),
		"transaction-timeout-millis": millisOption(func(o *concept.Options, d time.Duration) {
			o.TransactionTimeout = d
		}),
		"schema-lock-acquire-timeout-millis": millisOption(func(o *concept.Options, d time.Duration) {
			o.SchemaLockAcquireTimeout = d
		}),
	}
}

// SetOption applies the named option to TransactionOptions.
func (c *Context) SetOption(name, value string) error {
	setter, ok := c.OptionSetters[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	if err := setter.Apply(&c.TransactionOptions, value); err != nil {
		return fmt.Errorf("option %s: %w", name, err)
	}
	return nil
}

func boolOption(set func(*concept.Options, bool)) OptionSetter {
	return OptionSetterFunc(func(o *concept.Options, value string) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		set(o, v)
		return nil
	})
}

func intOption(set func(*concept.Options, int)) OptionSetter {
	return OptionSetterFunc(func(o *concept.Options, value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("must not be negative, got %d", v)
		}
		set(o, v)
		return nil
	})
}

func millisOption(set func(*concept.Options, time.Duration)) OptionSetter {
	return intOption(func(o *concept.Options, v int) {
		set(o, time.Duration(v)*time.Millisecond)
	})
}
