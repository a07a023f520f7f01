package behaviour

import "errors"

var (
	// ErrThingNotFound is returned by Get for a variable that was never Put.
	ErrThingNotFound = errors.New("thing not found")

	// ErrTypeNotFound is returned by GetThingType when the driver has no such type.
	ErrTypeNotFound = errors.New("type not found")

	// ErrNoTransaction is returned when a step needs a transaction and none is open.
	ErrNoTransaction = errors.New("no open transaction")

	// ErrNoDriver is returned when a step needs a connection and none is open.
	ErrNoDriver = errors.New("no open connection")

	// ErrUnknownOption is returned by SetOption for an unregistered option name.
	ErrUnknownOption = errors.New("unknown option")
)
