package voodoo

import (
	"errors"
	"fmt"
)

// Contract errors. Every error in this package is a precondition violation
// reported synchronously to the caller; none of them are retryable.
var (
	ErrDestroyed        = errors.New("voodoo: engine destroyed")
	ErrInvalidArgument  = errors.New("voodoo: invalid argument")
	ErrDuplicateTrigger = errors.New("voodoo: object already has a trigger")
	ErrTriggerNotFound  = errors.New("voodoo: trigger not registered")
	ErrTrackNotFound    = errors.New("voodoo: track handle not registered")
	ErrObjectInScene    = errors.New("voodoo: object already in a scene")
	ErrObjectNotFound   = errors.New("voodoo: object not in scene")
	ErrViewNotLoaded    = errors.New("voodoo: view not loaded")
	ErrHandlerNotFound  = errors.New("voodoo: handler not registered")
)

// contractError wraps a sentinel with the failing operation. In debug mode it
// panics instead of returning, so violations surface at the call site.
func contractError(debug bool, op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	if debug {
		panic(err)
	}
	Logger().Warn("contract violation", "op", op, "err", err)
	return err
}
