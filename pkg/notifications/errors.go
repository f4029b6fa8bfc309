package notifications

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the class of every "does not exist" failure. Use
	// errors.Is(err, ErrNotFound) to map it to a 404.
	ErrNotFound = errors.New("not found")

	// ErrUserNotFound is returned when the referenced user is unknown to the owning system.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	// ErrNotificationNotFound is returned for missing or soft-deleted notifications.
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	// ErrInvalidArgument is returned for malformed ids, cursors or wait durations.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStoreFailure wraps errors coming from Storage or UserDirectory backends.
	ErrStoreFailure = errors.New("notification store failure")

	// ErrInvariantViolation signals an internal bug, such as a waiter resolved twice.
	// It fails the affected request only.
	ErrInvariantViolation = errors.New("internal invariant violation")

	// ErrRegistryClosed is returned to pollers when the registry shuts down.
	ErrRegistryClosed = errors.New("waiter registry is closed")
)

// storeFailure tags err as a backend failure unless it already carries a
// domain classification.
func storeFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrStoreFailure) {
		return err
	}
	return errors.Join(ErrStoreFailure, err)
}
