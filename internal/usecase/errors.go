package usecase

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Each error below wraps one of the sentinels above; transports match on the sentinel.
var (
	ErrUnknownPollAction       = fmt.Errorf("%w: unknown poll action", ErrInvalidInput)
	ErrFixtureNotFinished      = fmt.Errorf("%w: fixture has no final score", ErrInvalidInput)
	ErrFixtureNotFound         = fmt.Errorf("fixture %w", ErrNotFound)
	ErrUserStatsNotFound       = fmt.Errorf("user stats %w", ErrNotFound)
	ErrFixtureStoreUnavailable = fmt.Errorf("fixture store: %w", ErrDependencyUnavailable)
	ErrProviderUnavailable     = fmt.Errorf("live score provider: %w", ErrDependencyUnavailable)
)
