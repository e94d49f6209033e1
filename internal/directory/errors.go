package directory

import "errors"

// Sentinel errors for directory operations.
var (
	// ErrUnknownSession indicates a lookup by a name or key the directory
	// does not hold. The directory is left unchanged.
	ErrUnknownSession = errors.New("unknown session")

	// ErrNameCollision indicates an explicit rename to a display name that
	// is already bound to another session. The directory is left unchanged.
	ErrNameCollision = errors.New("session name already in use")
)
