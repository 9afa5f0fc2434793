package points

import "errors"

// Expected failure conditions, distinguished from storage errors so
// handlers can map them to user-facing responses. Anything else bubbling
// out of the engine is a storage failure and is reported generically.
var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
)
