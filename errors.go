package cordsearch

import "errors"

// Error kinds returned at request boundaries. The core engine never
// terminates the process on a recoverable error; callers (the HTTP
// facade, the CLI) translate these into status codes or exit codes.
var (
	ErrBadInput   = errors.New("bad input")
	ErrNotFound   = errors.New("not found")
	ErrCorruption = errors.New("index corruption")
	ErrIOError    = errors.New("i/o error")
	ErrExternal   = errors.New("external service error")
)
