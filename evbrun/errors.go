package evbrun

import "errors"

// ErrSync marks the shared progress cell being unreachable -- the one Go
// analogue of a lock-acquisition failure: the run's context was already
// cancelled when the worker went to report progress.
var ErrSync = errors.New("evbrun: progress cell unreachable (context cancelled)")
