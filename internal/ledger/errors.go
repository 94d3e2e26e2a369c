package ledger

import "errors"

var (
	ErrNotFound              = errors.New("task not found")
	ErrNoReallocationTargets = errors.New("no reallocation targets")
	ErrSourceIsTarget        = errors.New("reallocation source is marked as a target")
	ErrIDSpaceExhausted      = errors.New("no free task ids")
)
