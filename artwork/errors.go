package artwork

import (
	"errors"
	"fmt"
)

// ErrNotFound means the catalog has no artwork for the subject. It is never
// cached; a later request asks the catalog again.
var ErrNotFound = errors.New("artwork not found")

// Stages reported by TransientError.
const (
	StageLookup   = "lookup"
	StageSearch   = "search"
	StageDownload = "download"
	StageDecode   = "decode"
	StageStore    = "store"
)

// TransientError is a failure that may not happen again: network errors,
// unexpected responses, undecodable payloads.
type TransientError struct {
	Stage string
	Key   Key
	Err   error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Key, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is, or wraps, a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
