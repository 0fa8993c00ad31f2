package dwt

import (
	"errors"
	"fmt"
)

// ErrShortSignal is returned for signals too short to split into two
// non-empty subsequences.
var ErrShortSignal = errors.New("signal must contain at least two samples")

// ConfigurationError reports a malformed wavelet definition.
// Stage is -1 when the problem is not specific to one stage.
type ConfigurationError struct {
	Wavelet string
	Stage   int
	Reason  string
}

func (e *ConfigurationError) Error() string {
	name := e.Wavelet
	if name == "" {
		name = "unnamed"
	}
	if e.Stage < 0 {
		return fmt.Sprintf("wavelet %q: %s", name, e.Reason)
	}
	return fmt.Sprintf("wavelet %q stage %d: %s", name, e.Stage, e.Reason)
}

// RangeError reports a requested output position outside the final output.
type RangeError struct {
	Position int
	Length   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("output position %d outside [0, %d)", e.Position, e.Length)
}

// InternalConsistencyError reports a violated evaluation invariant, such as
// a buffered sample read after eviction or a failed round trip.
type InternalConsistencyError struct {
	Ref    Ref
	Reason string
}

func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency: %s: %s", e.Ref, e.Reason)
}
