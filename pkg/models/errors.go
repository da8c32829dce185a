package models

import "fmt"

// InsufficientDataError reports a price series too short for a requested
// indicator window. Fatal to the call; the window name tells the caller
// which computation triggered it.
type InsufficientDataError struct {
	Window string
	Need   int
	Got    int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d bars, got %d", e.Window, e.Need, e.Got)
}

// DegenerateInputError reports an input that would produce a division by
// zero or an otherwise meaningless result (e.g. avgLoss = 0)
type DegenerateInputError struct {
	Field  string
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate input %q: %s", e.Field, e.Reason)
}

// OracleUnavailableError reports a transport or parse failure from the
// advisory oracle. Always recovered locally via a fallback verdict; it never
// surfaces to the engine caller.
type OracleUnavailableError struct {
	Cause error
}

func (e *OracleUnavailableError) Error() string {
	return fmt.Sprintf("advisory oracle unavailable: %v", e.Cause)
}

func (e *OracleUnavailableError) Unwrap() error {
	return e.Cause
}

// MalformedMatrixError reports an inconsistent correlation basket
// (asset count or series length mismatch)
type MalformedMatrixError struct {
	Reason string
}

func (e *MalformedMatrixError) Error() string {
	return fmt.Sprintf("malformed correlation input: %s", e.Reason)
}
