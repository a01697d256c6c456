package apply

import "fmt"

// Status classifies the outcome of one applier call.
type Status string

const (
	// StatusApplied means the snapshot took effect.
	StatusApplied Status = "applied"

	// StatusSkipped means the call was a deliberate no-op (unknown
	// account, empty key list, unhandled scalar path).
	StatusSkipped Status = "skipped"

	// StatusFailed means a resource could not be opened or written; the
	// call ended early with no partial artifact.
	StatusFailed Status = "failed"
)

// Result is the outcome of one applier call. Reason is empty for
// StatusApplied.
type Result struct {
	Status Status `cbor:"status"`
	Reason string `cbor:"reason,omitempty"`
}

func (r Result) String() string {
	if r.Reason == "" {
		return string(r.Status)
	}
	return fmt.Sprintf("%s: %s", r.Status, r.Reason)
}

// Applied returns a success result.
func Applied() Result {
	return Result{Status: StatusApplied}
}

// Skipped returns a no-op result with the given reason.
func Skipped(reason string) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}

// Failedf returns a failure result with a formatted reason.
func Failedf(format string, args ...any) Result {
	return Result{Status: StatusFailed, Reason: fmt.Sprintf(format, args...)}
}
