package workflow

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrBusy is returned when a stage is invoked while the same stage
	// (or the submit path) already has a request in flight. Invocations
	// are rejected, never queued.
	ErrBusy = errors.New("workflow: operation already in flight")

	// ErrAlreadySigned guards against duplicate wallet prompts: the
	// current fingerprint already carries a signature.
	ErrAlreadySigned = errors.New("workflow: current fingerprint is already signed")

	// ErrSuperseded indicates the session was hard-reset (a new file was
	// selected) while an external call was outstanding; the stale result
	// was discarded.
	ErrSuperseded = errors.New("workflow: session was reset during the operation")
)

// PreconditionError reports local validation failure before any network
// call was made.
type PreconditionError struct {
	Missing []string
}

func (e *PreconditionError) Error() string {
	return "workflow: missing " + strings.Join(e.Missing, ", ")
}
