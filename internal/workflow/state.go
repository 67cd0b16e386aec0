package workflow

// State identifies where a session is in the registration workflow.
// The submit path walks Idle through Registered/SubmitFailed; the
// verify branch uses its own slot on the Session so it never perturbs
// the submit path.
type State int

const (
	StateIdle State = iota
	StateHashing
	StateReady
	StateSigning
	StateSigned
	StateSubmitting
	StateRegistered
	StateSubmitFailed

	StateVerifying
	StateFound
	StateNotFound
	StateVerifyFailed
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateHashing:      "hashing",
	StateReady:        "ready",
	StateSigning:      "signing",
	StateSigned:       "signed",
	StateSubmitting:   "submitting",
	StateRegistered:   "registered",
	StateSubmitFailed: "submit_failed",
	StateVerifying:    "verifying",
	StateFound:        "found",
	StateNotFound:     "not_found",
	StateVerifyFailed: "verify_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
