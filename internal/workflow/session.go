package workflow

import "github.com/proofmark/proofmark/internal/registry"

// Session is the single mutable aggregate for one user interaction. It
// is ephemeral: the only durable record lives in the registration
// service. Snapshot copies are handed out to callers; the live session
// is owned exclusively by the Workflow.
type Session struct {
	// FileName is presentation-only; the fingerprint is content-only.
	FileName    string
	Fingerprint string

	// SignerAddress and Signature are set together, always over the
	// current fingerprint. A fingerprint change clears both.
	SignerAddress string
	Signature     string

	// TokenArmed reports whether an unconsumed verification token is
	// held. The token value itself stays inside the gate.
	TokenArmed bool

	Registration *registry.Record
	Lookup       *registry.LookupResult

	// StatusMessage narrates the last operation's outcome. Purely
	// observational; never used for control decisions.
	StatusMessage string

	State       State
	VerifyState State
}

// clone returns a deep copy safe to hand outside the lock.
func (s Session) clone() Session {
	out := s
	if s.Registration != nil {
		rec := *s.Registration
		out.Registration = &rec
	}
	if s.Lookup != nil {
		lk := *s.Lookup
		out.Lookup = &lk
	}
	return out
}
