package attestation

import "fmt"

// messageTemplate is part of the wire contract: the registration
// service re-derives the exact same text from the submitted fingerprint
// before checking the signature, so the wording must never change.
const messageTemplate = "I am registering proof of existence for file with hash: %s"

// BuildMessage renders the canonical claim message for a fingerprint.
// Deterministic: the fingerprint is embedded verbatim, nothing else
// varies.
func BuildMessage(fingerprint string) string {
	return fmt.Sprintf(messageTemplate, fingerprint)
}
