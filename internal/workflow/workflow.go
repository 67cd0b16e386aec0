// Package workflow is the coordinator for the proof-of-existence
// client: it owns the session aggregate and the ordering rules between
// the fingerprint, attestation, gate, and exchange stages. All failures
// are recovered at the stage boundary into a status narration; nothing
// here is fatal and every retry is user-initiated.
package workflow

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/proofmark/proofmark/internal/attestation"
	"github.com/proofmark/proofmark/internal/fingerprint"
	"github.com/proofmark/proofmark/internal/gate"
	"github.com/proofmark/proofmark/internal/registry"
)

const (
	stageSign   = "sign"
	stageSubmit = "submit"
)

// Workflow sequences the four stages for a single session. Operations
// are rejected, not queued, while a conflicting one is in flight. The
// verify branch runs independently of the submit path and only touches
// its own result slot.
type Workflow struct {
	mu      sync.Mutex
	session Session
	gen     uint64 // bumped on every hard reset; stale completions are discarded
	busy    string // submit-path stage currently in flight, "" when none

	verifyMu   sync.Mutex
	verifyBusy bool

	signer   attestation.Signer
	provider gate.Provider
	tokens   *gate.TokenGate
	service  registry.Service
	logger   *zap.Logger
}

// Option customizes a Workflow.
type Option func(*Workflow)

// WithSigner attaches the wallet signer capability.
func WithSigner(s attestation.Signer) Option {
	return func(w *Workflow) { w.signer = s }
}

// WithProvider attaches the human-verification provider. The provider
// is reset after every submission attempt so stale single-use tokens
// are never replayed.
func WithProvider(p gate.Provider) Option {
	return func(w *Workflow) { w.provider = p }
}

// WithLogger attaches a logger; a no-op logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a workflow bound to the registration service. The signer
// and verification provider are optional at construction: verify-only
// sessions need neither.
func New(service registry.Service, opts ...Option) (*Workflow, error) {
	if service == nil {
		return nil, errors.New("workflow: registration service cannot be nil")
	}

	w := &Workflow{
		service: service,
		tokens:  gate.NewTokenGate(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// SelectFile hard-resets the session and fingerprints the file at path.
// This is allowed in any state: a file change invalidates every piece
// of downstream derived state.
func (w *Workflow) SelectFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		err = errors.Wrapf(fingerprint.ErrRead, "open %s: %v", path, err)
		w.mu.Lock()
		w.resetLocked(path)
		w.session.StatusMessage = "could not read file: " + err.Error()
		w.mu.Unlock()
		return "", err
	}
	defer f.Close()
	return w.SelectReader(ctx, path, f)
}

// SelectReader is SelectFile for an already-open byte stream.
func (w *Workflow) SelectReader(ctx context.Context, name string, r io.Reader) (string, error) {
	w.mu.Lock()
	w.resetLocked(name)
	w.session.State = StateHashing
	gen := w.gen
	w.mu.Unlock()

	var digest string
	err := ctx.Err()
	if err == nil {
		digest, err = fingerprint.Compute(r)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return "", ErrSuperseded
	}

	if err != nil {
		w.session.State = StateIdle
		w.session.StatusMessage = "could not fingerprint file: " + err.Error()
		return "", err
	}

	w.session.Fingerprint = digest
	w.session.State = StateReady
	w.session.StatusMessage = fmt.Sprintf("fingerprint computed: %s", digest)
	w.logger.Debug("file fingerprinted", zap.String("file", name), zap.String("fingerprint", digest))
	return digest, nil
}

// SetFingerprint hard-resets the session around an externally supplied
// fingerprint. This is the verify-only entry point: third parties can
// check a hash without owning the file, a wallet, or a token.
func (w *Workflow) SetFingerprint(fp string) error {
	if !fingerprint.Valid(fp) {
		return errors.Errorf("workflow: %q is not a canonical fingerprint", fp)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.resetLocked("")
	w.session.Fingerprint = fp
	w.session.State = StateReady
	w.session.StatusMessage = "fingerprint set: " + fp
	return nil
}

// AcceptToken stores a token issued by the verification widget. Tokens
// survive file re-selection; they gate the operator, not the file.
func (w *Workflow) AcceptToken(token string) {
	w.tokens.Accept(token)
	w.mu.Lock()
	w.session.StatusMessage = "human verification passed"
	w.mu.Unlock()
}

// RequestChallenge runs the verification provider's challenge and arms
// the gate with the issued token.
func (w *Workflow) RequestChallenge(ctx context.Context) error {
	if w.provider == nil {
		return errors.New("workflow: no verification provider configured")
	}
	token, err := w.provider.Challenge(ctx)
	if err != nil {
		return err
	}
	w.AcceptToken(token)
	return nil
}

// Sign obtains a wallet signature over the canonical claim message for
// the current fingerprint. A second Sign for the same fingerprint is
// refused so the wallet is never prompted twice for one claim.
func (w *Workflow) Sign(ctx context.Context) error {
	w.mu.Lock()
	if w.busy != "" {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.session.Fingerprint == "" {
		w.session.StatusMessage = "select a file before signing"
		w.mu.Unlock()
		return &PreconditionError{Missing: []string{"fingerprint"}}
	}
	if w.session.Signature != "" {
		w.mu.Unlock()
		return ErrAlreadySigned
	}
	if w.signer == nil {
		w.session.StatusMessage = "no wallet signer available"
		w.mu.Unlock()
		return attestation.ErrSignerUnavailable
	}

	message := attestation.BuildMessage(w.session.Fingerprint)
	gen := w.gen
	w.busy = stageSign
	w.session.State = StateSigning
	w.mu.Unlock()

	// The signer may block for as long as its own UI takes; it owns
	// timeout and cancel semantics.
	address, signature, err := w.signer.SignMessage(ctx, message)
	if err == nil {
		var recovered string
		recovered, err = attestation.RecoverSigner(message, signature)
		if err == nil && recovered != address {
			err = errors.Wrapf(attestation.ErrSigner,
				"signature does not bind to address: got %s, want %s", recovered, address)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = ""
	if w.gen != gen {
		return ErrSuperseded
	}

	if err != nil {
		w.session.State = StateReady
		if errors.Is(err, attestation.ErrUserRejected) {
			w.session.StatusMessage = "signature request rejected in wallet"
		} else {
			w.session.StatusMessage = "signing failed: " + err.Error()
		}
		return err
	}

	w.session.SignerAddress = address
	w.session.Signature = signature
	w.session.State = StateSigned
	w.session.StatusMessage = "claim signed as " + address
	w.logger.Debug("claim signed", zap.String("address", address))
	return nil
}

// Submit exchanges the signed bundle with the registration service.
// Validation failures are local and make no network call; once the
// call goes out, the verification token is spent regardless of the
// outcome and the provider is reset.
func (w *Workflow) Submit(ctx context.Context) (*registry.Record, error) {
	w.mu.Lock()
	if w.busy != "" {
		w.mu.Unlock()
		return nil, ErrBusy
	}

	var missing []string
	if w.session.Fingerprint == "" {
		missing = append(missing, "fingerprint")
	}
	if w.session.Signature == "" {
		missing = append(missing, "signature")
	}
	if !w.tokens.Armed() {
		missing = append(missing, "verification token")
	}
	if len(missing) > 0 {
		err := &PreconditionError{Missing: missing}
		w.session.StatusMessage = "cannot submit: " + err.Error()
		w.mu.Unlock()
		return nil, err
	}

	token, err := w.tokens.Consume()
	if err != nil {
		// Raced with another consumer; treat like a missing token.
		w.mu.Unlock()
		return nil, &PreconditionError{Missing: []string{"verification token"}}
	}

	sub := registry.Submission{
		FileHash:       w.session.Fingerprint,
		Signature:      w.session.Signature,
		User:           w.session.SignerAddress,
		TurnstileToken: token,
	}
	gen := w.gen
	w.busy = stageSubmit
	w.session.State = StateSubmitting
	w.mu.Unlock()

	record, err := w.service.Submit(ctx, sub)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = ""
	// Single-use contract: the widget must issue a fresh token before
	// the next attempt, success or failure.
	if w.provider != nil {
		w.provider.Reset()
	}
	if w.gen != gen {
		return nil, ErrSuperseded
	}

	if err != nil {
		w.session.State = StateSubmitFailed
		w.session.StatusMessage = "registration failed: " + narrateExchangeError(err)
		w.logger.Warn("registration failed", zap.Error(err))
		return nil, err
	}

	w.session.Registration = record
	w.session.State = StateRegistered
	w.session.StatusMessage = fmt.Sprintf("registered: tx %s in block %d", record.TxHash, record.BlockNumber)
	w.logger.Info("fingerprint registered",
		zap.String("tx_hash", record.TxHash),
		zap.Int64("block_number", record.BlockNumber))
	return record, nil
}

// Verify queries the registered status of the current fingerprint. It
// needs neither signature nor token and never consumes or alters
// submit-path state; its result lands in the session's lookup slot.
func (w *Workflow) Verify(ctx context.Context) (*registry.LookupResult, error) {
	w.verifyMu.Lock()
	if w.verifyBusy {
		w.verifyMu.Unlock()
		return nil, ErrBusy
	}
	w.verifyBusy = true
	w.verifyMu.Unlock()
	defer func() {
		w.verifyMu.Lock()
		w.verifyBusy = false
		w.verifyMu.Unlock()
	}()

	w.mu.Lock()
	fp := w.session.Fingerprint
	if fp == "" {
		w.session.StatusMessage = "cannot verify: no fingerprint"
		w.mu.Unlock()
		return nil, &PreconditionError{Missing: []string{"fingerprint"}}
	}
	gen := w.gen
	w.session.VerifyState = StateVerifying
	w.mu.Unlock()

	result, err := w.service.Lookup(ctx, fp)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return nil, ErrSuperseded
	}

	if err != nil {
		w.session.VerifyState = StateVerifyFailed
		w.session.StatusMessage = "verification failed: " + narrateExchangeError(err)
		return nil, err
	}

	w.session.Lookup = result
	if result.Found {
		w.session.VerifyState = StateFound
		w.session.StatusMessage = fmt.Sprintf("hash registered by %s at %s",
			result.Owner, time.Unix(result.Timestamp, 0).Local().Format(time.RFC1123))
	} else {
		w.session.VerifyState = StateNotFound
		w.session.StatusMessage = "hash not found in the registry"
	}
	return result, nil
}

// Snapshot returns a copy of the current session, safe to read while
// operations continue.
func (w *Workflow) Snapshot() Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := w.session.clone()
	snap.TokenArmed = w.tokens.Armed()
	return snap
}

// Status returns the current narration line.
func (w *Workflow) Status() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session.StatusMessage
}

// resetLocked clears every piece of derived state for a new file
// identity. The gate token is deliberately preserved: it attests the
// operator, not the file. Callers must hold w.mu.
func (w *Workflow) resetLocked(name string) {
	w.gen++
	w.session = Session{
		FileName: name,
		State:    StateIdle,
	}
}

// narrateExchangeError keeps service-reported messages verbatim and
// summarizes transport failures.
func narrateExchangeError(err error) string {
	var svcErr *registry.ServiceError
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	var netErr *registry.NetworkError
	if errors.As(err, &netErr) {
		return "service unreachable"
	}
	return err.Error()
}
