// Package attestation binds a content fingerprint to a wallet identity.
// It renders the canonical claim message, obtains a secp256k1 signature
// over it, and recovers signer addresses for local verification.
package attestation

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

var (
	// ErrSignerUnavailable indicates no signer is configured or reachable.
	ErrSignerUnavailable = errors.New("attestation: no signer available")
	// ErrUserRejected indicates the signer's operator declined to sign.
	ErrUserRejected = errors.New("attestation: signing rejected by user")
	// ErrSigner covers any other signer failure.
	ErrSigner = errors.New("attestation: signer failed")
)

// Signer is the capability the workflow depends on. Implementations may
// block for as long as they need; the signer owns its own timeout and
// cancel semantics.
type Signer interface {
	// Address returns the account the signer will sign as.
	Address() string
	// SignMessage signs the given message and returns the signing
	// address together with the hex-encoded 65-byte signature.
	SignMessage(ctx context.Context, message string) (address, signature string, err error)
}

// KeySigner signs with a locally held secp256k1 private key, producing
// EVM-compatible personal-sign signatures.
type KeySigner struct {
	privateKey *ecdsa.PrivateKey
	mu         sync.RWMutex
}

// NewKeySigner parses a hex-encoded secp256k1 private key. A leading 0x
// is accepted.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	if hexKey == "" {
		return nil, ErrSignerUnavailable
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrapf(ErrSigner, "parse private key: %v", err)
	}
	return &KeySigner{privateKey: key}, nil
}

// Address returns the Ethereum address derived from the public key.
func (s *KeySigner) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.privateKey == nil {
		return ""
	}
	return crypto.PubkeyToAddress(s.privateKey.PublicKey).Hex()
}

// SignMessage signs the personal-sign digest of message and returns the
// signer address and hex signature. The signature is [R || S || V] with
// V normalized to {27,28}.
func (s *KeySigner) SignMessage(_ context.Context, message string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.privateKey == nil {
		return "", "", ErrSignerUnavailable
	}
	if message == "" {
		return "", "", errors.Wrap(ErrSigner, "message cannot be empty")
	}

	signature, err := crypto.Sign(personalSignDigest(message), s.privateKey)
	if err != nil {
		return "", "", errors.Wrapf(ErrSigner, "sign digest: %v", err)
	}

	// crypto.Sign returns V in {0,1}; wallets emit {27,28}. Normalize
	// the same way regardless of which form the library produced.
	v := signature[64]
	if v >= 27 {
		v -= 27
	}
	signature[64] = (v & 1) + 27

	addr := crypto.PubkeyToAddress(s.privateKey.PublicKey).Hex()
	return addr, hexutil.Encode(signature), nil
}

// RecoverSigner recovers the address that signed message. It lets the
// client check the signature-to-message-to-address binding locally
// before trusting the service to do so.
func RecoverSigner(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", fmt.Errorf("decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	// Recovery expects the compact {0,1} form.
	norm := append([]byte(nil), sig...)
	recoveryID, err := toCompactRecoveryID(norm[64])
	if err != nil {
		return "", fmt.Errorf("normalise recovery id: %w", err)
	}
	norm[64] = recoveryID

	pubKey, err := crypto.SigToPub(personalSignDigest(message), norm)
	if err != nil {
		return "", fmt.Errorf("recover public key from signature: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey).Hex(), nil
}

// personalSignDigest computes the EIP-191 personal-sign hash of message.
func personalSignDigest(message string) []byte {
	prefixed := fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return crypto.Keccak256([]byte(prefixed))
}

func toCompactRecoveryID(v byte) (byte, error) {
	switch {
	case v <= 1:
		return v, nil
	case v >= 27 && v <= 34:
		return (v - 27) & 1, nil
	default:
		return 0, fmt.Errorf("invalid recovery id %d", v)
	}
}
