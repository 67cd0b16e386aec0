package attestation

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKeyHex(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hexutil.Encode(crypto.FromECDSA(key))
}

func TestKeySigner(t *testing.T) {
	t.Run("NewKeySigner", func(t *testing.T) {
		signer, err := NewKeySigner(newTestKeyHex(t))
		require.NoError(t, err)
		assert.NotNil(t, signer)
		assert.NotEmpty(t, signer.Address())
	})

	t.Run("NewKeySignerEmptyKey", func(t *testing.T) {
		signer, err := NewKeySigner("")
		assert.ErrorIs(t, err, ErrSignerUnavailable)
		assert.Nil(t, signer)
	})

	t.Run("NewKeySignerInvalidKey", func(t *testing.T) {
		signer, err := NewKeySigner("0xnot-a-key")
		assert.ErrorIs(t, err, ErrSigner)
		assert.Nil(t, signer)
	})

	t.Run("SignMessage", func(t *testing.T) {
		signer, err := NewKeySigner(newTestKeyHex(t))
		require.NoError(t, err)

		message := BuildMessage("0x2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
		address, signature, err := signer.SignMessage(context.Background(), message)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), address)

		raw, err := hexutil.Decode(signature)
		require.NoError(t, err)
		require.Len(t, raw, 65, "signature should be 65 bytes [R || S || V]")
		assert.Contains(t, []byte{27, 28}, raw[64], "V should be EVM-compatible")
	})

	t.Run("SignMessageEmptyMessage", func(t *testing.T) {
		signer, err := NewKeySigner(newTestKeyHex(t))
		require.NoError(t, err)

		_, _, err = signer.SignMessage(context.Background(), "")
		assert.ErrorIs(t, err, ErrSigner)
	})

	t.Run("SignMessageDeterministic", func(t *testing.T) {
		signer, err := NewKeySigner(newTestKeyHex(t))
		require.NoError(t, err)

		message := "repeatable input"
		_, first, err := signer.SignMessage(context.Background(), message)
		require.NoError(t, err)
		_, second, err := signer.SignMessage(context.Background(), message)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestRecoverSigner(t *testing.T) {
	t.Run("Roundtrip", func(t *testing.T) {
		signer, err := NewKeySigner(newTestKeyHex(t))
		require.NoError(t, err)

		message := BuildMessage("0xabcdef")
		address, signature, err := signer.SignMessage(context.Background(), message)
		require.NoError(t, err)

		recovered, err := RecoverSigner(message, signature)
		require.NoError(t, err)
		assert.Equal(t, address, recovered)
	})

	t.Run("DifferentMessageDifferentSigner", func(t *testing.T) {
		signer, err := NewKeySigner(newTestKeyHex(t))
		require.NoError(t, err)

		address, signature, err := signer.SignMessage(context.Background(), "message one")
		require.NoError(t, err)

		recovered, err := RecoverSigner("message two", signature)
		if err == nil {
			assert.NotEqual(t, address, recovered)
		}
	})

	t.Run("MalformedSignature", func(t *testing.T) {
		_, err := RecoverSigner("anything", "0x1234")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "signature must be 65 bytes")
	})

	t.Run("BadHex", func(t *testing.T) {
		_, err := RecoverSigner("anything", "zzzz")
		require.Error(t, err)
	})
}
