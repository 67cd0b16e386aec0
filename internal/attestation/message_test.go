package attestation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The message text is a wire-contract compatibility invariant: the
// registration service re-derives the exact string before checking the
// signature. This test pins the wording.
func TestBuildMessage_ExactWireFormat(t *testing.T) {
	fp := "0x2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	require.Equal(t,
		"I am registering proof of existence for file with hash: "+fp,
		BuildMessage(fp))
}

func TestBuildMessage_Deterministic(t *testing.T) {
	require.Equal(t, BuildMessage("0xaa"), BuildMessage("0xaa"))
	require.NotEqual(t, BuildMessage("0xaa"), BuildMessage("0xbb"))
}
