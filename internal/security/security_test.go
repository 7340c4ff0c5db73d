package security

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// TestNIA2KnownAnswer reproduces the TS 33.401 B.2.3 test vector quoted in
// the spec: IK, COUNT, BEARER, DIRECTION and MESSAGE must produce the
// documented 4-byte MAC.
func TestNIA2KnownAnswer(t *testing.T) {
	ik := mustHex(t, "d3c5d592327fb11c4035c6680af8c6d1")
	msg := mustHex(t, "484583d5afe082ae")

	var count [4]byte
	copy(count[:], mustHex(t, "398a59b4"))

	mac, err := NIA2(ik, count, 0b11010, true, msg)
	require.NoError(t, err)
	require.Equal(t, "b93787e6", hex.EncodeToString(mac[:]))
}

func TestNIA2RejectsBadKeyLength(t *testing.T) {
	var count [4]byte
	_, err := NIA2([]byte{1, 2, 3}, count, 0, false, nil)
	require.Error(t, err)
}

func TestNIA2RejectsOutOfRangeBearer(t *testing.T) {
	ik := make([]byte, 16)
	var count [4]byte
	_, err := NIA2(ik, count, 0x20, false, nil)
	require.Error(t, err)
}

// TestGenerateChallengeDeterministic checks that GenerateChallenge draws a
// fresh RAND per call, and that the KDF ladder itself, fed identical
// inputs (fixed CK/IK, SNN, SQN XOR AK, RAND and XRES), produces identical
// KSEAF and XRES* across runs.
func TestGenerateChallengeDeterministic(t *testing.T) {
	k := mustHex(t, "465b5ce8b199b49faa5f0a2ee238a6bc")
	opc := mustHex(t, "cd63cb71954a9f4e48a5994e37a02baf")
	snn := ServingNetworkName("001", "01")

	c1, err := GenerateChallenge(k, opc, snn)
	require.NoError(t, err)
	c2, err := GenerateChallenge(k, opc, snn)
	require.NoError(t, err)

	// RAND is freshly randomised per call, so the challenges themselves
	// differ, but re-running the KDF over the same inputs must not.
	require.NotEqual(t, c1.RAND, c2.RAND)

	kausf1 := KAUSF(nil, nil, snn, [6]byte{})
	kausf2 := KAUSF(nil, nil, snn, [6]byte{})
	require.Equal(t, kausf1, kausf2)

	kseaf1 := KSEAF(kausf1, snn)
	kseaf2 := KSEAF(kausf2, snn)
	require.Equal(t, kseaf1, kseaf2)

	xresStar1 := XRESStar(nil, nil, snn, c1.RAND[:], nil)
	xresStar2 := XRESStar(nil, nil, snn, c1.RAND[:], nil)
	require.Equal(t, xresStar1, xresStar2)
}

func TestServingNetworkName(t *testing.T) {
	require.Equal(t, "5G:mnc001.mcc001.3gppnetwork.org", ServingNetworkName("001", "01"))
	require.Equal(t, "5G:mnc093.mcc310.3gppnetwork.org", ServingNetworkName("310", "93"))
}

func TestKNASintKRRCintDiffer(t *testing.T) {
	kamf := mustHex(t, "00112233445566778899aabbccddeeff")
	knasint := KNASint(kamf)
	krrcint := KRRCint(kamf) // intentionally feeding the same key to show the two derivations diverge
	require.Len(t, knasint, 16)
	require.Len(t, krrcint, 16)
	require.NotEqual(t, knasint, krrcint)
}
