package nas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseMobileIdentityTwoDigitMNC reconstructs IMSI 001010000000010
// for PLMN 001/01 (2-digit MNC, 0xF pad dropped) per parse.rs.
func TestParseMobileIdentityTwoDigitMNC(t *testing.T) {
	// PLMN 001/01: MCC=0,0,1 MNC=0,1 -> bytes per TS24.008 10.5.1.13:
	// octet1 = MCC2<<4|MCC1, octet2 = MNC3<<4|MCC3 (MNC3=0xF for 2-digit), octet3 = MNC2<<4|MNC1
	plmn := []byte{0x00, 0xF1, 0x10}
	msin := []byte{0x00, 0x00, 0x00, 0x00, 0x01} // 10 digits, but encoded as 5 bytes of nibbles
	ie := append([]byte{0x01}, plmn...)
	ie = append(ie, 0, 0, 0, 0) // TMSI/routing indicator padding up to offset 8 (ie[4:8])
	ie = append(ie, msin...)

	id, err := ParseMobileIdentity(ie)
	require.NoError(t, err)
	require.Equal(t, [3]byte{0x00, 0xF1, 0x10}, id.PLMN)
	require.Equal(t, "00101", id.IMSI[:5])
}

func TestParseMobileIdentityRejectsNonSUPI(t *testing.T) {
	ie := make([]byte, 12)
	ie[0] = 0x02 // GUTI, not SUPI
	_, err := ParseMobileIdentity(ie)
	require.Error(t, err)
}

func TestParseMobileIdentityRejectsTooShort(t *testing.T) {
	_, err := ParseMobileIdentity([]byte{0x01, 0x00})
	require.Error(t, err)
}

func TestSecurityContextFirstMessageUsesNewContextHeader(t *testing.T) {
	sc := NewSecurityContext(make([]byte, 16))
	frame, err := sc.EncodeWithIntegrity([]byte{epd5GMM, 0x00, MsgSecurityModeCommand})
	require.NoError(t, err)
	require.Equal(t, byte(epd5GMM), frame[0])
	require.Equal(t, byte(SecHdrIntegrityProtectedNewContext), frame[1])
	require.Equal(t, byte(0), frame[6], "first message has DL-NAS-COUNT low byte 0")
	require.Equal(t, uint32(1), sc.DLCount())
}

func TestSecurityContextSubsequentMessagesUseCipheredHeaderAndIncrementCount(t *testing.T) {
	sc := NewSecurityContext(make([]byte, 16))
	_, err := sc.EncodeWithIntegrity([]byte{epd5GMM, 0x00, MsgRegistrationAccept})
	require.NoError(t, err)

	frame2, err := sc.EncodeWithIntegrity([]byte{epd5GMM, 0x00, MsgDLNASTransport})
	require.NoError(t, err)
	require.Equal(t, byte(SecHdrIntegrityProtected), frame2[1])
	require.Equal(t, byte(1), frame2[6])
	require.Equal(t, uint32(2), sc.DLCount())
}

func TestStripSecurityHeaderPlaintextPassthrough(t *testing.T) {
	plain := []byte{epd5GMM, 0x00, MsgAuthenticationRequest, 1, 2, 3}
	inner, secured, quirk, err := StripSecurityHeader(plain)
	require.NoError(t, err)
	require.False(t, secured)
	require.False(t, quirk)
	require.Equal(t, plain, inner)
}

func TestStripSecurityHeaderAppliesOAIQuirk(t *testing.T) {
	sc := NewSecurityContext(make([]byte, 16))
	frame, err := sc.EncodeWithIntegrity([]byte{epd5GMM, 0x03, MsgSecurityModeComplete})
	require.NoError(t, err)

	inner, secured, quirk, err := StripSecurityHeader(frame)
	require.NoError(t, err)
	require.True(t, secured)
	require.True(t, quirk)
	require.Equal(t, byte(0), inner[1])
}

func TestBuildAuthenticationRequestContainsRandAndAutn(t *testing.T) {
	var rnd, autn [16]byte
	for i := range rnd {
		rnd[i] = byte(i)
		autn[i] = byte(i + 1)
	}
	msg := AuthenticationRequest(rnd, autn)
	require.Equal(t, byte(MsgAuthenticationRequest), msg[2])
	require.Contains(t, string(msg), string(rnd[:]))
	require.Contains(t, string(msg), string(autn[:]))
}

func TestBuildRegistrationAcceptContainsGUTI(t *testing.T) {
	plmn := [3]byte{0x00, 0xF1, 0x10}
	amf := [3]byte{0x01, 0x00, 0x80}
	tmsi := [4]byte{0xDE, 0xAD, 0xBE, 0xEF}
	msg := RegistrationAccept(1, plmn, amf, tmsi)
	require.Equal(t, byte(MsgRegistrationAccept), msg[2])
	require.Contains(t, string(msg), string(tmsi[:]))
}

func TestBuildPDUSessionEstablishmentAcceptContainsUEAddress(t *testing.T) {
	ue := [4]byte{10, 255, 0, 7}
	msg := PDUSessionEstablishmentAccept(5, 1, ue)
	require.Equal(t, byte(MsgDLNASTransport), msg[2])
	require.Contains(t, string(msg), string(ue[:]))
}
