package nas

import (
	"fmt"
	"strconv"
	"strings"
)

// MobileIdentity is the SUPI/PLMN pair recovered from a 5GS Mobile
// Identity IE of type SUPI (IMSI). Grounded byte-for-byte on
// original_source/qcore/src/protocols/nas/parse.rs.
type MobileIdentity struct {
	IMSI string
	PLMN [3]byte
}

// ParseMobileIdentity decodes a 5GS Mobile Identity IE value (the
// identity-type/PLMN/MSIN bytes, without any surrounding TLV header —
// the NAS TLV framing itself is assumed decoded by an external codec
// per spec.md §1) and reconstructs the 15-digit IMSI the same way
// parse.rs does: nibble-swap each PLMN byte, dropping the 0xF pad
// nibble for 2-digit MNCs, then append MSIN nibbles low-then-high.
func ParseMobileIdentity(ie []byte) (*MobileIdentity, error) {
	if len(ie) < 12 {
		return nil, fmt.Errorf("nas: mobile identity IE too short: %d bytes", len(ie))
	}
	if ie[0] != 0x01 {
		return nil, fmt.Errorf("nas: only SUPI mobile identity is supported, got type %#x", ie[0])
	}

	var plmn [3]byte
	copy(plmn[:], ie[1:4])
	msin := ie[8:]

	var b strings.Builder
	b.WriteString(strconv.Itoa(int(plmn[0] & 0x0f)))
	b.WriteString(strconv.Itoa(int(plmn[0] >> 4)))
	b.WriteString(strconv.Itoa(int(plmn[1] & 0x0f)))
	if plmn[1]>>4 != 0x0f {
		b.WriteString(strconv.Itoa(int(plmn[1] >> 4)))
	}
	b.WriteString(strconv.Itoa(int(plmn[2] & 0x0f)))
	b.WriteString(strconv.Itoa(int(plmn[2] >> 4)))
	for _, by := range msin {
		b.WriteString(strconv.Itoa(int(by & 0x0f)))
		b.WriteString(strconv.Itoa(int(by >> 4)))
	}

	return &MobileIdentity{IMSI: b.String(), PLMN: plmn}, nil
}

// RegistrationRequest is the subset of an inbound Registration Request
// this core needs. The 5GS Mobile Identity and UE Security Capability
// IE values are handed through opaquely from the (out-of-scope) NAS TLV
// decoder; MobileIdentityIE is then fed to ParseMobileIdentity.
type RegistrationRequest struct {
	MobileIdentityIE      []byte
	UESecurityCapability  []byte
}

// AuthenticationResponse carries the UE's RES* (authentication response
// parameter), 16 bytes.
type AuthenticationResponse struct {
	ResStar []byte
}

// SecurityModeComplete carries an optional replayed NAS message
// container (TS 24.501 4.4.6: the UE re-sends its initial Registration
// Request once NAS security is active).
type SecurityModeComplete struct {
	NASMessageContainer []byte // nil if absent
}

// PDUSessionEstablishmentRequest is the subset this core needs to start
// session setup: the procedure transaction id and PDU session id the
// UE chose.
type PDUSessionEstablishmentRequest struct {
	PDUSessionID uint8
	PTI          uint8
}

// DeregistrationRequest carries the UE-initiated deregistration cause.
type DeregistrationRequest struct {
	Cause uint8
}
