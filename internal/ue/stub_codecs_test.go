package ue

import (
	"fmt"

	"github.com/qcore-go/qcore/internal/nas"
	"github.com/qcore-go/qcore/internal/rrc"
)

// stubRRCCodec is a minimal, tag-byte RRC codec used only by tests: it
// never performs real ASN.1 PER encoding, just enough to let Task's
// rrcRequest/extractULDCCH round-trip through a fake DU driven by the
// test, mirroring the "assumed available externally" codec seam.
type stubRRCCodec struct{}

func (stubRRCCodec) Encode(msg rrc.Message) ([]byte, error) {
	switch m := msg.(type) {
	case rrc.RRCSetup:
		return []byte{'P'}, nil
	case rrc.SecurityModeCommand:
		return []byte{'M'}, nil
	case rrc.DLInformationTransfer:
		return append([]byte{'D'}, m.DedicatedNASMessage...), nil
	case rrc.RRCReconfiguration:
		return append([]byte{'R'}, m.DedicatedNASMessage...), nil
	default:
		return nil, fmt.Errorf("stub rrc encode: unsupported %T", msg)
	}
}

func (stubRRCCodec) DecodeULCCCH(raw []byte) (rrc.RRCSetupRequest, error) {
	return rrc.RRCSetupRequest{}, nil
}

func (stubRRCCodec) DecodeULDCCH(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("stub rrc decode: empty")
	}
	switch raw[0] {
	case 'C':
		return rrc.RRCSetupComplete{DedicatedNASMessage: raw[1:]}, nil
	case 'U':
		return rrc.ULInformationTransfer{DedicatedNASMessage: raw[1:]}, nil
	case 'X':
		return rrc.SecurityModeComplete{}, nil
	case 'Y':
		return rrc.RRCReconfigurationComplete{}, nil
	default:
		return nil, fmt.Errorf("stub rrc decode: unknown tag %q", raw[0])
	}
}

// stubNASCodec decodes the tag-byte format the tests' fake DU fabricates
// for messages that, in reality, arrive from the UE and are decoded by an
// external NAS TLV codec (spec.md §1).
type stubNASCodec struct{}

func (stubNASCodec) Decode(raw []byte) (any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("stub nas decode: empty")
	}
	switch raw[0] {
	case 'R':
		if len(raw) < 13 {
			return nil, fmt.Errorf("stub nas decode: short registration request")
		}
		return nas.RegistrationRequest{MobileIdentityIE: raw[1:13], UESecurityCapability: raw[13:]}, nil
	case 'A':
		if len(raw) < 17 {
			return nil, fmt.Errorf("stub nas decode: short authentication response")
		}
		return nas.AuthenticationResponse{ResStar: raw[1:17]}, nil
	case 'S':
		return nas.SecurityModeComplete{NASMessageContainer: raw[1:]}, nil
	case 'G':
		return nas.RegistrationComplete{}, nil
	case 'N':
		return nas.ULNASTransport{PayloadContainer: raw[1:]}, nil
	case 'Q':
		if len(raw) < 3 {
			return nil, fmt.Errorf("stub nas decode: short pdu session establishment request")
		}
		return nas.PDUSessionEstablishmentRequest{PDUSessionID: raw[1], PTI: raw[2]}, nil
	case 'D':
		if len(raw) < 2 {
			return nil, fmt.Errorf("stub nas decode: short deregistration request")
		}
		return nas.DeregistrationRequest{Cause: raw[1]}, nil
	default:
		return nil, fmt.Errorf("stub nas decode: unknown tag %q", raw[0])
	}
}

// pdcpWrap builds a PDCP Data PDU around payload with a zero header and MAC;
// pdcp.ViewInner never validates the MAC, so this round-trips through
// Task's decode path without the test needing real PDCP keys.
func pdcpWrap(payload []byte) []byte {
	out := make([]byte, 2+len(payload)+4)
	copy(out[2:2+len(payload)], payload)
	return out
}
