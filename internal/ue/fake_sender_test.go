package ue

import (
	"fmt"
	"net"

	"github.com/qcore-go/qcore/internal/f1ap"
	"github.com/qcore-go/qcore/internal/nas"
	"github.com/qcore-go/qcore/internal/pdcp"
)

// fakeSender plays the part of the gNB-DU in tests: it inspects every
// F1AP PDU the task under test sends and pushes a scripted response back
// onto the task's own mailbox, exactly as the router would after
// receiving the DU's real reply.
type fakeSender struct {
	mailbox          f1ap.Mailbox
	mobileIdentityIE []byte
	ueSecCap         []byte
}

func (s *fakeSender) Send(pdu f1ap.PDU) error {
	switch p := pdu.(type) {
	case f1ap.DLRRCMessageTransfer:
		return s.handleDLRRC(p)
	case f1ap.UEContextSetupRequest:
		s.mailbox <- f1ap.UEContextSetupResponse{
			GNBCUUEF1APID:   p.GNBCUUEF1APID,
			GNBDUUEF1APID:   p.GNBDUUEF1APID,
			CellGroupConfig: []byte{0xaa},
			DRBsSetup: []f1ap.DRBSetup{{
				DRBID:    1,
				DLTunnel: f1ap.GTPTunnel{TransportLayerAddress: net.IPv4(192, 168, 9, 9), TEID: [4]byte{9, 9, 9, 9}},
			}},
		}
		return nil
	case f1ap.UEContextReleaseCommand:
		s.mailbox <- f1ap.UEContextReleaseComplete{GNBCUUEF1APID: p.GNBCUUEF1APID, GNBDUUEF1APID: p.GNBDUUEF1APID}
		return nil
	default:
		return fmt.Errorf("fakeSender: unsupported pdu %T", pdu)
	}
}

func (s *fakeSender) handleDLRRC(p f1ap.DLRRCMessageTransfer) error {
	inner, err := pdcp.ViewInner(p.RRCContainer)
	if err != nil {
		return err
	}
	if len(inner) == 0 {
		return fmt.Errorf("fakeSender: empty rrc container")
	}

	reply := func(rrcTag byte, payload []byte) {
		s.mailbox <- f1ap.ULRRCMessageTransfer{
			GNBCUUEF1APID: p.GNBCUUEF1APID,
			GNBDUUEF1APID: p.GNBDUUEF1APID,
			SRBID:         p.SRBID,
			RRCContainer:  pdcpWrap(append([]byte{rrcTag}, payload...)),
		}
	}

	switch inner[0] {
	case 'P': // RRC Setup -> RRC Setup Complete carrying the registration request
		nasMsg := append(append([]byte{'R'}, s.mobileIdentityIE...), s.ueSecCap...)
		reply('C', nasMsg)
		return nil

	case 'D': // DL Information Transfer carrying a dedicated NAS message
		stripped, _, _, err := nas.StripSecurityHeader(inner[1:])
		if err != nil {
			return fmt.Errorf("fakeSender: strip security header: %w", err)
		}
		if len(stripped) < 3 {
			return fmt.Errorf("fakeSender: dedicated nas message too short")
		}
		switch stripped[2] {
		case nas.MsgAuthenticationRequest:
			reply('U', append([]byte{'A'}, make([]byte, 16)...))
		case nas.MsgSecurityModeCommand:
			reply('U', []byte{'S'})
		case nas.MsgRegistrationAccept:
			reply('U', []byte{'G'})
		default:
			return fmt.Errorf("fakeSender: unexpected nas message type %#x", stripped[2])
		}
		return nil

	case 'M': // RRC Security Mode Command -> RRC Security Mode Complete
		reply('X', nil)
		return nil

	case 'R': // RRC Reconfiguration -> RRC Reconfiguration Complete
		reply('Y', nil)
		return nil

	default:
		return fmt.Errorf("fakeSender: unknown rrc tag %q", inner[0])
	}
}
