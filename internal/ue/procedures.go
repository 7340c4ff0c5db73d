package ue

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/qcore-go/qcore/internal/f1ap"
	"github.com/qcore-go/qcore/internal/metrics"
	"github.com/qcore-go/qcore/internal/nas"
	"github.com/qcore-go/qcore/internal/pdcp"
	"github.com/qcore-go/qcore/internal/rrc"
	"github.com/qcore-go/qcore/internal/security"
	"github.com/qcore-go/qcore/internal/userplane"
)

// sendF1AP writes pdu to the DU over this task's association.
func (t *Task) sendF1AP(pdu f1ap.PDU) error {
	return t.sender.Send(pdu)
}

// maybePDCPEncapsulate applies PDCP framing to an outbound RRC message:
// SRB0 gets SN 0 and a zero MAC without touching the UE's TX_NEXT, SRB1
// goes through the UE's PDCP transmit state, per
// procedures/ue_procedures/mod.rs's maybe_pdcp_encapsulate.
func (t *Task) maybePDCPEncapsulate(srbID uint8, rrcBytes []byte) ([]byte, error) {
	if srbID == 0 {
		srb0 := pdcp.Tx{SRBID: 0}
		return srb0.Encode(rrcBytes)
	}
	return t.ctx.PDCPTx.Encode(rrcBytes)
}

// extractULDCCH always unwraps a DU-delivered RRC container as a PDCP
// Data PDU, regardless of which SRB the corresponding downlink send used:
// by the time any uplink RRC response arrives SRB1 already exists, so even
// the RRC Setup Complete answering an SRB0 RRC Setup is PDCP-framed, per
// procedures/ue_procedures/mod.rs's extract_ul_dcch_message.
func (t *Task) extractULDCCH(container []byte) (any, error) {
	inner, err := pdcp.ViewInner(container)
	if err != nil {
		return nil, fmt.Errorf("ue: pdcp view inner: %w", err)
	}
	return t.deps.RRCCodec.DecodeULDCCH(inner)
}

// rrcRequest sends msg on srbID and blocks for the UE's next uplink RRC
// message, decoding it the same way a steady-state UL RRC Message
// Transfer is decoded.
func (t *Task) rrcRequest(srbID uint8, msg rrc.Message) (any, error) {
	encoded, err := t.deps.RRCCodec.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("ue: encode rrc message: %w", err)
	}
	container, err := t.maybePDCPEncapsulate(srbID, encoded)
	if err != nil {
		return nil, fmt.Errorf("ue: pdcp encapsulate: %w", err)
	}
	if err := t.sendF1AP(f1ap.DLRRCMessage(t.ctx.CUUEF1APID, t.ctx.DUUEF1APID, srbID, container)); err != nil {
		return nil, fmt.Errorf("ue: send dl rrc message: %w", err)
	}

	pdu := <-t.mailbox
	ul, ok := pdu.(f1ap.ULRRCMessageTransfer)
	if !ok {
		return nil, fmt.Errorf("ue: expected ULRRCMessageTransfer, got %T", pdu)
	}
	return t.extractULDCCH(ul.RRCContainer)
}

// encodeNAS wraps plaintext with integrity protection once NAS security
// is active, and sends it unprotected before that point (e.g. the very
// first Authentication Request), per data/nas_context.rs's encode.
func (t *Task) encodeNAS(plaintext []byte) ([]byte, error) {
	if t.ctx.NASSecurity != nil {
		return t.ctx.NASSecurity.EncodeWithIntegrity(plaintext)
	}
	return plaintext, nil
}

// nasRequest encodes plaintext, carries it over SRB1 inside a DL
// Information Transfer, and blocks for the UE's UL Information Transfer
// reply, returning its decoded dedicated NAS message with the outer
// security header stripped.
func (t *Task) nasRequest(plaintext []byte) ([]byte, error) {
	encoded, err := t.encodeNAS(plaintext)
	if err != nil {
		return nil, fmt.Errorf("ue: encode nas: %w", err)
	}
	resp, err := t.rrcRequest(1, rrc.DLInfoTransfer(1, encoded))
	if err != nil {
		return nil, err
	}
	ulInfo, ok := resp.(rrc.ULInformationTransfer)
	if !ok {
		return nil, fmt.Errorf("ue: expected ULInformationTransfer, got %T", resp)
	}

	inner, _, quirkFixed, err := nas.StripSecurityHeader(ulInfo.DedicatedNASMessage)
	if err != nil {
		return nil, fmt.Errorf("ue: strip nas security header: %w", err)
	}
	if quirkFixed {
		t.log.Warn("fixed up inner nas security header octet on received message")
	}
	return inner, nil
}

// initialAccess runs the full attach ladder: RRC Setup, Authentication,
// NAS security activation, RRC security activation, Registration
// Accept/Complete, per spec.md §4.5 steps 1-6 and
// procedures/ue_procedures/initial_access.rs.
func (t *Task) initialAccess(ctx context.Context, initial f1ap.InitialULRRCMessageTransfer) error {
	_, span := t.tracer.Start(ctx, "Task.initialAccess")
	defer span.End()

	if _, err := t.deps.RRCCodec.DecodeULCCCH(initial.RRCContainer); err != nil {
		return fmt.Errorf("decode rrc setup request: %w", err)
	}

	resp, err := t.rrcRequest(0, rrc.Setup(0, initial.DUtoCURRCContainer))
	if err != nil {
		return fmt.Errorf("rrc setup: %w", err)
	}
	setupComplete, ok := resp.(rrc.RRCSetupComplete)
	if !ok {
		return fmt.Errorf("expected RRCSetupComplete, got %T", resp)
	}

	regReqBytes, _, quirkFixed, err := nas.StripSecurityHeader(setupComplete.DedicatedNASMessage)
	if err != nil {
		return fmt.Errorf("strip registration request security header: %w", err)
	}
	if quirkFixed {
		t.log.Warn("fixed up inner nas security header octet on registration request")
	}
	decoded, err := t.deps.NASCodec.Decode(regReqBytes)
	if err != nil {
		return fmt.Errorf("decode registration request: %w", err)
	}
	regReq, ok := decoded.(nas.RegistrationRequest)
	if !ok {
		return fmt.Errorf("expected RegistrationRequest, got %T", decoded)
	}

	identity, err := nas.ParseMobileIdentity(regReq.MobileIdentityIE)
	if err != nil {
		return fmt.Errorf("parse mobile identity: %w", err)
	}
	span.SetAttributes(attribute.String("ue.imsi", identity.IMSI))
	if identity.PLMN != t.deps.Config.PLMNBytes() {
		return fmt.Errorf("registration request for foreign plmn %x", identity.PLMN)
	}

	creds, ok := t.deps.SIMs.Lookup(identity.IMSI)
	if !ok {
		return fmt.Errorf("no sim entry for imsi %s", identity.IMSI)
	}

	challenge, err := security.GenerateChallenge(creds.KI[:], creds.OPc[:], t.deps.Config.ServingNetworkName())
	if err != nil {
		return fmt.Errorf("generate challenge: %w", err)
	}

	authRespBytes, err := t.nasRequest(nas.AuthenticationRequest(challenge.RAND, challenge.AUTN))
	if err != nil {
		return fmt.Errorf("authentication request: %w", err)
	}
	decoded, err = t.deps.NASCodec.Decode(authRespBytes)
	if err != nil {
		return fmt.Errorf("decode authentication response: %w", err)
	}
	authResp, ok := decoded.(nas.AuthenticationResponse)
	if !ok {
		return fmt.Errorf("expected AuthenticationResponse, got %T", decoded)
	}
	if !t.deps.Config.SkipUEAuthenticationCheck && !bytesEqual(authResp.ResStar, challenge.XRESStar) {
		metrics.AuthFailureTotal.Inc()
		return fmt.Errorf("authentication failed for imsi %s", identity.IMSI)
	}

	kamf := security.KAMF(challenge.KSEAF, identity.IMSI)
	knasint := security.KNASint(kamf)
	t.ctx.NASSecurity = nas.NewSecurityContext(knasint)

	smcRespBytes, err := t.nasRequest(nas.SecurityModeCommand(regReq.UESecurityCapability))
	if err != nil {
		return fmt.Errorf("security mode command: %w", err)
	}
	decoded, err = t.deps.NASCodec.Decode(smcRespBytes)
	if err != nil {
		return fmt.Errorf("decode security mode complete: %w", err)
	}
	smc, ok := decoded.(nas.SecurityModeComplete)
	if !ok {
		return fmt.Errorf("expected SecurityModeComplete, got %T", decoded)
	}
	if len(smc.NASMessageContainer) > 0 {
		if _, err := t.deps.NASCodec.Decode(smc.NASMessageContainer); err != nil {
			t.log.Warn("failed to decode replayed registration request in security mode complete", zap.Error(err))
		}
	}

	kgnb := security.KgNB(kamf, 0)
	krrcint := security.KRRCint(kgnb)
	t.ctx.PDCPTx.EnableSecurity(krrcint)

	if _, err := t.rrcRequest(1, rrc.SecurityModeCmd(1)); err != nil {
		return fmt.Errorf("rrc security mode command: %w", err)
	}

	regAccept := nas.RegistrationAccept(t.deps.Config.SST, t.deps.Config.PLMNBytes(), t.deps.Config.AMFIDs(), t.ctx.TMSI)
	completeBytes, err := t.nasRequest(regAccept)
	if err != nil {
		return fmt.Errorf("registration accept: %w", err)
	}
	decoded, err = t.deps.NASCodec.Decode(completeBytes)
	if err != nil {
		return fmt.Errorf("decode registration complete: %w", err)
	}
	if _, ok := decoded.(nas.RegistrationComplete); !ok {
		return fmt.Errorf("expected RegistrationComplete, got %T", decoded)
	}

	t.log.Info("ue attached", zap.String("imsi", identity.IMSI))
	return nil
}

// handleULDCCH dispatches a decoded steady-state uplink RRC message, per
// procedures/ue_procedures/ul_information_transfer.rs and uplink_nas.rs.
func (t *Task) handleULDCCH(ctx context.Context, decoded any) error {
	info, ok := decoded.(rrc.ULInformationTransfer)
	if !ok {
		return fmt.Errorf("ue: unsupported ul dcch message %T", decoded)
	}

	inner, _, quirkFixed, err := nas.StripSecurityHeader(info.DedicatedNASMessage)
	if err != nil {
		return fmt.Errorf("ue: strip nas security header: %w", err)
	}
	if quirkFixed {
		t.log.Warn("fixed up inner nas security header octet on received message")
	}

	decodedNAS, err := t.deps.NASCodec.Decode(inner)
	if err != nil {
		return fmt.Errorf("ue: decode uplink nas: %w", err)
	}

	switch n := decodedNAS.(type) {
	case nas.ULNASTransport:
		payload, err := t.deps.NASCodec.Decode(n.PayloadContainer)
		if err != nil {
			return fmt.Errorf("ue: decode ul nas transport payload: %w", err)
		}
		req, ok := payload.(nas.PDUSessionEstablishmentRequest)
		if !ok {
			t.log.Warn("unhandled 5gsm payload in ul nas transport", zap.String("type", fmt.Sprintf("%T", payload)))
			return nil
		}
		return t.establishPDUSession(ctx, req)
	case nas.DeregistrationRequest:
		return t.deregister(ctx, n)
	default:
		t.log.Warn("unhandled uplink nas message", zap.String("type", fmt.Sprintf("%T", decodedNAS)))
		return nil
	}
}

// establishPDUSession runs the session setup procedure: reserve a
// userplane slot, ask the DU to set up the DRB, build the accept, commit
// the downlink rule, then reconfigure the UE, per
// procedures/ue_procedures/pdu_session_establishment.rs.
func (t *Task) establishPDUSession(ctx context.Context, req nas.PDUSessionEstablishmentRequest) error {
	_, span := t.tracer.Start(ctx, "Task.establishPDUSession")
	defer span.End()
	span.SetAttributes(attribute.Int("ue.pdu_session_id", int(req.PDUSessionID)))

	session, err := t.deps.Engine.ReserveSession()
	if err != nil {
		return fmt.Errorf("ue: reserve userplane session: %w", err)
	}

	snssai := f1ap.SNSSAI{SST: t.deps.Config.SST}
	ulTunnel := f1ap.GTPTunnel{TransportLayerAddress: t.deps.Config.IPAddr, TEID: session.UplinkTEID}

	setupResp, err := t.f1apRequest(f1ap.UEContextSetup(t.ctx.CUUEF1APID, t.ctx.DUUEF1APID, t.ctx.NRCGI, snssai, 1, ulTunnel))
	if err != nil {
		t.deps.Engine.DeleteSession(session)
		return fmt.Errorf("ue: ue context setup: %w", err)
	}
	ctxSetup, ok := setupResp.(f1ap.UEContextSetupResponse)
	if !ok {
		t.deps.Engine.DeleteSession(session)
		return fmt.Errorf("ue: expected UEContextSetupResponse, got %T", setupResp)
	}
	if len(ctxSetup.DRBsSetup) == 0 {
		t.deps.Engine.DeleteSession(session)
		return fmt.Errorf("ue: ue context setup response set up no drb")
	}
	remote := userplane.Tunnel{
		IP:   ctxSetup.DRBsSetup[0].DLTunnel.TransportLayerAddress,
		TEID: ctxSetup.DRBsSetup[0].DLTunnel.TEID,
	}

	var ueIPv4 [4]byte
	copy(ueIPv4[:], session.UEIPv4.To4())
	accept := nas.PDUSessionEstablishmentAccept(req.PDUSessionID, req.PTI, ueIPv4)
	acceptEncoded, err := t.encodeNAS(accept)
	if err != nil {
		t.deps.Engine.DeleteSession(session)
		return fmt.Errorf("ue: encode pdu session establishment accept: %w", err)
	}

	t.deps.Engine.CommitSession(session, remote)
	t.ctx.PDUSessions = append(t.ctx.PDUSessions, PDUSession{ID: req.PDUSessionID, SNSSAI: snssai, Slot: session.Slot})

	reconfigResp, err := t.rrcRequest(1, rrc.Reconfiguration(0, req.PDUSessionID, ctxSetup.CellGroupConfig, acceptEncoded))
	if err != nil {
		return fmt.Errorf("ue: rrc reconfiguration: %w", err)
	}
	if _, ok := reconfigResp.(rrc.RRCReconfigurationComplete); !ok {
		return fmt.Errorf("ue: expected RRCReconfigurationComplete, got %T", reconfigResp)
	}

	t.log.Info("pdu session established", zap.Uint8("pdu_session_id", req.PDUSessionID), zap.Stringer("ue_ipv4", session.UEIPv4))
	return nil
}

// f1apRequest sends pdu and blocks for the next F1AP message on this
// task's mailbox, used for the synchronous UE Context Setup and UE
// Context Release request/response pairs.
func (t *Task) f1apRequest(pdu f1ap.PDU) (f1ap.PDU, error) {
	if err := t.sendF1AP(pdu); err != nil {
		return nil, err
	}
	return <-t.mailbox, nil
}

// releaseContext runs the F1 UE Context Release procedure: both
// CU-initiated deregistration and DU-initiated release funnel through
// here, per procedures/ue_procedures/ue_context_release.rs.
func (t *Task) releaseContext(ctx context.Context, cause f1ap.Cause) error {
	_, span := t.tracer.Start(ctx, "Task.releaseContext")
	defer span.End()
	span.SetAttributes(attribute.String("ue.release_cause", cause.RadioNetwork))

	resp, err := t.f1apRequest(f1ap.UEContextRelease(t.ctx.CUUEF1APID, t.ctx.DUUEF1APID, cause))
	if err != nil {
		return err
	}
	if _, ok := resp.(f1ap.UEContextReleaseComplete); !ok {
		return fmt.Errorf("ue: expected UEContextReleaseComplete, got %T", resp)
	}
	return nil
}

// deregister runs the UE-initiated deregistration procedure: release the
// F1 context with a normal-release cause, then exit, per
// procedures/ue_procedures/deregistration.rs.
func (t *Task) deregister(ctx context.Context, req nas.DeregistrationRequest) error {
	_, span := t.tracer.Start(ctx, "Task.deregister")
	defer span.End()

	if err := t.releaseContext(ctx, f1ap.Cause{RadioNetwork: f1ap.CauseNormalRelease}); err != nil {
		return fmt.Errorf("ue: deregistration release: %w", err)
	}
	return fmt.Errorf("ue-initiated deregistration, cause %d", req.Cause)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
