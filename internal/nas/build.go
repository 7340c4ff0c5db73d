package nas

import "encoding/binary"

// plainHeader prepends the extended protocol discriminator, a plain
// (unprotected) security header type, and the message type octet. The
// outer secured-NAS wrapping, when required, is applied afterwards by
// SecurityContext.EncodeWithIntegrity.
func plainHeader(epd, msgType byte) []byte {
	return []byte{epd, 0x00, msgType}
}

// AuthenticationRequest builds a NAS Authentication Request carrying
// rand/autn, ngKSI 0 and the fixed ABBA value, per spec.md §4.5 step 3.
func AuthenticationRequest(rand, autn [16]byte) []byte {
	msg := plainHeader(epd5GMM, MsgAuthenticationRequest)
	msg = append(msg, 0x00) // ngKSI = 0, spare half-octet = 0
	msg = append(msg, byte(len(ABBA)))
	msg = append(msg, ABBA[:]...)
	msg = append(msg, 0x21) // Authentication Parameter RAND, IEI 0x21
	msg = append(msg, rand[:]...)
	msg = append(msg, 0x20, 16) // Authentication Parameter AUTN, IEI 0x20
	msg = append(msg, autn[:]...)
	return msg
}

// SecurityModeCommand builds a NAS Security Mode Command selecting
// NIA2 integrity with NEA0 (null) ciphering and echoing the UE's
// security capability, with the additional-5G-security-information bit
// set to request retransmission of the initial NAS message, per
// spec.md §4.5 step 4.
func SecurityModeCommand(ueSecurityCapability []byte) []byte {
	msg := plainHeader(epd5GMM, MsgSecurityModeCommand)
	msg = append(msg, 0x02) // selected NAS security algorithms: integrity=NIA2, ciphering=NEA0
	msg = append(msg, 0x00) // ngKSI = 0, spare half-octet = 0
	msg = append(msg, byte(len(ueSecurityCapability)))
	msg = append(msg, ueSecurityCapability...)
	msg = append(msg, 0x36, 0b00000010) // Additional 5G security information, IEI 0x36: request retransmission
	return msg
}

// guti builds the 5G-GUTI mobile identity value, TS 24.501 9.11.3.4.1:
// type byte 0xF2 (type of identity = GUTI, spare bits set per spec.md §6),
// then PLMN[3], AMF-ids[3], TMSI[4].
func guti(plmn, amfIDs [3]byte, tmsi [4]byte) []byte {
	out := make([]byte, 0, 11)
	out = append(out, 0xF2)
	out = append(out, plmn[:]...)
	out = append(out, amfIDs[:]...)
	out = append(out, tmsi[:]...)
	return out
}

// RegistrationAccept builds a NAS Registration Accept carrying a 5G-GUTI
// and a single-slice Allowed NSSAI, per spec.md §4.5 step 6.
func RegistrationAccept(sst byte, plmn, amfIDs [3]byte, tmsi [4]byte) []byte {
	msg := plainHeader(epd5GMM, MsgRegistrationAccept)
	msg = append(msg, 0b00000001) // 5GS registration result: 3GPP access, no emergency/SMS/slice-specific auth
	g := guti(plmn, amfIDs, tmsi)
	msg = append(msg, 0x77, byte(len(g))) // 5G-GUTI, IEI 0x77
	msg = append(msg, g...)
	msg = append(msg, 0x15, 0x02, 0x01, sst) // Allowed NSSAI, IEI 0x15: length 2, one NSSAI of length 1 (SST only)
	return msg
}

// sessionAMBR builds the Session-AMBR IE value: 1 Mbps in each
// direction, per original_source/qcore/src/protocols/nas/build.rs.
func sessionAMBR() []byte {
	return []byte{
		0b00000110, 0x00, 0x01, // downlink unit = Mbps, value = 1
		0b00000110, 0x00, 0x01, // uplink unit = Mbps, value = 1
	}
}

// defaultQoSRules builds a single QoS rule matching all uplink/downlink
// traffic with QFI 1, as the default rule for the PDU session, per
// build.rs.
func defaultQoSRules() []byte {
	return []byte{
		0x01,         // QoS rule identifier = 1
		0x00, 0x06,   // length of QoS rule
		0b00110001,   // operation = create new, DQR = default rule, 1 packet filter
		0b00111111,   // packet filter direction = bidirectional, identifier = 0xF
		0x01,         // packet filter contents length
		0b00000001,   // packet filter component type = match-all
		0xff,         // QoS rule precedence
		0b00000001,   // spare; QFI = 1
	}
}

// pduAddress builds the PDU Address IE value for an IPv4 UE address.
func pduAddress(ueIPv4 [4]byte) []byte {
	out := make([]byte, 0, 5)
	out = append(out, 0b00000001) // PDU session type = IPv4
	out = append(out, ueIPv4[:]...)
	return out
}

// PDUSessionEstablishmentAccept builds a 5GSM PDU Session Establishment
// Accept for ueIPv4, wraps it in a 5GSM header (session id, PTI), then
// wraps that in a 5GMM DL NAS Transport carrying it as a 5GSM payload
// container, per spec.md §4.5 step 8 / build.rs.
func PDUSessionEstablishmentAccept(sessionID, pti uint8, ueIPv4 [4]byte) []byte {
	inner := []byte{epd5GSM, sessionID, pti, MsgPDUSessionEstablishmentAccept}
	inner = append(inner, 0b00000001) // selected PDU session type = IPv4
	qos := defaultQoSRules()
	inner = append(inner, 0x79, byte(len(qos))) // Authorized QoS rules, IEI 0x79
	inner = append(inner, qos...)
	ambr := sessionAMBR()
	inner = append(inner, 0x2A, byte(len(ambr))) // Session-AMBR, IEI 0x2A
	inner = append(inner, ambr...)
	addr := pduAddress(ueIPv4)
	inner = append(inner, 0x29, byte(len(addr))) // PDU address, IEI 0x29
	inner = append(inner, addr...)

	outer := plainHeader(epd5GMM, MsgDLNASTransport)
	outer = append(outer, 0b00000001) // payload container type = 5GSM
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(inner)))
	outer = append(outer, l[:]...)
	outer = append(outer, inner...)
	return outer
}
