// Package nas implements the narrow slice of NAS 5GS signalling this core
// needs: the security-protected outer header (§4.2), and byte-exact
// builders/parsers for the specific messages the attach procedure sends
// and receives. The full NAS 5GS information-element grammar is treated
// as a "TLV codec, assumed available" external concern (spec.md §1);
// inbound messages other than the ones the state machine needs are
// represented as pre-decoded Go structs (the same modelling spec.md's
// process applies to F1AP/RRC), while outbound messages are built as
// exact byte sequences the way original_source's build.rs does, since
// §6 of the spec gives several of them byte-for-byte.
package nas

// 5GMM message types, TS 24.501 Table 9.7.1.
const (
	MsgRegistrationRequest            = 0x41
	MsgRegistrationAccept             = 0x42
	MsgRegistrationComplete           = 0x43
	MsgAuthenticationRequest          = 0x56
	MsgAuthenticationResponse         = 0x57
	MsgSecurityModeCommand            = 0x5D
	MsgSecurityModeComplete           = 0x5E
	MsgULNASTransport                 = 0x67
	MsgDLNASTransport                 = 0x68
	MsgDeregistrationRequestUEOrig    = 0x45
	MsgDeregistrationAcceptUEOrig     = 0x46
)

// 5GSM message types, TS 24.501 Table 9.8.1.
const (
	MsgPDUSessionEstablishmentRequest = 0xC1
	MsgPDUSessionEstablishmentAccept  = 0xC2
)

// Extended protocol discriminators, TS 24.007 11.2.3.1.1.
const (
	epd5GMM = 0x7E
	epd5GSM = 0x2E
)

// ABBA is the fixed Anti-Bidding down Between Architectures parameter
// this core always sends (TS 33.501 Annex A.7.1: all-zero when no
// particular feature negotiation is required).
var ABBA = [2]byte{0x00, 0x00}
