package nas

// ULNASTransport carries a nested 5GSM message (e.g. a PDU Session
// Establishment Request) inside its payload container, TS 24.501 8.2.10.
type ULNASTransport struct {
	PayloadContainer []byte
}

// RegistrationComplete carries no fields this core inspects; its arrival
// is itself the signal that the attach ladder finished.
type RegistrationComplete struct{}

// Codec decodes an inbound NAS 5GS message, already stripped of its outer
// security header by StripSecurityHeader, into the pre-decoded Go structs
// this core consumes. The general NAS 5GS TLV grammar is assumed available
// externally (package doc, spec.md §1); Codec is the seam an external
// implementation plugs into, the same pattern f1ap.Codec and rrc.Codec use.
type Codec interface {
	// Decode returns one of RegistrationRequest, AuthenticationResponse,
	// SecurityModeComplete, RegistrationComplete, ULNASTransport,
	// DeregistrationRequest, or PDUSessionEstablishmentRequest (the last
	// when raw is itself the payload container of a ULNASTransport).
	Decode(raw []byte) (any, error)
}
