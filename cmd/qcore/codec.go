package main

import (
	"fmt"

	"github.com/qcore-go/qcore/internal/f1ap"
	"github.com/qcore-go/qcore/internal/rrc"
)

// The ASN.1 aligned PER codecs for F1AP and RRC, and the NAS 5GS TLV codec,
// are assumed available externally (spec.md §1): qcore never implements a
// generalized PER or NAS TLV grammar, only the exact-byte wire layouts it
// specifies precisely (PDCP, GTP-U/NR-U, the NAS outer security header).
// f1apCodec, rrcCodec and nasCodec below are the seams those real codecs
// plug into; as shipped they refuse every PDU so a misconfigured deployment
// fails loudly at the first message rather than silently drop it.

type f1apCodec struct{}

func (f1apCodec) Decode(raw []byte) (f1ap.PDU, error) {
	return nil, fmt.Errorf("f1ap: no ASN.1 PER codec wired in")
}

func (f1apCodec) Encode(pdu f1ap.PDU) ([]byte, error) {
	return nil, fmt.Errorf("f1ap: no ASN.1 PER codec wired in")
}

type rrcCodec struct{}

func (rrcCodec) Encode(msg rrc.Message) ([]byte, error) {
	return nil, fmt.Errorf("rrc: no ASN.1 PER codec wired in")
}

func (rrcCodec) DecodeULCCCH(raw []byte) (rrc.RRCSetupRequest, error) {
	return rrc.RRCSetupRequest{}, fmt.Errorf("rrc: no ASN.1 PER codec wired in")
}

func (rrcCodec) DecodeULDCCH(raw []byte) (any, error) {
	return nil, fmt.Errorf("rrc: no ASN.1 PER codec wired in")
}

type nasCodec struct{}

func (nasCodec) Decode(raw []byte) (any, error) {
	return nil, fmt.Errorf("nas: no NAS 5GS TLV codec wired in")
}
