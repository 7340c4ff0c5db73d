// Package pdcp implements the control-plane PDCP Data PDU framing used on
// SRB0 (unprotected) and SRB1 (NIA2 integrity-protected), per
// original_source/5g-libs/pdcp/src/lib.rs.
package pdcp

import (
	"encoding/binary"
	"fmt"

	"github.com/qcore-go/qcore/internal/security"
)

const (
	snMask      = 0x0fff
	headerLen   = 2
	macLen      = 4
	minFrameLen = headerLen + macLen
)

// directionDownlink is the only direction this core ever encodes: every
// PDCP PDU it builds is sent to the UE.
const directionDownlink = true

// Tx is the transmit-side PDCP state for one SRB (0 or 1). TxNext
// increments monotonically for every SRB1 PDU encoded; SRB0 never
// advances it. IntegrityKey is nil until RRC security activation
// (spec.md §4.5 step 5): SRB1 PDUs sent before that point still carry
// a sequence number and still advance TxNext, but their MAC stays the
// zero vector, matching original_source/5g-libs/pdcp/src/lib.rs exactly.
type Tx struct {
	SRBID        uint8
	TxNext       uint32
	IntegrityKey []byte // KRRCint, nil until EnableSecurity is called
}

// EnableSecurity activates PDCP integrity protection with krrcint.
func (tx *Tx) EnableSecurity(krrcint []byte) {
	tx.IntegrityKey = krrcint
}

// Encode builds a PDCP Data PDU carrying inner as its payload.
func (tx *Tx) Encode(inner []byte) ([]byte, error) {
	var sn uint16
	if tx.SRBID != 0 {
		sn = uint16(tx.TxNext) & snMask
	}

	out := make([]byte, headerLen+len(inner)+macLen)
	binary.BigEndian.PutUint16(out[0:2], sn)
	copy(out[2:2+len(inner)], inner)

	if tx.SRBID == 0 {
		// MAC stays the zero vector: no PDCP integrity on SRB0.
		return out, nil
	}
	if tx.SRBID != 1 {
		return nil, fmt.Errorf("pdcp: unsupported srb id %d", tx.SRBID)
	}

	if len(tx.IntegrityKey) == 16 {
		var count [4]byte
		binary.BigEndian.PutUint32(count[:], tx.TxNext)
		mac, err := security.NIA2(tx.IntegrityKey, count, tx.SRBID-1, directionDownlink, out[:2+len(inner)])
		if err != nil {
			return nil, fmt.Errorf("pdcp: encode: %w", err)
		}
		copy(out[2+len(inner):], mac[:])
	}
	tx.TxNext++
	return out, nil
}

// ViewInner returns the payload bytes of a PDCP Data PDU, i.e.
// pdu[2 : len-4). It requires at least 6 bytes (2-byte header + 4-byte
// MAC, possibly with an empty payload).
func ViewInner(pdu []byte) ([]byte, error) {
	if len(pdu) < minFrameLen {
		return nil, fmt.Errorf("pdcp: too short for PDCP PDU")
	}
	return pdu[2 : len(pdu)-4], nil
}
