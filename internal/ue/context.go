// Package ue implements the per-UE task: the attach ladder and the
// steady-state loop that follows it, grounded on
// original_source/qcore/src/qcore.rs and procedures/ue_procedures/*.rs.
package ue

import (
	"crypto/rand"
	"fmt"

	"github.com/qcore-go/qcore/internal/f1ap"
	"github.com/qcore-go/qcore/internal/nas"
	"github.com/qcore-go/qcore/internal/pdcp"
)

// PDUSession is one established PDU session's userplane binding, mirrored
// from userplane.Session plus the slice it was requested on.
type PDUSession struct {
	ID     uint8
	SNSSAI f1ap.SNSSAI
	Slot   uint8
}

// Context is one attached UE's full state, mirroring
// original_source/qcore/src/data/ue_context.rs's UeContext: the pair of
// F1AP ids, its serving cell, a random TMSI, the SRB1 PDCP transmit
// state, NAS security once activated, and its PDU sessions.
type Context struct {
	CUUEF1APID uint32
	DUUEF1APID uint32
	NRCGI      f1ap.NRCGI
	TMSI       [4]byte

	PDCPTx      *pdcp.Tx
	NASSecurity *nas.SecurityContext

	PDUSessions []PDUSession
}

// NewContext allocates a fresh UE context with a random TMSI and an
// SRB1 PDCP transmit state with integrity disabled until RRC security
// activation.
func NewContext(cuID, duID uint32, nrcgi f1ap.NRCGI) (*Context, error) {
	var tmsi [4]byte
	if _, err := rand.Read(tmsi[:]); err != nil {
		return nil, fmt.Errorf("ue: generating tmsi: %w", err)
	}
	return &Context{
		CUUEF1APID: cuID,
		DUUEF1APID: duID,
		NRCGI:      nrcgi,
		TMSI:       tmsi,
		PDCPTx:     &pdcp.Tx{SRBID: 1},
	}, nil
}
