// Package f1ap models the F1 reference point (3GPP TS 38.473) between this
// core (acting as gNB-CU) and an attached gNB-DU. ASN.1 aligned PER encoding
// and decoding is assumed to be available externally (spec.md §1); the types
// here are the decoded Go representation the rest of the core operates on.
package f1ap

import (
	"net"

	"github.com/google/uuid"
)

// TransactionID is the F1AP procedure transaction id, echoed between request
// and response on the class-1 global procedures.
type TransactionID uint8

// FallbackTransactionID generates a best-effort transaction id for a
// response whose request decoded with the field reading as absent (the zero
// value), so a reply is never sent carrying an id indistinguishable from
// "unset". Not a 3GPP-specified value; just a non-zero one.
func FallbackTransactionID() TransactionID {
	for {
		id := uuid.New()
		if id[0] != 0 {
			return TransactionID(id[0])
		}
	}
}

// NRCGI is an NR Cell Global Identity: PLMN plus a 36-bit NR cell id.
type NRCGI struct {
	PLMN     [3]byte
	NRCellID uint64
}

// PDU is implemented by every F1AP message this core can send or receive.
// The marker method keeps the router's dispatch exhaustive over a closed set
// of message types without resorting to a separate message-type enum.
type PDU interface{ isF1APPDU() }

// ServedCell is one cell the DU advertises in F1 Setup Request /
// GNB-DU Configuration Update.
type ServedCell struct {
	NRCGI NRCGI
	NRPCI uint16
	TAC   [3]byte
}

// F1SetupRequest - DU -> CU.
type F1SetupRequest struct {
	TransactionID TransactionID
	GNBDUID       uint64
	GNBDUName     string
	ServedCells   []ServedCell
}

func (F1SetupRequest) isF1APPDU() {}

// CellToActivate pairs a served cell with the SIB2 blob the CU wants the DU
// to broadcast for it.
type CellToActivate struct {
	NRCGI NRCGI
	SIB2  []byte
}

// F1SetupResponse - CU -> DU.
type F1SetupResponse struct {
	TransactionID   TransactionID
	GNBCUName       string
	CellsToActivate []CellToActivate
}

func (F1SetupResponse) isF1APPDU() {}

// F1RemovalRequest - DU -> CU. Tears down the whole F1 instance; every live
// UE on this association is released (spec.md §4.4, §7).
type F1RemovalRequest struct {
	TransactionID TransactionID
}

func (F1RemovalRequest) isF1APPDU() {}

// F1RemovalResponse - CU -> DU.
type F1RemovalResponse struct {
	TransactionID TransactionID
}

func (F1RemovalResponse) isF1APPDU() {}

// GNBDUConfigurationUpdate - DU -> CU. Served-cell add/modify/delete lists
// are accepted but ignored in this revision (no cell reconfiguration).
type GNBDUConfigurationUpdate struct {
	TransactionID TransactionID
}

func (GNBDUConfigurationUpdate) isF1APPDU() {}

// GNBDUConfigurationUpdateAcknowledge - CU -> DU.
type GNBDUConfigurationUpdateAcknowledge struct {
	TransactionID TransactionID
}

func (GNBDUConfigurationUpdateAcknowledge) isF1APPDU() {}

// InitialULRRCMessageTransfer - DU -> CU. Carries the first uplink RRC
// message (RRC Setup Request) for a UE the CU has not yet allocated an id
// for, plus the DU-to-CU RRC container (master cell group config).
type InitialULRRCMessageTransfer struct {
	GNBDUUEF1APID      uint32
	NRCGI              NRCGI
	CRNTI              uint16
	RRCContainer       []byte
	DUtoCURRCContainer []byte
}

func (InitialULRRCMessageTransfer) isF1APPDU() {}

// DLRRCMessageTransfer - CU -> DU.
type DLRRCMessageTransfer struct {
	GNBCUUEF1APID uint32
	GNBDUUEF1APID uint32
	SRBID         uint8
	RRCContainer  []byte
}

func (DLRRCMessageTransfer) isF1APPDU() {}

// ULRRCMessageTransfer - DU -> CU.
type ULRRCMessageTransfer struct {
	GNBCUUEF1APID uint32
	GNBDUUEF1APID uint32
	SRBID         uint8
	RRCContainer  []byte
}

func (ULRRCMessageTransfer) isF1APPDU() {}

// SNSSAI is a single-slice S-NSSAI, SST only (no SD) per spec.md §3.
type SNSSAI struct {
	SST uint8
}

// GTPTunnel is a GTP-U tunnel endpoint: transport address plus TEID.
type GTPTunnel struct {
	TransportLayerAddress net.IP
	TEID                  [4]byte
}

// DRBToBeSetup describes the one DRB this core ever asks the DU to set up:
// DRB-id 1, 5QI 9, ARP priority 14 (spec.md §4.5.8). It has no RLC mode
// field, so the request carries no RLC mode.
type DRBToBeSetup struct {
	DRBID       uint8
	FiveQI      uint8
	ARPPriority uint8
	QFI         uint8
	SNSSAI      SNSSAI
	ULTunnel    GTPTunnel
}

// UEContextSetupRequest - CU -> DU.
type UEContextSetupRequest struct {
	GNBCUUEF1APID uint32
	GNBDUUEF1APID uint32
	NRCGI         NRCGI
	SRBsToBeSetup []uint8 // always [2] in this core
	DRBsToBeSetup []DRBToBeSetup
}

func (UEContextSetupRequest) isF1APPDU() {}

// DRBSetup carries the DU-allocated downlink tunnel for a DRB set up.
type DRBSetup struct {
	DRBID    uint8
	DLTunnel GTPTunnel
}

// UEContextSetupResponse - DU -> CU.
type UEContextSetupResponse struct {
	GNBCUUEF1APID   uint32
	GNBDUUEF1APID   uint32
	CellGroupConfig []byte
	DRBsSetup       []DRBSetup
}

func (UEContextSetupResponse) isF1APPDU() {}

// Cause is a coarse F1AP failure cause; only the radio-network "normal
// release" value is ever produced by this core (spec.md §4.5.9-10).
type Cause struct {
	RadioNetwork string
}

const CauseNormalRelease = "normal-release"

// UEContextReleaseCommand - CU -> DU.
type UEContextReleaseCommand struct {
	GNBCUUEF1APID uint32
	GNBDUUEF1APID uint32
	Cause         Cause
	SRBID         uint8
}

func (UEContextReleaseCommand) isF1APPDU() {}

// UEContextReleaseComplete - DU -> CU.
type UEContextReleaseComplete struct {
	GNBCUUEF1APID uint32
	GNBDUUEF1APID uint32
}

func (UEContextReleaseComplete) isF1APPDU() {}

// UEContextReleaseRequest - DU -> CU. DU-initiated release (spec.md §8
// scenario 4).
type UEContextReleaseRequest struct {
	GNBCUUEF1APID uint32
	GNBDUUEF1APID uint32
	Cause         Cause
}

func (UEContextReleaseRequest) isF1APPDU() {}
