// Package rrc models the RRC messages (3GPP TS 38.331) this core sends and
// receives over F1AP's DL/UL RRC Message Transfer, carried inside PDCP Data
// PDUs on SRB0/SRB1. ASN.1 aligned PER encoding/decoding is assumed
// available externally (spec.md §1); the types here are the decoded Go
// representation.
package rrc

// Message is implemented by every RRC message this core builds or parses.
type Message interface{ isRRCMessage() }

// SecurityAlgorithmConfig selects NIA2 integrity with NEA0 (null) ciphering
// — the only combination this core ever uses (spec.md §4.1, Non-goals).
type SecurityAlgorithmConfig struct {
	CipheringAlgorithm      string // always "nea0"
	IntegrityProtAlgorithm  string // always "nia2"
}

// SRBToAddMod requests creation of one signalling radio bearer.
type SRBToAddMod struct {
	SRBIdentity uint8
}

// RRCSetup is sent on SRB0 in response to RRC Setup Request; it creates
// SRB1 on the UE side.
type RRCSetup struct {
	TransactionID    uint8
	SRBToAdd         SRBToAddMod
	MasterCellGroup  []byte
}

func (RRCSetup) isRRCMessage() {}

// SecurityModeCommand is sent on SRB1 once PDCP integrity is enabled.
type SecurityModeCommand struct {
	TransactionID           uint8
	SecurityAlgorithmConfig SecurityAlgorithmConfig
}

func (SecurityModeCommand) isRRCMessage() {}

// DLInformationTransfer carries a dedicated NAS PDU on SRB1 outside of any
// reconfiguration (used for Authentication Request, Security Mode Command,
// Registration Accept).
type DLInformationTransfer struct {
	TransactionID     uint8
	DedicatedNASMessage []byte
}

func (DLInformationTransfer) isRRCMessage() {}

// SDAPConfig configures the SDAP entity for one DRB: the PDU session it
// maps to, whether it is the session's default DRB, and whether SDAP
// headers are present in each direction. Downlink SDAP headers are
// intentionally absent in this core (spec.md §4.6, §9).
type SDAPConfig struct {
	PDUSessionID        uint8
	DefaultDRB          bool
	SDAPHeaderDLPresent bool
	SDAPHeaderULPresent bool
	QFIs                []uint8
}

// PDCPConfig configures the PDCP entity for one DRB: 12-bit SN both
// directions, 10ms discard timer, per spec.md §4.7.
type PDCPConfig struct {
	SNSizeULBits  uint8
	SNSizeDLBits  uint8
	DiscardTimerMs uint16
}

// DRBToAddMod configures one data radio bearer.
type DRBToAddMod struct {
	DRBIdentity uint8
	SDAPConfig  SDAPConfig
	PDCPConfig  PDCPConfig
}

// RRCReconfiguration is sent on SRB1 to add the PDU session's DRB and
// deliver the DU's CellGroupConfig plus a dedicated NAS message (the PDU
// Session Establishment Accept), per spec.md §4.5.8/§4.7.
type RRCReconfiguration struct {
	TransactionID       uint8
	DRBToAdd            DRBToAddMod
	MasterCellGroup     []byte
	DedicatedNASMessage []byte
}

func (RRCReconfiguration) isRRCMessage() {}

// RRCSetupRequest is parsed from the RRC container of an initial UL RRC
// message.
type RRCSetupRequest struct {
	// Fields beyond presence are not consumed by this core.
}

// RRCSetupComplete carries the UE's dedicated NAS message (the initial
// Registration Request) on SRB1.
type RRCSetupComplete struct {
	DedicatedNASMessage []byte
}

// ULInformationTransfer carries a dedicated NAS PDU uplink on SRB1.
type ULInformationTransfer struct {
	DedicatedNASMessage []byte
}

// SecurityModeComplete and RRCReconfigurationComplete carry no fields this core inspects; their arrival is itself the signal.
type SecurityModeComplete struct{}
type RRCReconfigurationComplete struct{}

// Codec decodes/encodes RRC PDUs to/from the PDCP-framed byte container.
// The ASN.1 PER codec itself is out of this core's scope (spec.md §1);
// Codec is the seam an external implementation plugs into.
type Codec interface {
	Encode(msg Message) ([]byte, error)
	DecodeULCCCH(raw []byte) (RRCSetupRequest, error)
	DecodeULDCCH(raw []byte) (any, error) // RRCSetupComplete | ULInformationTransfer | SecurityModeComplete | RRCReconfigurationComplete
}
