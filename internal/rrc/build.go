package rrc

// Setup builds an RRC Setup creating SRB1, carrying the DU's master cell
// group configuration unchanged, per original_source's build_rrc::setup.
func Setup(transactionID uint8, masterCellGroup []byte) RRCSetup {
	return RRCSetup{
		TransactionID:   transactionID,
		SRBToAdd:        SRBToAddMod{SRBIdentity: 1},
		MasterCellGroup: masterCellGroup,
	}
}

// SecurityModeCmd builds an RRC Security Mode Command selecting NEA0
// ciphering and NIA2 integrity, per spec.md §4.5 step 5.
func SecurityModeCmd(transactionID uint8) SecurityModeCommand {
	return SecurityModeCommand{
		TransactionID: transactionID,
		SecurityAlgorithmConfig: SecurityAlgorithmConfig{
			CipheringAlgorithm:     "nea0",
			IntegrityProtAlgorithm: "nia2",
		},
	}
}

// DLInfoTransfer wraps a dedicated NAS message for delivery outside of
// reconfiguration.
func DLInfoTransfer(transactionID uint8, dedicatedNASMessage []byte) DLInformationTransfer {
	return DLInformationTransfer{
		TransactionID:       transactionID,
		DedicatedNASMessage: dedicatedNASMessage,
	}
}

// Reconfiguration builds an RRC Reconfiguration adding DRB 1 with SDAP
// (session id, default DRB, UL-QFI-present/DL-QFI-absent) and PDCP (12-bit
// SN both directions, 10ms discard timer), carrying cellGroupConfig and
// dedicatedNASMessage, per spec.md §4.5 step 8/§4.7.
func Reconfiguration(transactionID, sessionID uint8, cellGroupConfig, dedicatedNASMessage []byte) RRCReconfiguration {
	return RRCReconfiguration{
		TransactionID: transactionID,
		DRBToAdd: DRBToAddMod{
			DRBIdentity: 1,
			SDAPConfig: SDAPConfig{
				PDUSessionID:        sessionID,
				DefaultDRB:          true,
				SDAPHeaderDLPresent: false,
				SDAPHeaderULPresent: true,
				QFIs:                []uint8{1},
			},
			PDCPConfig: PDCPConfig{
				SNSizeULBits:   12,
				SNSizeDLBits:   12,
				DiscardTimerMs: 10,
			},
		},
		MasterCellGroup:     cellGroupConfig,
		DedicatedNASMessage: dedicatedNASMessage,
	}
}
