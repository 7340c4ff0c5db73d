package f1ap

// BuildSIB2 produces a hardcoded SIB2 blob carrying conservative cell
// reselection thresholds, matching the fixed values original_source's
// build_sib2() uses: Q-Hyst 1dB, serving-frequency reselection priority 2,
// Q-rx-lev-min -50, intra-frequency reselection threshold 2, t-reselection
// 2s. The ASN.1 PER encoding of the SIB2 structure is assumed available
// externally (spec.md §1); this returns the fixed byte template the rest of
// the system treats as an opaque blob.
func BuildSIB2() []byte {
	return []byte{
		0x01,       // q-Hyst = dB1
		0x02, 0x02, // threshServingLowP, cellReselectionPriority
		0xce,       // q-RxLevMin = -50 (two's complement, scaled per spec)
		0x02, 0x02, // sIntraSearchP, tReselectionNR
	}
}

// DLRRCMessage builds a DL RRC Message Transfer carrying rrcContainer on
// srbID, addressed to the UE identified by its pair of F1AP ids.
func DLRRCMessage(cuID, duID uint32, srbID uint8, rrcContainer []byte) DLRRCMessageTransfer {
	return DLRRCMessageTransfer{
		GNBCUUEF1APID: cuID,
		GNBDUUEF1APID: duID,
		SRBID:         srbID,
		RRCContainer:  rrcContainer,
	}
}

// UEContextSetup builds a UE Context Setup Request asking the DU to set up
// SRB2 and one DRB (id 1, 5QI 9, ARP priority 14, uplink tunnel ulTunnel,
// slice snssai, QFI qfi), per spec.md §4.5.8/§4.7. No RLC mode is carried.
func UEContextSetup(cuID, duID uint32, nrcgi NRCGI, snssai SNSSAI, qfi uint8, ulTunnel GTPTunnel) UEContextSetupRequest {
	return UEContextSetupRequest{
		GNBCUUEF1APID: cuID,
		GNBDUUEF1APID: duID,
		NRCGI:         nrcgi,
		SRBsToBeSetup: []uint8{2},
		DRBsToBeSetup: []DRBToBeSetup{{
			DRBID:       1,
			FiveQI:      9,
			ARPPriority: 14,
			QFI:         qfi,
			SNSSAI:      snssai,
			ULTunnel:    ulTunnel,
		}},
	}
}

// UEContextRelease builds a UE Context Release Command for cause on SRB1,
// per spec.md §4.5.10.
func UEContextRelease(cuID, duID uint32, cause Cause) UEContextReleaseCommand {
	return UEContextReleaseCommand{
		GNBCUUEF1APID: cuID,
		GNBDUUEF1APID: duID,
		Cause:         cause,
		SRBID:         1,
	}
}
