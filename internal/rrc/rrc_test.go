package rrc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetupCreatesSRB1(t *testing.T) {
	msg := Setup(1, []byte{0xAA})
	require.Equal(t, uint8(1), msg.SRBToAdd.SRBIdentity)
	require.Equal(t, []byte{0xAA}, msg.MasterCellGroup)
}

func TestSecurityModeCmdSelectsNIA2AndNEA0(t *testing.T) {
	msg := SecurityModeCmd(2)
	require.Equal(t, "nia2", msg.SecurityAlgorithmConfig.IntegrityProtAlgorithm)
	require.Equal(t, "nea0", msg.SecurityAlgorithmConfig.CipheringAlgorithm)
}

func TestReconfigurationOmitsDownlinkSDAPHeader(t *testing.T) {
	msg := Reconfiguration(3, 5, []byte("cgc"), []byte("nas"))
	require.False(t, msg.DRBToAdd.SDAPConfig.SDAPHeaderDLPresent)
	require.True(t, msg.DRBToAdd.SDAPConfig.SDAPHeaderULPresent)
	require.True(t, msg.DRBToAdd.SDAPConfig.DefaultDRB)
	require.Equal(t, []uint8{1}, msg.DRBToAdd.SDAPConfig.QFIs)
	require.Equal(t, uint8(12), msg.DRBToAdd.PDCPConfig.SNSizeULBits)
	require.Equal(t, uint16(10), msg.DRBToAdd.PDCPConfig.DiscardTimerMs)
	require.Equal(t, uint8(5), msg.DRBToAdd.SDAPConfig.PDUSessionID)
}
