package f1ap

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCodec struct{}

func (fakeCodec) Decode(raw []byte) (PDU, error) { return nil, nil }
func (fakeCodec) Encode(pdu PDU) ([]byte, error)  { return []byte("encoded"), nil }

type fakeRegistry struct {
	mailboxes map[uint32]Mailbox
	nextID    uint32
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{mailboxes: make(map[uint32]Mailbox)}
}

func (f *fakeRegistry) Lookup(id uint32) (Mailbox, bool) {
	mb, ok := f.mailboxes[id]
	return mb, ok
}

func (f *fakeRegistry) Allocate(initial InitialULRRCMessageTransfer, assocID string) uint32 {
	f.nextID++
	mb := make(Mailbox, 8)
	f.mailboxes[f.nextID] = mb
	return f.nextID
}

type fakeGlobal struct {
	torndown []string
}

func (f *fakeGlobal) F1Setup(assocID string, req F1SetupRequest) F1SetupResponse {
	return F1SetupResponse{TransactionID: req.TransactionID, GNBCUName: "qcore"}
}
func (f *fakeGlobal) F1Removal(assocID string, req F1RemovalRequest) F1RemovalResponse {
	f.torndown = append(f.torndown, assocID)
	return F1RemovalResponse{TransactionID: req.TransactionID}
}
func (f *fakeGlobal) GNBDUConfigurationUpdate(req GNBDUConfigurationUpdate) GNBDUConfigurationUpdateAcknowledge {
	return GNBDUConfigurationUpdateAcknowledge{TransactionID: req.TransactionID}
}

func TestRouterAllocatesMailboxForInitialULRRCMessage(t *testing.T) {
	reg := newFakeRegistry()
	router := &Router{Log: zap.NewNop(), Global: &fakeGlobal{}, Registry: reg}

	msg := InitialULRRCMessageTransfer{GNBDUUEF1APID: 7, RRCContainer: []byte{1, 2, 3}}
	err := router.Dispatch(&Association{ID: "du-1"}, fakeCodec{}, msg)
	require.NoError(t, err)
	require.Len(t, reg.mailboxes, 1)

	mb := reg.mailboxes[1]
	require.Len(t, mb, 1)
	require.Equal(t, PDU(msg), <-mb)
}

func TestRouterDropsUEAssociatedMessageForUnknownID(t *testing.T) {
	reg := newFakeRegistry()
	router := &Router{Log: zap.NewNop(), Global: &fakeGlobal{}, Registry: reg}

	err := router.Dispatch(&Association{ID: "du-1"}, fakeCodec{}, ULRRCMessageTransfer{GNBCUUEF1APID: 99})
	require.NoError(t, err)
}

func TestRouterF1RemovalTearsDownAssociation(t *testing.T) {
	reg := newFakeRegistry()
	global := &fakeGlobal{}
	router := &Router{Log: zap.NewNop(), Global: global, Registry: reg}

	h := &Handler{Log: zap.NewNop(), CUName: "qcore", Teardown: func(assocID string) {
		global.torndown = append(global.torndown, assocID)
	}}
	router.Global = h

	err := router.Dispatch(&Association{ID: "du-1"}, fakeCodec{}, F1RemovalRequest{TransactionID: 5})
	require.NoError(t, err)
	require.Equal(t, []string{"du-1"}, global.torndown)
}

func TestBuildSIB2IsStable(t *testing.T) {
	require.Equal(t, BuildSIB2(), BuildSIB2())
	require.NotEmpty(t, BuildSIB2())
}

func TestUEContextSetupHardcodesDRBAndSRB2(t *testing.T) {
	req := UEContextSetup(1, 2, NRCGI{}, SNSSAI{SST: 1}, 1, GTPTunnel{})
	require.Equal(t, []uint8{2}, req.SRBsToBeSetup)
	require.Len(t, req.DRBsToBeSetup, 1)
	require.Equal(t, uint8(9), req.DRBsToBeSetup[0].FiveQI)
	require.Equal(t, uint8(14), req.DRBsToBeSetup[0].ARPPriority)
}

func TestUEContextReleaseUsesSRB1AndGivenCause(t *testing.T) {
	cmd := UEContextRelease(1, 2, Cause{RadioNetwork: CauseNormalRelease})
	require.Equal(t, uint8(1), cmd.SRBID)
	require.Equal(t, CauseNormalRelease, cmd.Cause.RadioNetwork)
}
