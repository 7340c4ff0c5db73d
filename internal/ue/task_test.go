package ue

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qcore-go/qcore/internal/config"
	"github.com/qcore-go/qcore/internal/f1ap"
	"github.com/qcore-go/qcore/internal/simtable"
	"github.com/qcore-go/qcore/internal/userplane"
)

// 12-byte mobile identity IE value: type SUPI, PLMN 001/01, MSIN "12345678".
var testMobileIdentityIE = []byte{0x01, 0x00, 0xf1, 0x10, 0, 0, 0, 0, 0x21, 0x43, 0x65, 0x87}

const testIMSI = "0010112345678"

func testDeps(t *testing.T, registry *Registry) Deps {
	cfg := &config.Config{
		MCC: "001", MNC: "01",
		AMFRegionID: 1, AMFSetID: 1, AMFPointer: 1,
		SST:                       1,
		IPAddr:                    net.IPv4(10, 0, 0, 1),
		SkipUEAuthenticationCheck: true,
	}
	sims := simtable.Table{
		testIMSI: {KI: [16]byte{1, 2, 3, 4}, OPc: [16]byte{5, 6, 7, 8}},
	}
	return Deps{
		Config:   cfg,
		SIMs:     NewSIMLookup(sims),
		Engine:   userplane.NewEngine(net.IPv4(10, 45, 0, 0)),
		RRCCodec: stubRRCCodec{},
		NASCodec: stubNASCodec{},
		Registry: registry,
		Log:      zap.NewNop(),
	}
}

func newTestRegistry() *Registry {
	return NewRegistry(nil, zap.NewNop())
}

func TestAttachAndPDUSessionEstablishment(t *testing.T) {
	registry := newTestRegistry()
	deps := testDeps(t, registry)

	const cuID, duID uint32 = 42, 7
	mailbox := make(f1ap.Mailbox, 64)
	registry.mu.Lock()
	registry.mailboxes[cuID] = mailbox
	registry.mu.Unlock()

	sender := &fakeSender{mailbox: mailbox, mobileIdentityIE: testMobileIdentityIE, ueSecCap: []byte{0xe0, 0x00}}
	spawn := Spawn(deps, sender)
	spawn(cuID, "assoc-1", mailbox)

	mailbox <- f1ap.InitialULRRCMessageTransfer{
		GNBDUUEF1APID:      duID,
		NRCGI:              f1ap.NRCGI{PLMN: [3]byte{0, 0, 0}, NRCellID: 1},
		CRNTI:              1,
		RRCContainer:       []byte{0x00},
		DUtoCURRCContainer: []byte{0xaa, 0xbb},
	}

	// The fake DU answers every step of the attach ladder synchronously as
	// Send is called, so a short wait is enough for the task to reach its
	// steady-state loop before driving the PDU session request below.
	time.Sleep(50 * time.Millisecond)

	ulNAS := append([]byte{'N'}, 'Q', 5, 1)
	mailbox <- f1ap.ULRRCMessageTransfer{
		GNBCUUEF1APID: cuID,
		GNBDUUEF1APID: duID,
		SRBID:         1,
		RRCContainer:  pdcpWrap(append([]byte{'U'}, ulNAS...)),
	}

	time.Sleep(50 * time.Millisecond)

	registry.mu.Lock()
	_, stillPresent := registry.mailboxes[cuID]
	registry.mu.Unlock()
	assert.True(t, stillPresent, "ue task should still be alive after establishing a pdu session")
}

func TestDUInitiatedReleaseTearsDownContext(t *testing.T) {
	registry := newTestRegistry()
	deps := testDeps(t, registry)

	const cuID, duID uint32 = 43, 8
	mailbox := make(f1ap.Mailbox, 64)
	registry.mu.Lock()
	registry.mailboxes[cuID] = mailbox
	registry.mu.Unlock()

	sender := &fakeSender{mailbox: mailbox, mobileIdentityIE: testMobileIdentityIE, ueSecCap: []byte{0xe0, 0x00}}
	spawn := Spawn(deps, sender)
	spawn(cuID, "assoc-1", mailbox)

	mailbox <- f1ap.InitialULRRCMessageTransfer{
		GNBDUUEF1APID:      duID,
		NRCGI:              f1ap.NRCGI{PLMN: [3]byte{0, 0, 0}, NRCellID: 1},
		CRNTI:              1,
		RRCContainer:       []byte{0x00},
		DUtoCURRCContainer: []byte{0xaa, 0xbb},
	}
	time.Sleep(50 * time.Millisecond)

	mailbox <- f1ap.UEContextReleaseRequest{
		GNBCUUEF1APID: cuID,
		GNBDUUEF1APID: duID,
		Cause:         f1ap.Cause{RadioNetwork: "o-and-m-intervention"},
	}

	require.Eventually(t, func() bool {
		registry.mu.Lock()
		defer registry.mu.Unlock()
		_, ok := registry.mailboxes[cuID]
		return !ok
	}, time.Second, 10*time.Millisecond, "task should remove itself from the registry on release")
}

func TestRegistryAllocateAssignsDistinctIDsAndSpawns(t *testing.T) {
	registry := newTestRegistry()
	var spawned []uint32
	registry.spawn = func(id uint32, assocID string, mb f1ap.Mailbox) {
		spawned = append(spawned, id)
	}

	id1 := registry.Allocate(f1ap.InitialULRRCMessageTransfer{}, "assoc-1")
	id2 := registry.Allocate(f1ap.InitialULRRCMessageTransfer{}, "assoc-1")

	assert.NotEqual(t, id1, id2)
	assert.NotZero(t, id1)
	assert.NotZero(t, id2)
	assert.ElementsMatch(t, []uint32{id1, id2}, spawned)

	mb, ok := registry.Lookup(id1)
	require.True(t, ok)
	assert.NotNil(t, mb)

	registry.Remove(id1)
	_, ok = registry.Lookup(id1)
	assert.False(t, ok)
}
