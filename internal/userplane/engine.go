// Package userplane implements the GTP-U/NR-U/PDCP/SDAP user-plane
// forwarding engine between the F1-U tunnel toward the DU and the N6 TUN
// device, grounded on original_source/qcore/src/userplane/packet_processor.rs
// and its sibling uplink/downlink pipeline files.
package userplane

import (
	"fmt"
	"math/rand"
	"net"
	"sync"
)

// maxUEs bounds the slot space: valid indices are [1,254], slot 0 reserved
// so the first UE gets a .1 address, per spec.md §3/§4.6.
const maxUEs = 255

// Tunnel is a GTP-U tunnel endpoint: transport address plus TEID.
type Tunnel struct {
	IP   net.IP
	TEID [4]byte
}

// Session is the tuple produced by reserving a user-plane slot: the
// allocated UE IPv4 address and its uplink GTP-TEID.
type Session struct {
	Slot       uint8
	UEIPv4     net.IP
	UplinkTEID [4]byte
}

type uplinkRule struct {
	localTEID [4]byte
}

type downlinkRule struct {
	remoteTunnel Tunnel
	ueIPv4       net.IP
	pdcpSN       uint16
	nrSN         uint32
}

// indexPool hands out free slots in [1,254], always returning the
// lowest-numbered free slot, with slot 0 permanently reserved.
type indexPool struct {
	mu   sync.Mutex
	used [maxUEs]bool
}

func newIndexPool() *indexPool {
	p := &indexPool{}
	p.used[0] = true
	return p
}

func (p *indexPool) acquire() (uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 1; i < maxUEs; i++ {
		if !p.used[i] {
			p.used[i] = true
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("userplane: no more slots available")
}

func (p *indexPool) release(slot uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.used[slot] = false
}

// Engine owns the two lock-protected 254-slot forwarding tables and the
// slot index pool, per spec.md §4.6.
type Engine struct {
	subnet net.IP // UE subnet, last octet zero

	pool *indexPool

	ulMu sync.Mutex
	ul   [maxUEs]*uplinkRule

	dlMu sync.Mutex
	dl   [maxUEs]*downlinkRule
}

func NewEngine(ueSubnet net.IP) *Engine {
	return &Engine{subnet: ueSubnet.To4(), pool: newIndexPool()}
}

// ReserveSession allocates a free slot, derives the UE's IPv4 address and a
// fresh uplink TEID from it, and installs the uplink forwarding rule.
func (e *Engine) ReserveSession() (Session, error) {
	slot, err := e.pool.acquire()
	if err != nil {
		return Session{}, err
	}

	var teid [4]byte
	if _, err := rand.Read(teid[0:3]); err != nil {
		e.pool.release(slot)
		return Session{}, fmt.Errorf("userplane: generate teid: %w", err)
	}
	teid[3] = slot

	ue := make(net.IP, 4)
	copy(ue, e.subnet)
	ue[3] = slot

	e.ulMu.Lock()
	e.ul[slot] = &uplinkRule{localTEID: teid}
	e.ulMu.Unlock()

	return Session{Slot: slot, UEIPv4: ue, UplinkTEID: teid}, nil
}

// CommitSession installs the downlink forwarding rule for session, pointing
// at the DU's allocated remote tunnel.
func (e *Engine) CommitSession(session Session, remote Tunnel) {
	e.dlMu.Lock()
	e.dl[session.Slot] = &downlinkRule{remoteTunnel: remote, ueIPv4: session.UEIPv4}
	e.dlMu.Unlock()
}

// NextDownlinkHeader looks up the downlink rule for ueIPv4 (slot = last
// octet) and, if present and matching, returns the remote tunnel plus the
// PDCP and NR-U sequence numbers to stamp on this packet, atomically
// advancing both counters for the next one (spec.md §4.6 step 4, §5
// "strictly increasing per slot").
func (e *Engine) NextDownlinkHeader(ueIPv4 net.IP) (Tunnel, uint16, uint32, bool) {
	slot := ueIPv4.To4()[3]

	e.dlMu.Lock()
	defer e.dlMu.Unlock()

	rule := e.dl[slot]
	if rule == nil || !rule.ueIPv4.Equal(ueIPv4) {
		return Tunnel{}, 0, 0, false
	}
	pdcpSN := rule.pdcpSN
	nrSN := rule.nrSN
	rule.pdcpSN++
	rule.nrSN++
	return rule.remoteTunnel, pdcpSN, nrSN, true
}

// CheckUplinkTEID reports whether teid matches the installed uplink rule
// for its slot (teid[3]).
func (e *Engine) CheckUplinkTEID(teid [4]byte) bool {
	slot := teid[3]

	e.ulMu.Lock()
	defer e.ulMu.Unlock()

	rule := e.ul[slot]
	return rule != nil && rule.localTEID == teid
}

// DeleteSession removes both the uplink and downlink rules for session.
func (e *Engine) DeleteSession(session Session) {
	e.ulMu.Lock()
	e.ul[session.Slot] = nil
	e.ulMu.Unlock()

	e.dlMu.Lock()
	e.dl[session.Slot] = nil
	e.dlMu.Unlock()

	e.pool.release(session.Slot)
}
