package f1ap

import (
	"fmt"
	"net"
	"sync"

	"github.com/ishidawataru/sctp"
)

// sctpPPID is the F1AP SCTP payload protocol identifier, TS 38.472 §5.
// The wire value 62 sits in the top 8 bits of the 32-bit PPID field the
// ishidawataru/sctp API expects, matching the convention used throughout
// the pack's SCTP call sites.
const sctpPPID = 62 << 24

// Port is the well-known F1-C SCTP port, TS 38.472 §5.
const Port = 38472

// Association is one SCTP association to a DU, carrying a stream of
// length-framed F1AP PDUs. ASN.1 aligned PER encoding/decoding of the PDUs
// themselves is assumed available externally (spec.md §1); Association only
// moves the encoded bytes.
type Association struct {
	ID   string
	conn *sctp.SCTPConn
	mu   sync.Mutex // serialises Send
}

// Send writes one already-encoded F1AP PDU to the association. Multiple UE
// tasks may call Send concurrently on the same Association; writes are
// serialised by a mutex (spec.md §5, "shared-socket write").
func (a *Association) Send(encoded []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	info := &sctp.SndRcvInfo{Stream: 0, PPID: sctpPPID}
	if _, err := a.conn.SCTPWrite(encoded, info); err != nil {
		return fmt.Errorf("f1ap: sctp write on association %s: %w", a.ID, err)
	}
	return nil
}

// Recv blocks for the next inbound message on the association.
func (a *Association) Recv(buf []byte) (int, error) {
	n, _, err := a.conn.SCTPRead(buf)
	if err != nil {
		return 0, fmt.Errorf("f1ap: sctp read on association %s: %w", a.ID, err)
	}
	return n, nil
}

func (a *Association) Close() error {
	return a.conn.Close()
}

// Listener accepts inbound F1-C associations from gNB-DUs.
type Listener struct {
	sctpListener *sctp.SCTPListener
	nextID       uint64
}

// Listen binds localIP:Port for F1-C.
func Listen(localIP net.IP) (*Listener, error) {
	addr := &sctp.SCTPAddr{
		IPAddrs: []net.IPAddr{{IP: localIP}},
		Port:    Port,
	}
	ln, err := sctp.ListenSCTP("sctp", addr)
	if err != nil {
		return nil, fmt.Errorf("f1ap: listen on %s:%d: %w", localIP, Port, err)
	}
	return &Listener{sctpListener: ln}, nil
}

// Accept blocks until a DU establishes a new association.
func (l *Listener) Accept() (*Association, error) {
	conn, err := l.sctpListener.AcceptSCTP()
	if err != nil {
		return nil, fmt.Errorf("f1ap: accept: %w", err)
	}
	l.nextID++
	conn.SubscribeEvents(sctp.SCTP_EVENT_DATA_IO)
	return &Association{ID: fmt.Sprintf("du-%d", l.nextID), conn: conn}, nil
}

func (l *Listener) Close() error {
	return l.sctpListener.Close()
}

// Codec decodes an ASN.1 aligned PER-encoded F1AP PDU into its Go
// representation, and encodes the reverse direction. The codec itself is
// out of this core's scope (spec.md §1, "assumed available"); Codec is the
// seam an external ASN.1 PER implementation plugs into.
type Codec interface {
	Decode(raw []byte) (PDU, error)
	Encode(pdu PDU) ([]byte, error)
}
