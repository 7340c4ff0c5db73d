package userplane

import (
	"io"
	"net"

	"go.uber.org/zap"
)

const uplinkMinLen = 8 + 2 + 1 + 20 // base GTP header + PDCP + SDAP + IPv4

// UplinkPipeline reads GTP-U/NR-U/PDCP/SDAP-framed frames from the shared
// F1-U UDP socket, validates and strips their headers, and writes the inner
// IPv4 datagram to the N6 TUN device, per spec.md §4.6.
type UplinkPipeline struct {
	Socket *net.UDPConn
	TUN    io.Writer
	Engine *Engine
	Log    *zap.Logger
	Stats  *Stats
}

// Run consumes frames until the socket read fails, then returns.
func (p *UplinkPipeline) Run() {
	buf := make([]byte, maxPacket)
	for {
		if err := p.handleNext(buf); err != nil {
			p.Log.Warn("uplink pipeline exiting", zap.Error(err))
			return
		}
	}
}

func (p *UplinkPipeline) handleNext(buf []byte) error {
	n, _, err := p.Socket.ReadFromUDP(buf)
	if err != nil {
		return err
	}
	return p.handleFrame(buf, n)
}

// handleFrame validates and forwards a single frame already sitting in
// buf[:n]. Split out from handleNext so tests can drive it without a real
// UDP socket.
func (p *UplinkPipeline) handleFrame(buf []byte, n int) error {
	p.Stats.UplinkRxPackets.Add(1)
	p.Stats.UplinkRxBytes.Add(uint64(n))

	if n < uplinkMinLen {
		p.Stats.UplinkDropTooShort.Add(1)
		return nil
	}
	if buf[1] != gtpMessageTypeGPDU {
		p.Stats.UplinkDropBadGTPType.Add(1)
		return nil
	}

	var offset int
	if buf[0] == 0x30 {
		offset = 8
	} else {
		offset = 12
		nextExtType := buf[11]
		for nextExtType != 0 {
			if offset >= n {
				p.Stats.UplinkDropExtHeader.Add(1)
				return nil
			}
			extLen := int(buf[offset]) * 4
			if extLen == 0 || offset+extLen > n {
				p.Stats.UplinkDropExtHeader.Add(1)
				return nil
			}
			nextExtType = buf[offset+extLen-1]
			offset += extLen
		}
	}

	if offset >= n || buf[offset]&0x80 == 0 {
		p.Stats.UplinkDropBadPDCP.Add(1)
		return nil
	}
	offset += 2 // PDCP Data PDU header, 12-bit SN

	if offset >= n || buf[offset]&0x80 == 0 {
		p.Stats.UplinkDropBadSDAP.Add(1)
		return nil
	}
	offset += 1 // SDAP Data PDU header

	if offset >= n || buf[offset]&0xf0 != 0x40 {
		p.Stats.UplinkDropNotIPv4.Add(1)
		return nil
	}

	var teid [4]byte
	copy(teid[:], buf[4:8])
	if !p.Engine.CheckUplinkTEID(teid) {
		p.Stats.UplinkDropUnknownTEID.Add(1)
		return nil
	}

	if _, err := p.TUN.Write(buf[offset:n]); err != nil {
		return err
	}
	p.Stats.UplinkTxPackets.Add(1)
	return nil
}
