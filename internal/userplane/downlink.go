package userplane

import (
	"encoding/binary"
	"io"
	"net"

	"go.uber.org/zap"
)

const (
	downlinkInnerOffset = 22
	ipv4HeaderLen        = 20
	maxPacket            = 2000
	gtpMessageTypeGPDU   = 0xFF
	nrupExtHeaderLen     = 8 // in bytes, encoded on the wire as /4 = 2
)

// DownlinkPipeline reads IPv4 packets from the N6 TUN device, classifies
// them by destination address, and forwards them GTP-U/NR-U/PDCP-encapsulated
// to the DU over the shared F1-U UDP socket, per spec.md §4.6.
type DownlinkPipeline struct {
	TUN    io.Reader
	Socket *net.UDPConn
	Engine *Engine
	Log    *zap.Logger
	Stats  *Stats
}

// Run consumes packets until the TUN read fails, then returns; spec.md §7
// treats that as the pipeline going out of service while control plane
// continues.
func (p *DownlinkPipeline) Run() {
	buf := make([]byte, maxPacket)
	for {
		if err := p.handleNext(buf); err != nil {
			p.Log.Warn("downlink pipeline exiting", zap.Error(err))
			return
		}
	}
}

func (p *DownlinkPipeline) handleNext(buf []byte) error {
	n, err := p.TUN.Read(buf[downlinkInnerOffset:maxPacket])
	if err != nil {
		return err
	}
	p.Stats.DownlinkRxPackets.Add(1)
	p.Stats.DownlinkRxBytes.Add(uint64(n))

	if n < ipv4HeaderLen {
		p.Stats.DownlinkDropTooShort.Add(1)
		return nil
	}

	ipHeader := buf[downlinkInnerOffset : downlinkInnerOffset+ipv4HeaderLen]
	dst := net.IPv4(ipHeader[16], ipHeader[17], ipHeader[18], ipHeader[19])

	tunnel, pdcpSN, nrSN, ok := p.Engine.NextDownlinkHeader(dst)
	if !ok {
		p.Stats.DownlinkDropUnknownUE.Add(1)
		return nil
	}

	gtpPayloadLen := uint16(n + downlinkInnerOffset - 8)
	buf[0] = 0x34 // version=1, PT=1, E=1, S=0, PN=0
	buf[1] = gtpMessageTypeGPDU
	binary.BigEndian.PutUint16(buf[2:4], gtpPayloadLen)
	copy(buf[4:8], tunnel.TEID[:])
	buf[8], buf[9], buf[10] = 0, 0, 0
	buf[11] = 0x84 // next extension header type = NR RAN container

	buf[12] = nrupExtHeaderLen / 4
	buf[13] = 0 // PDU type 0, DL User Data
	buf[14] = 0
	var nrSNBytes [4]byte
	binary.BigEndian.PutUint32(nrSNBytes[:], nrSN)
	buf[15], buf[16], buf[17] = nrSNBytes[1], nrSNBytes[2], nrSNBytes[3]
	buf[18] = 0
	buf[19] = 0 // next extension header type = none

	buf[20] = 0x80 | byte((pdcpSN>>8)&0x0f)
	buf[21] = byte(pdcpSN & 0xff)

	total := n + downlinkInnerOffset
	if _, err := p.Socket.WriteToUDP(buf[:total], &net.UDPAddr{IP: tunnel.IP, Port: GTPUPort}); err != nil {
		return err
	}
	p.Stats.DownlinkTxPackets.Add(1)
	p.Stats.DownlinkTxBytes.Add(uint64(total))
	return nil
}
