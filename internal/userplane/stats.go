package userplane

import "sync/atomic"

// GTPUPort is the well-known F1-U UDP port, TS 29.281.
const GTPUPort = 2152

// Stats holds the drop-reason and rx/tx counters spec.md §4.6 requires be
// emitted every five seconds. Fields are exported so internal/metrics can
// read them for its five-second log line and its Prometheus packet/byte
// counters without duplicating the counting.
type Stats struct {
	DownlinkRxPackets    atomic.Uint64
	DownlinkRxBytes      atomic.Uint64
	DownlinkTxPackets    atomic.Uint64
	DownlinkTxBytes      atomic.Uint64
	DownlinkDropTooShort atomic.Uint64
	DownlinkDropUnknownUE atomic.Uint64

	UplinkRxPackets       atomic.Uint64
	UplinkRxBytes         atomic.Uint64
	UplinkTxPackets       atomic.Uint64
	UplinkDropTooShort    atomic.Uint64
	UplinkDropBadGTPType  atomic.Uint64
	UplinkDropBadPDCP     atomic.Uint64
	UplinkDropBadSDAP     atomic.Uint64
	UplinkDropNotIPv4     atomic.Uint64
	UplinkDropUnknownTEID atomic.Uint64
	UplinkDropExtHeader   atomic.Uint64
}
