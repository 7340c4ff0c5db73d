package userplane

import (
	"fmt"
	"os"

	"github.com/vishvananda/netlink"
)

// OpenTUN creates (or reuses) a TUN device named name and brings it up. No
// TAP, no per-packet info prefix, matching spec.md §6. The operator is
// responsible for configuring its IP/route (spec.md §6, "TUN device / N6").
// Grounded on AlohaLuo-gnbsim-backup/cmd/gnbsim_netlink.go's addTunnel.
func OpenTUN(name string) (*os.File, error) {
	tun := &netlink.Tuntap{
		LinkAttrs: netlink.LinkAttrs{Name: name},
		Mode:      netlink.TUNTAP_MODE_TUN,
		Flags:     netlink.TUNTAP_DEFAULTS | netlink.TUNTAP_NO_PI,
		Queues:    1,
	}

	if err := netlink.LinkAdd(tun); err != nil {
		return nil, fmt.Errorf("userplane: add tun device %q: %w", name, err)
	}
	if err := netlink.LinkSetUp(tun); err != nil {
		return nil, fmt.Errorf("userplane: bring up tun device %q: %w", name, err)
	}
	if len(tun.Fds) == 0 {
		return nil, fmt.Errorf("userplane: tun device %q produced no file descriptor", name)
	}
	return tun.Fds[0], nil
}
