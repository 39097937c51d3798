package network

import (
	"fmt"

	"github.com/probeops/probekit/probekit/distro"
)

// IPConfig is the address assignment written into an ifcfg file.
type IPConfig struct {
	Address string
	Netmask string

	// InterfaceType is the TYPE= field on RHEL-family systems. Empty means
	// Ethernet.
	InterfaceType string
}

// ifcfgScheme is one distribution family's interface-configuration
// convention: where the ifcfg file lives and what goes into it. Keeping the
// families behind one interface keeps the dispatch exhaustive in schemeFor
// rather than scattered through string comparisons.
type ifcfgScheme interface {
	Path(iface string) string
	Render(iface string, conf IPConfig) string
}

type rhelScheme struct{}

func (rhelScheme) Path(iface string) string {
	return fmt.Sprintf("/etc/sysconfig/network-scripts/ifcfg-%s", iface)
}

func (rhelScheme) Render(iface string, conf IPConfig) string {
	ifaceType := conf.InterfaceType
	if ifaceType == "" {
		ifaceType = "Ethernet"
	}
	return fmt.Sprintf("TYPE=%s \n", ifaceType) +
		"BOOTPROTO=none \n" +
		fmt.Sprintf("NAME=%s \n", iface) +
		fmt.Sprintf("DEVICE=%s \n", iface) +
		"ONBOOT=yes \n" +
		fmt.Sprintf("IPADDR=%s \n", conf.Address) +
		fmt.Sprintf("NETMASK=%s \n", conf.Netmask) +
		"IPV6INIT=yes \n" +
		"IPV6_AUTOCONF=yes \n" +
		"IPV6_DEFROUTE=yes"
}

type suseScheme struct{}

func (suseScheme) Path(iface string) string {
	return fmt.Sprintf("/etc/sysconfig/network/ifcfg-%s", iface)
}

func (suseScheme) Render(iface string, conf IPConfig) string {
	return fmt.Sprintf("IPADDR=%s \n", conf.Address) +
		fmt.Sprintf("NETMASK='%s' \n", conf.Netmask) +
		"IPV6INIT=yes \n" +
		"IPV6_AUTOCONF=yes \n" +
		"IPV6_DEFROUTE=yes"
}

// schemeFor maps a distribution family to its ifcfg scheme. The second
// return is false for families this module cannot configure.
func schemeFor(family distro.Family) (ifcfgScheme, bool) {
	switch family {
	case distro.FamilyRHEL:
		return rhelScheme{}, true
	case distro.FamilySUSE:
		return suseScheme{}, true
	default:
		return nil, false
	}
}
