package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/probeops/probekit/probekit/network"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List network interfaces and their link state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			fmt.Printf("%s (remote=%v)\n", host.Hostname, host.IsRemote())
			for _, iface := range host.Interfaces() {
				status, err := iface.LinkStatus(cmd.Context())
				if err != nil {
					status = "unreadable"
				}
				fmt.Printf("  %-12s %s\n", iface.Name, status)
			}
			return nil
		})
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <interface>",
	Short: "Show whether an interface link is up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			iface, ok := host.Interface(args[0])
			if !ok {
				return fmt.Errorf("host %s has no interface %s", host.Hostname, args[0])
			}
			fmt.Printf("%s: up=%v\n", iface.Name, iface.IsLinkUp(cmd.Context()))
			return nil
		})
	},
}

var (
	pingCount  int
	pingFlood  bool
	pingOption string
)

var pingCmd = &cobra.Command{
	Use:   "ping <interface> <peer-ip>",
	Short: "Ping a peer through an interface",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			iface, ok := host.Interface(args[0])
			if !ok {
				return fmt.Errorf("host %s has no interface %s", host.Hostname, args[0])
			}
			if !iface.PingCheck(cmd.Context(), args[1], pingCount, pingOption, pingFlood) {
				return fmt.Errorf("%s: peer %s unreachable via %s", host.Hostname, args[1], iface.Name)
			}
			fmt.Printf("%s: peer %s reachable via %s\n", host.Hostname, args[1], iface.Name)
			return nil
		})
	},
}

var mtuCmd = &cobra.Command{
	Use:   "mtu <interface> <size>",
	Short: "Set an interface MTU and wait for it to take effect",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mtu, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid mtu %q: %w", args[1], err)
		}
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			iface, ok := host.Interface(args[0])
			if !ok {
				return fmt.Errorf("host %s has no interface %s", host.Hostname, args[0])
			}
			if err := iface.SetMTU(cmd.Context(), mtu); err != nil {
				return err
			}
			fmt.Printf("%s: %s mtu set to %d\n", host.Hostname, iface.Name, mtu)
			return nil
		})
	},
}

var setIPType string

var setIPCmd = &cobra.Command{
	Use:   "set-ip <interface> <address> <netmask>",
	Short: "Write the distro's ifcfg file for an interface and bring it up",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			iface, ok := host.Interface(args[0])
			if !ok {
				return fmt.Errorf("host %s has no interface %s", host.Hostname, args[0])
			}
			return iface.SetIP(cmd.Context(), network.IPConfig{
				Address:       args[1],
				Netmask:       args[2],
				InterfaceType: setIPType,
			})
		})
	},
}

var unsetIPCmd = &cobra.Command{
	Use:   "unset-ip <interface>",
	Short: "Bring an interface down and restore its backed-up ifcfg file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			iface, ok := host.Interface(args[0])
			if !ok {
				return fmt.Errorf("host %s has no interface %s", host.Hostname, args[0])
			}
			return iface.UnsetIP(cmd.Context())
		})
	},
}

func init() {
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of echo requests")
	pingCmd.Flags().BoolVar(&pingFlood, "flood", false, "Flood ping")
	pingCmd.Flags().StringVar(&pingOption, "option", "", "Extra ping options")
	setIPCmd.Flags().StringVar(&setIPType, "type", "", "Interface TYPE field (RHEL family), default Ethernet")

	rootCmd.AddCommand(interfacesCmd, linkCmd, pingCmd, mtuCmd, setIPCmd, unsetIPCmd)
}
