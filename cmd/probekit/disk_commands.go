package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/probeops/probekit/probekit/disk"
	"github.com/probeops/probekit/probekit/kernel"
	"github.com/probeops/probekit/probekit/network"
)

var disksCmd = &cobra.Command{
	Use:   "disks",
	Short: "List the host's block devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			disks, err := disk.Disks(cmd.Context(), host.CommandManager())
			if err != nil {
				return err
			}
			for _, device := range disks {
				fmt.Printf("%s: %s\n", host.Hostname, device)
			}
			return nil
		})
	},
}

var fsinfoCmd = &cobra.Command{
	Use:   "fsinfo [mountpoint]",
	Short: "Show the filesystem type of a mount point",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mountPoint := "/"
		if len(args) == 1 {
			mountPoint = args[0]
		}
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			fsType, err := disk.FilesystemType(cmd.Context(), host.FileManager(), mountPoint)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s is %s\n", host.Hostname, mountPoint, fsType)

			if !host.IsRemote() {
				free, err := disk.FreeSpace(mountPoint)
				if err != nil {
					return err
				}
				blockSize, err := disk.BlockSize(mountPoint)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d bytes free, block size %d\n", host.Hostname, free, blockSize)
			}
			return nil
		})
	},
}

var filesystemsCmd = &cobra.Command{
	Use:   "filesystems",
	Short: "List the filesystem types the host kernel supports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			filesystems, err := disk.AvailableFilesystems(cmd.Context(), host.FileManager())
			if err != nil {
				return err
			}
			for _, fs := range filesystems {
				fmt.Printf("%s: %s\n", host.Hostname, fs)
			}
			return nil
		})
	},
}

var partitionCmd = &cobra.Command{
	Use:   "partition <device>",
	Short: "Show fdisk metadata for a partition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			partition, err := disk.PartitionInfo(cmd.Context(), host.CommandManager(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: Device=%s Boot=%q Start=%s End=%s Sectors=%s Size=%s Id=%s Type=%q\n",
				host.Hostname, partition.Device, partition.Boot, partition.Start,
				partition.End, partition.Sectors, partition.Size, partition.Id, partition.Type)
			return nil
		})
	},
}

var dmesgLevel int

var dmesgCheckCmd = &cobra.Command{
	Use:   "dmesg-check",
	Short: "Fail when dmesg holds messages at or above a severity level",
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachHost(cmd.Context(), func(host *network.Host) error {
			return kernel.VerifyDmesgByLevel(cmd.Context(), host.CommandManager(), dmesgLevel)
		})
	},
}

func init() {
	dmesgCheckCmd.Flags().IntVar(&dmesgLevel, "level", 5, "Highest severity level tolerated (1=emerg .. 5=warn)")

	rootCmd.AddCommand(disksCmd, fsinfoCmd, filesystemsCmd, partitionCmd, dmesgCheckCmd)
}
