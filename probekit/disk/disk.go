// Package disk inspects block devices, partitions and filesystems of a host
// by parsing the standard Linux tooling (lsblk, fdisk) and proc files.
package disk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	cm "github.com/probeops/probekit/probekit/commandmanager"
	"github.com/probeops/probekit/probekit/filemanager"
)

// Error reports a failed disk inspection operation.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrMountPointNotFound reports that no /proc/mounts line matched the
// requested mount point.
var ErrMountPointNotFound = errors.New("mount point not found")

// Partition is the parsed metadata of one partition from `fdisk -l -u`
// output. All fields are kept as the textual tokens fdisk printed.
type Partition struct {
	Device  string
	Boot    string
	Start   string
	End     string
	Sectors string
	Size    string
	Id      string
	Type    string
}

// Disks returns the /dev paths of every top-level block device reported by
// lsblk.
func Disks(ctx context.Context, manager cm.CommandManager) ([]string, error) {
	result, err := manager.Run(ctx, cm.CommandConfig{
		Command: "lsblk",
		Args:    []string{"--json"},
	})
	if err != nil {
		return nil, &Error{Msg: "lsblk failed", Err: err}
	}

	var payload struct {
		Blockdevices []struct {
			Name string `json:"name"`
		} `json:"blockdevices"`
	}
	if err := json.Unmarshal([]byte(result.STDOUT), &payload); err != nil {
		return nil, &Error{Msg: "could not parse lsblk output", Err: err}
	}

	disks := make([]string, 0, len(payload.Blockdevices))
	for _, device := range payload.Blockdevices {
		disks = append(disks, "/dev/"+device.Name)
	}
	return disks, nil
}

// AvailableFilesystems returns the deduplicated filesystem types the kernel
// supports, from /proc/filesystems. The "nodev" marker is stripped.
func AvailableFilesystems(ctx context.Context, fm filemanager.FileManager) ([]string, error) {
	content, err := fm.ReadFile(ctx, "/proc/filesystems")
	if err != nil {
		return nil, &Error{Msg: "could not read /proc/filesystems", Err: err}
	}

	seen := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "nodev"))
		if name != "" {
			seen[name] = true
		}
	}

	filesystems := make([]string, 0, len(seen))
	for name := range seen {
		filesystems = append(filesystems, name)
	}
	sort.Strings(filesystems)
	return filesystems, nil
}

// FilesystemType returns the filesystem type mounted at mountPoint, from the
// first /proc/mounts line whose mount-point field matches exactly.
// ErrMountPointNotFound is returned when no line matches.
func FilesystemType(ctx context.Context, fm filemanager.FileManager, mountPoint string) (string, error) {
	if mountPoint == "" {
		mountPoint = "/"
	}

	content, err := fm.ReadFile(ctx, "/proc/mounts")
	if err != nil {
		return "", &Error{Msg: "could not read /proc/mounts", Err: err}
	}

	for _, line := range strings.Split(content, "\n") {
		// device, mount point, fs type, options, freq, passno
		fields := strings.Fields(line)
		if len(fields) != 6 {
			continue
		}
		if fields[1] == mountPoint {
			return fields[2], nil
		}
	}
	return "", fmt.Errorf("%q: %w", mountPoint, ErrMountPointNotFound)
}

// PartitionInfo parses the `fdisk -l -u` entry for the given partition
// device, e.g. /dev/sda3. Passing a whole disk is an error.
func PartitionInfo(ctx context.Context, manager cm.CommandManager, device string) (Partition, error) {
	disks, err := Disks(ctx, manager)
	if err != nil {
		return Partition{}, err
	}
	for _, disk := range disks {
		if disk == device {
			return Partition{}, &Error{Msg: fmt.Sprintf("%s is a whole disk, not a partition", device)}
		}
	}

	diskDevice := strings.TrimRight(device, "0123456789")
	result, err := manager.Run(ctx, cm.CommandConfig{
		Command: "fdisk",
		Args:    []string{"-l", "-u", diskDevice},
		Sudo:    true,
	})
	if err != nil {
		return Partition{}, &Error{Msg: fmt.Sprintf("fdisk -l -u %s failed", diskDevice), Err: err}
	}

	for _, line := range strings.Split(result.STDOUT, "\n") {
		if !strings.HasPrefix(line, device) {
			continue
		}
		partition, ok := parsePartitionLine(line)
		if !ok {
			continue
		}
		return partition, nil
	}
	return Partition{}, &Error{Msg: fmt.Sprintf("no partition entry for %s", device)}
}

// parsePartitionLine reconstructs the fixed 8-field record from one fdisk
// table row. The Boot column is only printed for bootable partitions, so a
// missing "*" shifts every later column left by one; overflow tokens beyond
// the Id column belong to the Type label (e.g. "Linux swap") and are
// re-joined.
func parsePartitionLine(line string) (Partition, bool) {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return Partition{}, false
	}

	var fields []string
	if tokens[1] == "*" {
		fields = tokens
	} else {
		fields = append([]string{tokens[0], ""}, tokens[1:]...)
	}
	if len(fields) < 8 {
		return Partition{}, false
	}

	return Partition{
		Device:  fields[0],
		Boot:    fields[1],
		Start:   fields[2],
		End:     fields[3],
		Sectors: fields[4],
		Size:    fields[5],
		Id:      fields[6],
		Type:    strings.Join(fields[7:], " "),
	}, true
}

// IsLinuxFSType reports whether the partition's MBR id is 83 (Linux).
func IsLinuxFSType(ctx context.Context, manager cm.CommandManager, device string) (bool, error) {
	partition, err := PartitionInfo(ctx, manager, device)
	if err != nil {
		return false, err
	}
	return partition.Id == "83", nil
}
