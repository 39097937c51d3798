// Package kernel holds the kernel-facing harness helpers: dmesg capture and
// inspection plus sysctl access through /proc/sys.
package kernel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	cm "github.com/probeops/probekit/probekit/commandmanager"
	"github.com/probeops/probekit/probekit/filemanager"
)

// DmesgError reports a failed dmesg operation.
type DmesgError struct {
	Msg string
	Err error
}

func (e *DmesgError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DmesgError) Unwrap() error {
	return e.Err
}

// ClearDmesg empties the kernel ring buffer. Requires sudo on the target.
func ClearDmesg(ctx context.Context, manager cm.CommandManager) error {
	result, err := manager.Run(ctx, cm.CommandConfig{
		Command:      "dmesg",
		Args:         []string{"-c"},
		Sudo:         true,
		IgnoreStatus: true,
	})
	if err != nil {
		return &DmesgError{Msg: "unable to clear dmesg", Err: err}
	}
	if result.ExitCode != 0 {
		return &DmesgError{Msg: fmt.Sprintf("unable to clear dmesg, exit status %d", result.ExitCode)}
	}
	return nil
}

// CollectDmesg snapshots the kernel ring buffer into outputFile and returns
// the path written. An empty outputFile gets a unique file under the system
// temp directory.
func CollectDmesg(ctx context.Context, manager cm.CommandManager, outputFile string) (string, error) {
	if outputFile == "" {
		outputFile = filepath.Join(os.TempDir(), fmt.Sprintf("dmesg-%s.log", uuid.NewString()))
	}

	result, err := manager.Run(ctx, cm.CommandConfig{
		Command:      "dmesg",
		Sudo:         true,
		IgnoreStatus: true,
	})
	if err != nil {
		return "", &DmesgError{Msg: "unable to collect dmesg", Err: err}
	}

	if err := os.WriteFile(outputFile, []byte(result.STDOUT), 0o644); err != nil {
		return "", &DmesgError{Msg: "unable to save dmesg snapshot", Err: err}
	}
	return outputFile, nil
}

// VerifyPatternsDmesg returns every current dmesg line containing any of the
// given patterns.
func VerifyPatternsDmesg(ctx context.Context, manager cm.CommandManager, patterns []string) ([]string, error) {
	result, err := manager.Run(ctx, cm.CommandConfig{
		Command:      "dmesg",
		Sudo:         true,
		IgnoreStatus: true,
	})
	if err != nil {
		return nil, &DmesgError{Msg: "unable to read dmesg", Err: err}
	}

	var matches []string
	for _, line := range strings.Split(result.STDOUT, "\n") {
		for _, pattern := range patterns {
			if strings.Contains(line, pattern) {
				matches = append(matches, line)
				break
			}
		}
	}
	return matches, nil
}

// VerifyDmesgByLevel fails with a DmesgError when the ring buffer holds any
// message at or above the given severity (1=emerg .. 5=warn).
func VerifyDmesgByLevel(ctx context.Context, manager cm.CommandManager, levelCheck int) error {
	levels := make([]string, 0, levelCheck)
	for level := 0; level < levelCheck; level++ {
		levels = append(levels, fmt.Sprintf("%d", level))
	}

	result, err := manager.Run(ctx, cm.CommandConfig{
		Command:      "dmesg",
		Args:         []string{"-T", "-l", strings.Join(levels, ",")},
		Sudo:         true,
		IgnoreStatus: true,
	})
	if err != nil {
		return &DmesgError{Msg: "unable to read dmesg", Err: err}
	}

	if strings.TrimSpace(result.STDOUT) != "" {
		return &DmesgError{Msg: fmt.Sprintf("found failures in dmesg:\n%s", result.STDOUT)}
	}
	return nil
}

// Sysctl reads, and when value is non-empty writes, the sysctl at key (a
// path under /proc/sys, e.g. "net/ipv4/ip_forward"). It returns the value
// after the operation.
func Sysctl(ctx context.Context, fm filemanager.FileManager, key, value string) (string, error) {
	path := "/proc/sys/" + key
	if value != "" {
		if err := fm.WriteFile(ctx, path, value+"\n", true); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	content, err := fm.ReadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return strings.TrimSpace(content), nil
}

// SysctlKernel is Sysctl scoped under the kernel namespace.
func SysctlKernel(ctx context.Context, fm filemanager.FileManager, key, value string) (string, error) {
	return Sysctl(ctx, fm, "kernel/"+key, value)
}
