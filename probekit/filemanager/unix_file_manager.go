package filemanager

import (
	"context"
	"strings"

	cm "github.com/probeops/probekit/probekit/commandmanager"
)

// UnixFileManager implements FileManager with the ordinary Unix userland
// (cat, tee, mv, test, ls), so it behaves identically over SSH and locally.
type UnixFileManager struct {
	CommandManager cm.CommandManager
}

func (ufm *UnixFileManager) ReadFile(ctx context.Context, path string) (string, error) {
	result, err := ufm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "cat",
		Args:    []string{path},
	})
	if err != nil {
		return "", err
	}
	return result.STDOUT, nil
}

func (ufm *UnixFileManager) WriteFile(ctx context.Context, path, content string, sudo bool) error {
	// tee reads the payload from stdin, which keeps quoting out of the
	// command line and works with sudo -S.
	_, err := ufm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "tee",
		Args:    []string{path},
		Stdin:   content,
		Sudo:    sudo,
	})
	return err
}

func (ufm *UnixFileManager) MoveFile(ctx context.Context, sourcePath, destPath string, sudo bool) error {
	_, err := ufm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "mv",
		Args:    []string{sourcePath, destPath},
		Sudo:    sudo,
	})
	return err
}

func (ufm *UnixFileManager) Exists(ctx context.Context, path string) (bool, error) {
	result, err := ufm.CommandManager.Run(ctx, cm.CommandConfig{
		Command:      "test",
		Args:         []string{"-e", path},
		IgnoreStatus: true,
	})
	if err != nil {
		return false, err
	}
	return result.ExitCode == 0, nil
}

func (ufm *UnixFileManager) ListDirectory(ctx context.Context, path string) ([]string, error) {
	result, err := ufm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: "ls",
		Args:    []string{"-1", path},
	})
	if err != nil {
		return nil, err
	}

	var entries []string
	for _, line := range strings.Split(result.STDOUT, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}
