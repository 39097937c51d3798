package filemanager

import (
	"context"
	"errors"
	"testing"

	cm "github.com/probeops/probekit/probekit/commandmanager"
)

type MockCommandManager struct {
	Result     cm.CommandResult
	Err        error
	LastConfig cm.CommandConfig
}

func (m *MockCommandManager) RunLocal(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) RunRemote(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) Run(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	m.LastConfig = config
	return m.Result, m.Err
}

func (m *MockCommandManager) IsRemote() bool { return false }

func TestReadFile(t *testing.T) {
	mockCmd := &MockCommandManager{
		Result: cm.CommandResult{STDOUT: "up\n"},
	}
	manager := UnixFileManager{CommandManager: mockCmd}

	content, err := manager.ReadFile(context.Background(), "/sys/class/net/eth0/operstate")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if content != "up\n" {
		t.Errorf("Expected 'up\\n', got %q", content)
	}
	if mockCmd.LastConfig.Command != "cat" {
		t.Errorf("Expected cat, got %q", mockCmd.LastConfig.Command)
	}
}

func TestWriteFileUsesStdin(t *testing.T) {
	mockCmd := &MockCommandManager{}
	manager := UnixFileManager{CommandManager: mockCmd}

	err := manager.WriteFile(context.Background(), "/etc/sysconfig/network/ifcfg-eth0", "IPADDR=10.0.0.2\n", true)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if mockCmd.LastConfig.Command != "tee" {
		t.Errorf("Expected tee, got %q", mockCmd.LastConfig.Command)
	}
	if mockCmd.LastConfig.Stdin != "IPADDR=10.0.0.2\n" {
		t.Errorf("Expected content on stdin, got %q", mockCmd.LastConfig.Stdin)
	}
	if !mockCmd.LastConfig.Sudo {
		t.Errorf("Expected sudo write")
	}
}

func TestExists(t *testing.T) {
	mockCmd := &MockCommandManager{
		Result: cm.CommandResult{ExitCode: 1},
	}
	manager := UnixFileManager{CommandManager: mockCmd}

	exists, err := manager.Exists(context.Background(), "/no/such/path")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if exists {
		t.Errorf("Expected false for exit code 1")
	}
	if !mockCmd.LastConfig.IgnoreStatus {
		t.Errorf("Expected test -e to ignore its exit status")
	}
}

func TestListDirectory(t *testing.T) {
	mockCmd := &MockCommandManager{
		Result: cm.CommandResult{STDOUT: "eth0\nlo\n\n"},
	}
	manager := UnixFileManager{CommandManager: mockCmd}

	entries, err := manager.ListDirectory(context.Background(), "/sys/class/net")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(entries) != 2 || entries[0] != "eth0" || entries[1] != "lo" {
		t.Errorf("Expected [eth0 lo], got %v", entries)
	}
}

func TestListDirectoryError(t *testing.T) {
	mockCmd := &MockCommandManager{
		Err: errors.New("mock error"),
	}
	manager := UnixFileManager{CommandManager: mockCmd}

	_, err := manager.ListDirectory(context.Background(), "/sys/class/net")
	if err == nil || err.Error() != "mock error" {
		t.Errorf("Expected mock error, got: %v", err)
	}
}
