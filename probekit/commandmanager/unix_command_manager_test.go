package commandmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/probeops/probekit/probekit/common"
)

type MockSSHDialer struct {
	dialError error
}

func (m *MockSSHDialer) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	return nil, m.dialError
}

func TestRunLocal(t *testing.T) {
	manager := UnixCommandManager{
		Hostname: "localhost",
		Credentials: common.Credentials{
			SudoPassword: "correct",
		},
	}

	config := CommandConfig{
		Command: "echo",
		Args:    []string{"hello"},
	}

	result, err := manager.RunLocal(context.Background(), config)
	if err != nil {
		t.Fatalf("RunLocal failed: %v", err)
	}
	if result.STDOUT != "hello\n" {
		t.Errorf("Expected stdout 'hello\\n', got %q", result.STDOUT)
	}
	if result.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", result.ExitCode)
	}
}

func TestRunLocalIgnoreStatus(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	config := CommandConfig{
		Command:      "false",
		IgnoreStatus: true,
	}

	result, err := manager.RunLocal(context.Background(), config)
	if err != nil {
		t.Fatalf("Expected non-zero exit to be ignored, got error: %v", err)
	}
	if result.ExitCode == 0 {
		t.Errorf("Expected non-zero exit code, got 0")
	}
}

func TestRunLocalNonZeroExit(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	_, err := manager.RunLocal(context.Background(), CommandConfig{Command: "false"})
	if err == nil {
		t.Fatalf("Expected an error for non-zero exit without IgnoreStatus")
	}
}

func TestIsLocal(t *testing.T) {
	manager := UnixCommandManager{
		Hostname: "localhost",
	}

	if !manager.isLocal() {
		t.Errorf("Expected isLocal to return true for localhost")
	}

	manager.Hostname = "example.com"
	if manager.isLocal() {
		t.Errorf("Expected isLocal to return false for example.com")
	}
}

func TestConnectDialError(t *testing.T) {
	manager := UnixCommandManager{
		Hostname:  "remote",
		SSHClient: &MockSSHDialer{dialError: errors.New("mock dial error")},
		Credentials: common.Credentials{
			User:     "user",
			Password: "password",
		},
	}

	err := manager.Connect(context.Background())
	if err == nil || err.Error() != "ssh dial remote: mock dial error" {
		t.Errorf("Expected Connect to wrap the mock dial error, got %v", err)
	}
	if manager.IsRemote() {
		t.Errorf("Expected IsRemote to stay false after failed Connect")
	}
}

func TestConnectLocalHostname(t *testing.T) {
	manager := UnixCommandManager{Hostname: "localhost"}

	if err := manager.Connect(context.Background()); err == nil {
		t.Errorf("Expected Connect to refuse a local hostname")
	}
}

func TestRunRemoteWithoutSession(t *testing.T) {
	manager := UnixCommandManager{Hostname: "remote"}

	_, err := manager.RunRemote(context.Background(), CommandConfig{Command: "ls"})
	if err == nil {
		t.Errorf("Expected RunRemote to fail without an established session")
	}
}
