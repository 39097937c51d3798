package kernel

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	cm "github.com/probeops/probekit/probekit/commandmanager"
)

type MockCommandManager struct {
	Result cm.CommandResult
	Err    error
	Last   cm.CommandConfig
}

func (m *MockCommandManager) Run(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	m.Last = config
	return m.Result, m.Err
}

func (m *MockCommandManager) RunLocal(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) RunRemote(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	return m.Run(ctx, config)
}

func (m *MockCommandManager) IsRemote() bool { return false }

type MockFileManager struct {
	files map[string]string
}

func (m *MockFileManager) ReadFile(ctx context.Context, path string) (string, error) {
	content, ok := m.files[path]
	if !ok {
		return "", errors.New("no such file")
	}
	return content, nil
}

func (m *MockFileManager) WriteFile(ctx context.Context, path, content string, sudo bool) error {
	m.files[path] = content
	return nil
}

func (m *MockFileManager) MoveFile(ctx context.Context, sourcePath, destPath string, sudo bool) error {
	return errors.New("unused")
}

func (m *MockFileManager) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.files[path]
	return ok, nil
}

func (m *MockFileManager) ListDirectory(ctx context.Context, path string) ([]string, error) {
	return nil, errors.New("unused")
}

func TestClearDmesg(t *testing.T) {
	manager := &MockCommandManager{}
	assert.NoError(t, ClearDmesg(context.Background(), manager))
	assert.Equal(t, "dmesg", manager.Last.Command)
	assert.True(t, manager.Last.Sudo)

	manager.Result = cm.CommandResult{ExitCode: 1}
	err := ClearDmesg(context.Background(), manager)
	assert.Error(t, err)
	var dmesgErr *DmesgError
	assert.True(t, errors.As(err, &dmesgErr))
}

func TestCollectDmesg(t *testing.T) {
	manager := &MockCommandManager{
		Result: cm.CommandResult{STDOUT: "[0.000000] Linux version 6.1\n"},
	}

	path, err := CollectDmesg(context.Background(), manager, "")
	assert.NoError(t, err)
	defer os.Remove(path)

	assert.True(t, strings.HasPrefix(path, os.TempDir()))
	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "[0.000000] Linux version 6.1\n", string(content))
}

func TestVerifyPatternsDmesg(t *testing.T) {
	manager := &MockCommandManager{
		Result: cm.CommandResult{STDOUT: "line one\nOops: kernel bug\nline three\nHardware Error detected\n"},
	}

	matches, err := VerifyPatternsDmesg(context.Background(), manager, []string{"Oops", "Hardware Error"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Oops: kernel bug", "Hardware Error detected"}, matches)
}

func TestVerifyDmesgByLevel(t *testing.T) {
	manager := &MockCommandManager{Result: cm.CommandResult{STDOUT: "\n"}}
	assert.NoError(t, VerifyDmesgByLevel(context.Background(), manager, 5))
	assert.Equal(t, []string{"-T", "-l", "0,1,2,3,4"}, manager.Last.Args)

	manager.Result = cm.CommandResult{STDOUT: "[Mon] BUG: soft lockup\n"}
	err := VerifyDmesgByLevel(context.Background(), manager, 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "found failures in dmesg")
}

func TestSysctl(t *testing.T) {
	fm := &MockFileManager{files: map[string]string{
		"/proc/sys/net/ipv4/ip_forward": "0\n",
	}}

	value, err := Sysctl(context.Background(), fm, "net/ipv4/ip_forward", "")
	assert.NoError(t, err)
	assert.Equal(t, "0", value)

	value, err = Sysctl(context.Background(), fm, "net/ipv4/ip_forward", "1")
	assert.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestSysctlKernel(t *testing.T) {
	fm := &MockFileManager{files: map[string]string{
		"/proc/sys/kernel/panic": "10\n",
	}}

	value, err := SysctlKernel(context.Background(), fm, "panic", "")
	assert.NoError(t, err)
	assert.Equal(t, "10", value)
}
