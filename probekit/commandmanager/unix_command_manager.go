package commandmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/probeops/probekit/probekit/common"
)

// SSHDialer abstracts ssh.Dial so tests can substitute a fake transport.
type SSHDialer interface {
	Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error)
}

// NetDialer is the production SSHDialer backed by golang.org/x/crypto/ssh.
type NetDialer struct{}

func (NetDialer) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	cfg := *config
	cfg.Timeout = timeout
	return ssh.Dial(network, addr, &cfg)
}

// UnixCommandManager runs commands against one Unix host. Commands execute
// locally unless Connect has established an SSH session, after which every
// Run goes through that session's client.
type UnixCommandManager struct {
	Hostname  string
	Port      int
	SSHClient SSHDialer
	common.Credentials

	client *ssh.Client
}

// Connect dials the host and holds the SSH client for the lifetime of the
// manager. Calling Connect on a local hostname is an error.
func (u *UnixCommandManager) Connect(ctx context.Context) error {
	if u.isLocal() {
		return fmt.Errorf("cannot open a remote session to local host %q", u.Hostname)
	}
	if u.SSHClient == nil {
		u.SSHClient = NetDialer{}
	}

	sshConfig, err := u.getSSHConfig()
	if err != nil {
		return err
	}

	dialTimeout := 30 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		dialTimeout = time.Until(deadline)
	}

	port := u.Port
	if port == 0 {
		port = 22
	}

	client, err := u.SSHClient.Dial("tcp", fmt.Sprintf("%s:%d", u.Hostname, port), sshConfig, dialTimeout)
	if err != nil {
		return fmt.Errorf("ssh dial %s: %w", u.Hostname, err)
	}
	u.client = client
	return nil
}

// Close tears down the SSH session, if one was established.
func (u *UnixCommandManager) Close() error {
	if u.client == nil {
		return nil
	}
	err := u.client.Close()
	u.client = nil
	return err
}

func (u *UnixCommandManager) IsRemote() bool {
	return u.client != nil
}

func (u *UnixCommandManager) Run(ctx context.Context, config CommandConfig) (CommandResult, error) {
	if u.IsRemote() {
		slog.Debug("Running remote command", "hostname", u.Hostname, "command", config.Command)
		return u.RunRemote(ctx, config)
	}
	slog.Debug("Running local command", "hostname", u.Hostname, "command", config.Command)
	return u.RunLocal(ctx, config)
}

func (u *UnixCommandManager) RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, config.Command, config.Args...)
	stdin := config.Stdin
	if config.Sudo {
		cmdArgs := append([]string{"sudo", "-S", config.Command}, config.Args...)
		cmd = exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
		stdin = u.SudoPassword + "\n" + config.Stdin
	}
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		Command:   config.Command,
		STDOUT:    stdout.String(),
		STDERR:    stderr.String(),
		ExitCode:  getExitCode(err),
		Duration:  time.Since(start),
		Timestamp: start,
	}

	if sudoErr := checkSudoOutput(result); sudoErr != nil {
		return result, sudoErr
	}
	return finishResult(result, err, config)
}

func (u *UnixCommandManager) RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error) {
	if u.client == nil {
		return CommandResult{}, errors.New("no remote session established, call Connect first")
	}

	session, err := u.client.NewSession()
	if err != nil {
		return CommandResult{}, fmt.Errorf("open ssh session on %s: %w", u.Hostname, err)
	}
	defer session.Close()

	cmdStr := config.Command
	if len(config.Args) > 0 {
		cmdStr = cmdStr + " " + strings.Join(config.Args, " ")
	}

	stdin := config.Stdin
	if config.Sudo {
		cmdStr = "sudo -S " + cmdStr
		stdin = u.SudoPassword + "\n" + config.Stdin
	}
	if stdin != "" {
		session.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr strings.Builder
	session.Stdout = &stdout
	session.Stderr = &stderr

	start := time.Now()

	outputCh := make(chan error, 1)
	go func() {
		outputCh <- session.Run(cmdStr)
	}()

	select {
	case runErr := <-outputCh:
		result := CommandResult{
			Command:   cmdStr,
			STDOUT:    stdout.String(),
			STDERR:    stderr.String(),
			ExitCode:  getExitCode(runErr),
			Duration:  time.Since(start),
			Timestamp: start,
		}
		if runErr != nil {
			slog.Debug("Remote command exited non-zero", "hostname", u.Hostname, "command", cmdStr, "exitcode", result.ExitCode, "stderr", result.STDERR)
		}
		if sudoErr := checkSudoOutput(result); sudoErr != nil {
			return result, sudoErr
		}
		return finishResult(result, runErr, config)

	case <-ctx.Done():
		slog.Error("Remote command timed out", "hostname", u.Hostname, "command", cmdStr)
		return CommandResult{}, ctx.Err()
	}
}

func (u *UnixCommandManager) isLocal() bool {
	return u.Hostname == "" || u.Hostname == "localhost" || u.Hostname == "127.0.0.1"
}

func (u *UnixCommandManager) getSSHConfig() (*ssh.ClientConfig, error) {
	var authMethod ssh.AuthMethod

	if u.Password != "" {
		slog.Debug("Using password authentication", "hostname", u.Hostname)
		authMethod = ssh.Password(u.Password)
	} else {
		slog.Debug("Using public key authentication", "hostname", u.Hostname)
		var keyManager SSHKeyManager
		if u.KeyPassphrase != "" {
			keyManager = FileSSHKeyManager{}
		} else {
			keyManager = AgentSSHKeyManager{}
		}

		keys, err := keyManager.ReadPrivateKeys(u.KeyPassphrase)
		if err != nil {
			return nil, err
		}

		authMethod = ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
			return keys, nil
		})
	}

	return &ssh.ClientConfig{
		User:            u.User,
		Auth:            []ssh.AuthMethod{authMethod},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}, nil
}

// finishResult applies the IgnoreStatus policy: an exit-status error becomes a
// normal result, anything else propagates.
func finishResult(result CommandResult, err error, config CommandConfig) (CommandResult, error) {
	if err == nil {
		return result, nil
	}
	var exitErr *exec.ExitError
	var sshExitErr *ssh.ExitError
	if errors.As(err, &exitErr) || errors.As(err, &sshExitErr) {
		if config.IgnoreStatus {
			return result, nil
		}
		return result, fmt.Errorf("%s exited with status %d: %w", result.Command, result.ExitCode, err)
	}
	return result, err
}

func checkSudoOutput(result CommandResult) error {
	if strings.Contains(result.STDOUT, "incorrect password") {
		return errors.New("sudo: incorrect password provided")
	}
	if strings.Contains(result.STDOUT, "is not in the sudoers file") {
		return errors.New("sudo: user is not in the sudoers file")
	}
	return nil
}

func getExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	var sshExitErr *ssh.ExitError
	if errors.As(err, &sshExitErr) {
		return sshExitErr.ExitStatus()
	}
	return -1
}
