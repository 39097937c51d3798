package commandmanager

import (
	"context"
	"time"
)

// CommandConfig describes one command invocation.
type CommandConfig struct {
	Command string
	Args    []string

	// Stdin is fed to the command after the sudo password, when Sudo is set.
	Stdin string

	// Sudo runs the command through `sudo -S`, with the password on stdin.
	Sudo bool

	// IgnoreStatus makes a non-zero exit code a normal result instead of an
	// error. Callers inspect CommandResult.ExitCode themselves.
	IgnoreStatus bool
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	STDOUT    string
	STDERR    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// CommandManager provides methods to execute commands, both locally and
// through a persistent remote session.
type CommandManager interface {
	// Run dispatches to RunLocal or RunRemote depending on whether a remote
	// session is held.
	Run(ctx context.Context, config CommandConfig) (CommandResult, error)

	// RunLocal executes a command on the local system.
	RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error)

	// RunRemote executes a command on a remote system via SSH.
	RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error)

	// IsRemote reports whether commands are routed over an SSH session.
	IsRemote() bool
}
