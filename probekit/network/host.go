package network

import (
	"context"

	"github.com/probeops/probekit/logger"
	cm "github.com/probeops/probekit/probekit/commandmanager"
	"github.com/probeops/probekit/probekit/common"
	"github.com/probeops/probekit/probekit/distro"
	"github.com/probeops/probekit/probekit/filemanager"
)

const sysClassNet = "/sys/class/net"

// Host represents one machine under test. For a remote hostname an SSH
// session is established at construction and every interface handle issued
// by the host shares it. Enumeration of the host's interfaces is best
// effort: a listing failure yields a host with no interfaces, not an error.
type Host struct {
	Hostname string

	cmdManager  cm.CommandManager
	fileManager filemanager.FileManager
	detector    distro.Detector
	log         logger.Logger
	interfaces  []*Interface

	port        int
	credentials common.Credentials
	dialer      cm.SSHDialer
}

// HostOption configures a Host before its session is established.
type HostOption func(*Host)

// WithPort sets the SSH port, 22 by default.
func WithPort(port int) HostOption {
	return func(h *Host) {
		h.port = port
	}
}

// WithUser sets the SSH user.
func WithUser(user string) HostOption {
	return func(h *Host) {
		h.credentials.User = user
	}
}

// WithPassword sets the SSH password.
func WithPassword(password string) HostOption {
	return func(h *Host) {
		h.credentials.Password = password
	}
}

// WithKeyPassphrase sets the passphrase for file-based SSH keys.
func WithKeyPassphrase(keyPassphrase string) HostOption {
	return func(h *Host) {
		h.credentials.KeyPassphrase = keyPassphrase
	}
}

// WithSudoPassword sets the password fed to sudo -S.
func WithSudoPassword(password string) HostOption {
	return func(h *Host) {
		h.credentials.SudoPassword = password
	}
}

// WithHostLogger substitutes the logger for the host and every interface
// handle it creates.
func WithHostLogger(l logger.Logger) HostOption {
	return func(h *Host) {
		h.log = l
	}
}

// WithHostDetector substitutes the distribution detector passed to interface
// handles.
func WithHostDetector(d distro.Detector) HostOption {
	return func(h *Host) {
		h.detector = d
	}
}

// WithDialer substitutes the SSH transport. Intended for tests.
func WithDialer(d cm.SSHDialer) HostOption {
	return func(h *Host) {
		h.dialer = d
	}
}

// WithCommandManager bypasses session establishment entirely and routes all
// commands through the given manager. Intended for tests.
func WithCommandManager(manager cm.CommandManager) HostOption {
	return func(h *Host) {
		h.cmdManager = manager
	}
}

// NewHost builds a handle on hostname and enumerates its network interfaces.
// A remote hostname gets its SSH session dialed here; a failure to establish
// it is a ConfigError.
func NewHost(ctx context.Context, hostname string, options ...HostOption) (*Host, error) {
	h := &Host{
		Hostname: hostname,
		log:      logger.New(),
	}
	for _, option := range options {
		option(h)
	}

	if h.cmdManager == nil {
		manager := &cm.UnixCommandManager{
			Hostname:    hostname,
			Port:        h.port,
			SSHClient:   h.dialer,
			Credentials: h.credentials,
		}
		if !isLocalHostname(hostname) {
			if err := manager.Connect(ctx); err != nil {
				return nil, &ConfigError{Msg: "connection not established to peer machine", Err: err}
			}
		}
		h.cmdManager = manager
	}

	h.fileManager = &filemanager.UnixFileManager{CommandManager: h.cmdManager}
	if h.detector == nil {
		h.detector = &distro.OSReleaseDetector{FileManager: h.fileManager}
	}

	h.enumerateInterfaces(ctx)
	return h, nil
}

// IsRemote reports whether the host is reached over an SSH session.
func (h *Host) IsRemote() bool {
	return h.cmdManager.IsRemote()
}

// Interfaces returns the interface handles enumerated at construction, in
// listing order.
func (h *Host) Interfaces() []*Interface {
	return h.interfaces
}

// Interface returns the handle for the named interface, if the host has one.
func (h *Host) Interface(name string) (*Interface, bool) {
	for _, iface := range h.interfaces {
		if iface.Name == name {
			return iface, true
		}
	}
	return nil, false
}

// CommandManager exposes the host's command execution capability so other
// inspection layers (disk, kernel) can share the session.
func (h *Host) CommandManager() cm.CommandManager {
	return h.cmdManager
}

// FileManager exposes the host's file access capability.
func (h *Host) FileManager() filemanager.FileManager {
	return h.fileManager
}

// Close releases the host's SSH session, if any.
func (h *Host) Close() error {
	if closer, ok := h.cmdManager.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (h *Host) enumerateInterfaces(ctx context.Context) {
	names, err := h.fileManager.ListDirectory(ctx, sysClassNet)
	if err != nil {
		// Best-effort enumeration: an unreachable /sys/class/net leaves the
		// host with no interface handles.
		h.log.Warn("could not list interfaces", "host", h.Hostname, "error", err)
		return
	}

	for _, name := range names {
		h.interfaces = append(h.interfaces, NewInterface(
			name,
			h.cmdManager,
			WithFileManager(h.fileManager),
			WithDetector(h.detector),
			WithLogger(h.log),
		))
	}
}

func isLocalHostname(hostname string) bool {
	return hostname == "" || hostname == "localhost" || hostname == "127.0.0.1"
}
