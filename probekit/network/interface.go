package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/probeops/probekit/logger"
	cm "github.com/probeops/probekit/probekit/commandmanager"
	"github.com/probeops/probekit/probekit/distro"
	"github.com/probeops/probekit/probekit/filemanager"
	"github.com/probeops/probekit/probekit/waitfor"
)

// ErrNoAddress reports that an interface has no address of the requested
// family configured. That is a normal condition for an unconfigured
// interface, so callers check it with errors.Is rather than treating it as a
// usage error.
var ErrNoAddress = errors.New("no address configured")

// DefaultMTUTimeout bounds how long SetMTU waits for the new MTU to take
// effect and the link to come back up.
const DefaultMTUTimeout = 120 * time.Second

// Interface is a stateless handle on one named network interface of a host,
// local or remote depending on the command manager behind it. It holds no
// state of its own; everything it reports comes from the OS at call time.
type Interface struct {
	Name string

	cmdManager  cm.CommandManager
	fileManager filemanager.FileManager
	detector    distro.Detector
	log         logger.Logger
	mtuTimeout  time.Duration
}

// InterfaceOption customizes an Interface handle.
type InterfaceOption func(*Interface)

// WithFileManager substitutes the file-access layer.
func WithFileManager(fm filemanager.FileManager) InterfaceOption {
	return func(i *Interface) {
		i.fileManager = fm
	}
}

// WithDetector substitutes the distribution detector.
func WithDetector(d distro.Detector) InterfaceOption {
	return func(i *Interface) {
		i.detector = d
	}
}

// WithLogger substitutes the logger.
func WithLogger(l logger.Logger) InterfaceOption {
	return func(i *Interface) {
		i.log = l
	}
}

// WithMTUTimeout overrides the SetMTU convergence timeout.
func WithMTUTimeout(d time.Duration) InterfaceOption {
	return func(i *Interface) {
		i.mtuTimeout = d
	}
}

// NewInterface returns a handle on the named interface, issuing every
// operation through manager.
func NewInterface(name string, manager cm.CommandManager, options ...InterfaceOption) *Interface {
	iface := &Interface{
		Name:       name,
		cmdManager: manager,
		log:        logger.New(),
		mtuTimeout: DefaultMTUTimeout,
	}
	for _, option := range options {
		option(iface)
	}
	if iface.fileManager == nil {
		iface.fileManager = &filemanager.UnixFileManager{CommandManager: manager}
	}
	if iface.detector == nil {
		iface.detector = &distro.OSReleaseDetector{FileManager: iface.fileManager}
	}
	return iface
}

// SetIP assigns an address to the interface by writing the distribution
// family's ifcfg file and bringing the interface up. The previous config
// file, which must exist, is preserved at a .backup suffix.
func (i *Interface) SetIP(ctx context.Context, conf IPConfig) error {
	d, err := i.detector.Detect(ctx)
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "could not detect distro", Err: err}
	}

	scheme, ok := schemeFor(d.Family)
	if !ok {
		return &ConfigError{Iface: i.Name, Msg: fmt.Sprintf("distro %q not supported, could not set ip", d.Name)}
	}

	confFile := scheme.Path(i.Name)
	if err := i.moveConfigFile(ctx, confFile, confFile+".backup"); err != nil {
		return err
	}

	if err := i.fileManager.WriteFile(ctx, confFile, scheme.Render(i.Name, conf), true); err != nil {
		return &ConfigError{Iface: i.Name, Msg: fmt.Sprintf("could not write %s", confFile), Err: err}
	}

	return i.BringUp(ctx)
}

// UnsetIP reverses SetIP: the interface is brought down and the .backup file
// is restored over the active config path.
func (i *Interface) UnsetIP(ctx context.Context) error {
	d, err := i.detector.Detect(ctx)
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "could not detect distro", Err: err}
	}

	scheme, ok := schemeFor(d.Family)
	if !ok {
		return &ConfigError{Iface: i.Name, Msg: fmt.Sprintf("distro %q not supported, could not unset ip", d.Name)}
	}

	if err := i.BringDown(ctx); err != nil {
		return err
	}

	confFile := scheme.Path(i.Name)
	return i.moveConfigFile(ctx, confFile+".backup", confFile)
}

// PingCheck pings peerIP through this interface and reports whether the ping
// exited zero. A non-zero exit is an ordinary false, never an error: probing
// unreachable peers is an expected use.
func (i *Interface) PingCheck(ctx context.Context, peerIP string, count int, option string, flood bool) bool {
	args := []string{"-I", i.Name, peerIP, "-c", strconv.Itoa(count)}
	if flood {
		args = append(args, "-f")
	} else if option != "" {
		args = append(args, strings.Fields(option)...)
	}

	result, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command:      "ping",
		Args:         args,
		IgnoreStatus: true,
	})
	if err != nil {
		i.log.Warn("ping could not run", "interface", i.Name, "peer", peerIP, "error", err)
		return false
	}
	return result.ExitCode == 0
}

// SetMTU sets the interface MTU and waits, up to the configured timeout, for
// `ip addr show` to report both the new MTU and an UP link. A non-nil return
// means the MTU did not demonstrably take effect; the error carries the last
// underlying cause seen while polling.
func (i *Interface) SetMTU(ctx context.Context, mtu int) error {
	_, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command: "ip",
		Args:    []string{"link", "set", i.Name, "mtu", strconv.Itoa(mtu)},
		Sudo:    true,
	})
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "mtu size can not be set", Err: err}
	}

	var lastErr error
	ok := waitfor.WaitFor(ctx, i.mtuTimeout, 0, func() bool {
		result, err := i.cmdManager.Run(ctx, cm.CommandConfig{
			Command: "ip",
			Args:    []string{"addr", "show", i.Name},
		})
		if err != nil {
			lastErr = err
			return false
		}
		return mtuReported(result.STDOUT, mtu) && i.IsLinkUp(ctx)
	})
	if !ok {
		return &ConfigError{
			Iface: i.Name,
			Msg:   fmt.Sprintf("mtu %d not confirmed within %s", mtu, i.mtuTimeout),
			Err:   lastErr,
		}
	}
	return nil
}

// mtuReported checks the `ip addr show` header for the exact MTU value. The
// value is compared token-for-token so that a requested 150 is not confirmed
// by an interface still at 1500.
func mtuReported(output string, mtu int) bool {
	want := strconv.Itoa(mtu)
	fields := strings.Fields(output)
	for n, field := range fields {
		if field == "mtu" && n+1 < len(fields) {
			return fields[n+1] == want
		}
	}
	return false
}

// LinkStatus returns the raw operstate value for the interface.
func (i *Interface) LinkStatus(ctx context.Context) (string, error) {
	content, err := i.fileManager.ReadFile(ctx, fmt.Sprintf("/sys/class/net/%s/operstate", i.Name))
	if err != nil {
		return "", &ConfigError{Iface: i.Name, Msg: "could not read operstate", Err: err}
	}
	return strings.TrimSpace(content), nil
}

// IsLinkUp reports whether operstate is exactly "up" or "UP". Any other
// value, "unknown" included, counts as down.
func (i *Interface) IsLinkUp(ctx context.Context) bool {
	status, err := i.LinkStatus(ctx)
	if err != nil {
		return false
	}
	if status == "up" || status == "UP" {
		i.log.Info("interface link is up", "interface", i.Name)
		return true
	}
	return false
}

// BringUp runs ifup on the interface.
func (i *Interface) BringUp(ctx context.Context) error {
	_, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command: "ifup",
		Args:    []string{i.Name},
		Sudo:    true,
	})
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "ifup fails", Err: err}
	}
	return nil
}

// BringDown runs ifdown on the interface.
func (i *Interface) BringDown(ctx context.Context) error {
	_, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command: "ifdown",
		Args:    []string{i.Name},
		Sudo:    true,
	})
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "ifdown fails", Err: err}
	}
	return nil
}

func (i *Interface) moveConfigFile(ctx context.Context, src, dest string) error {
	exists, err := i.fileManager.Exists(ctx, src)
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: fmt.Sprintf("could not stat %s", src), Err: err}
	}
	if !exists {
		return &ConfigError{Iface: i.Name, Msg: "interface not available"}
	}
	if err := i.fileManager.MoveFile(ctx, src, dest, true); err != nil {
		return &ConfigError{Iface: i.Name, Msg: fmt.Sprintf("could not move %s to %s", src, dest), Err: err}
	}
	return nil
}

// HWAddr returns the interface hardware address from sysfs.
func (i *Interface) HWAddr(ctx context.Context) (string, error) {
	content, err := i.fileManager.ReadFile(ctx, fmt.Sprintf("/sys/class/net/%s/address", i.Name))
	if err != nil {
		return "", &ConfigError{Iface: i.Name, Msg: "interface not found", Err: err}
	}
	return strings.TrimSpace(content), nil
}

// SetHWAddr sets the interface hardware address.
func (i *Interface) SetHWAddr(ctx context.Context, hwaddr string) error {
	_, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command: "ip",
		Args:    []string{"link", "set", i.Name, "address", hwaddr},
		Sudo:    true,
	})
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "setting mac address failed", Err: err}
	}
	return nil
}

// AddHWAddr subscribes the interface to a multicast hardware address.
func (i *Interface) AddHWAddr(ctx context.Context, maddr string) error {
	_, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command: "ip",
		Args:    []string{"maddr", "add", maddr, "dev", i.Name},
		Sudo:    true,
	})
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "adding hw address fails", Err: err}
	}
	return nil
}

// RemoveHWAddr removes a multicast hardware address from the interface.
func (i *Interface) RemoveHWAddr(ctx context.Context, maddr string) error {
	_, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command: "ip",
		Args:    []string{"maddr", "del", maddr, "dev", i.Name},
		Sudo:    true,
	})
	if err != nil {
		return &ConfigError{Iface: i.Name, Msg: "removing hw address fails", Err: err}
	}
	return nil
}

type inetAddr struct {
	AddrInfo []struct {
		Family string `json:"family"`
		Local  string `json:"local"`
	} `json:"addr_info"`
}

// IPAddress returns the first configured address of the given IP version
// (4 or 6). ErrNoAddress is returned when none is configured.
func (i *Interface) IPAddress(ctx context.Context, version int) (string, error) {
	info, err := i.firstAddrInfo(ctx, version)
	if err != nil {
		return "", err
	}
	return info.local, nil
}

// InetDetail returns the address family label (inet or inet6) of the first
// configured address of the given IP version.
func (i *Interface) InetDetail(ctx context.Context, version int) (string, error) {
	info, err := i.firstAddrInfo(ctx, version)
	if err != nil {
		return "", err
	}
	return info.family, nil
}

type addrEntry struct {
	family string
	local  string
}

func (i *Interface) firstAddrInfo(ctx context.Context, version int) (addrEntry, error) {
	if version != 4 && version != 6 {
		return addrEntry{}, &ConfigError{Iface: i.Name, Msg: fmt.Sprintf("version %d not supported", version)}
	}

	result, err := i.cmdManager.Run(ctx, cm.CommandConfig{
		Command: "ip",
		Args:    []string{fmt.Sprintf("-%d", version), "-j", "address", "show", i.Name},
	})
	if err != nil {
		return addrEntry{}, &ConfigError{Iface: i.Name, Msg: "ip address show failed", Err: err}
	}

	var entries []inetAddr
	if err := json.Unmarshal([]byte(result.STDOUT), &entries); err != nil {
		return addrEntry{}, &ConfigError{Iface: i.Name, Msg: "could not parse ip address output", Err: err}
	}

	if len(entries) == 0 || len(entries[0].AddrInfo) == 0 {
		return addrEntry{}, fmt.Errorf("%s has %w", i.Name, ErrNoAddress)
	}

	first := entries[0].AddrInfo[0]
	if first.Local == "" {
		return addrEntry{}, fmt.Errorf("%s has %w", i.Name, ErrNoAddress)
	}
	return addrEntry{family: first.Family, local: first.Local}, nil
}
