package distro

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/probeops/probekit/probekit/filemanager"
)

// Family is the closed set of distribution families this module knows how to
// configure. Anything else is FamilyUnsupported.
type Family int

const (
	FamilyUnsupported Family = iota
	FamilyRHEL
	FamilySUSE
)

func (f Family) String() string {
	switch f {
	case FamilyRHEL:
		return "rhel"
	case FamilySUSE:
		return "SuSE"
	default:
		return "unsupported"
	}
}

// Distro identifies the distribution running on a host.
type Distro struct {
	Name   string
	Family Family
}

// Detector is the distribution-detection capability. It is injected into the
// components that need it so tests can pin a family.
type Detector interface {
	Detect(ctx context.Context) (Distro, error)
}

// OSReleaseDetector detects the distribution from /etc/os-release, which is a
// key=value file on every systemd-era distribution.
type OSReleaseDetector struct {
	FileManager filemanager.FileManager
}

func (d *OSReleaseDetector) Detect(ctx context.Context) (Distro, error) {
	content, err := d.FileManager.ReadFile(ctx, "/etc/os-release")
	if err != nil {
		return Distro{}, fmt.Errorf("read /etc/os-release: %w", err)
	}
	return Parse(content)
}

// Parse maps os-release contents onto a Distro. ID is consulted first, then
// each token of ID_LIKE.
func Parse(osRelease string) (Distro, error) {
	cfg, err := ini.Load([]byte(osRelease))
	if err != nil {
		return Distro{}, fmt.Errorf("parse os-release: %w", err)
	}

	section := cfg.Section("")
	id := strings.Trim(section.Key("ID").String(), `"`)
	idLike := strings.Trim(section.Key("ID_LIKE").String(), `"`)

	ids := append([]string{id}, strings.Fields(idLike)...)
	for _, candidate := range ids {
		if family, ok := familyOf(candidate); ok {
			return Distro{Name: id, Family: family}, nil
		}
	}
	return Distro{Name: id, Family: FamilyUnsupported}, nil
}

func familyOf(id string) (Family, bool) {
	switch strings.ToLower(id) {
	case "rhel", "centos", "fedora", "almalinux", "rocky":
		return FamilyRHEL, true
	case "suse", "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sles", "sled":
		return FamilySUSE, true
	}
	return FamilyUnsupported, false
}

// Static is a Detector that always reports the same Distro. Intended for
// tests and for callers that already know the target family.
type Static struct {
	Distro Distro
	Err    error
}

func (s Static) Detect(context.Context) (Distro, error) {
	return s.Distro, s.Err
}
