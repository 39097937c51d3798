package distro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRHELFamily(t *testing.T) {
	osRelease := `NAME="Red Hat Enterprise Linux"
ID="rhel"
VERSION_ID="9.3"
`
	d, err := Parse(osRelease)
	assert.NoError(t, err)
	assert.Equal(t, "rhel", d.Name)
	assert.Equal(t, FamilyRHEL, d.Family)
}

func TestParseCentOSViaIDLike(t *testing.T) {
	osRelease := `NAME="CentOS Stream"
ID="centos"
ID_LIKE="rhel fedora"
`
	d, err := Parse(osRelease)
	assert.NoError(t, err)
	assert.Equal(t, FamilyRHEL, d.Family)
}

func TestParseSUSEFamily(t *testing.T) {
	osRelease := `NAME="openSUSE Leap"
ID="opensuse-leap"
ID_LIKE="suse opensuse"
`
	d, err := Parse(osRelease)
	assert.NoError(t, err)
	assert.Equal(t, FamilySUSE, d.Family)
	assert.Equal(t, "SuSE", d.Family.String())
}

func TestParseUnsupported(t *testing.T) {
	osRelease := `NAME="Debian GNU/Linux"
ID=debian
`
	d, err := Parse(osRelease)
	assert.NoError(t, err)
	assert.Equal(t, FamilyUnsupported, d.Family)
}

func TestParseIDLikeFallbackOrder(t *testing.T) {
	// ID itself unknown, first ID_LIKE token decides.
	osRelease := `ID="centos-stream-clone"
ID_LIKE="rhel fedora"
`
	d, err := Parse(osRelease)
	assert.NoError(t, err)
	assert.Equal(t, FamilyRHEL, d.Family)
	assert.Equal(t, "centos-stream-clone", d.Name)
}
