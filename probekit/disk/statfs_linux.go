package disk

import "golang.org/x/sys/unix"

// FreeSpace returns the number of bytes available to unprivileged users on
// the filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	var stats unix.Statfs_t
	if err := unix.Statfs(path, &stats); err != nil {
		return 0, &Error{Msg: "statfs " + path, Err: err}
	}
	return uint64(stats.Bsize) * stats.Bavail, nil
}

// BlockSize returns the block size, in bytes, of the filesystem holding path.
func BlockSize(path string) (uint64, error) {
	var stats unix.Statfs_t
	if err := unix.Statfs(path, &stats); err != nil {
		return 0, &Error{Msg: "statfs " + path, Err: err}
	}
	return uint64(stats.Bsize), nil
}
