package filemanager

import "context"

// FileManager performs the handful of file operations the harness needs
// against a host, local or remote. Every operation runs through the host's
// CommandManager so the same code path serves both targets.
type FileManager interface {
	// ReadFile returns the entire contents of path as text.
	ReadFile(ctx context.Context, path string) (string, error)

	// WriteFile replaces the contents of path, creating it if missing.
	WriteFile(ctx context.Context, path, content string, sudo bool) error

	// MoveFile renames sourcePath to destPath.
	MoveFile(ctx context.Context, sourcePath, destPath string, sudo bool) error

	// Exists reports whether path names an existing file or directory.
	Exists(ctx context.Context, path string) (bool, error)

	// ListDirectory returns the entry names directly under path.
	ListDirectory(ctx context.Context, path string) ([]string, error)
}
