// Package system abstracts the OS operations hostcfgd performs — file
// writes and external command execution — so appliers can be exercised in
// tests without touching the live system.
package system

import (
	"context"
	"io/fs"
	"os"
	"os/exec"
)

// FileSystem is the slice of filesystem operations the appliers use.
type FileSystem interface {
	// ReadFile reads the named file and returns its contents.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces the named file with data, creating it if
	// necessary. On an open failure the previous file content survives
	// untouched.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Remove removes the named file.
	Remove(path string) error

	// MkdirAll creates the directory and any missing parents.
	MkdirAll(path string, perm fs.FileMode) error

	// ReadDir returns the entries of the named directory.
	ReadDir(path string) ([]fs.DirEntry, error)
}

// CommandExecutor runs one external command to completion.
type CommandExecutor interface {
	// Execute runs the command with the given argument vector and returns
	// its combined output. Arguments are passed directly to the process;
	// no shell is involved.
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// OSFileSystem implements FileSystem with real OS operations.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OSFileSystem) ReadDir(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// OSExecutor implements CommandExecutor with exec.CommandContext.
type OSExecutor struct{}

func (OSExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}
