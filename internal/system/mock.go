package system

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFS implements FileSystem in memory for tests.
type MockFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	// WriteErrs maps exact paths to injected WriteFile errors, letting a
	// test fail the write of one specific file while others succeed.
	WriteErrs map[string]error

	// Blanket error injection.
	ReadFileErr error
	RemoveErr   error
	MkdirAllErr error
	ReadDirErr  error
}

// NewMockFS returns an empty in-memory filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files:     make(map[string][]byte),
		dirs:      make(map[string]bool),
		WriteErrs: make(map[string]error),
	}
}

// AddFile seeds a file (and its parent directories).
func (m *MockFS) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	for dir := filepath.Dir(path); dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
}

// File returns the contents of path, if present.
func (m *MockFS) File(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	return data, ok
}

// Files returns all file paths currently present, sorted.
func (m *MockFS) Files() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// HasDir reports whether MkdirAll (or seeding) created the directory.
func (m *MockFS) HasDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[path]
}

func (m *MockFS) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MockFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.WriteErrs[path]; err != nil {
		return err
	}
	m.files[path] = data
	return nil
}

func (m *MockFS) Remove(path string) error {
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; !ok {
		return fs.ErrNotExist
	}
	delete(m.files, path)
	return nil
}

func (m *MockFS) MkdirAll(path string, perm fs.FileMode) error {
	if m.MkdirAllErr != nil {
		return m.MkdirAllErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for dir := path; dir != "." && dir != "/"; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
	}
	return nil
}

func (m *MockFS) ReadDir(path string) ([]fs.DirEntry, error) {
	if m.ReadDirErr != nil {
		return nil, m.ReadDirErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make(map[string]bool)
	for p := range m.files {
		if filepath.Dir(p) == path {
			names[filepath.Base(p)] = false
		}
	}
	for p := range m.dirs {
		if filepath.Dir(p) == path {
			names[filepath.Base(p)] = true
		}
	}
	if len(names) == 0 && !m.dirs[path] {
		return nil, fs.ErrNotExist
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	entries := make([]fs.DirEntry, 0, len(sorted))
	for _, name := range sorted {
		entries = append(entries, mockDirEntry{name: name, dir: names[name]})
	}
	return entries, nil
}

type mockDirEntry struct {
	name string
	dir  bool
}

func (e mockDirEntry) Name() string      { return e.name }
func (e mockDirEntry) IsDir() bool       { return e.dir }
func (e mockDirEntry) Type() fs.FileMode { return fs.FileMode(0).Type() }
func (e mockDirEntry) Info() (fs.FileInfo, error) {
	return mockFileInfo{name: e.name, dir: e.dir}, nil
}

type mockFileInfo struct {
	name string
	dir  bool
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return 0 }
func (i mockFileInfo) Mode() fs.FileMode  { return 0o644 }
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return i.dir }
func (i mockFileInfo) Sys() any           { return nil }

// MockExecutor implements CommandExecutor for tests. It records every
// executed command and answers from a response table.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records executed commands in order.
	Commands []MockCommand

	// Responses maps "name arg1 arg2..." prefixes to canned responses.
	// The longest matching prefix wins.
	Responses map[string]MockResponse

	// DefaultResponse is used when no prefix matches.
	DefaultResponse MockResponse
}

// MockCommand is one recorded invocation.
type MockCommand struct {
	Name string
	Args []string
}

// Line renders the command the way it was invoked, space-joined.
func (c MockCommand) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// MockResponse is the canned result for a command.
type MockResponse struct {
	Output []byte
	Err    error
}

// NewMockExecutor returns an executor that records commands and succeeds
// by default.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{Responses: make(map[string]MockResponse)}
}

// Respond registers a canned response for commands starting with prefix.
func (m *MockExecutor) Respond(prefix string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[prefix] = MockResponse{Output: output, Err: err}
}

func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := MockCommand{Name: name, Args: args}
	m.Commands = append(m.Commands, cmd)

	line := cmd.Line()
	best := ""
	for prefix := range m.Responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best != "" {
		resp := m.Responses[best]
		return resp.Output, resp.Err
	}
	return m.DefaultResponse.Output, m.DefaultResponse.Err
}

// Lines returns every recorded command as a space-joined line, in order.
func (m *MockExecutor) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		lines[i] = c.Line()
	}
	return lines
}

// Reset clears the recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = nil
}
