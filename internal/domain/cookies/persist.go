package cookies

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PersistError reports a failed snapshot read or write
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("cookies: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// ReadAll loads Set-Cookie lines from r. Blank lines and lines starting
// with '#' are ignored, as are lines that fail to parse.
func (s *Store) ReadAll(r io.Reader, markChanged bool) error {
	now := s.now()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := Parse(line, now)
		if err != nil {
			continue
		}
		_ = s.Set(c, markChanged)
	}
	return scanner.Err()
}

// WritePersistent writes every live persistent cookie to w
func (s *Store) WritePersistent(w io.Writer) error {
	_, err := io.WriteString(w, join(s.PersistentCookies()))
	return err
}

// Load reads the snapshot at path. A missing file is not an error.
func (s *Store) Load(path string, markChanged bool) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &PersistError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	if err := s.ReadAll(f, markChanged); err != nil {
		return &PersistError{Op: "read", Path: path, Err: err}
	}
	return nil
}

// Replace swaps the jar's contents for the snapshot at path, with every
// loaded cookie marked changed. When the snapshot cannot be read the jar is
// left as it was. A missing file replaces the jar with an empty one.
func (s *Store) Replace(path string) error {
	fresh := NewStore(s.logger, WithClock(s.now))
	if err := fresh.Load(path, true); err != nil {
		return err
	}
	s.entries = fresh.entries
	s.changed = fresh.changed
	return nil
}

// Save writes the persistent cookies to path, replacing it atomically
func (s *Store) Save(path string) error {
	var buf bytes.Buffer
	if err := s.WritePersistent(&buf); err != nil {
		return &PersistError{Op: "encode", Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &PersistError{Op: "mkdir", Path: path, Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return &PersistError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &PersistError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
