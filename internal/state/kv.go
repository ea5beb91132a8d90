// Package state persists the reader's read and selected items as named
// string sets in a directory of small JSON files.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Keys used by the CLI.
const (
	KeyRead     = "nd_read_v1"
	KeySelected = "nd_select_v1"
)

var (
	ErrNotConfigured = errors.New("state dir not configured")
	ErrInvalidKey    = errors.New("invalid state key")
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// KV stores one file per key under Dir.
type KV struct {
	Dir string
	// StrictPerms uses 0700 for the directory and 0600 for files.
	StrictPerms bool
}

func (s *KV) ensureDir() error {
	if s == nil || s.Dir == "" {
		return ErrNotConfigured
	}
	perm := os.FileMode(0o755)
	if s.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(s.Dir, perm); err != nil {
		return err
	}
	if s.StrictPerms {
		if info, err := os.Stat(s.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(s.Dir, 0o700)
		}
	}
	return nil
}

func (s *KV) pathFor(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.Dir, key+".json"), nil
}

// Get returns the stored bytes for key. A missing key is not an error.
func (s *KV) Get(key string) ([]byte, bool, error) {
	if err := s.ensureDir(); err != nil {
		return nil, false, err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Put replaces the value for key. The previous value survives a failed write.
func (s *KV) Put(key string, data []byte) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, "."+key+"-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	mode := os.FileMode(0o644)
	if s.StrictPerms {
		mode = 0o600
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Delete removes key. Deleting a missing key succeeds.
func (s *KV) Delete(key string) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
