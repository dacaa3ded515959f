package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// LockName is the lock file guarding writes into a scripts directory.
const LockName = ".importance.lock"

// ErrLocked is returned when another process is writing into the same
// scripts directory.
var ErrLocked = errors.New("scripts directory is locked")

// Write writes a script to a YAML file, creating its directory. The
// directory lock is held for the duration of the write.
func Write(s *Script, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(dir, LockName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", dir, ErrLocked)
	}
	defer func() { _ = lock.Unlock() }()

	return os.WriteFile(path, data, 0644)
}

// Read reads and validates a script from a YAML file.
func Read(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}
