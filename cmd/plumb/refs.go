package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/plumbvcs/plumb/pkg/object"
)

const (
	refLockWaitLimit  = 2 * time.Second
	refLockRetryDelay = 10 * time.Millisecond
)

// refStore keeps refs as one file per ref under the repository
// directory, updated with lockfile plus rename semantics so concurrent
// writers cannot interleave.
type refStore struct {
	root string
}

func (r *refStore) refPath(name string) string {
	if !strings.HasPrefix(name, "refs/") && name != "HEAD" {
		name = "refs/heads/" + name
	}
	return filepath.Join(r.root, filepath.FromSlash(name))
}

// ResolveRef reads a ref to an object id. HEAD is followed one level when
// it is symbolic ("ref: refs/heads/...").
func (r *refStore) ResolveRef(name string) (object.ID, error) {
	data, err := os.ReadFile(r.refPath(name))
	if err != nil {
		return object.ZeroID, fmt.Errorf("resolve ref %q: %w", name, object.ErrNotFound)
	}
	value := strings.TrimSpace(string(data))
	if target, ok := strings.CutPrefix(value, "ref: "); ok {
		return r.ResolveRef(strings.TrimSpace(target))
	}
	id, err := object.ParseID(value)
	if err != nil {
		return object.ZeroID, fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return id, nil
}

// Target returns the ref HEAD points at, or "" when HEAD is detached or
// unborn.
func (r *refStore) Target() string {
	data, err := os.ReadFile(r.refPath("HEAD"))
	if err != nil {
		return ""
	}
	if target, ok := strings.CutPrefix(strings.TrimSpace(string(data)), "ref: "); ok {
		return strings.TrimSpace(target)
	}
	return ""
}

// UpdateRef moves a ref to newID. When expectedOld is non-nil the update
// only succeeds if the ref currently holds that id; a mismatch, or a ref
// that already exists when nil was passed, reports ErrConflict. The write
// goes through a lock file renamed into place.
func (r *refStore) UpdateRef(name string, newID object.ID, expectedOld *object.ID) error {
	refPath := r.refPath(name)
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	current, exists, err := readRefID(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read: %w", name, err)
	}
	switch {
	case expectedOld == nil && exists:
		return fmt.Errorf("update ref %q: already at %s: %w", name, current, object.ErrConflict)
	case expectedOld != nil && (!exists || current != *expectedOld):
		return fmt.Errorf("update ref %q: expected %s: %w", name, *expectedOld, object.ErrConflict)
	}

	if _, err := lockFile.WriteString(newID.String() + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefID(refPath string) (object.ID, bool, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return object.ZeroID, false, nil
		}
		return object.ZeroID, false, err
	}
	id, err := object.ParseID(strings.TrimSpace(string(data)))
	if err != nil {
		return object.ZeroID, false, err
	}
	return id, true, nil
}
