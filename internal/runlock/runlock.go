// Package runlock guards against overlapping pipeline runs with a lockfile.
// The file carries owner metadata so a blocked run can report who holds the
// lock and whether the holder looks stale.
package runlock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// ErrHeld indicates another process holds the run lock.
var ErrHeld = errors.New("run lock held")

// Owner describes the process holding the lock.
type Owner struct {
	PID       int       `json:"pid"`
	Host      string    `json:"host"`
	StartedAt time.Time `json:"started_at"`
}

// StaleAfter reports whether the holder has been running longer than the
// supplied bound. A stale lock usually means a dead run that never released.
func (o Owner) StaleAfter(bound time.Duration) bool {
	if o.StartedAt.IsZero() || bound <= 0 {
		return false
	}
	return time.Since(o.StartedAt) > bound
}

// Lock is an acquired run lock.
type Lock struct {
	path string
	fl   *flock.Flock
}

// Acquire takes the run lock without blocking. When another process holds it,
// the returned error wraps ErrHeld and includes the recorded owner when the
// metadata is readable.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		if owner, readErr := ReadOwner(path); readErr == nil {
			return nil, fmt.Errorf("%w: pid %d on %s since %s",
				ErrHeld, owner.PID, owner.Host, owner.StartedAt.Format(time.RFC3339))
		}
		return nil, ErrHeld
	}

	lock := &Lock{path: path, fl: fl}
	if err := lock.writeOwner(); err != nil {
		_ = fl.Unlock()
		return nil, err
	}
	return lock, nil
}

func (l *Lock) writeOwner() error {
	host, _ := os.Hostname()
	owner := Owner{
		PID:       os.Getpid(),
		Host:      host,
		StartedAt: time.Now().UTC(),
	}
	encoded, err := json.Marshal(owner)
	if err != nil {
		return fmt.Errorf("encode lock owner: %w", err)
	}
	if err := os.WriteFile(l.path, append(encoded, '\n'), 0o644); err != nil {
		return fmt.Errorf("write lock owner: %w", err)
	}
	return nil
}

// ReadOwner returns the owner metadata recorded in the lock file.
func ReadOwner(path string) (Owner, error) {
	var owner Owner
	data, err := os.ReadFile(path)
	if err != nil {
		return owner, err
	}
	if err := json.Unmarshal(data, &owner); err != nil {
		return owner, fmt.Errorf("decode lock owner: %w", err)
	}
	return owner, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. The file stays behind with the last owner metadata;
// flock state, not file existence, is authoritative.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
