// Package lock serializes berth operations that write under a manifest root.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Dir is the lock directory relative to the manifest root.
const Dir = ".berth/locks"

// ErrLocked indicates another process holds the lock.
var ErrLocked = errors.New("operation locked")

// Lock is an flock-based advisory lock on one operation.
type Lock struct {
	op   string
	path string
	file *os.File
}

// New creates a lock for operation under the manifest root.
func New(root, operation string) *Lock {
	return &Lock{
		op:   operation,
		path: filepath.Join(root, Dir, operation+".lock"),
	}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the lock without blocking. It fails with ErrLocked when
// another process holds it.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return fmt.Errorf("%w: another %s is already running", ErrLocked, l.op)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// PID aids debugging a stuck lock.
	_ = f.Truncate(0)
	_, _ = f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	defer func() { l.file = nil }()

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	return nil
}

// WithLock runs fn while holding the operation lock.
func WithLock(root, operation string, fn func() error) error {
	l := New(root, operation)
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()

	return fn()
}
