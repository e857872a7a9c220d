// Package lock guards a target database file against concurrent runs.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// PathFor returns the lock file path for a SQLite database path.
func PathFor(dbPath string) string {
	return dbPath + ".lock"
}

// Acquire creates the lock file holding the current PID. The file is created
// exclusively; a lock whose owner is gone, or that this process already holds,
// is replaced.
func Acquire(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			return errors.Join(werr, cerr)
		}
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("creating lock file: %w", err)
		}

		pid, _ := owner(path)
		if pid == os.Getpid() {
			return nil
		}
		if pid > 0 && isProcessRunning(pid) {
			return fmt.Errorf("another my2lite instance (PID %d) is writing %s", pid, strings.TrimSuffix(path, ".lock"))
		}
		if err := Release(path); err != nil {
			return fmt.Errorf("removing stale lock: %w", err)
		}
	}
	return fmt.Errorf("lock %s was taken by another process", path)
}

// Release removes the lock file.
func Release(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsHeld reports whether a running process holds the lock, and its PID.
func IsHeld(path string) (bool, int, error) {
	pid, err := owner(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return pid > 0 && isProcessRunning(pid), pid, nil
}

// owner reads the PID stored in the lock file; unparsable content yields 0.
func owner(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, nil
	}
	return pid, nil
}

func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
