// Package lockfile implements the single-instance PID-file guard,
// grounded on the lockfile handling in
// original_source/adaptivemm/src/adaptivemmd.c.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrAlreadyRunning is returned by Acquire when the lock file already
// exists and names a live process.
var ErrAlreadyRunning = errors.New("lockfile: another instance is already running")

// Lockfile is an exclusively-created PID file released once at shutdown.
type Lockfile struct {
	path string
	held bool
}

// Acquire creates path with O_EXCL|O_CREAT and writes the caller's PID
// into it. If the file already exists, its contents are checked against
// /proc/<pid>: a stale lock (no such process) is removed and the
// acquisition retried once; a live one is reported as ErrAlreadyRunning.
func Acquire(path string) (*Lockfile, error) {
	lf, err := tryAcquire(path)
	if err == nil {
		return lf, nil
	}
	if !os.IsExist(err) {
		return nil, fmt.Errorf("lockfile: create %s: %w", path, err)
	}

	pid, perr := readPID(path)
	if perr == nil && processAlive(pid) {
		return nil, ErrAlreadyRunning
	}
	if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
		return nil, fmt.Errorf("lockfile: remove stale lock %s: %w", path, rmErr)
	}

	lf, err = tryAcquire(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: create %s: %w", path, err)
	}
	return lf, nil
}

func tryAcquire(path string) (*Lockfile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		os.Remove(path)
		return nil, err
	}
	return &Lockfile{path: path, held: true}, nil
}

// Release unlinks the lock file. Safe to call more than once.
func (l *Lockfile) Release() error {
	if l == nil || !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("lockfile: remove %s: %w", l.path, err)
	}
	return nil
}

func readPID(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	return err == nil
}
