// Copyright 2026 the wifi-reconnect Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lockfile implements the two locks the reconnector needs: a
// presence lock an admin sets to suspend periodic runs, and a flock
// based run lock so overlapping cron invocations don't race a
// scan/activate cycle.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrBusy is returned by AcquireRun when another invocation holds the
// run lock.
var ErrBusy = errors.New("another invocation holds the run lock")

// Resolve returns an absolute path for the lockfile. Absolute paths
// pass through; relative ones are evaluated under $HOME.
func Resolve(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty lockfile path")
	}
	if strings.HasPrefix(path, "/") {
		return path, nil
	}
	home, ok := os.LookupEnv("HOME")
	if !ok {
		return "", fmt.Errorf("relative lockfile %s needs $HOME", path)
	}
	return filepath.Join(home, path), nil
}

// Lock suspends periodic runs by creating the lockfile.
func Lock(path string) error {
	if err := os.WriteFile(path, []byte("locked\n"), 0644); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	return nil
}

// Unlock removes the lockfile. A missing file is fine; the point is
// that it's gone afterwards.
func Unlock(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unlocking %s: %w", path, err)
	}
	return nil
}

// IsLocked reports whether the lockfile exists as a regular file.
func IsLocked(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// AcquireRun takes a non-blocking exclusive flock on path, creating it
// if needed. It returns a release function on success and ErrBusy when
// a previous invocation is still running. The presence lock above is
// advisory between admin and cron; this one is the actual mutual
// exclusion between concurrent runs.
func AcquireRun(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("run lock %s: %w", path, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("run lock %s: %w", path, err)
	}
	release := func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}
	return release, nil
}
