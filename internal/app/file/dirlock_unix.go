//go:build unix

package file

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// acquireDirLock takes an advisory, non-blocking exclusive flock on a
// ".lock" file inside dbDirectory, so that a second process cannot open
// the same database directory concurrently. It returns a release
// function that unlocks and closes the lock file.
//
// This backstops the in-process mutexes the rest of the package already
// uses: those protect goroutines within one process, this protects the
// database directory across processes.
func acquireDirLock(dbDirectory string) (func() error, error) {
	path := dbDirectory + string(os.PathSeparator) + ".lock"
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("cannot open lock file: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("database directory %s is already open by another process: %w", dbDirectory, err)
	}

	release := func() error {
		if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return release, nil
}
