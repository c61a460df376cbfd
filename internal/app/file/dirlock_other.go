//go:build !unix

package file

// acquireDirLock is a no-op on platforms without flock(2); a single
// FileManager per directory is still the caller's responsibility there.
func acquireDirLock(dbDirectory string) (func() error, error) {
	return func() error { return nil }, nil
}
