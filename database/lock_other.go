//go:build !unix

package database

// lockFile is a no-op where flock(2) is unavailable; the in-process mutex still applies.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
