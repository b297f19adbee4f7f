//go:build !linux

package platform

import "os"

// Supported reports whether sendfile(2) can transfer between two regular
// files on this host. Darwin and the BSDs only allow a socket destination,
// so only Linux qualifies.
func Supported() bool { return false }

// Copy always fails off Linux; callers check Supported first.
func Copy(dst, src *os.File, length int64) (int64, error) {
	return 0, ErrUnsupported
}
