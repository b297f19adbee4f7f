//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// sendfile(2) transfers at most ~2GB per call; stay well under the limit.
const maxChunk = 1 << 30

// Supported reports whether sendfile(2) can transfer between two regular
// files on this host. Linux supports file-to-file sendfile since 2.6.33.
func Supported() bool { return true }

// Copy transfers length bytes from src to dst using sendfile(2), keeping the
// data in kernel space. It returns the bytes written before any error, so a
// caller can rewind the destination and retry with a userspace copy.
func Copy(dst, src *os.File, length int64) (int64, error) {
	var offset int64
	var total int64
	for total < length {
		chunk := length - total
		if chunk > maxChunk {
			chunk = maxChunk
		}
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &offset, int(chunk))
		if n > 0 {
			total += int64(n)
		}
		if err != nil {
			return total, &os.PathError{Op: "sendfile", Path: src.Name(), Err: err}
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}
