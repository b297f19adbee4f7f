// Package platform wraps the kernel zero-copy transfer primitive used by the
// sendfile strategy. On hosts without a usable file-to-file sendfile the
// package reports itself unsupported and Copy fails with ErrUnsupported.
package platform

import "errors"

// ErrUnsupported is returned by Copy when the host has no file-to-file
// zero-copy primitive.
var ErrUnsupported = errors.New("zero-copy transfer not supported on this platform")
