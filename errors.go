package sbcio

// Error kinds for hardware access failures. None of these are transient:
// they indicate missing privilege, unsupported hardware or a broken kernel
// interface, so nothing in this package retries them. Callers should treat
// any of them as fatal for the pin or channel that raised it.

import "errors"

var (
	// ErrPermissionDenied means no privileged memory device could be opened.
	ErrPermissionDenied = errors.New("permission denied opening memory device")

	// ErrMapFailed means the mmap syscall refused the requested window.
	ErrMapFailed = errors.New("peripheral register mapping failed")

	// ErrProtocolViolation means a GPIO pseudo-file held content the kernel
	// interface should never produce (empty, truncated or malformed).
	ErrProtocolViolation = errors.New("malformed gpio pseudo-file content")

	// ErrIOFailure means a pseudo-file read or write moved fewer bytes than
	// expected with the error indicator set.
	ErrIOFailure = errors.New("gpio file i/o failed")
)
