package wad

import "errors"

// Sentinel error kinds, tested with errors.Is by callers.
var (
	// ErrInvalidFormat means the four-byte magic was not IWAD or PWAD.
	ErrInvalidFormat = errors.New("wad: invalid format (bad magic)")

	// ErrCorruptHeader means the declared directory offset lies
	// outside the file.
	ErrCorruptHeader = errors.New("wad: corrupt header (directory offset out of bounds)")

	// ErrIntegrity covers fatal structural inconsistencies discovered
	// after the header/directory is otherwise well-formed (e.g. a
	// texture patch index pointing past PNAMES, or an unterminated
	// ANIMATED/SWITCHES stream).
	ErrIntegrity = errors.New("wad: integrity error")
)
