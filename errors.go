package ecm

import (
	"errors"

	"ecm/record"
)

// Sentinel errors for the error kinds named in §7. Callers match them with
// errors.Is. Decode wraps ErrChecksum with github.com/pkg/errors to add the
// mismatching values; ErrBadHeader and ErrCorruptLength are returned as is.
var (
	// ErrBadHeader is returned by Decode when the input does not begin
	// with the 'E','C','M',0x00 magic.
	ErrBadHeader = errors.New("ecm: not an ECM file")

	// ErrChecksum is returned by Decode when the trailer EDC does not
	// match the EDC accumulated over the bytes actually written.
	ErrChecksum = errors.New("ecm: checksum mismatch")

	// ErrCorruptLength is returned when a record's variable-length count
	// overflows 32 bits or uses a non-minimal final byte. It is the same
	// sentinel package record returns, re-exported so callers need only
	// import package ecm.
	ErrCorruptLength = record.ErrCorruptLength
)
