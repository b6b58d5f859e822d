// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"bytes"
	"crypto/sha1"
	"errors"
)

// ChecksumSize is the size of an archive body checksum.
const ChecksumSize = sha1.Size

// ErrMissingChecksum is returned when a checksum operation is requested
// on an archive that does not carry one.
var ErrMissingChecksum = errors.New("archive has no checksum")

// Checksum is a SHA1 digest of the entire archive body.
type Checksum [ChecksumSize]byte

// Checksum returns the stored body checksum, or nil if absent.
func (a *Archive) Checksum() *Checksum {
	return a.checksum
}

// CalcChecksum hashes the current body and stores the digest. The
// checksum flag is set and the archive is promoted to the modern format,
// which is the only layout able to carry it.
func (a *Archive) CalcChecksum() {
	sum := Checksum(sha1.Sum(a.body))
	a.checksum = &sum
	a.Flags |= FlagChecksum
	a.NewFormat = true
}

// SetChecksum stores (if non-nil) or clears (if nil) the body checksum,
// adjusting the header flag either way. Setting promotes the archive to
// the modern format; clearing leaves the format as is.
func (a *Archive) SetChecksum(sum *Checksum) {
	a.checksum = sum
	if sum != nil {
		a.Flags |= FlagChecksum
		a.NewFormat = true
	} else {
		a.Flags &^= FlagChecksum
	}
}

// VerifyChecksum recomputes the body digest and compares it with the
// stored one byte for byte. An archive without a checksum yields
// ErrMissingChecksum rather than a false mismatch.
func (a *Archive) VerifyChecksum() (bool, error) {
	if a.checksum == nil {
		return false, ErrMissingChecksum
	}
	sum := sha1.Sum(a.body)
	return bytes.Equal(sum[:], a.checksum[:]), nil
}
