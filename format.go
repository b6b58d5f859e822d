// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/blowfish"
)

// MIX format constants
const (
	// entrySize is the wire size of one index entry.
	entrySize = 12

	// legacyHeaderSize is the size of the old count+size header.
	legacyHeaderSize = 6
)

// Flags describes the optional features of a modern archive header.
// Bits beyond the named ones are reserved and round-trip losslessly.
type Flags uint16

const (
	// FlagChecksum marks an archive with a SHA1 body checksum appended.
	FlagChecksum Flags = 0x0001

	// FlagEncryption marks an archive with a Blowfish encrypted index.
	FlagEncryption Flags = 0x0002
)

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

// ExtraFlags is the first header word of a modern archive. Always zero in
// vanilla files; in the legacy layout the same two bytes hold the file
// count, which is how the two layouts are told apart.
type ExtraFlags uint16

// Entry localizes one file inside the archive body.
type Entry struct {
	ID     int32  // identifier hashed from the original filename
	Offset uint32 // offset from the start of the body
	Size   uint32 // size in bytes
}

// header carries everything learned while parsing an archive header.
type header struct {
	newFormat    bool
	flags        Flags
	extraFlags   ExtraFlags
	count        uint16
	declaredSize uint32
	key          *BlowfishKey
	cipher       *blowfish.Cipher
	leftover     [2]byte // first two index bytes, from the encrypted header block
}

// readHeader parses either header layout. The first word decides the
// format: zero (or forceNew) means a modern flagged header, anything else
// is a legacy header where that word is the file count.
func readHeader(r io.Reader, forceNew bool) (*header, error) {
	var first uint16
	if err := binary.Read(r, binary.LittleEndian, &first); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	h := &header{newFormat: forceNew || first == 0}
	if !h.newFormat {
		h.count = first
		if err := binary.Read(r, binary.LittleEndian, &h.declaredSize); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return h, nil
	}

	h.extraFlags = ExtraFlags(first)
	var flags uint16
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h.flags = Flags(flags)

	if !h.flags.Has(FlagEncryption) {
		if err := binary.Read(r, binary.LittleEndian, &h.count); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &h.declaredSize); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return h, nil
	}

	// Encrypted archive: recover the key, then decrypt the first index
	// block. It holds the count, the declared body size and the first
	// two bytes of the index proper.
	wrapped := make([]byte, WrappedKeySize)
	if _, err := io.ReadFull(r, wrapped); err != nil {
		return nil, fmt.Errorf("read wrapped key: %w", err)
	}
	key, err := unwrapKey(wrapped)
	if err != nil {
		return nil, err
	}
	cipher, err := newCipher(key)
	if err != nil {
		return nil, err
	}

	var block [blowfish.BlockSize]byte
	if _, err := io.ReadFull(r, block[:]); err != nil {
		return nil, fmt.Errorf("read header block: %w", err)
	}
	cipher.Decrypt(block[:], block[:])

	h.key = key
	h.cipher = cipher
	h.count = binary.LittleEndian.Uint16(block[0:2])
	h.declaredSize = binary.LittleEndian.Uint32(block[2:6])
	copy(h.leftover[:], block[6:8])
	return h, nil
}

// readIndex reads count plaintext index entries.
func readIndex(r io.Reader, count uint16) ([]Entry, error) {
	entries := make([]Entry, count)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return entries, nil
}

// readIndexEncrypted reads and decrypts the remaining index blocks.
// The first two index bytes already arrived inside the header block, so
// the encrypted tail is count*12-2 bytes rounded up to the block size.
func readIndexEncrypted(r io.Reader, h *header) ([]Entry, error) {
	if h.count == 0 {
		return nil, nil
	}

	size := int(h.count)*entrySize - 2
	size = (size + blowfish.BlockSize - 1) &^ (blowfish.BlockSize - 1)
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read encrypted index: %w", err)
	}
	decryptBlocks(h.cipher, buf)

	plain := make([]byte, 0, 2+len(buf))
	plain = append(plain, h.leftover[:]...)
	plain = append(plain, buf...)
	return readIndex(bytes.NewReader(plain), h.count)
}

// writeHeader writes the header for either layout. For an encrypted
// archive only the flags and the wrapped key are written here; the count
// and declared size travel inside the first encrypted index block.
func writeHeader(w io.Writer, a *Archive) error {
	if !a.NewFormat {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(a.entries))); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(a.body))); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		return nil
	}

	if err := binary.Write(w, binary.LittleEndian, uint16(a.ExtraFlags)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(a.Flags)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if a.Flags.Has(FlagEncryption) {
		if _, err := w.Write(wrapKey(a.key)); err != nil {
			return fmt.Errorf("write wrapped key: %w", err)
		}
		return nil
	}

	if err := binary.Write(w, binary.LittleEndian, uint16(len(a.entries))); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(a.body))); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// writeIndex writes plaintext index entries.
func writeIndex(w io.Writer, entries []Entry) error {
	if err := binary.Write(w, binary.LittleEndian, entries); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// writeIndexEncrypted encrypts and writes the count, the body size and
// the index as one zero-padded block run, mirroring readIndexEncrypted.
func writeIndexEncrypted(w io.Writer, cipher *blowfish.Cipher, entries []Entry, bodySize uint32) error {
	size := legacyHeaderSize + len(entries)*entrySize
	padded := (size + blowfish.BlockSize - 1) &^ (blowfish.BlockSize - 1)

	buf := make([]byte, padded)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(entries)))
	binary.LittleEndian.PutUint32(buf[2:6], bodySize)
	for i, e := range entries {
		off := legacyHeaderSize + i*entrySize
		binary.LittleEndian.PutUint32(buf[off:], uint32(e.ID))
		binary.LittleEndian.PutUint32(buf[off+4:], e.Offset)
		binary.LittleEndian.PutUint32(buf[off+8:], e.Size)
	}

	encryptBlocks(cipher, buf)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write encrypted index: %w", err)
	}
	return nil
}
