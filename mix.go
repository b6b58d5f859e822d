// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ErrFileExists is returned by AddFile when the id is already taken and
// overwriting was not allowed.
var ErrFileExists = errors.New("file already in archive")

// Archive is an in-memory MIX archive: a flat index of identifier
// entries over one body buffer. Body bytes not covered by any entry
// ("residue") are legal and survive until Recalc reclaims them.
type Archive struct {
	// NewFormat selects the modern flagged header layout on write.
	// Checksums and encryption exist only in this layout.
	NewFormat bool

	// Flags holds the checksum/encryption bits plus any reserved ones.
	Flags Flags

	// ExtraFlags round-trips untouched. Always zero in vanilla files.
	ExtraFlags ExtraFlags

	// DeclaredBodySize is the body size the header claimed at read
	// time. Advisory only: writing emits the actual body length.
	DeclaredBodySize uint32

	entries  []Entry
	byID     map[int32]int // entry position per id
	body     []byte
	key      *BlowfishKey
	checksum *Checksum
}

// New returns an empty archive in the legacy format.
func New() *Archive {
	return &Archive{byID: make(map[int32]int)}
}

// Read parses an archive from r, detecting the header layout from the
// first word: zero means a modern flagged header, anything else is the
// legacy layout where that word is the file count.
func Read(r io.Reader) (*Archive, error) {
	return readArchive(r, false)
}

// ReadModern parses an archive that is known to use the modern header
// layout, skipping detection. Needed for the rare modern archive whose
// extra flags word is nonzero and would otherwise look like a legacy
// file count.
func ReadModern(r io.Reader) (*Archive, error) {
	return readArchive(r, true)
}

// Open reads the archive file at path.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	a, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a, nil
}

func readArchive(r io.Reader, forceNew bool) (*Archive, error) {
	h, err := readHeader(r, forceNew)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if h.newFormat && h.flags.Has(FlagEncryption) {
		entries, err = readIndexEncrypted(r, h)
	} else {
		entries, err = readIndex(r, h.count)
	}
	if err != nil {
		return nil, err
	}

	body := make([]byte, h.declaredSize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	a := &Archive{
		NewFormat:        h.newFormat,
		Flags:            h.flags,
		ExtraFlags:       h.extraFlags,
		DeclaredBodySize: h.declaredSize,
		entries:          entries,
		body:             body,
		key:              h.key,
	}
	a.rebuildIndex()

	if h.newFormat && h.flags.Has(FlagChecksum) {
		var sum Checksum
		if _, err := io.ReadFull(r, sum[:]); err != nil {
			return nil, fmt.Errorf("read checksum: %w", err)
		}
		a.checksum = &sum
	}

	return a, nil
}

// File returns the bytes of the file with the given id, or nil when the
// id is absent or its entry points outside the body. The slice aliases
// the archive body, so writes through it modify the archive.
func (a *Archive) File(id int32) []byte {
	i, ok := a.lookup(id)
	if !ok {
		return nil
	}
	e := a.entries[i]
	off, end := int64(e.Offset), int64(e.Offset)+int64(e.Size)
	if end > int64(len(a.body)) {
		return nil
	}
	return a.body[off:end]
}

// Entry returns a copy of the index entry for id.
func (a *Archive) Entry(id int32) (Entry, bool) {
	i, ok := a.lookup(id)
	if !ok {
		return Entry{}, false
	}
	return a.entries[i], true
}

// Entries returns a copy of the index in its current order.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// AddFile appends data as a new file under the given id, placing it just
// past the furthest-reaching entry. On an id collision with overwrite
// permission the old entry is replaced in place and returned; without
// permission the call fails with ErrFileExists and changes nothing.
func (a *Archive) AddFile(id int32, data []byte, overwrite bool) (*Entry, error) {
	offset := a.FindLastOffset()
	entry := Entry{ID: id, Offset: offset, Size: uint32(len(data))}

	var prev *Entry
	if i, ok := a.lookup(id); ok {
		if !overwrite {
			return nil, fmt.Errorf("%w: %08X", ErrFileExists, uint32(id))
		}
		old := a.entries[i]
		prev = &old
		a.entries[i] = entry
	} else {
		a.entries = append(a.entries, entry)
		a.byID[id] = len(a.entries) - 1
	}

	end := int(offset) + len(data)
	if len(a.body) < end {
		a.body = append(a.body, make([]byte, end-len(a.body))...)
	}
	copy(a.body[offset:end], data)
	return prev, nil
}

// AddFileFromPath reads the file at path and adds it under the id hashed
// from its base name with the given game's identifier. Returns that id.
func (a *Archive) AddFileFromPath(path string, game Game, overwrite bool) (int32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}
	id := FileID(filepath.Base(path), game)
	if _, err := a.AddFile(id, data, overwrite); err != nil {
		return 0, fmt.Errorf("add %s: %w", filepath.Base(path), err)
	}
	return id, nil
}

// Remove deletes the index entry for id and returns it, or nil if the id
// is absent. The file's body bytes stay behind as residue until Recalc.
func (a *Archive) Remove(id int32) *Entry {
	i, ok := a.lookup(id)
	if !ok {
		return nil
	}
	e := a.entries[i]
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	a.rebuildIndex()
	return &e
}

// Recalc compacts the archive. Entries are swept in offset order, every
// body range not covered by an entry is cut out, and offsets shift down
// by the amount removed ahead of them. Overlapping entries are tolerated
// as is; only gaps and the unreferenced tail are reclaimed. The index is
// left sorted by id.
func (a *Archive) Recalc() {
	a.SortByOffset()

	// ptr is the coverage frontier in pre-sweep offsets; entries nested
	// inside an earlier one must not pull it back.
	var ptr, drained int64
	for i := range a.entries {
		e := &a.entries[i]
		gap := int64(e.Offset) - ptr
		if gap > 0 {
			start := ptr - drained
			a.body = append(a.body[:start], a.body[start+gap:]...)
			drained += gap
		}
		if end := int64(e.Offset) + int64(e.Size); end > ptr {
			ptr = end
		}
		e.Offset -= uint32(drained)
	}

	if end := ptr - drained; int64(len(a.body)) > end {
		a.body = a.body[:end]
	}
	a.SortByID()
}

// IsCompact reports whether the body holds no bytes beyond what the
// index references. Works on a sorted copy; the index order is kept.
func (a *Archive) IsCompact() bool {
	entries := a.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Offset < entries[j].Offset
	})

	var ptr int64
	for _, e := range entries {
		if int64(e.Offset) > ptr {
			return false
		}
		if end := int64(e.Offset) + int64(e.Size); end > ptr {
			ptr = end
		}
	}
	return int64(len(a.body)) <= ptr
}

// SortByID reorders the index by ascending id.
func (a *Archive) SortByID() {
	sort.SliceStable(a.entries, func(i, j int) bool {
		return a.entries[i].ID < a.entries[j].ID
	})
	a.rebuildIndex()
}

// SortByOffset reorders the index by ascending offset.
func (a *Archive) SortByOffset() {
	sort.SliceStable(a.entries, func(i, j int) bool {
		return a.entries[i].Offset < a.entries[j].Offset
	})
	a.rebuildIndex()
}

// SortBySize reorders the index by ascending file size.
func (a *Archive) SortBySize() {
	sort.SliceStable(a.entries, func(i, j int) bool {
		return a.entries[i].Size < a.entries[j].Size
	})
	a.rebuildIndex()
}

// BlowfishKey returns the index encryption key, or nil if absent.
func (a *Archive) BlowfishKey() *BlowfishKey {
	return a.key
}

// SetBlowfishKey attaches (non-nil) or clears (nil) the index encryption
// key, adjusting the header flag either way. Attaching promotes the
// archive to the modern format; clearing leaves the format as is.
func (a *Archive) SetBlowfishKey(key *BlowfishKey) {
	a.key = key
	if key != nil {
		a.Flags |= FlagEncryption
		a.NewFormat = true
	} else {
		a.Flags &^= FlagEncryption
	}
}

// Len returns the number of files in the index.
func (a *Archive) Len() int {
	return len(a.entries)
}

// BodySize returns the actual body size in bytes.
func (a *Archive) BodySize() int {
	return len(a.body)
}

// IndexSize returns the wire size of the index in bytes.
func (a *Archive) IndexSize() int {
	return len(a.entries) * entrySize
}

// Body returns the raw body buffer. The slice aliases internal state.
func (a *Archive) Body() []byte {
	return a.body
}

// FindLastOffset returns the offset just past the furthest-reaching
// entry, which is where AddFile places new data.
func (a *Archive) FindLastOffset() uint32 {
	var last uint32
	for _, e := range a.entries {
		if end := e.Offset + e.Size; end > last {
			last = end
		}
	}
	return last
}

// lookup finds the entry position for id, building the lookup map on
// first use so the zero value works.
func (a *Archive) lookup(id int32) (int, bool) {
	if a.byID == nil {
		a.rebuildIndex()
	}
	i, ok := a.byID[id]
	return i, ok
}

func (a *Archive) rebuildIndex() {
	if a.byID == nil {
		a.byID = make(map[int32]int, len(a.entries))
	} else {
		clear(a.byID)
	}
	for i, e := range a.entries {
		a.byID[e.ID] = i
	}
}
