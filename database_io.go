// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Embedded naming database constants
const (
	// LocalDBKeyLegacy is the reserved id of the embedded naming
	// database in legacy-identifier archives: the legacy hash of
	// "local mix database.dat".
	LocalDBKeyLegacy int32 = 0x54C2D545

	// LocalDBKeyModern is the reserved id in modern-identifier archives.
	LocalDBKeyModern int32 = 0x366E051F

	// localDBHeaderSize is the embedded database header size: the
	// prefix plus size, two reserved words, version and name count.
	localDBHeaderSize = len(localDBPrefix) + 20
)

// localDBPrefix opens every embedded naming database.
const localDBPrefix = "XCC by Olaf van der Spek\x1a\x04\x17\x27\x10\x19\x80\x00"

// Naming database errors.
var (
	ErrBadLocalDBPrefix = errors.New("naming database prefix mismatch")
	ErrUnknownDBVersion = errors.New("unknown naming database version")
	ErrUnterminatedName = errors.New("unterminated name in naming database")
)

// parseDatabaseVersion validates a version read off the wire.
func parseDatabaseVersion(v uint32) (DatabaseVersion, error) {
	switch ver := DatabaseVersion(v); ver {
	case DatabaseTD, DatabaseRA, DatabaseTS, DatabaseRA2, DatabaseYR:
		return ver, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownDBVersion, v)
}

// ReadLocalDatabase parses an embedded naming database: the fixed
// prefix, a declared total size, two reserved words, the version, the
// name count, then count NUL-terminated names. Ids are not stored in
// the file; they are recovered by hashing each name with the database's
// own identifier generation.
func ReadLocalDatabase(r io.Reader) (*LocalDatabase, error) {
	prefix := make([]byte, len(localDBPrefix))
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, fmt.Errorf("read database header: %w", err)
	}
	if string(prefix) != localDBPrefix {
		return nil, ErrBadLocalDBPrefix
	}

	var hdr struct {
		Size     uint32
		Reserved [8]byte
		Version  uint32
		Count    uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read database header: %w", err)
	}
	version, err := parseDatabaseVersion(hdr.Version)
	if err != nil {
		return nil, err
	}
	if int(hdr.Size) < localDBHeaderSize {
		return nil, fmt.Errorf("naming database size %d smaller than its header", hdr.Size)
	}

	buf := make([]byte, int(hdr.Size)-localDBHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read database names: %w", err)
	}

	db := NewLocalDatabase(version)
	game := version.Game()
	for i := 0; i < int(hdr.Count); i++ {
		j := bytes.IndexByte(buf, 0)
		if j < 0 {
			return nil, fmt.Errorf("%w: name %d of %d", ErrUnterminatedName, i, hdr.Count)
		}
		db.AddName(string(buf[:j]), game)
		buf = buf[j+1:]
	}
	return db, nil
}

// WriteTo serializes the database in its embedded form. The declared
// size counts the header and every name with its NUL terminator.
func (db *LocalDatabase) WriteTo(w io.Writer) (int64, error) {
	entries := db.Entries()

	size := localDBHeaderSize
	for _, e := range entries {
		size += len(e.Name) + 1
	}

	buf := make([]byte, 0, size)
	buf = append(buf, localDBPrefix...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(size))
	buf = append(buf, make([]byte, 8)...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(db.Version))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf = append(buf, e.Name...)
		buf = append(buf, 0)
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("write naming database: %w", err)
	}
	return int64(n), nil
}

// localDatabaseKey returns the reserved id the embedded database lives
// under in this archive's format.
func (a *Archive) localDatabaseKey() int32 {
	if a.NewFormat {
		return LocalDBKeyModern
	}
	return LocalDBKeyLegacy
}

// LocalDatabase extracts and decodes the embedded naming database.
// Archives without one yield nil without an error.
func (a *Archive) LocalDatabase() (*LocalDatabase, error) {
	body := a.File(a.localDatabaseKey())
	if body == nil {
		return nil, nil
	}
	return ReadLocalDatabase(bytes.NewReader(body))
}

// SetLocalDatabase serializes db and stores it as the embedded naming
// database, replacing any previous one.
func (a *Archive) SetLocalDatabase(db *LocalDatabase) error {
	var buf bytes.Buffer
	if _, err := db.WriteTo(&buf); err != nil {
		return err
	}
	if _, err := a.AddFile(a.localDatabaseKey(), buf.Bytes(), true); err != nil {
		return err
	}
	return nil
}

// ReadGlobalDatabase parses a standalone naming database: sub-databases
// back to back, each a count word followed by that many NUL-terminated
// name and description pairs. The first two sub-databases hash names
// with the legacy identifier generation, all later ones with the modern
// one. Descriptions are not retained.
func ReadGlobalDatabase(r io.Reader) (*GlobalDatabase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read global database: %w", err)
	}

	games := []Game{GameTD, GameRA, GameTS}
	g := NewGlobalDatabase()
	for ptr := 0; ptr+4 <= len(data); {
		count := binary.LittleEndian.Uint32(data[ptr:])
		ptr += 4

		layer := len(g.databases)
		if layer > 2 {
			layer = 2
		}
		game := games[layer]

		db := NewDatabase()
		for i := 0; i < int(count); i++ {
			name, next, err := readCString(data, ptr)
			if err != nil {
				return nil, fmt.Errorf("sub-database %d name %d: %w", len(g.databases), i, err)
			}
			_, next, err = readCString(data, next)
			if err != nil {
				return nil, fmt.Errorf("sub-database %d description %d: %w", len(g.databases), i, err)
			}
			ptr = next
			db.AddName(name, game)
		}
		g.Append(db)
	}
	return g, nil
}

// WriteTo serializes the global database. Descriptions are written
// empty.
func (g *GlobalDatabase) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, db := range g.databases {
		entries := db.Entries()
		var count [4]byte
		binary.LittleEndian.PutUint32(count[:], uint32(len(entries)))
		buf.Write(count[:])
		for _, e := range entries {
			buf.WriteString(e.Name)
			buf.Write([]byte{0, 0})
		}
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("write global database: %w", err)
	}
	return int64(n), nil
}

// readCString reads a NUL-terminated string starting at off.
func readCString(data []byte, off int) (string, int, error) {
	if off >= len(data) {
		return "", 0, ErrUnterminatedName
	}
	j := bytes.IndexByte(data[off:], 0)
	if j < 0 {
		return "", 0, ErrUnterminatedName
	}
	return string(data[off : off+j]), off + j + 1, nil
}
