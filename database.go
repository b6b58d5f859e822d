// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"fmt"
	"sort"
)

// DatabaseVersion tags a naming database with the identifier generation
// its ids were hashed with. The values match the version field of the
// embedded database header.
type DatabaseVersion uint32

const (
	// DatabaseTD is a Tiberian Dawn era database (legacy identifier).
	DatabaseTD DatabaseVersion = 0
	// DatabaseRA is a Red Alert era database (legacy identifier).
	DatabaseRA DatabaseVersion = 1
	// DatabaseTS is a Tiberian Sun era database (modern identifier).
	DatabaseTS DatabaseVersion = 2
	// DatabaseRA2 is a Red Alert 2 era database (modern identifier).
	DatabaseRA2 DatabaseVersion = 5
	// DatabaseYR is a Yuri's Revenge era database (modern identifier).
	DatabaseYR DatabaseVersion = 6
)

// Game returns the identifier generation this database version hashes
// names with.
func (v DatabaseVersion) Game() Game {
	switch v {
	case DatabaseTD:
		return GameTD
	case DatabaseRA:
		return GameRA
	case DatabaseTS:
		return GameTS
	case DatabaseRA2:
		return GameRA2
	}
	return GameYR
}

// String returns the short tag of the version's game.
func (v DatabaseVersion) String() string {
	return v.Game().String()
}

// DatabaseVersion returns the database era whose names hash the way this
// game's do. Firestorm shares Tiberian Sun's era.
func (g Game) DatabaseVersion() DatabaseVersion {
	switch g {
	case GameTD:
		return DatabaseTD
	case GameRA:
		return DatabaseRA
	case GameTS, GameFS:
		return DatabaseTS
	case GameRA2:
		return DatabaseRA2
	}
	return DatabaseYR
}

// NameEntry is one id to name mapping of a database.
type NameEntry struct {
	ID   int32
	Name string
}

// Database maps file identifiers back to the names they were hashed
// from. The zero value is not usable; call NewDatabase.
type Database struct {
	names map[int32]string
}

// NewDatabase returns an empty naming database.
func NewDatabase() *Database {
	return &Database{names: make(map[int32]string)}
}

// Add stores a name under an id. An existing mapping is replaced.
func (d *Database) Add(id int32, name string) {
	d.names[id] = name
}

// AddName hashes name with the given game's identifier, stores the
// mapping and returns the id.
func (d *Database) AddName(name string, game Game) int32 {
	id := FileID(name, game)
	d.Add(id, name)
	return id
}

// Name returns the name mapped to id.
func (d *Database) Name(id int32) (string, bool) {
	name, ok := d.names[id]
	return name, ok
}

// Delete removes the mapping for id, reporting whether one existed.
func (d *Database) Delete(id int32) bool {
	_, ok := d.names[id]
	delete(d.names, id)
	return ok
}

// Len returns the number of mappings.
func (d *Database) Len() int {
	return len(d.names)
}

// Entries returns the database contents sorted by name, the order used
// when the database is serialized.
func (d *Database) Entries() []NameEntry {
	entries := make([]NameEntry, 0, len(d.names))
	for id, name := range d.names {
		entries = append(entries, NameEntry{ID: id, Name: name})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})
	return entries
}

// LocalDatabase is the naming table embedded inside an archive under a
// reserved identifier.
type LocalDatabase struct {
	Database
	Version DatabaseVersion
}

// NewLocalDatabase returns an empty embedded naming database for the
// given identifier generation.
func NewLocalDatabase(version DatabaseVersion) *LocalDatabase {
	return &LocalDatabase{Database: Database{names: make(map[int32]string)}, Version: version}
}

// GlobalDatabase is a standalone naming file holding one table per
// identifier generation.
type GlobalDatabase struct {
	databases []*Database
}

// NewGlobalDatabase returns an empty global naming database.
func NewGlobalDatabase() *GlobalDatabase {
	return &GlobalDatabase{}
}

// Append adds a table as the next (lower priority) layer.
func (g *GlobalDatabase) Append(db *Database) {
	g.databases = append(g.databases, db)
}

// Databases returns the layered tables in priority order.
func (g *GlobalDatabase) Databases() []*Database {
	return g.databases
}

// Name returns the first name any layer maps to id.
func (g *GlobalDatabase) Name(id int32) (string, bool) {
	for _, db := range g.databases {
		if name, ok := db.Name(id); ok {
			return name, ok
		}
	}
	return "", false
}

// DatabaseChain resolves names through an ordered list of databases,
// typically an archive's own table first and global layers after it.
// The first layer that knows an id wins.
type DatabaseChain struct {
	layers []*Database
}

// NewDatabaseChain builds a chain from layers in decreasing priority.
func NewDatabaseChain(layers ...*Database) *DatabaseChain {
	return &DatabaseChain{layers: layers}
}

// Push appends a layer with lower priority than all existing ones.
func (c *DatabaseChain) Push(db *Database) {
	c.layers = append(c.layers, db)
}

// Name resolves id through the chain.
func (c *DatabaseChain) Name(id int32) (string, bool) {
	for _, db := range c.layers {
		if name, ok := db.Name(id); ok {
			return name, ok
		}
	}
	return "", false
}

// NameOrID resolves id through the chain, falling back to the id itself
// rendered as 8 upper-case hex digits. A lookup miss is never an error.
func (c *DatabaseChain) NameOrID(id int32) string {
	if name, ok := c.Name(id); ok {
		return name
	}
	return fmt.Sprintf("%08X", uint32(id))
}
