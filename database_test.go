// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestDatabaseEntriesSorted(t *testing.T) {
	d := NewDatabase()
	d.Add(3, "wrench.shp")
	d.Add(1, "bomb.shp")
	d.Add(7, "bomb.shp") // same name under a second id
	d.Add(2, "gadget.shp")

	got := d.Entries()
	want := []NameEntry{
		{ID: 1, Name: "bomb.shp"},
		{ID: 7, Name: "bomb.shp"},
		{ID: 2, Name: "gadget.shp"},
		{ID: 3, Name: "wrench.shp"},
	}
	if len(got) != len(want) {
		t.Fatalf("Entries() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Entries()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDatabaseAddName(t *testing.T) {
	d := NewDatabase()
	id := d.AddName("bomb.shp", GameRA2)
	if want := ModernFileID("bomb.shp"); id != want {
		t.Fatalf("AddName id = %08X, want %08X", uint32(id), uint32(want))
	}

	name, ok := d.Name(id)
	if !ok || name != "bomb.shp" {
		t.Errorf("Name(%08X) = %q, %v", uint32(id), name, ok)
	}

	if !d.Delete(id) {
		t.Errorf("Delete() = false, want true")
	}
	if d.Delete(id) {
		t.Errorf("Delete() twice = true, want false")
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
}

func TestLocalDatabaseRoundTrip(t *testing.T) {
	db := NewLocalDatabase(DatabaseYR)
	for _, name := range []string{"bomb.shp", "wrench.shp", "rules.ini"} {
		db.AddName(name, db.Version.Game())
	}

	var buf bytes.Buffer
	n, err := db.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	wire := buf.Bytes()
	if n != int64(len(wire)) {
		t.Errorf("WriteTo returned %d, wrote %d bytes", n, len(wire))
	}
	// The header's size field covers the whole database.
	if size := binary.LittleEndian.Uint32(wire[32:]); int(size) != len(wire) {
		t.Errorf("header size = %d, want %d", size, len(wire))
	}

	got, err := ReadLocalDatabase(bytes.NewReader(wire))
	if err != nil {
		t.Fatalf("ReadLocalDatabase: %v", err)
	}
	if got.Version != DatabaseYR {
		t.Errorf("Version = %v, want %v", got.Version, DatabaseYR)
	}
	if got.Len() != db.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), db.Len())
	}
	for _, name := range []string{"bomb.shp", "wrench.shp", "rules.ini"} {
		found, ok := got.Name(ModernFileID(name))
		if !ok || found != name {
			t.Errorf("Name(%q id) = %q, %v", name, found, ok)
		}
	}

	var buf2 bytes.Buffer
	if _, err := got.WriteTo(&buf2); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !bytes.Equal(wire, buf2.Bytes()) {
		t.Errorf("rewrite is not byte-identical")
	}
}

func TestLocalDatabaseRehashesIDs(t *testing.T) {
	// Only names travel on the wire; ids are derived back from them.
	db := NewLocalDatabase(DatabaseYR)
	db.Add(12345, "custom.pal")

	var buf bytes.Buffer
	if _, err := db.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadLocalDatabase(&buf)
	if err != nil {
		t.Fatalf("ReadLocalDatabase: %v", err)
	}

	if _, ok := got.Name(12345); ok {
		t.Errorf("arbitrary id survived the round trip")
	}
	if name, ok := got.Name(ModernFileID("custom.pal")); !ok || name != "custom.pal" {
		t.Errorf("Name(hashed id) = %q, %v, want custom.pal", name, ok)
	}
}

func TestLocalDatabaseLegacyHashing(t *testing.T) {
	db := NewLocalDatabase(DatabaseTD)
	db.AddName("shok.shp", db.Version.Game())

	var buf bytes.Buffer
	if _, err := db.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadLocalDatabase(&buf)
	if err != nil {
		t.Fatalf("ReadLocalDatabase: %v", err)
	}

	if name, ok := got.Name(LegacyFileID("shok.shp")); !ok || name != "shok.shp" {
		t.Errorf("Name(legacy id) = %q, %v, want shok.shp", name, ok)
	}
}

func TestLocalDatabaseRejectsPrefix(t *testing.T) {
	db := NewLocalDatabase(DatabaseYR)
	var buf bytes.Buffer
	if _, err := db.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	wire := buf.Bytes()
	wire[0] ^= 0xFF

	if _, err := ReadLocalDatabase(bytes.NewReader(wire)); !errors.Is(err, ErrBadLocalDBPrefix) {
		t.Errorf("ReadLocalDatabase = %v, want ErrBadLocalDBPrefix", err)
	}
}

func TestLocalDatabaseRejectsVersion(t *testing.T) {
	db := NewLocalDatabase(DatabaseYR)
	var buf bytes.Buffer
	if _, err := db.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	wire := buf.Bytes()
	binary.LittleEndian.PutUint32(wire[44:], 99)

	if _, err := ReadLocalDatabase(bytes.NewReader(wire)); !errors.Is(err, ErrUnknownDBVersion) {
		t.Errorf("ReadLocalDatabase = %v, want ErrUnknownDBVersion", err)
	}
}

func TestLocalDatabaseUnterminatedName(t *testing.T) {
	db := NewLocalDatabase(DatabaseYR)
	db.AddName("bomb.shp", db.Version.Game())

	var buf bytes.Buffer
	if _, err := db.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	// Drop the final NUL and shrink the declared size to match.
	wire := buf.Bytes()[:buf.Len()-1]
	binary.LittleEndian.PutUint32(wire[32:], uint32(len(wire)))

	if _, err := ReadLocalDatabase(bytes.NewReader(wire)); !errors.Is(err, ErrUnterminatedName) {
		t.Errorf("ReadLocalDatabase = %v, want ErrUnterminatedName", err)
	}
}

func TestGlobalDatabaseRoundTrip(t *testing.T) {
	g := NewGlobalDatabase()

	td := NewDatabase()
	td.AddName("shok.shp", GameTD)
	ra := NewDatabase()
	ra.AddName("a10.shp", GameRA)
	ts := NewDatabase()
	ts.AddName("bomb.shp", GameTS)
	for _, db := range []*Database{td, ra, ts} {
		g.Append(db)
	}

	var buf bytes.Buffer
	if _, err := g.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadGlobalDatabase(&buf)
	if err != nil {
		t.Fatalf("ReadGlobalDatabase: %v", err)
	}
	if len(got.Databases()) != 3 {
		t.Fatalf("Databases() = %d layers, want 3", len(got.Databases()))
	}

	// The first two layers hash names the legacy way, the third onward
	// the modern way.
	tests := []struct {
		name string
		id   int32
	}{
		{"shok.shp", LegacyFileID("shok.shp")},
		{"a10.shp", LegacyFileID("a10.shp")},
		{"bomb.shp", ModernFileID("bomb.shp")},
	}
	for _, test := range tests {
		name, ok := got.Name(test.id)
		if !ok || name != test.name {
			t.Errorf("Name(%08X) = %q, %v, want %q", uint32(test.id), name, ok, test.name)
		}
	}
}

func TestGlobalDatabaseLaterLayersModern(t *testing.T) {
	g := NewGlobalDatabase()
	for i := 0; i < 3; i++ {
		g.Append(NewDatabase())
	}
	extra := NewDatabase()
	extra.AddName("gadget.shp", GameYR)
	g.Append(extra)

	var buf bytes.Buffer
	if _, err := g.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadGlobalDatabase(&buf)
	if err != nil {
		t.Fatalf("ReadGlobalDatabase: %v", err)
	}

	if name, ok := got.Name(ModernFileID("gadget.shp")); !ok || name != "gadget.shp" {
		t.Errorf("Name(modern id) = %q, %v, want gadget.shp", name, ok)
	}
}

func TestGlobalDatabaseTrailingEmptyLayer(t *testing.T) {
	// An empty trailing sub-database is just a count word ending the
	// stream; it still counts as a layer.
	g := NewGlobalDatabase()
	db := NewDatabase()
	db.AddName("shok.shp", GameTD)
	g.Append(db)
	g.Append(NewDatabase())

	var buf bytes.Buffer
	if _, err := g.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got, err := ReadGlobalDatabase(&buf)
	if err != nil {
		t.Fatalf("ReadGlobalDatabase: %v", err)
	}
	if len(got.Databases()) != 2 {
		t.Errorf("Databases() = %d layers, want 2", len(got.Databases()))
	}
}

func TestDatabaseChain(t *testing.T) {
	id := ModernFileID("shared.shp")

	local := NewDatabase()
	local.Add(id, "local.shp")
	global := NewDatabase()
	global.Add(id, "global.shp")
	global.Add(ModernFileID("only.shp"), "only.shp")

	chain := NewDatabaseChain(local, global)

	// Earlier layers shadow later ones.
	if name, ok := chain.Name(id); !ok || name != "local.shp" {
		t.Errorf("Name() = %q, %v, want local.shp", name, ok)
	}
	if name, ok := chain.Name(ModernFileID("only.shp")); !ok || name != "only.shp" {
		t.Errorf("Name() = %q, %v, want only.shp", name, ok)
	}
	if _, ok := chain.Name(1); ok {
		t.Errorf("Name(1) found, want miss")
	}
}

func TestDatabaseChainNameOrID(t *testing.T) {
	chain := NewDatabaseChain(NewDatabase())

	// Misses render as the unsigned id in hex.
	if got := chain.NameOrID(-559038737); got != "DEADBEEF" {
		t.Errorf("NameOrID() = %q, want DEADBEEF", got)
	}

	db := NewDatabase()
	db.Add(42, "answer.ini")
	chain.Push(db)
	if got := chain.NameOrID(42); got != "answer.ini" {
		t.Errorf("NameOrID(42) = %q, want answer.ini", got)
	}
}

func TestArchiveLocalDatabase(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		a := New()
		db, err := a.LocalDatabase()
		if err != nil || db != nil {
			t.Errorf("LocalDatabase() = %v, %v, want nil, nil", db, err)
		}
	})

	t.Run("legacy key", func(t *testing.T) {
		a := New()
		db := NewLocalDatabase(DatabaseTD)
		db.AddName("shok.shp", GameTD)
		if err := a.SetLocalDatabase(db); err != nil {
			t.Fatalf("SetLocalDatabase: %v", err)
		}
		if _, ok := a.Entry(LocalDBKeyLegacy); !ok {
			t.Fatalf("database not stored under the legacy key")
		}

		got, err := a.LocalDatabase()
		if err != nil {
			t.Fatalf("LocalDatabase: %v", err)
		}
		if name, ok := got.Name(LegacyFileID("shok.shp")); !ok || name != "shok.shp" {
			t.Errorf("Name() = %q, %v, want shok.shp", name, ok)
		}
	})

	t.Run("modern key", func(t *testing.T) {
		a := New()
		a.NewFormat = true
		db := NewLocalDatabase(DatabaseYR)
		db.AddName("bomb.shp", GameYR)
		if err := a.SetLocalDatabase(db); err != nil {
			t.Fatalf("SetLocalDatabase: %v", err)
		}
		if _, ok := a.Entry(LocalDBKeyModern); !ok {
			t.Fatalf("database not stored under the modern key")
		}

		got, err := a.LocalDatabase()
		if err != nil {
			t.Fatalf("LocalDatabase: %v", err)
		}
		if name, ok := got.Name(ModernFileID("bomb.shp")); !ok || name != "bomb.shp" {
			t.Errorf("Name() = %q, %v, want bomb.shp", name, ok)
		}
	})
}
