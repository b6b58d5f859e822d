// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"strings"
	"testing"

	mix "github.com/suprsokr/go-mix"
)

func TestFlagNames(t *testing.T) {
	tests := []struct {
		flags mix.Flags
		want  string
	}{
		{0, "none"},
		{mix.FlagChecksum, "checksum"},
		{mix.FlagEncryption, "encrypted"},
		{mix.FlagChecksum | mix.FlagEncryption, "checksum, encrypted"},
		{0x0400, "none"},
	}
	for _, tt := range tests {
		if got := flagNames(tt.flags); got != tt.want {
			t.Errorf("flagNames(0x%04X) = %q, want %q", uint16(tt.flags), got, tt.want)
		}
	}
}

func TestSortEntries(t *testing.T) {
	db := mix.NewDatabase()
	db.Add(3, "apple.shp")
	db.Add(1, "zebra.shp")
	chain := mix.NewDatabaseChain(db)

	entries := func() []mix.Entry {
		return []mix.Entry{
			{ID: 1, Offset: 50, Size: 2},
			{ID: 3, Offset: 0, Size: 9},
		}
	}

	byName := entries()
	if err := sortEntries(byName, "name", chain); err != nil {
		t.Fatalf("sortEntries(name): %v", err)
	}
	if byName[0].ID != 3 {
		t.Errorf("first entry by name has id %d, want 3", byName[0].ID)
	}

	bySize := entries()
	if err := sortEntries(bySize, "size", chain); err != nil {
		t.Fatalf("sortEntries(size): %v", err)
	}
	if bySize[0].Size != 2 {
		t.Errorf("first entry by size has size %d, want 2", bySize[0].Size)
	}

	byOffset := entries()
	if err := sortEntries(byOffset, "offset", chain); err != nil {
		t.Fatalf("sortEntries(offset): %v", err)
	}
	if byOffset[0].Offset != 0 {
		t.Errorf("first entry by offset is at %d, want 0", byOffset[0].Offset)
	}

	if err := sortEntries(entries(), "color", chain); err == nil {
		t.Error("sortEntries(color) succeeded, want error")
	}
}

func TestEllipsize(t *testing.T) {
	if got := ellipsize("short", 10); got != "short" {
		t.Errorf("ellipsize(short) = %q", got)
	}
	if got := ellipsize(strings.Repeat("a", 20), 10); got != "aaaaaaa..." {
		t.Errorf("ellipsize(20*a) = %q, want aaaaaaa...", got)
	}
	if got := ellipsize("ααααα", 4); got != "α..." {
		t.Errorf("ellipsize(5 runes, 4) = %q, want α...", got)
	}
}
