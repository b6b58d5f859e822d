// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package convert maps naming databases and CSF string tables to and
// from an editable INI representation.
package convert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	mix "github.com/suprsokr/go-mix"
	"github.com/suprsokr/go-mix/csf"
	"github.com/suprsokr/go-mix/ini"
)

// DatabaseSection is the section name holding id=name pairs.
const DatabaseSection = "MixDatabase"

var (
	// ErrEmptyLabel indicates a label with no strings to convert.
	ErrEmptyLabel = errors.New("label contains no strings")

	// ErrLabelFormat indicates a label name without the mandatory
	// CATEGORY:NAME shape.
	ErrLabelFormat = errors.New("label is not in CATEGORY:NAME format")
)

// DatabaseToINI renders db as one MixDatabase section with 8-digit
// upper-case hex ids for keys, in the database's deterministic order.
func DatabaseToINI(db *mix.Database) *ini.File {
	f := ini.NewFile()
	s := ini.NewSection(DatabaseSection)
	for _, e := range db.Entries() {
		s.Set(fmt.Sprintf("%08X", uint32(e.ID)), e.Name)
	}
	f.AddSection(s)
	return f
}

// INIToDatabase gathers id=name entries from every section of f. Keys
// are hex ids reinterpreted as signed.
func INIToDatabase(f *ini.File) (*mix.Database, error) {
	db := mix.NewDatabase()
	for _, s := range f.Sections() {
		for _, e := range s.Entries() {
			id, err := strconv.ParseUint(e.Key, 16, 32)
			if err != nil {
				return nil, fmt.Errorf("parse id %q: %w", e.Key, err)
			}
			db.Add(int32(uint32(id)), e.Value)
		}
	}
	return db, nil
}

// CSFToINI renders t with one section per label category: a label
// CATEGORY:NAME becomes key NAME in section CATEGORY. Newlines in
// values are escaped as literal \n. Each label must have at least one
// string and a two-part name; anything past a second ':' is dropped.
func CSFToINI(t *csf.Table) (*ini.File, error) {
	f := ini.NewFile()
	for _, label := range t.Labels() {
		value, ok := label.First()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEmptyLabel, label.Name)
		}
		parts := strings.Split(label.Name, ":")
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: %s", ErrLabelFormat, label.Name)
		}
		f.Set(parts[0], parts[1], strings.ReplaceAll(value, "\n", "\\n"))
	}
	return f, nil
}

// INIToCSF builds a table from f: key NAME in section CATEGORY becomes
// the label CATEGORY:NAME. Escaped \n sequences turn back into
// newlines. The table carries the default version and language; adjust
// them on the result if needed.
func INIToCSF(f *ini.File) *csf.Table {
	t := csf.NewTable()
	for _, s := range f.Sections() {
		for _, e := range s.Entries() {
			t.Set(s.Name()+":"+e.Key, strings.ReplaceAll(e.Value, "\\n", "\n"))
		}
	}
	return t
}
