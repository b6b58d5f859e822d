// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package csf reads and writes CSF string tables, the compiled
// localisation format of the later C&C games. A table maps label names
// to lists of UTF-16 strings; vanilla files carry exactly one string
// per label. Label order is preserved.
package csf

import (
	"errors"
	"fmt"
	"sort"
)

// Version is the format version stored in the table header.
type Version uint32

const (
	// VersionNox is used by Nox.
	VersionNox Version = 2

	// VersionCnc is used by the C&C games and BFME.
	VersionCnc Version = 3
)

// ErrUnknownVersion indicates a header version this package cannot parse.
var ErrUnknownVersion = errors.New("unknown string table version")

func (v Version) String() string {
	switch v {
	case VersionNox:
		return "nox"
	case VersionCnc:
		return "cnc"
	default:
		return fmt.Sprintf("Version(%d)", uint32(v))
	}
}

// ParseVersion converts a version name used on the command line.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "nox":
		return VersionNox, nil
	case "cnc":
		return VersionCnc, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
	}
}

func parseVersion(v uint32) (Version, error) {
	switch Version(v) {
	case VersionNox, VersionCnc:
		return Version(v), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownVersion, v)
	}
}

// Language is the localisation id stored in the table header.
type Language uint32

const (
	LanguageENUS Language = iota // English (United States)
	LanguageENUK                 // English (United Kingdom)
	LanguageDE                   // German
	LanguageFR                   // French
	LanguageES                   // Spanish
	LanguageIT                   // Italian
	LanguageJA                   // Japanese
	LanguageXX                   // unused Westwood joke entry
	LanguageKO                   // Korean
	LanguageZHCN                 // Chinese
)

// ErrUnknownLanguage indicates a header language id this package cannot parse.
var ErrUnknownLanguage = errors.New("unknown string table language")

var languageNames = [...]string{"enus", "enuk", "de", "fr", "es", "it", "ja", "xx", "ko", "zhcn"}

func (l Language) String() string {
	if int(l) < len(languageNames) {
		return languageNames[l]
	}
	return fmt.Sprintf("Language(%d)", uint32(l))
}

// ParseLanguage converts a language name used on the command line.
func ParseLanguage(s string) (Language, error) {
	for i, name := range languageNames {
		if s == name {
			return Language(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

func parseLanguage(v uint32) (Language, error) {
	if int(v) < len(languageNames) {
		return Language(v), nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownLanguage, v)
}

// String is one value of a label. Extra is a rarely-used plain-ASCII
// attachment; a string carrying one is written in the wide layout.
type String struct {
	Value string
	Extra string
}

// Label is a named list of strings. Lookups through game rules only
// ever see the first one.
type Label struct {
	Name    string
	Strings []String
}

// First returns the label's first string value.
func (l *Label) First() (string, bool) {
	if len(l.Strings) == 0 {
		return "", false
	}
	return l.Strings[0].Value, true
}

// Table is an in-memory CSF string table.
type Table struct {
	Version  Version
	Language Language

	// Extra round-trips untouched. Always zero in vanilla files.
	Extra uint32

	labels []Label
	index  map[string]int
}

// NewTable returns an empty table with the common version and language.
func NewTable() *Table {
	return &Table{
		Version:  VersionCnc,
		Language: LanguageENUS,
		index:    make(map[string]int),
	}
}

// Len returns the number of labels.
func (t *Table) Len() int {
	return len(t.labels)
}

// StringCount returns the number of strings across all labels.
func (t *Table) StringCount() int {
	n := 0
	for _, l := range t.labels {
		n += len(l.Strings)
	}
	return n
}

// Get returns the first string value of the named label.
func (t *Table) Get(name string) (string, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.labels[i].First()
}

// Label returns the named label, or nil.
func (t *Table) Label(name string) *Label {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return &t.labels[i]
}

// Labels returns a copy of the labels in order.
func (t *Table) Labels() []Label {
	out := make([]Label, len(t.labels))
	copy(out, t.labels)
	return out
}

// Set stores value as the single string of the named label, creating or
// replacing the label in place.
func (t *Table) Set(name, value string) {
	t.Add(Label{Name: name, Strings: []String{{Value: value}}})
}

// Add inserts a label. A label with the same name is replaced at its
// original position and returned.
func (t *Table) Add(l Label) *Label {
	if i, ok := t.index[l.Name]; ok {
		old := t.labels[i]
		t.labels[i] = l
		return &old
	}
	t.labels = append(t.labels, l)
	t.index[l.Name] = len(t.labels) - 1
	return nil
}

// Remove deletes the named label and returns it, or nil.
func (t *Table) Remove(name string) *Label {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	l := t.labels[i]
	t.labels = append(t.labels[:i], t.labels[i+1:]...)
	t.reindex()
	return &l
}

// Sort reorders the labels by name.
func (t *Table) Sort() {
	sort.SliceStable(t.labels, func(i, j int) bool {
		return t.labels[i].Name < t.labels[j].Name
	})
	t.reindex()
}

func (t *Table) reindex() {
	if t.index == nil {
		t.index = make(map[string]int, len(t.labels))
	} else {
		clear(t.index)
	}
	for i, l := range t.labels {
		t.index[l.Name] = i
	}
}
