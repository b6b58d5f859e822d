// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package ini reads and writes the INI dialect used by Westwood game
// data: named sections of key=value entries with ';' comments. Section
// and entry order is preserved, and duplicate keys within a section
// overwrite in place.
package ini

import "sort"

// Entry is one key=value pair.
type Entry struct {
	Key   string
	Value string
}

// Section is a named, ordered collection of entries.
type Section struct {
	name    string
	entries []Entry
	index   map[string]int
}

// NewSection returns an empty section with the given name.
func NewSection(name string) *Section {
	return &Section{name: name, index: make(map[string]int)}
}

// Name returns the section name.
func (s *Section) Name() string {
	return s.name
}

// Len returns the number of entries.
func (s *Section) Len() int {
	return len(s.entries)
}

// Get returns the value stored under key.
func (s *Section) Get(key string) (string, bool) {
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].Value, true
}

// Set stores value under key, replacing an existing entry in place or
// appending a new one.
func (s *Section) Set(key, value string) {
	if i, ok := s.index[key]; ok {
		s.entries[i].Value = value
		return
	}
	s.entries = append(s.entries, Entry{Key: key, Value: value})
	s.index[key] = len(s.entries) - 1
}

// Remove deletes the entry under key and reports whether it existed.
func (s *Section) Remove(key string) bool {
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.reindex()
	return true
}

// Keys returns the entry keys in order.
func (s *Section) Keys() []string {
	keys := make([]string, len(s.entries))
	for i, e := range s.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in order.
func (s *Section) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Sort reorders the entries by key.
func (s *Section) Sort() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Key < s.entries[j].Key
	})
	s.reindex()
}

func (s *Section) reindex() {
	if s.index == nil {
		s.index = make(map[string]int, len(s.entries))
	} else {
		clear(s.index)
	}
	for i, e := range s.entries {
		s.index[e.Key] = i
	}
}

// File is an ordered collection of sections.
type File struct {
	sections []*Section
	index    map[string]int
}

// NewFile returns an empty file.
func NewFile() *File {
	return &File{index: make(map[string]int)}
}

// Len returns the number of sections.
func (f *File) Len() int {
	return len(f.sections)
}

// Section returns the section with the given name, or nil.
func (f *File) Section(name string) *Section {
	i, ok := f.index[name]
	if !ok {
		return nil
	}
	return f.sections[i]
}

// Sections returns the sections in order. The sections themselves are
// shared, not copied.
func (f *File) Sections() []*Section {
	out := make([]*Section, len(f.sections))
	copy(out, f.sections)
	return out
}

// AddSection inserts s into the file. A section with the same name is
// replaced at its original position and returned.
func (f *File) AddSection(s *Section) *Section {
	if i, ok := f.index[s.name]; ok {
		old := f.sections[i]
		f.sections[i] = s
		return old
	}
	f.sections = append(f.sections, s)
	f.index[s.name] = len(f.sections) - 1
	return nil
}

// RemoveSection deletes the named section and returns it, or nil.
func (f *File) RemoveSection(name string) *Section {
	i, ok := f.index[name]
	if !ok {
		return nil
	}
	s := f.sections[i]
	f.sections = append(f.sections[:i], f.sections[i+1:]...)
	f.reindex()
	return s
}

// Get returns the value under key in the named section.
func (f *File) Get(section, key string) (string, bool) {
	s := f.Section(section)
	if s == nil {
		return "", false
	}
	return s.Get(key)
}

// Set stores value under key in the named section, creating the section
// if it does not exist yet.
func (f *File) Set(section, key, value string) {
	s := f.Section(section)
	if s == nil {
		s = NewSection(section)
		f.AddSection(s)
	}
	s.Set(key, value)
}

// Sort reorders the sections by name.
func (f *File) Sort() {
	sort.SliceStable(f.sections, func(i, j int) bool {
		return f.sections[i].name < f.sections[j].name
	})
	f.reindex()
}

// SortAll reorders the sections by name and every section's entries by key.
func (f *File) SortAll() {
	f.Sort()
	for _, s := range f.sections {
		s.Sort()
	}
}

func (f *File) reindex() {
	if f.index == nil {
		f.index = make(map[string]int, len(f.sections))
	} else {
		clear(f.index)
	}
	for i, s := range f.sections {
		f.index[s.name] = i
	}
}
