// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package ini

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse errors. Read wraps each with the 1-based line number.
var (
	ErrUnclosedSection     = errors.New("unclosed section name")
	ErrMissingValue        = errors.New("missing entry value")
	ErrMissingKey          = errors.New("missing entry key")
	ErrMissingKeyAndValue  = errors.New("missing entry key and value")
	ErrEntryOutsideSection = errors.New("entry with no section")
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineSection
	lineEntry
)

type parsedLine struct {
	kind    lineKind
	section string
	entry   Entry
}

// Read parses an INI file from r.
func Read(r io.Reader) (*File, error) {
	f := NewFile()
	var current *Section

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		p, err := parseLine(sc.Text(), line)
		if err != nil {
			return nil, err
		}
		switch p.kind {
		case lineSection:
			if current != nil {
				f.AddSection(current)
			}
			current = NewSection(p.section)
		case lineEntry:
			if current == nil {
				return nil, fmt.Errorf("line %d: %w", line, ErrEntryOutsideSection)
			}
			current.Set(p.entry.Key, p.entry.Value)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ini: %w", err)
	}

	if current != nil {
		f.AddSection(current)
	}
	return f, nil
}

// parseLine classifies one line as a section header, an entry or blank.
// The comment is cut first; a section header is recognized only by an
// unindented '[' and its name is taken verbatim up to the first ']'.
// Only the first '=' splits an entry, so values may contain '='.
func parseLine(text string, line int) (parsedLine, error) {
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = text[:i]
	}

	if strings.HasPrefix(text, "[") {
		end := strings.IndexByte(text, ']')
		if end < 0 {
			return parsedLine{}, fmt.Errorf("line %d: %w", line, ErrUnclosedSection)
		}
		return parsedLine{kind: lineSection, section: text[1:end]}, nil
	}

	parts := strings.SplitN(text, "=", 2)
	if len(parts) == 1 {
		return parsedLine{}, nil
	}
	switch {
	case parts[0] == "" && parts[1] == "":
		return parsedLine{}, fmt.Errorf("line %d: %w", line, ErrMissingKeyAndValue)
	case parts[1] == "":
		return parsedLine{}, fmt.Errorf("line %d: %w", line, ErrMissingValue)
	case parts[0] == "":
		return parsedLine{}, fmt.Errorf("line %d: %w", line, ErrMissingKey)
	}
	return parsedLine{kind: lineEntry, entry: Entry{
		Key:   strings.TrimSpace(parts[0]),
		Value: strings.TrimSpace(parts[1]),
	}}, nil
}

// Write serializes f: a [Name] header per section, one key=value line
// per entry, and a blank line after every section.
func Write(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)
	for _, s := range f.sections {
		fmt.Fprintf(bw, "[%s]\n", s.name)
		for _, e := range s.entries {
			fmt.Fprintf(bw, "%s=%s\n", e.Key, e.Value)
		}
		fmt.Fprintln(bw)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ini: %w", err)
	}
	return nil
}
