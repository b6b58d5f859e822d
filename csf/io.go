// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package csf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// Wire prefixes. Each record type opens with a four-byte tag.
const (
	filePrefix      = " FSC"
	labelPrefix     = " LBL"
	valuePrefix     = " RTS"
	wideValuePrefix = "WRTS"
)

// ErrBadPrefix indicates a missing or misplaced record tag.
var ErrBadPrefix = errors.New("string table prefix mismatch")

// String values are UTF-16LE with every byte negated.
var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Read parses a CSF string table from r.
func Read(r io.Reader) (*Table, error) {
	if err := expectPrefix(r, filePrefix); err != nil {
		return nil, err
	}

	var h struct {
		Version    uint32
		NumLabels  uint32
		NumStrings uint32 // recomputed on write
		Extra      uint32
		Language   uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read string table header: %w", err)
	}

	t := NewTable()
	var err error
	if t.Version, err = parseVersion(h.Version); err != nil {
		return nil, err
	}
	if t.Language, err = parseLanguage(h.Language); err != nil {
		return nil, err
	}
	t.Extra = h.Extra

	for i := uint32(0); i < h.NumLabels; i++ {
		label, err := readLabel(r)
		if err != nil {
			return nil, err
		}
		t.Add(label)
	}
	return t, nil
}

func readLabel(r io.Reader) (Label, error) {
	if err := expectPrefix(r, labelPrefix); err != nil {
		return Label{}, err
	}

	var h struct {
		NumStrings uint32
		NameLen    uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Label{}, fmt.Errorf("read label header: %w", err)
	}

	name := make([]byte, h.NameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return Label{}, fmt.Errorf("read label name: %w", err)
	}

	label := Label{Name: string(name)}
	for i := uint32(0); i < h.NumStrings; i++ {
		s, err := readString(r)
		if err != nil {
			return Label{}, fmt.Errorf("label %q: %w", label.Name, err)
		}
		label.Strings = append(label.Strings, s)
	}
	return label, nil
}

func readString(r io.Reader) (String, error) {
	prefix, err := readPrefix(r)
	if err != nil {
		return String{}, err
	}
	var wide bool
	switch prefix {
	case valuePrefix:
	case wideValuePrefix:
		wide = true
	default:
		return String{}, fmt.Errorf("%w: got %q, want %q or %q", ErrBadPrefix, prefix, valuePrefix, wideValuePrefix)
	}

	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return String{}, fmt.Errorf("read string length: %w", err)
	}
	buf := make([]byte, int(length)*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return String{}, fmt.Errorf("read string value: %w", err)
	}
	negate(buf)

	decoded, err := utf16LE.NewDecoder().Bytes(buf)
	if err != nil {
		return String{}, fmt.Errorf("decode string value: %w", err)
	}
	s := String{Value: string(decoded)}

	if wide {
		var extraLen uint32
		if err := binary.Read(r, binary.LittleEndian, &extraLen); err != nil {
			return String{}, fmt.Errorf("read extra length: %w", err)
		}
		extra := make([]byte, extraLen)
		if _, err := io.ReadFull(r, extra); err != nil {
			return String{}, fmt.Errorf("read extra value: %w", err)
		}
		s.Extra = string(extra)
	}
	return s, nil
}

// Write serializes t. Label and string counts are recomputed from the
// table contents; labels go out in their table order.
func Write(w io.Writer, t *Table) error {
	if _, err := io.WriteString(w, filePrefix); err != nil {
		return fmt.Errorf("write string table header: %w", err)
	}
	h := struct {
		Version    uint32
		NumLabels  uint32
		NumStrings uint32
		Extra      uint32
		Language   uint32
	}{
		Version:    uint32(t.Version),
		NumLabels:  uint32(t.Len()),
		NumStrings: uint32(t.StringCount()),
		Extra:      t.Extra,
		Language:   uint32(t.Language),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write string table header: %w", err)
	}

	for i := range t.labels {
		if err := writeLabel(w, &t.labels[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeLabel(w io.Writer, label *Label) error {
	if _, err := io.WriteString(w, labelPrefix); err != nil {
		return fmt.Errorf("write label %q: %w", label.Name, err)
	}
	h := struct {
		NumStrings uint32
		NameLen    uint32
	}{
		NumStrings: uint32(len(label.Strings)),
		NameLen:    uint32(len(label.Name)),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("write label %q: %w", label.Name, err)
	}
	if _, err := io.WriteString(w, label.Name); err != nil {
		return fmt.Errorf("write label %q: %w", label.Name, err)
	}

	for i := range label.Strings {
		if err := writeString(w, &label.Strings[i]); err != nil {
			return fmt.Errorf("label %q: %w", label.Name, err)
		}
	}
	return nil
}

func writeString(w io.Writer, s *String) error {
	prefix := valuePrefix
	if s.Extra != "" {
		prefix = wideValuePrefix
	}
	if _, err := io.WriteString(w, prefix); err != nil {
		return fmt.Errorf("write string: %w", err)
	}

	encoded, err := utf16LE.NewEncoder().Bytes([]byte(s.Value))
	if err != nil {
		return fmt.Errorf("encode string value: %w", err)
	}
	negate(encoded)

	// The length field counts UTF-16 units, not input bytes.
	if err := binary.Write(w, binary.LittleEndian, uint32(len(encoded)/2)); err != nil {
		return fmt.Errorf("write string length: %w", err)
	}
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write string value: %w", err)
	}

	if s.Extra != "" {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Extra))); err != nil {
			return fmt.Errorf("write extra length: %w", err)
		}
		if _, err := io.WriteString(w, s.Extra); err != nil {
			return fmt.Errorf("write extra value: %w", err)
		}
	}
	return nil
}

func readPrefix(r io.Reader) (string, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("read prefix: %w", err)
	}
	return string(buf[:]), nil
}

func expectPrefix(r io.Reader, want string) error {
	got, err := readPrefix(r)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: got %q, want %q", ErrBadPrefix, got, want)
	}
	return nil
}

func negate(b []byte) {
	for i := range b {
		b[i] = ^b[i]
	}
}
