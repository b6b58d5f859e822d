// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package csf

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableSetGet(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Set("GUI:OK", "OK")
	tbl.Set("GUI:Cancel", "Cancel")

	v, ok := tbl.Get("GUI:OK")
	require.True(t, ok)
	require.Equal(t, "OK", v)

	_, ok = tbl.Get("GUI:Missing")
	require.False(t, ok)

	require.Equal(t, 2, tbl.Len())
	require.Equal(t, 2, tbl.StringCount())
}

func TestTableAddReplaces(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Set("A", "first")
	tbl.Set("B", "second")

	old := tbl.Add(Label{Name: "A", Strings: []String{{Value: "replaced"}}})
	require.NotNil(t, old)
	require.Equal(t, "first", old.Strings[0].Value)

	// Replacement keeps the original position.
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, "A", tbl.Labels()[0].Name)
	v, _ := tbl.Get("A")
	require.Equal(t, "replaced", v)
}

func TestTableRemove(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Set("A", "one")
	tbl.Set("B", "two")

	removed := tbl.Remove("A")
	require.NotNil(t, removed)
	require.Equal(t, "A", removed.Name)
	require.Nil(t, tbl.Remove("A"))
	require.Equal(t, 1, tbl.Len())

	v, ok := tbl.Get("B")
	require.True(t, ok)
	require.Equal(t, "two", v)
}

func TestTableEmptyLabel(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Add(Label{Name: "Empty"})

	_, ok := tbl.Get("Empty")
	require.False(t, ok)
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, 0, tbl.StringCount())
}

func TestTableSort(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Set("Zulu", "z")
	tbl.Set("Alpha", "a")
	tbl.Sort()

	labels := tbl.Labels()
	require.Equal(t, "Alpha", labels[0].Name)
	require.Equal(t, "Zulu", labels[1].Name)

	v, ok := tbl.Get("Zulu")
	require.True(t, ok)
	require.Equal(t, "z", v)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Language = LanguageDE
	tbl.Extra = 0xDEAD
	tbl.Set("GUI:OK", "OK")
	tbl.Set("THEME:HellMarch", "Hell March")
	tbl.Add(Label{Name: "MULTI", Strings: []String{
		{Value: "first"},
		{Value: "second", Extra: "meta.wav"},
	}})
	tbl.Set("EMPTY", "")
	tbl.Set("TXT:Unicode", "Xakep 🙂 Привет")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, VersionCnc, got.Version)
	require.Equal(t, LanguageDE, got.Language)
	require.Equal(t, uint32(0xDEAD), got.Extra)
	require.Equal(t, tbl.Len(), got.Len())
	require.Equal(t, tbl.StringCount(), got.StringCount())
	require.Equal(t, tbl.Labels(), got.Labels())
}

func TestWriteWire(t *testing.T) {
	t.Parallel()

	// One label "E" holding the single code point U+1F642, which takes
	// two UTF-16 units. The length field counts units and every payload
	// byte is negated.
	tbl := NewTable()
	tbl.Set("E", "\U0001F642")

	want := []byte{
		' ', 'F', 'S', 'C',
		3, 0, 0, 0, // version
		1, 0, 0, 0, // labels
		1, 0, 0, 0, // strings
		0, 0, 0, 0, // extra
		0, 0, 0, 0, // language
		' ', 'L', 'B', 'L',
		1, 0, 0, 0, // strings in label
		1, 0, 0, 0, // name length
		'E',
		' ', 'R', 'T', 'S',
		2, 0, 0, 0, // value length in UTF-16 units
		0xC2, 0x27, 0xBD, 0x21, // negated UTF-16LE D83D DE42
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl))
	require.Equal(t, want, buf.Bytes())
}

func TestReadIgnoresHeaderStringCount(t *testing.T) {
	t.Parallel()

	tbl := NewTable()
	tbl.Set("A", "x")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tbl))
	wire := buf.Bytes()
	// Corrupt the header string count; readers must not trust it.
	copy(wire[12:16], []byte{0xFF, 0xFF, 0xFF, 0xFF})

	got, err := Read(bytes.NewReader(wire))
	require.NoError(t, err)
	require.Equal(t, 1, got.StringCount())
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	valid := func() []byte {
		tbl := NewTable()
		tbl.Set("A", "x")
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, tbl))
		return buf.Bytes()
	}

	t.Run("file prefix", func(t *testing.T) {
		t.Parallel()
		wire := valid()
		wire[0] = 'X'
		_, err := Read(bytes.NewReader(wire))
		require.ErrorIs(t, err, ErrBadPrefix)
	})

	t.Run("label prefix", func(t *testing.T) {
		t.Parallel()
		wire := valid()
		wire[24] = 'X'
		_, err := Read(bytes.NewReader(wire))
		require.ErrorIs(t, err, ErrBadPrefix)
	})

	t.Run("string prefix", func(t *testing.T) {
		t.Parallel()
		wire := valid()
		// " RTS" sits after the label header and one-byte name.
		wire[37] = 'X'
		_, err := Read(bytes.NewReader(wire))
		require.ErrorIs(t, err, ErrBadPrefix)
	})

	t.Run("unknown version", func(t *testing.T) {
		t.Parallel()
		wire := valid()
		wire[4] = 9
		_, err := Read(bytes.NewReader(wire))
		require.ErrorIs(t, err, ErrUnknownVersion)
	})

	t.Run("unknown language", func(t *testing.T) {
		t.Parallel()
		wire := valid()
		wire[20] = 99
		_, err := Read(bytes.NewReader(wire))
		require.ErrorIs(t, err, ErrUnknownLanguage)
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()
		wire := valid()
		_, err := Read(bytes.NewReader(wire[:len(wire)-1]))
		require.Error(t, err)
	})
}

func TestParseVersion(t *testing.T) {
	t.Parallel()

	for _, v := range []Version{VersionNox, VersionCnc} {
		got, err := ParseVersion(v.String())
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	_, err := ParseVersion("bfme2")
	require.ErrorIs(t, err, ErrUnknownVersion)
}

func TestParseLanguage(t *testing.T) {
	t.Parallel()

	for l := LanguageENUS; l <= LanguageZHCN; l++ {
		got, err := ParseLanguage(l.String())
		require.NoError(t, err)
		require.Equal(t, l, got)
	}

	_, err := ParseLanguage("tlh")
	require.ErrorIs(t, err, ErrUnknownLanguage)
}
