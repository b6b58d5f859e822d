// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package ini

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadSection(t *testing.T) {
	t.Parallel()

	f, err := Read(strings.NewReader("[Section]\nkey1=value1\nkey2=value2"))
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())

	s := f.Section("Section")
	require.NotNil(t, s)
	require.Equal(t, []Entry{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: "value2"},
	}, s.Entries())
}

func TestReadManySections(t *testing.T) {
	t.Parallel()

	f, err := Read(strings.NewReader("[A]\nkey1=value1\n[B]\nkey2=value2"))
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())

	names := []string{f.Sections()[0].Name(), f.Sections()[1].Name()}
	require.Equal(t, []string{"A", "B"}, names)

	v, ok := f.Get("B", "key2")
	require.True(t, ok)
	require.Equal(t, "value2", v)
}

func TestReadTrimsEntries(t *testing.T) {
	t.Parallel()

	f, err := Read(strings.NewReader("[S]\n    b key   =   value   c     "))
	require.NoError(t, err)

	v, ok := f.Get("S", "b key")
	require.True(t, ok)
	require.Equal(t, "value   c", v)
}

func TestReadComments(t *testing.T) {
	t.Parallel()

	input := "; file comment\n[Section] ; trailing\nkey=value ; explains the key\n;key2=value2"
	f, err := Read(strings.NewReader(input))
	require.NoError(t, err)

	s := f.Section("Section")
	require.NotNil(t, s)
	require.Equal(t, 1, s.Len())

	v, ok := s.Get("key")
	require.True(t, ok)
	require.Equal(t, "value", v)
}

func TestReadSectionNameVerbatim(t *testing.T) {
	t.Parallel()

	// The name between the brackets is not trimmed.
	f, err := Read(strings.NewReader("[ Spaced ]\nk=v"))
	require.NoError(t, err)
	require.NotNil(t, f.Section(" Spaced "))
	require.Nil(t, f.Section("Spaced"))
}

func TestReadIndentedBracketIsNotASection(t *testing.T) {
	t.Parallel()

	// Only an unindented '[' opens a section; this line is blank noise.
	f, err := Read(strings.NewReader("[A]\n  [B]\nk=v"))
	require.NoError(t, err)
	require.Equal(t, 1, f.Len())

	v, ok := f.Get("A", "k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestReadLinesWithoutEquals(t *testing.T) {
	t.Parallel()

	f, err := Read(strings.NewReader("[A]\nabba\n\nk=v"))
	require.NoError(t, err)
	require.Equal(t, 1, f.Section("A").Len())
}

func TestReadValueKeepsEquals(t *testing.T) {
	t.Parallel()

	// Only the first '=' splits; the rest belongs to the value.
	f, err := Read(strings.NewReader("[A]\na=b=c\nd==e"))
	require.NoError(t, err)

	v, ok := f.Get("A", "a")
	require.True(t, ok)
	require.Equal(t, "b=c", v)
	v, ok = f.Get("A", "d")
	require.True(t, ok)
	require.Equal(t, "=e", v)
}

func TestReadRepeatedSectionReplaces(t *testing.T) {
	t.Parallel()

	input := "[A]\nk1=v1\n[B]\nx=y\n[A]\nk2=v2"
	f, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, f.Len())

	// The fresh [A] replaced the first one's content but kept its slot.
	require.Equal(t, "A", f.Sections()[0].Name())
	a := f.Section("A")
	require.Equal(t, 1, a.Len())
	_, ok := a.Get("k1")
	require.False(t, ok)
	v, ok := a.Get("k2")
	require.True(t, ok)
	require.Equal(t, "v2", v)
}

func TestReadDuplicateKeyOverwrites(t *testing.T) {
	t.Parallel()

	f, err := Read(strings.NewReader("[A]\nk=old\nk=new"))
	require.NoError(t, err)

	s := f.Section("A")
	require.Equal(t, 1, s.Len())
	v, _ := s.Get("k")
	require.Equal(t, "new", v)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unclosed section", "[Section", ErrUnclosedSection},
		{"missing value", "[A]\nkey=", ErrMissingValue},
		{"missing key", "[A]\n=value", ErrMissingKey},
		{"missing both", "[A]\n=", ErrMissingKeyAndValue},
		{"equals only value", "[A]\n==", ErrMissingKey},
		{"entry outside section", "key=value", ErrEntryOutsideSection},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Read(strings.NewReader(tt.input))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadErrorLineNumbers(t *testing.T) {
	t.Parallel()

	_, err := Read(strings.NewReader("[A]\nok=fine\nbroken="))
	require.ErrorIs(t, err, ErrMissingValue)
	require.ErrorContains(t, err, "line 3")
}

func TestWrite(t *testing.T) {
	t.Parallel()

	f := NewFile()
	s := NewSection("Section")
	s.Set("key", "value")
	f.AddSection(s)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	require.Equal(t, "[Section]\nkey=value\n\n", buf.String())
}

func TestWriteManySections(t *testing.T) {
	t.Parallel()

	f := NewFile()
	s1 := NewSection("Section1")
	s1.Set("key1", "value1")
	f.AddSection(s1)
	s2 := NewSection("Section2")
	s2.Set("key2", "value2")
	f.AddSection(s2)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	require.Equal(t, "[Section1]\nkey1=value1\n\n[Section2]\nkey2=value2\n\n", buf.String())
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	f := NewFile()
	f.Set("General", "Name", "Allied Grand Cannon")
	f.Set("General", "Cost", "2000")
	f.Set("Audio", "Theme", "hellmarch")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))

	g, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, g.Len())
	for _, s := range f.Sections() {
		got := g.Section(s.Name())
		require.NotNil(t, got)
		require.Equal(t, s.Entries(), got.Entries())
	}
}

func TestFileSetCreatesSection(t *testing.T) {
	t.Parallel()

	f := NewFile()
	f.Set("New", "k", "v")
	require.Equal(t, 1, f.Len())

	f.Set("New", "k", "v2")
	v, ok := f.Get("New", "k")
	require.True(t, ok)
	require.Equal(t, "v2", v)
	require.Equal(t, 1, f.Section("New").Len())
}

func TestAddSectionReplaces(t *testing.T) {
	t.Parallel()

	f := NewFile()
	old := NewSection("A")
	old.Set("k", "old")
	f.AddSection(old)
	f.AddSection(NewSection("B"))

	fresh := NewSection("A")
	fresh.Set("k", "new")
	got := f.AddSection(fresh)
	require.Same(t, old, got)
	require.Equal(t, 2, f.Len())
	require.Equal(t, "A", f.Sections()[0].Name())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	f := NewFile()
	f.Set("A", "k1", "v1")
	f.Set("A", "k2", "v2")
	f.Set("B", "k", "v")

	s := f.Section("A")
	require.True(t, s.Remove("k1"))
	require.False(t, s.Remove("k1"))
	require.Equal(t, []string{"k2"}, s.Keys())

	removed := f.RemoveSection("A")
	require.Same(t, s, removed)
	require.Nil(t, f.RemoveSection("A"))
	require.Equal(t, 1, f.Len())
	// Lookups still work after the reindex.
	v, ok := f.Get("B", "k")
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestSortAll(t *testing.T) {
	t.Parallel()

	f := NewFile()
	f.Set("Zebra", "b", "2")
	f.Set("Zebra", "a", "1")
	f.Set("Alpha", "z", "9")

	f.SortAll()

	require.Equal(t, "Alpha", f.Sections()[0].Name())
	require.Equal(t, "Zebra", f.Sections()[1].Name())
	require.Equal(t, []string{"a", "b"}, f.Section("Zebra").Keys())

	// Lookups survive the reorder.
	v, ok := f.Get("Zebra", "a")
	require.True(t, ok)
	require.Equal(t, "1", v)
}
