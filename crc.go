// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math/bits"
	"strings"
)

// Game selects the filename identifier variant used by a game's archives.
type Game int

const (
	// GameTD is Tiberian Dawn (legacy identifier).
	GameTD Game = iota
	// GameRA is Red Alert (legacy identifier).
	GameRA
	// GameTS is Tiberian Sun (modern identifier).
	GameTS
	// GameFS is Firestorm (modern identifier).
	GameFS
	// GameRA2 is Red Alert 2 (modern identifier).
	GameRA2
	// GameYR is Yuri's Revenge (modern identifier).
	GameYR
)

// String returns the short game tag, e.g. "ra2".
func (g Game) String() string {
	switch g {
	case GameTD:
		return "td"
	case GameRA:
		return "ra"
	case GameTS:
		return "ts"
	case GameFS:
		return "fs"
	case GameRA2:
		return "ra2"
	case GameYR:
		return "yr"
	}
	return fmt.Sprintf("Game(%d)", int(g))
}

// ParseGame parses a short game tag such as "td" or "yr".
func ParseGame(s string) (Game, error) {
	switch strings.ToLower(s) {
	case "td":
		return GameTD, nil
	case "ra":
		return GameRA, nil
	case "ts":
		return GameTS, nil
	case "fs":
		return GameFS, nil
	case "ra2":
		return GameRA2, nil
	case "yr":
		return GameYR, nil
	}
	return 0, fmt.Errorf("unknown game: %q", s)
}

// usesLegacyID reports whether the game hashes filenames with the
// legacy rotate-add identifier rather than CRC32.
func (g Game) usesLegacyID() bool {
	return g == GameTD || g == GameRA
}

// LegacyFileID computes the file identifier used by TD/RA archives.
// The uppercased name is zero-padded to a multiple of 4 bytes, then
// folded 4 bytes at a time: acc = chunk + rotl(acc, 1).
func LegacyFileID(name string) int32 {
	buf := []byte(strings.ToUpper(name))
	if len(buf) == 0 {
		return 0
	}
	if r := len(buf) % 4; r != 0 {
		buf = append(buf, make([]byte, 4-r)...)
	}

	var acc uint32
	for i := 0; i < len(buf); i += 4 {
		acc = binary.LittleEndian.Uint32(buf[i:]) + bits.RotateLeft32(acc, 1)
	}
	return int32(acc)
}

// ModernFileID computes the file identifier used by TS/FS/RA2/YR
// archives: CRC32 over the uppercased name with a quirky tail padding.
// A name whose length is not a multiple of 4 gets one byte holding the
// remainder, then the first byte of the trailing partial chunk repeated
// until the next multiple of 4.
func ModernFileID(name string) int32 {
	buf := []byte(strings.ToUpper(name))
	if r := len(buf) % 4; r != 0 {
		start := len(buf) >> 2 << 2
		buf = append(buf, byte(r))
		for i := 0; i < 3-r; i++ {
			buf = append(buf, buf[start])
		}
	}
	return int32(crc32.ChecksumIEEE(buf))
}

// FileID computes the archive identifier of a filename for the given game.
func FileID(name string, game Game) int32 {
	if game.usesLegacyID() {
		return LegacyFileID(name)
	}
	return ModernFileID(name)
}
