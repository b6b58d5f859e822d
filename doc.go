// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package mix reads, writes and manipulates MIX archives.

MIX is the uncompressed container format used by the classic
Command & Conquer games, from Tiberian Dawn up to Yuri's Revenge. An
archive is a flat index of 32-bit file identifiers over one body blob;
the identifier is a hash of the original filename, so the archive
itself stores no names. This package supports both header layouts (the
legacy count+size header and the modern flagged one), Blowfish
encrypted indexes including the header key transport, SHA1 body
checksums, and the embedded and standalone naming databases used to
recover filenames.

# Basic Usage

Creating an archive:

	a := mix.New()
	if _, err := a.AddFile(mix.FileID("rules.ini", mix.GameYR), data, false); err != nil {
		log.Fatal(err)
	}
	if err := a.WriteFile("expand99.mix"); err != nil {
		log.Fatal(err)
	}

Reading one:

	a, err := mix.Open("ra2.mix")
	if err != nil {
		log.Fatal(err)
	}
	body := a.File(mix.FileID("rules.ini", mix.GameYR))

# Identifiers

Filenames map to ids through one of two generations of hash. Tiberian
Dawn and Red Alert use a rotate-add fold ([LegacyFileID]); Tiberian Sun
and later use CRC32 with a quirky tail padding ([ModernFileID]).
[FileID] picks the variant from a [Game] tag. Identifier collisions are
a property of the format, not an error.

# Encryption and Checksums

A modern archive may carry its index Blowfish encrypted; the 56-byte
key travels inside the header, wrapped by a fixed modular
exponentiation scheme whose constants ship with every game. Attach a
key with [Archive.SetBlowfishKey] (use [GenerateKey] for a fresh one)
and the writer does the rest. A SHA1 digest of the body can be appended
via [Archive.CalcChecksum] and verified with [Archive.VerifyChecksum].
Both features force the modern header layout.

# Naming Databases

Archives conventionally embed a naming table under a reserved id
("local mix database.dat" hashed with the archive's identifier
generation). [Archive.LocalDatabase] decodes it and
[Archive.SetLocalDatabase] writes one back. Standalone global
databases add further lookup layers; [DatabaseChain] resolves ids
through any number of layers with the embedded table first, falling
back to the bare hex id.

# Compaction

Removing a file only deletes its index entry; the body bytes stay
behind as residue, exactly as the games' own tools leave them.
[Archive.Recalc] defragments the body and rewrites every offset;
[Archive.IsCompact] reports whether any residue is left to reclaim.

# Limitations

  - Archive bodies are held fully in memory; there is no streaming
    reader for multi-gigabyte files.
  - RA-era "encrypted" archives are supported, but the format's
    encryption is obfuscation, not protection: the key pair is public.
*/
package mix
