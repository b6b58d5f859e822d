// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ErrMissingKey is returned when writing an archive whose encryption
// flag is set but which has no Blowfish key attached.
var ErrMissingKey = errors.New("archive has no blowfish key")

// WriteTo serializes the archive: header, index (encrypted when the
// flag says so), body, then the trailing checksum when flagged. The
// size field always holds the actual body length; the advisory
// DeclaredBodySize is never written back.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	encrypted := a.NewFormat && a.Flags.Has(FlagEncryption)
	checksummed := a.NewFormat && a.Flags.Has(FlagChecksum)

	if encrypted && a.key == nil {
		return 0, ErrMissingKey
	}
	if checksummed && a.checksum == nil {
		return 0, ErrMissingChecksum
	}

	cw := &countWriter{w: w}
	if err := writeHeader(cw, a); err != nil {
		return cw.n, err
	}

	if encrypted {
		cipher, err := newCipher(a.key)
		if err != nil {
			return cw.n, err
		}
		// The encrypted index is always stored in id order.
		entries := a.Entries()
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].ID < entries[j].ID
		})
		if err := writeIndexEncrypted(cw, cipher, entries, uint32(len(a.body))); err != nil {
			return cw.n, err
		}
	} else {
		if err := writeIndex(cw, a.entries); err != nil {
			return cw.n, err
		}
	}

	if _, err := cw.Write(a.body); err != nil {
		return cw.n, fmt.Errorf("write body: %w", err)
	}

	if checksummed {
		if _, err := cw.Write(a.checksum[:]); err != nil {
			return cw.n, fmt.Errorf("write checksum: %w", err)
		}
	}
	return cw.n, nil
}

// WriteFile saves the archive to path. The archive is written to a temp
// file in the same directory first and renamed into place.
func (a *Archive) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "mix_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if _, err := a.WriteTo(bw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flush archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	os.Remove(path)
	if err := os.Rename(tmpPath, path); err != nil {
		if err := copyFile(tmpPath, path); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("save archive: %w", err)
		}
		os.Remove(tmpPath)
	}
	return nil
}

// countWriter counts bytes passed through to the underlying writer.
type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
