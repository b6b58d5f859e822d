// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive> <dir>",
	Short: "Unpack an archive into a directory",
	Long: `Extract writes every file of the archive into the directory, named by
the embedded naming database layered over an optional external INI
database given with --db. Files nothing names fall back to their id as
8 hex digits.

With --recursive every entry that parses as an archive and carries a
".mix" name is unpacked into a subdirectory of the same name instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0], args[1])
	},
}

func init() {
	extractCmd.Flags().String("db", "", "external name database INI")
	extractCmd.Flags().Bool("recursive", false, "unpack nested archives into subdirectories")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, path, dir string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")
	dbPath, _ := cmd.Flags().GetString("db")
	recursive, _ := cmd.Flags().GetBool("recursive")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	ext, err := loadNameINI(dbPath)
	if err != nil {
		return err
	}

	n, err := extractArchive(cmd, a, ext, dir, recursive)
	if err != nil {
		return err
	}
	cmd.Printf("extracted %s files into %s\n", humanize.Comma(int64(n)), dir)
	return nil
}

// extractArchive unpacks one archive level and returns how many files it
// wrote, nested levels included.
func extractArchive(cmd *cobra.Command, a *mix.Archive, ext *mix.Database, dir string, recursive bool) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}
	chain := archiveChain(cmd, a, ext)

	count := 0
	for _, e := range a.Entries() {
		data := a.File(e.ID)
		if data == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: entry %08X reaches outside the body, skipping\n", uint32(e.ID))
			continue
		}
		name := filepath.Base(chain.NameOrID(e.ID))

		if recursive && strings.EqualFold(filepath.Ext(name), ".mix") {
			nested, err := mix.Read(bytes.NewReader(data))
			if err == nil {
				n, err := extractArchive(cmd, nested, ext, filepath.Join(dir, name), true)
				if err != nil {
					return count, err
				}
				count += n
				continue
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s does not parse as an archive, extracting as a file: %v\n", name, err)
		}

		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return count, fmt.Errorf("write %s: %w", name, err)
		}
		count++
	}
	return count, nil
}
