// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
	"github.com/suprsokr/go-mix/convert"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Work with naming databases",
}

var dbScanCmd = &cobra.Command{
	Use:   "scan <dir> <ini>",
	Short: "Hash a directory tree's file names into an INI database",
	Long: `Scan walks the directory tree, hashes every file name with the --game
identifier variant and writes the id to name table as an INI database
usable with the --db flag of extract and inspect.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDBScan(cmd, args[0], args[1])
	},
}

var dbConvertCmd = &cobra.Command{
	Use:   "convert <database|archive> <ini>",
	Short: "Convert a naming database to INI",
	Long: `Convert reads a standalone naming database, or the one embedded in an
archive, and writes it as an INI database.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDBConvert(cmd, args[0], args[1])
	},
}

func init() {
	dbCmd.AddCommand(dbScanCmd)
	dbCmd.AddCommand(dbConvertCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBScan(cmd *cobra.Command, dir, out string) error {
	game, err := gameFlag(cmd)
	if err != nil {
		return err
	}

	db := mix.NewDatabase()
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			db.AddName(d.Name(), game)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	if err := writeINIFile(out, convert.DatabaseToINI(db)); err != nil {
		return err
	}
	cmd.Printf("scanned %s names into %s\n", humanize.Comma(int64(db.Len())), out)
	return nil
}

func runDBConvert(cmd *cobra.Command, in, out string) error {
	db, err := loadAnyDatabase(cmd, in)
	if err != nil {
		return err
	}

	if err := writeINIFile(out, convert.DatabaseToINI(db)); err != nil {
		return err
	}
	cmd.Printf("wrote %s names to %s\n", humanize.Comma(int64(db.Len())), out)
	return nil
}

// loadAnyDatabase reads in as a standalone naming database, falling back
// to the database embedded in an archive when the prefix does not match.
func loadAnyDatabase(cmd *cobra.Command, in string) (*mix.Database, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in, err)
	}

	local, err := mix.ReadLocalDatabase(bytes.NewReader(data))
	if err == nil {
		return &local.Database, nil
	}
	if !errors.Is(err, mix.ErrBadLocalDBPrefix) {
		return nil, fmt.Errorf("read %s: %w", in, err)
	}

	forceNew, _ := cmd.Flags().GetBool("force-new")
	a, err := openArchive(in, forceNew)
	if err != nil {
		return nil, err
	}
	embedded, err := a.LocalDatabase()
	if err != nil {
		return nil, err
	}
	if embedded == nil {
		return nil, fmt.Errorf("%s has no embedded naming database", in)
	}
	return &embedded.Database, nil
}
