// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// mixtool inspects, builds and repairs MIX archives and their naming
// databases and string tables.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
	"github.com/suprsokr/go-mix/convert"
	"github.com/suprsokr/go-mix/ini"
)

var rootCmd = &cobra.Command{
	Use:          "mixtool",
	Short:        "Westwood MIX archive tool",
	Long:         "mixtool reads, builds, inspects and repairs MIX archives, their naming databases and CSF string tables.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("game", "yr", "game whose id variant names hash with (td, ra, ts, fs, ra2, yr)")
	rootCmd.PersistentFlags().Bool("force-new", false, "read archives with the modern header layout without probing")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openArchive reads the archive at path, optionally forcing the modern
// header layout for files whose extra flags defeat detection.
func openArchive(path string, forceNew bool) (*mix.Archive, error) {
	if !forceNew {
		return mix.Open(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	a, err := mix.ReadModern(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return a, nil
}

// gameFlag reads and parses the --game flag.
func gameFlag(cmd *cobra.Command) (mix.Game, error) {
	s, _ := cmd.Flags().GetString("game")
	return mix.ParseGame(s)
}

// loadNameINI reads an external INI name database. An empty path yields
// nil without error.
func loadNameINI(path string) (*mix.Database, error) {
	if path == "" {
		return nil, nil
	}
	parsed, err := readINIFile(path)
	if err != nil {
		return nil, err
	}
	db, err := convert.INIToDatabase(parsed)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return db, nil
}

// archiveChain layers the archive's embedded database over an optional
// external one. A corrupt embedded database only warns; names then fall
// back to hex ids.
func archiveChain(cmd *cobra.Command, a *mix.Archive, ext *mix.Database) *mix.DatabaseChain {
	chain := mix.NewDatabaseChain()

	local, err := a.LocalDatabase()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping corrupt embedded name database: %v\n", err)
	} else if local != nil {
		chain.Push(&local.Database)
	}
	if ext != nil {
		chain.Push(ext)
	}
	return chain
}

// writeINIFile writes f to path.
func writeINIFile(path string, f *ini.File) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := ini.Write(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
