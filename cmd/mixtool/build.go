// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
)

var buildCmd = &cobra.Command{
	Use:   "build <dir> <archive>",
	Short: "Pack a directory into a new archive",
	Long: `Build packs every regular file of a directory into a new archive. File
ids are hashed from the file names with the --game identifier variant.

With --recursive each subdirectory is packed into a nested archive
stored under the subdirectory's name, so "movies.mix/" becomes the
entry "movies.mix". With --db every archive level embeds a naming
database listing the names that were packed into it. --encrypt and
--checksum apply to the outermost archive.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args[0], args[1])
	},
}

func init() {
	buildCmd.Flags().Bool("recursive", false, "pack subdirectories as nested archives")
	buildCmd.Flags().Bool("db", false, "embed a naming database built from the packed names")
	buildCmd.Flags().Bool("encrypt", false, "encrypt the index with a fresh random key")
	buildCmd.Flags().Bool("checksum", false, "append a body checksum")
	buildCmd.Flags().Bool("legacy", false, "write the old count+size header")
	rootCmd.AddCommand(buildCmd)
}

type buildOptions struct {
	game      mix.Game
	recursive bool
	withDB    bool
	encrypt   bool
	checksum  bool
	legacy    bool
}

func loadBuildOptions(cmd *cobra.Command) (buildOptions, error) {
	var opts buildOptions

	game, err := gameFlag(cmd)
	if err != nil {
		return opts, err
	}
	opts.game = game
	opts.recursive, _ = cmd.Flags().GetBool("recursive")
	opts.withDB, _ = cmd.Flags().GetBool("db")
	opts.encrypt, _ = cmd.Flags().GetBool("encrypt")
	opts.checksum, _ = cmd.Flags().GetBool("checksum")
	opts.legacy, _ = cmd.Flags().GetBool("legacy")

	if opts.legacy && (opts.encrypt || opts.checksum) {
		return opts, errors.New("the legacy header has no flag words to carry encryption or a checksum")
	}
	return opts, nil
}

func runBuild(cmd *cobra.Command, dir, out string) error {
	opts, err := loadBuildOptions(cmd)
	if err != nil {
		return err
	}

	a, err := buildDir(dir, opts)
	if err != nil {
		return err
	}
	if opts.encrypt {
		key, err := mix.GenerateKey()
		if err != nil {
			return err
		}
		a.SetBlowfishKey(key)
	}
	if opts.checksum {
		a.CalcChecksum()
	}
	if err := a.WriteFile(out); err != nil {
		return err
	}

	cmd.Printf("packed %s files (%s) into %s\n",
		humanize.Comma(int64(a.Len())), humanize.Bytes(uint64(a.BodySize())), out)
	return nil
}

// buildDir packs one directory level. Subdirectories recurse into nested
// archives when asked; each level carries its own naming database.
func buildDir(dir string, opts buildOptions) (*mix.Archive, error) {
	a := mix.New()
	a.NewFormat = !opts.legacy
	db := mix.NewLocalDatabase(opts.game.DatabaseVersion())

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		path := filepath.Join(dir, name)
		switch {
		case e.IsDir() && opts.recursive:
			nested, err := buildDir(path, opts)
			if err != nil {
				return nil, err
			}
			var buf bytes.Buffer
			if _, err := nested.WriteTo(&buf); err != nil {
				return nil, fmt.Errorf("pack %s: %w", name, err)
			}
			if _, err := a.AddFile(mix.FileID(name, opts.game), buf.Bytes(), false); err != nil {
				return nil, fmt.Errorf("add %s: %w", name, err)
			}
		case e.IsDir():
			continue
		default:
			if _, err := a.AddFileFromPath(path, opts.game, false); err != nil {
				return nil, err
			}
		}
		db.AddName(name, opts.game)
	}

	if opts.withDB {
		db.AddName("local mix database.dat", opts.game)
		if err := a.SetLocalDatabase(db); err != nil {
			return nil, err
		}
	}
	return a, nil
}
