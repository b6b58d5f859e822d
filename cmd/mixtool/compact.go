// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
)

var compactCmd = &cobra.Command{
	Use:   "compact <archive>",
	Short: "Reclaim unreferenced body bytes",
	Long: `Compact cuts every body range no entry covers out of the archive and
rewrites it in place. An archive whose checksum flag is set gets a
fresh digest of the compacted body.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompact(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(compactCmd)
}

func runCompact(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	if a.IsCompact() {
		cmd.Println("archive is already compact")
		return nil
	}

	before := a.BodySize()
	a.Recalc()
	if a.Flags.Has(mix.FlagChecksum) {
		a.CalcChecksum()
	}
	if err := a.WriteFile(path); err != nil {
		return err
	}

	cmd.Printf("reclaimed %s (%s -> %s)\n",
		humanize.Bytes(uint64(before-a.BodySize())),
		humanize.Bytes(uint64(before)), humanize.Bytes(uint64(a.BodySize())))
	return nil
}
