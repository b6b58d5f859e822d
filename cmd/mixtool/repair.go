// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
)

var repairCmd = &cobra.Command{
	Use:   "repair <archive>",
	Short: "Fix a damaged archive in place",
	Long: `Repair clears unknown flag bits, zeroes the extra flag word, drops
entries that are empty or reach outside the body, drops a corrupt
embedded naming database, compacts the body and refreshes a stale
checksum. A healthy archive is left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepair(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}

	var fixes []string
	if known := a.Flags & (mix.FlagChecksum | mix.FlagEncryption); known != a.Flags {
		a.Flags = known
		fixes = append(fixes, "cleared unknown flag bits")
	}
	if a.ExtraFlags != 0 {
		a.ExtraFlags = 0
		fixes = append(fixes, "zeroed the extra flag word")
	}

	body := uint64(a.BodySize())
	dropped := 0
	for _, e := range a.Entries() {
		if e.Size == 0 || uint64(e.Offset)+uint64(e.Size) > body {
			a.Remove(e.ID)
			dropped++
		}
	}
	if dropped > 0 {
		fixes = append(fixes, fmt.Sprintf("dropped %d empty or out of range entries", dropped))
	}

	if _, err := a.LocalDatabase(); err != nil {
		a.Remove(mix.LocalDBKeyLegacy)
		a.Remove(mix.LocalDBKeyModern)
		fixes = append(fixes, "dropped the corrupt naming database")
	}

	if !a.IsCompact() {
		a.Recalc()
		fixes = append(fixes, "compacted the body")
	}
	if a.Flags.Has(mix.FlagChecksum) {
		if ok, err := a.VerifyChecksum(); err != nil || !ok {
			a.CalcChecksum()
			fixes = append(fixes, "recomputed the checksum")
		}
	}

	if len(fixes) == 0 {
		cmd.Println("archive is healthy")
		return nil
	}
	if err := a.WriteFile(path); err != nil {
		return err
	}
	for _, fix := range fixes {
		cmd.Println(fix)
	}
	return nil
}
