// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Summarize an archive and list its entries",
	Long: `Inspect prints the archive's header layout, flags, sizes and checksum,
then lists every entry with its id, offset, size and resolved name.

Names come from the archive's embedded naming database layered under an
optional external INI database given with --db.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd, args[0])
	},
}

func init() {
	inspectCmd.Flags().String("db", "", "external name database INI")
	inspectCmd.Flags().String("sort", "offset", "entry order: id, name, offset or size")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")
	dbPath, _ := cmd.Flags().GetString("db")
	sortKey, _ := cmd.Flags().GetString("sort")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	ext, err := loadNameINI(dbPath)
	if err != nil {
		return err
	}
	chain := archiveChain(cmd, a, ext)

	entries := a.Entries()
	if err := sortEntries(entries, sortKey, chain); err != nil {
		return err
	}

	format := "legacy"
	if a.NewFormat {
		format = "modern"
	}
	cmd.Printf("format:    %s\n", format)
	if a.NewFormat {
		cmd.Printf("flags:     0x%04X (%s)\n", uint16(a.Flags), flagNames(a.Flags))
		cmd.Printf("extra:     0x%04X\n", uint16(a.ExtraFlags))
	}
	cmd.Printf("entries:   %s\n", humanize.Comma(int64(a.Len())))
	cmd.Printf("body:      %s (%s bytes)\n", humanize.Bytes(uint64(a.BodySize())), humanize.Comma(int64(a.BodySize())))
	cmd.Printf("index:     %s\n", humanize.Bytes(uint64(a.IndexSize())))

	if reach := a.FindLastOffset(); int64(reach) > int64(a.BodySize()) {
		cmd.Printf("warning:   entries reach %s bytes past the body\n", humanize.Comma(int64(reach)-int64(a.BodySize())))
	} else if !a.IsCompact() {
		cmd.Printf("residue:   body bytes no entry covers, reclaimable with compact\n")
	}

	if sum := a.Checksum(); sum != nil {
		cmd.Printf("checksum:  %s\n", hex.EncodeToString(sum[:]))
	} else {
		cmd.Printf("checksum:  (none)\n")
	}
	if a.BlowfishKey() != nil {
		cmd.Printf("key:       present\n")
	} else {
		cmd.Printf("key:       (none)\n")
	}

	cmd.Println()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOFFSET\tSIZE\tNAME")
	for _, e := range entries {
		fmt.Fprintf(tw, "%08X\t%d\t%s\t%s\n", uint32(e.ID), e.Offset, humanize.Bytes(uint64(e.Size)), chain.NameOrID(e.ID))
	}
	return tw.Flush()
}

// flagNames spells out the known flag bits.
func flagNames(f mix.Flags) string {
	var names []string
	if f.Has(mix.FlagChecksum) {
		names = append(names, "checksum")
	}
	if f.Has(mix.FlagEncryption) {
		names = append(names, "encrypted")
	}
	if names == nil {
		return "none"
	}
	return strings.Join(names, ", ")
}

// sortEntries orders entries by the given key.
func sortEntries(entries []mix.Entry, key string, chain *mix.DatabaseChain) error {
	switch key {
	case "id":
		sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	case "offset":
		sort.Slice(entries, func(i, j int) bool { return entries[i].Offset < entries[j].Offset })
	case "size":
		sort.Slice(entries, func(i, j int) bool { return entries[i].Size < entries[j].Size })
	case "name":
		sort.Slice(entries, func(i, j int) bool {
			return chain.NameOrID(entries[i].ID) < chain.NameOrID(entries[j].ID)
		})
	default:
		return fmt.Errorf("unknown sort key %q", key)
	}
	return nil
}
