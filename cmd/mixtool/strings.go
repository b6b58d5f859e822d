// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/suprsokr/go-mix/convert"
	"github.com/suprsokr/go-mix/csf"
	"github.com/suprsokr/go-mix/ini"
)

var stringsCmd = &cobra.Command{
	Use:   "strings",
	Short: "Work with string tables",
}

var stringsBuildCmd = &cobra.Command{
	Use:   "build <ini> <csf>",
	Short: "Compile an INI file into a string table",
	Long: `Build turns every INI entry into a string table label named
"SECTION:KEY". Literal "\n" sequences in values become newlines.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStringsBuild(cmd, args[0], args[1])
	},
}

var stringsExtractCmd = &cobra.Command{
	Use:   "extract <csf> <ini>",
	Short: "Decompile a string table into an INI file",
	Long: `Extract writes each label's first string under its "SECTION:KEY" name
split into an INI section and key. Newlines in values become literal
"\n" sequences.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStringsExtract(cmd, args[0], args[1])
	},
}

var stringsInspectCmd = &cobra.Command{
	Use:   "inspect <csf>",
	Short: "Summarize a string table and list its labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStringsInspect(cmd, args[0])
	},
}

func init() {
	stringsBuildCmd.Flags().String("version", "cnc", "table version: nox or cnc")
	stringsBuildCmd.Flags().String("language", "enus", "table language tag")
	stringsCmd.AddCommand(stringsBuildCmd)
	stringsCmd.AddCommand(stringsExtractCmd)
	stringsCmd.AddCommand(stringsInspectCmd)
	rootCmd.AddCommand(stringsCmd)
}

func runStringsBuild(cmd *cobra.Command, in, out string) error {
	versionTag, _ := cmd.Flags().GetString("version")
	languageTag, _ := cmd.Flags().GetString("language")

	version, err := csf.ParseVersion(versionTag)
	if err != nil {
		return err
	}
	language, err := csf.ParseLanguage(languageTag)
	if err != nil {
		return err
	}

	f, err := readINIFile(in)
	if err != nil {
		return err
	}
	t := convert.INIToCSF(f)
	t.Version = version
	t.Language = language

	if err := writeCSFFile(out, t); err != nil {
		return err
	}
	cmd.Printf("compiled %s labels into %s\n", humanize.Comma(int64(t.Len())), out)
	return nil
}

func runStringsExtract(cmd *cobra.Command, in, out string) error {
	t, err := readCSFFile(in)
	if err != nil {
		return err
	}
	f, err := convert.CSFToINI(t)
	if err != nil {
		return err
	}

	if err := writeINIFile(out, f); err != nil {
		return err
	}
	cmd.Printf("extracted %s labels into %s\n", humanize.Comma(int64(t.Len())), out)
	return nil
}

func runStringsInspect(cmd *cobra.Command, path string) error {
	t, err := readCSFFile(path)
	if err != nil {
		return err
	}

	cmd.Printf("version:   %s\n", t.Version)
	cmd.Printf("language:  %s\n", t.Language)
	cmd.Printf("labels:    %s\n", humanize.Comma(int64(t.Len())))
	cmd.Printf("strings:   %s\n", humanize.Comma(int64(t.StringCount())))
	cmd.Printf("extra:     0x%08X\n", t.Extra)

	cmd.Println()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tVALUE")
	for _, l := range t.Labels() {
		value, _ := l.First()
		fmt.Fprintf(tw, "%s\t%s\n", l.Name, ellipsize(strings.ReplaceAll(value, "\n", "\\n"), 60))
	}
	return tw.Flush()
}

// readINIFile parses the INI file at path.
func readINIFile(path string) (*ini.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := ini.Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parsed, nil
}

// readCSFFile parses the string table at path.
func readCSFFile(path string) (*csf.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := csf.Read(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// writeCSFFile writes the string table to path.
func writeCSFFile(path string, t *csf.Table) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := csf.Write(out, t); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ellipsize cuts s down to max runes for one line table cells.
func ellipsize(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
