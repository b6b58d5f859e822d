// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/hex"
	"errors"

	"github.com/spf13/cobra"
)

var errChecksumMismatch = errors.New("checksum mismatch")

var checksumCmd = &cobra.Command{
	Use:   "checksum",
	Short: "Manage the body checksum",
}

var checksumAddCmd = &cobra.Command{
	Use:   "add <archive>",
	Short: "Digest the body and store the checksum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecksumAdd(cmd, args[0])
	},
}

var checksumRemoveCmd = &cobra.Command{
	Use:   "remove <archive>",
	Short: "Drop the stored checksum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecksumRemove(cmd, args[0])
	},
}

var checksumCheckCmd = &cobra.Command{
	Use:   "check <archive>",
	Short: "Verify the stored checksum against the body",
	Long: `Check recomputes the body digest and compares it with the stored
checksum. A mismatch or a missing checksum exits nonzero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChecksumCheck(cmd, args[0])
	},
}

func init() {
	checksumCmd.AddCommand(checksumAddCmd)
	checksumCmd.AddCommand(checksumRemoveCmd)
	checksumCmd.AddCommand(checksumCheckCmd)
	rootCmd.AddCommand(checksumCmd)
}

func runChecksumAdd(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	a.CalcChecksum()
	if err := a.WriteFile(path); err != nil {
		return err
	}

	sum := a.Checksum()
	cmd.Printf("checksum %s\n", hex.EncodeToString(sum[:]))
	return nil
}

func runChecksumRemove(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	if a.Checksum() == nil {
		cmd.Println("archive has no checksum")
		return nil
	}
	a.SetChecksum(nil)
	return a.WriteFile(path)
}

func runChecksumCheck(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	ok, err := a.VerifyChecksum()
	if err != nil {
		return err
	}
	if !ok {
		return errChecksumMismatch
	}
	cmd.Println("checksum ok")
	return nil
}
