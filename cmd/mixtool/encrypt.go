// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/hex"

	"github.com/spf13/cobra"

	mix "github.com/suprsokr/go-mix"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt <archive>",
	Short: "Encrypt the index with a fresh random key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEncrypt(cmd, args[0])
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <archive>",
	Short: "Rewrite the archive with a plain index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecrypt(cmd, args[0])
	},
}

var keyCmd = &cobra.Command{
	Use:   "key <archive>",
	Short: "Print the index encryption key",
	Long: `Key prints the unwrapped 56 byte Blowfish key of an encrypted archive
as hex. An archive without one exits nonzero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKey(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(keyCmd)
}

func runEncrypt(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	if a.BlowfishKey() != nil {
		cmd.Println("archive is already encrypted")
		return nil
	}

	key, err := mix.GenerateKey()
	if err != nil {
		return err
	}
	a.SetBlowfishKey(key)
	if err := a.WriteFile(path); err != nil {
		return err
	}

	cmd.Printf("key %s\n", hex.EncodeToString(key[:]))
	return nil
}

func runDecrypt(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	if a.BlowfishKey() == nil {
		cmd.Println("archive is not encrypted")
		return nil
	}
	a.SetBlowfishKey(nil)
	return a.WriteFile(path)
}

func runKey(cmd *cobra.Command, path string) error {
	forceNew, _ := cmd.Flags().GetBool("force-new")

	a, err := openArchive(path, forceNew)
	if err != nil {
		return err
	}
	key := a.BlowfishKey()
	if key == nil {
		return mix.ErrMissingKey
	}
	cmd.Println(hex.EncodeToString(key[:]))
	return nil
}
