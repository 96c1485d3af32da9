/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/shiftsheet/internal/runner"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print generated shifts as JSON without writing documents",
	Long: `Print the data each shift document would be filled with.

The output is a JSON array with one object per shift, using the same keys
templates see: shift_start_day, shift_end_day and objects.

Examples:
  shiftsheet preview -d 2024-03-01 -n 2 --seed 7
`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if err := loadConfig(cmd); err != nil {
		return err
	}

	params, err := shiftParams(time.Now())
	if err != nil {
		return err
	}
	objects, err := loadRoster()
	if err != nil {
		return err
	}
	params.Names = objects.Names

	gen, err := newGenerator()
	if err != nil {
		return err
	}
	shifts, err := runner.Preview(gen, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(shifts)
}
