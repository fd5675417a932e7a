package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/notepad/core"
	"pkt.systems/notepad/schema"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats file...",
		Short: "Print character, word and line counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				stats := core.ComputeStats(string(data), schema.Selection{})
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %d characters, %d words, %d lines\n",
					path, stats.Characters, stats.Words, stats.Lines); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
