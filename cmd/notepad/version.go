package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/notepad/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.About())
			return err
		},
	}
}
