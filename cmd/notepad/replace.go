package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/notepad/core"
	"pkt.systems/pslog"
)

func newReplaceCmd() *cobra.Command {
	var find string
	var with string
	var inPlace bool
	cmd := &cobra.Command{
		Use:   "replace --find TEXT --with TEXT file...",
		Short: "Replace every case-insensitive occurrence of a string",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if find == "" {
				return fmt.Errorf("--find must not be empty")
			}
			log := pslog.Ctx(cmd.Context())
			out := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				replaced, count := core.ReplaceAll(string(data), find, with)
				log.Debug("replace file", "path", path, "count", count)
				if !inPlace {
					if _, err := fmt.Fprint(out, replaced); err != nil {
						return err
					}
					continue
				}
				if count > 0 {
					info, err := os.Stat(path)
					if err != nil {
						return err
					}
					if err := os.WriteFile(path, []byte(replaced), info.Mode().Perm()); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(out, "%s: replaced %d occurrence(s)\n", path, count); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&find, "find", "", "text to find (case-insensitive)")
	cmd.Flags().StringVar(&with, "with", "", "replacement text")
	cmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "rewrite the files instead of printing the result")
	return cmd
}
