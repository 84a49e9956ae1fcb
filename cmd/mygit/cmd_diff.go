package main

import (
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [files...]",
		Short: "Show working tree changes against the index (or HEAD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			if len(args) == 0 {
				out, err := r.DiffAll()
				if err != nil {
					return err
				}
				return writeDiff(cmd.OutOrStdout(), out)
			}
			for _, p := range args {
				out, err := r.Diff(p)
				if err != nil {
					return err
				}
				if err := writeDiff(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
