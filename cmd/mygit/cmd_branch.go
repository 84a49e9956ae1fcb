package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create one at the current commit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				h, err := r.CreateBranch(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "created branch %s at %s\n", args[0], styleHash(h.Short()))
				return nil
			}

			current, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			for _, b := range branches {
				if b.Name == current {
					fmt.Fprintf(out, "* %s\n", styleDecoration(b.Name))
				} else {
					fmt.Fprintf(out, "  %s\n", b.Name)
				}
			}
			return nil
		},
	}
}
