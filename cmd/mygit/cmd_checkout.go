package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/mygit/pkg/object"
	"github.com/odvcencio/mygit/pkg/repo"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <branch|commit>",
		Short: "Restore the files of a commit into the working tree",
		Long: `Checkout writes every file recorded by the target commit into the
working tree and resets the index to match. Files that are not part of the
commit are left alone.

Given a branch name, HEAD is moved to that branch. Given a commit hash,
HEAD stays where it is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			target := args[0]
			out := cmd.OutOrStdout()

			err = r.SwitchBranch(target)
			if err == nil {
				fmt.Fprintf(out, "switched to branch %s\n", target)
				return nil
			}
			if !errors.Is(err, repo.ErrBranchNotFound) && !errors.Is(err, repo.ErrInvalidRefName) {
				return err
			}

			h := object.Hash(target)
			if object.ValidateHash(h) != nil {
				return fmt.Errorf("checkout %q: not a branch or commit hash", target)
			}
			if err := r.Checkout(h); err != nil {
				return err
			}
			fmt.Fprintf(out, "checked out %s\n", styleHash(h.Short()))
			return nil
		},
	}
}
