package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <files...>",
		Short: "Stage files for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()
			return r.Stage(args...)
		},
	}
}

func newRmCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "rm --cached <files...>",
		Short: "Remove files from the staging area",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cached {
				return fmt.Errorf("rm: only --cached is supported; working files are never deleted")
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()
			return r.Unstage(args...)
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "unstage the paths and keep the working files")

	return cmd
}
