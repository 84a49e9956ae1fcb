package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/mygit/pkg/object"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every object reachable from a ref is present and intact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			report, err := r.Verify()
			if report == nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "refs: %d\n", report.Refs)
			for _, typ := range []object.ObjectType{object.TypeCommit, object.TypeTree, object.TypeBlob} {
				fmt.Fprintf(out, "%s: %d\n", typ, report.Objects[typ])
			}
			for _, h := range report.Missing {
				fmt.Fprintf(out, "missing %s\n", styleRemoved(string(h)))
			}
			return err
		},
	}
}
