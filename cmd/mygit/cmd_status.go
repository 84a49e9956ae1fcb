package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged, modified, missing and untracked files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			st, err := r.Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			if _, ok, err := r.HeadCommit(); err != nil {
				return err
			} else if !ok {
				fmt.Fprintf(out, "on %s (no commits yet)\n", branch)
			} else {
				fmt.Fprintf(out, "on %s\n", branch)
			}

			section := func(title, marker string, paths []string, style func(string) string) {
				if len(paths) == 0 {
					return
				}
				fmt.Fprintf(out, "\n%s:\n", title)
				for _, p := range paths {
					fmt.Fprintf(out, "  %s\n", style(marker+" "+p))
				}
			}
			section("staged", "+", st.Staged, styleAdded)
			section("modified", "~", st.Modified, styleRemoved)
			section("missing", "-", st.Missing, styleRemoved)
			section("untracked", "?", st.Untracked, func(s string) string { return s })

			if st.Clean() {
				fmt.Fprintln(out, "\nworking tree clean")
			}
			return nil
		},
	}
}
