package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/mygit/pkg/object"
	"github.com/odvcencio/mygit/pkg/repo"
)

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			head, ok, err := r.HeadCommit()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, "no commits yet")
				return nil
			}

			n := 0
			for entry, err := range r.Log(head) {
				if err != nil {
					return err
				}
				if limit > 0 && n >= limit {
					break
				}
				decoration := ""
				if entry.Hash == head {
					decoration = fmt.Sprintf("(HEAD -> %s)", branch)
				}
				printLogEntry(out, entry, decoration, oneline)
				n++
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "show one line per commit")
	cmd.Flags().IntVarP(&limit, "max-count", "n", 0, "limit the number of commits shown (0 = all)")

	return cmd
}

func printLogEntry(out io.Writer, entry repo.LogEntry, decoration string, oneline bool) {
	h, c := entry.Hash, entry.Commit
	if oneline {
		if decoration != "" {
			fmt.Fprintf(out, "%s %s %s\n", styleHash(h.Short()), styleDecoration(decoration), firstLine(c.Message))
		} else {
			fmt.Fprintf(out, "%s %s\n", styleHash(h.Short()), firstLine(c.Message))
		}
		return
	}

	if decoration != "" {
		fmt.Fprintf(out, "%s %s\n", styleHash("commit "+string(h)), styleDecoration(decoration))
	} else {
		fmt.Fprintf(out, "%s\n", styleHash("commit "+string(h)))
	}
	fmt.Fprintf(out, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
	fmt.Fprintf(out, "Date:   %s\n", signatureTime(c.Author).Format("Mon Jan 2 15:04:05 2006 -0700"))
	fmt.Fprintln(out)
	for _, line := range strings.Split(strings.TrimRight(c.Message, "\n"), "\n") {
		fmt.Fprintf(out, "    %s\n", line)
	}
	fmt.Fprintln(out)
}

// signatureTime returns the signature's instant in its recorded zone.
func signatureTime(sig object.Signature) time.Time {
	t := time.Unix(sig.When, 0)
	if zone, err := time.Parse("-0700", sig.Timezone); err == nil {
		_, offset := zone.Zone()
		return t.In(time.FixedZone(sig.Timezone, offset))
	}
	return t.UTC()
}
