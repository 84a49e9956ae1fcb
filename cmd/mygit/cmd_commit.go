package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/mygit/pkg/object"
)

func newCommitCmd() *cobra.Command {
	var message string
	var author string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged snapshot on the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			sig := r.DefaultAuthor()
			if author != "" {
				sig, err = parseAuthor(author)
				if err != nil {
					return err
				}
			}

			h, err := r.Commit(message, sig)
			if err != nil {
				return err
			}

			branch, err := r.CurrentBranch()
			if err != nil {
				branch = "HEAD"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, h.Short(), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", `override author as "Name <email>"`)

	return cmd
}

// parseAuthor parses "Name <email>". A bare name gets no email.
func parseAuthor(s string) (object.Signature, error) {
	s = strings.TrimSpace(s)
	lt := strings.IndexByte(s, '<')
	if lt < 0 {
		if s == "" {
			return object.Signature{}, fmt.Errorf("empty author")
		}
		return object.Signature{Name: s}, nil
	}
	gt := strings.IndexByte(s[lt:], '>')
	if gt < 0 || lt+gt != len(s)-1 {
		return object.Signature{}, fmt.Errorf("malformed author %q (want \"Name <email>\")", s)
	}
	name := strings.TrimSpace(s[:lt])
	if name == "" {
		return object.Signature{}, fmt.Errorf("malformed author %q: missing name", s)
	}
	return object.Signature{Name: name, Email: s[lt+1 : lt+gt]}, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
