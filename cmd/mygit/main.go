package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/odvcencio/mygit/pkg/repo"
)

const version = "0.1.0-dev"

var globalFlags struct {
	verbose bool
	quiet   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mygit",
		Short:         "A minimal content-addressed version control system",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&globalFlags.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().BoolVarP(&globalFlags.quiet, "quiet", "q", false, "only log errors")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newRmCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newCommitCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newBranchCmd())
	root.AddCommand(newCheckoutCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newHashObjectCmd())
	root.AddCommand(newCatFileCmd())
	root.AddCommand(newWriteTreeCmd())
	root.AddCommand(newLsTreeCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mygit %s\n", version)
		},
	}
}

// newLogger builds the stderr logger at the level the global flags select.
func newLogger() *logrus.Logger {
	log := repo.NewLogger()
	switch {
	case globalFlags.verbose:
		log.SetLevel(logrus.DebugLevel)
	case globalFlags.quiet:
		log.SetLevel(logrus.ErrorLevel)
	}
	return log
}

// openRepo opens the repository containing the working directory.
func openRepo() (*repo.Repo, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}
	r.SetLogger(newLogger())
	return r, nil
}
