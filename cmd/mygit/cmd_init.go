package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/mygit/pkg/repo"
)

func newInitCmd() *cobra.Command {
	var compression string
	var backend string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty mygit repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			cfg := repo.DefaultConfig()
			cfg.Core.Compression = compression
			cfg.Core.Backend = backend

			r, err := repo.InitWithConfig(abs, cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty mygit repository in %s\n", r.Dir+string(filepath.Separator))
			return nil
		},
	}

	cmd.Flags().StringVar(&compression, "compression", "zlib", "object compression codec (zlib or zstd)")
	cmd.Flags().StringVar(&backend, "backend", repo.BackendLoose, "object storage backend (loose or badger)")

	return cmd
}
