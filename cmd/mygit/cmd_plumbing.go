package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/mygit/pkg/object"
)

func newHashObjectCmd() *cobra.Command {
	var write bool
	var objType string

	cmd := &cobra.Command{
		Use:   "hash-object <file>",
		Short: "Compute the object digest of a file, optionally storing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := object.ObjectType(objType)
			if !typ.Valid() {
				return fmt.Errorf("hash-object: unknown type %q", objType)
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("hash-object: %w", err)
			}
			if !write {
				fmt.Fprintln(cmd.OutOrStdout(), object.HashObject(typ, data))
				return nil
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()
			h, err := r.Store.Write(typ, data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the store")
	cmd.Flags().StringVarP(&objType, "type", "t", string(object.TypeBlob), "object type")

	return cmd
}

func newCatFileCmd() *cobra.Command {
	var showType, showSize, pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -s | -p) <hash>",
		Short: "Print an object's type, size or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			h := object.Hash(args[0])
			typ, data, err := r.Store.Read(h)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case showType:
				fmt.Fprintln(out, typ)
			case showSize:
				fmt.Fprintln(out, len(data))
			case pretty && typ == object.TypeTree:
				tr, err := object.UnmarshalTree(data)
				if err != nil {
					return err
				}
				printTreeEntries(cmd, tr.Entries)
			default:
				_, err := out.Write(data)
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&showSize, "size", "s", false, "print the payload size in bytes")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "print the payload, listing trees entry by entry")
	cmd.MarkFlagsMutuallyExclusive("type", "size", "pretty")
	cmd.MarkFlagsOneRequired("type", "size", "pretty")

	return cmd
}

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Write a tree object from the index and print its digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			stg, err := r.ReadStaging()
			if err != nil {
				return err
			}
			h, err := r.BuildTreeFromIndex(stg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func newLsTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls-tree <hash>",
		Short: "List the entries of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			entries, err := r.LsTree(object.Hash(args[0]))
			if err != nil {
				return err
			}
			printTreeEntries(cmd, entries)
			return nil
		},
	}
}

func printTreeEntries(cmd *cobra.Command, entries []object.TreeEntry) {
	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s %s %s\t%s\n", e.Mode, e.Type, e.Hash, e.Name)
	}
}
