package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antgroup/treestore/merge"
	"github.com/antgroup/treestore/objhash"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/textmerge"
	"github.com/antgroup/treestore/tree"
)

func newMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <side1-tree> <base-tree> <side2-tree>",
		Short: "Three-way merge two stored trees against a common base",
		Args:  cobra.ExactArgs(3),
		RunE:  runMerge,
	}
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadStoreConfig()
	if err != nil {
		return err
	}
	fs, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer fs.Close()

	ctx := context.Background()
	side1, err := tree.Load(ctx, fs, repopath.Root(), objhash.FromHex(args[0]))
	if err != nil {
		return fmt.Errorf("load side1 tree: %w", err)
	}
	base, err := tree.Load(ctx, fs, repopath.Root(), objhash.FromHex(args[1]))
	if err != nil {
		return fmt.Errorf("load base tree: %w", err)
	}
	side2, err := tree.Load(ctx, fs, repopath.Root(), objhash.FromHex(args[2]))
	if err != nil {
		return fmt.Errorf("load side2 tree: %w", err)
	}

	id, err := merge.MergeTrees(ctx, fs, textmerge.New(), side1, base, side2)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), id.String())

	merged, err := tree.Load(ctx, fs, repopath.Root(), id)
	if err != nil {
		return fmt.Errorf("load merged tree: %w", err)
	}
	hasConflict, err := merged.HasConflict(ctx)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if hasConflict {
		fmt.Fprintln(cmd.OutOrStdout(), "conflicts remain; run `treestore conflicts` on the result")
	}
	return nil
}
