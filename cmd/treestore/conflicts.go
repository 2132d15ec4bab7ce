package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antgroup/treestore/objhash"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/tree"
)

func newConflictsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <tree>",
		Short: "List every unresolved conflict left in a stored tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runConflicts,
	}
}

func runConflicts(cmd *cobra.Command, args []string) error {
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
	t, err := tree.Load(ctx, fs, repopath.Root(), objhash.FromHex(args[0]))
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}

	entries, err := t.Conflicts(ctx)
	if err != nil {
		return fmt.Errorf("walk conflicts: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no conflicts")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", e.Path, e.ID)
	}
	return nil
}
