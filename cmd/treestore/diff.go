package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/antgroup/treestore/matcher"
	"github.com/antgroup/treestore/modules/diferenco"
	"github.com/antgroup/treestore/objhash"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/store"
	"github.com/antgroup/treestore/tree"
	"github.com/antgroup/treestore/treeval"
)

var (
	diffGlobs   []string
	diffUnified bool
)

func newDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <before-tree> <after-tree>",
		Short: "Show the recursive diff between two stored trees",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiff,
	}
	cmd.Flags().StringArrayVar(&diffGlobs, "glob", nil, "restrict output to paths matching this gitignore-style pattern (repeatable)")
	cmd.Flags().BoolVar(&diffUnified, "unified", false, "print a unified text diff for modified regular files instead of a summary line")
	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
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
	before, err := tree.Load(ctx, fs, repopath.Root(), objhash.FromHex(args[0]))
	if err != nil {
		return fmt.Errorf("load before tree: %w", err)
	}
	after, err := tree.Load(ctx, fs, repopath.Root(), objhash.FromHex(args[1]))
	if err != nil {
		return fmt.Errorf("load after tree: %w", err)
	}

	m, err := resolveMatcher()
	if err != nil {
		return err
	}

	w := before.Diff(after, m)
	for {
		e, ok, err := w.Next(ctx)
		if err != nil {
			return fmt.Errorf("diff: %w", err)
		}
		if !ok {
			return nil
		}
		if err := printDiffEntry(ctx, cmd, fs, e); err != nil {
			return err
		}
	}
}

func printDiffEntry(ctx context.Context, cmd *cobra.Command, fs *store.FileStore, e tree.DiffEntry) error {
	switch e.Diff.Kind {
	case tree.DiffAdded:
		fmt.Fprintf(cmd.OutOrStdout(), "A %s %s\n", e.Path, e.Diff.After.Kind)
	case tree.DiffRemoved:
		fmt.Fprintf(cmd.OutOrStdout(), "D %s %s\n", e.Path, e.Diff.Before.Kind)
	case tree.DiffModified:
		fmt.Fprintf(cmd.OutOrStdout(), "M %s %s -> %s\n", e.Path, e.Diff.Before.Kind, e.Diff.After.Kind)
		if diffUnified && e.Diff.Before.IsFile() && e.Diff.After.IsFile() {
			return printUnifiedFileDiff(ctx, cmd, fs, e)
		}
	}
	return nil
}

// printUnifiedFileDiff renders a standard unified text diff for a modified
// regular file, reading both blobs back from the store. Both blobs are
// diffed as text; no binary-content detection is done.
func printUnifiedFileDiff(ctx context.Context, cmd *cobra.Command, fs *store.FileStore, e tree.DiffEntry) error {
	before, err := readFileString(ctx, fs, e.Path, e.Diff.Before)
	if err != nil {
		return fmt.Errorf("read %s (before): %w", e.Path, err)
	}
	after, err := readFileString(ctx, fs, e.Path, e.Diff.After)
	if err != nil {
		return fmt.Errorf("read %s (after): %w", e.Path, err)
	}

	u, err := diferenco.DoUnified(ctx, &diferenco.Options{
		From: &diferenco.File{Path: "a/" + e.Path.String()},
		To:   &diferenco.File{Path: "b/" + e.Path.String()},
		A:    before,
		B:    after,
	})
	if err != nil {
		return fmt.Errorf("unified diff %s: %w", e.Path, err)
	}
	fmt.Fprint(cmd.OutOrStdout(), u.String())
	return nil
}

func readFileString(ctx context.Context, fs *store.FileStore, path repopath.Path, v treeval.TreeValue) (string, error) {
	rc, err := fs.ReadFile(ctx, path, v.FileID)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func resolveMatcher() (tree.Matcher, error) {
	if len(diffGlobs) == 0 {
		return matcher.Everything(), nil
	}
	return matcher.NewGlob(diffGlobs)
}
