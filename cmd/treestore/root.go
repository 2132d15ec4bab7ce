package main

import (
	"github.com/spf13/cobra"

	"github.com/antgroup/treestore/internal/config"
	"github.com/antgroup/treestore/internal/xlog"
	"github.com/antgroup/treestore/store"
)

var (
	configPath string
	storeRoot  string
	debug      bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "treestore",
		Short:         "Inspect, diff, and merge content-addressed trees",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			xlog.SetDebug(debug)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to treestore.toml (defaults to ~/.treestore.toml)")
	root.PersistentFlags().StringVar(&storeRoot, "store", "", "store root directory (overrides config)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newDiffCommand())
	root.AddCommand(newMergeCommand())
	root.AddCommand(newConflictsCommand())
	return root
}

func loadStoreConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if storeRoot != "" {
		cfg.Store.Root = storeRoot
	}
	return cfg, nil
}

// openStore opens the FileStore cfg.Store describes, threading its cache
// size and compression knobs through to store.Open.
func openStore(cfg *config.Config) (*store.FileStore, error) {
	return store.Open(cfg.Store.Root, store.Options{
		CacheMaxCost: cfg.Store.CacheMaxCost,
		Compression:  cfg.Store.Compression,
	})
}
