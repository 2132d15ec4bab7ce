// Command treestore is a batch CLI over the content-addressed tree store:
// diff two trees, three-way merge two trees against a base, and list the
// unresolved conflicts left in a tree.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
