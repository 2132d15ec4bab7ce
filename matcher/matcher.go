// Package matcher implements the concrete Matcher collaborator declared by
// the tree package: trivial Everything/Nothing matchers, a directory-prefix
// matcher, and a gitignore-style glob matcher built on modules/wildmatch.
package matcher

import (
	"fmt"

	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/tree"
	"github.com/antgroup/treestore/modules/wildmatch"
)

type everything struct{}

// Everything returns a Matcher that matches every path.
func Everything() tree.Matcher { return everything{} }

func (everything) Matches(repopath.Path) bool             { return true }
func (everything) Visit(repopath.Path) tree.VisitDecision { return tree.VisitDescend }

type nothing struct{}

// Nothing returns a Matcher that matches no path.
func Nothing() tree.Matcher { return nothing{} }

func (nothing) Matches(repopath.Path) bool            { return false }
func (nothing) Visit(repopath.Path) tree.VisitDecision { return tree.VisitSkip }

// prefixMatcher matches a path and everything under it, grounded on
// merkletrie/noder's sparse-tree matcher idea: a small set of directory
// roots of interest, rather than a full glob language.
type prefixMatcher struct {
	prefix repopath.Path
}

// PrefixMatcher returns a Matcher that matches prefix itself and every path
// nested under it.
func PrefixMatcher(prefix repopath.Path) tree.Matcher {
	return prefixMatcher{prefix: prefix}
}

func (m prefixMatcher) Matches(path repopath.Path) bool {
	pc := m.prefix.Components()
	c := path.Components()
	if len(c) < len(pc) {
		return false
	}
	for i, comp := range pc {
		if c[i] != comp {
			return false
		}
	}
	return true
}

func (m prefixMatcher) Visit(dir repopath.Path) tree.VisitDecision {
	if m.Matches(dir) {
		return tree.VisitDescend
	}
	pc := m.prefix.Components()
	c := dir.Components()
	n := len(c)
	if n > len(pc) {
		n = len(pc)
	}
	for i := 0; i < n; i++ {
		if c[i] != pc[i] {
			return tree.VisitSkip
		}
	}
	return tree.VisitDescend
}

// Glob is a gitignore-style path matcher backed by modules/wildmatch,
// evaluated the way .gitignore does: later patterns override earlier ones,
// and a leading "!" negates a pattern.
type Glob struct {
	patterns []globPattern
}

type globPattern struct {
	negate bool
	wm     *wildmatch.Wildmatch
}

// NewGlob compiles patterns (gitignore syntax) into a Glob matcher.
func NewGlob(patterns []string) (*Glob, error) {
	g := &Glob{patterns: make([]globPattern, 0, len(patterns))}
	for _, raw := range patterns {
		negate := false
		p := raw
		if len(p) > 0 && p[0] == '!' {
			negate = true
			p = p[1:]
		}
		wm, err := compileWildmatch(p)
		if err != nil {
			return nil, fmt.Errorf("matcher: invalid pattern %q: %w", raw, err)
		}
		g.patterns = append(g.patterns, globPattern{negate: negate, wm: wm})
	}
	return g, nil
}

// compileWildmatch recovers from wildmatch.NewWildmatch's panic on
// malformed patterns and reports it as an error instead.
func compileWildmatch(p string) (wm *wildmatch.Wildmatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	wm = wildmatch.NewWildmatch(p, wildmatch.Contents)
	return wm, nil
}

func (g *Glob) Matches(path repopath.Path) bool {
	s := path.String()
	matched := false
	for _, p := range g.patterns {
		if p.wm.Match(s) {
			matched = !p.negate
		}
	}
	return matched
}

// Visit always returns VisitDescend: the diff walker does not currently
// consult Visit, so Glob has no prefix knowledge to offer it (see
// DESIGN.md's Open Question entry).
func (g *Glob) Visit(repopath.Path) tree.VisitDecision {
	return tree.VisitDescend
}
