// Package repopath implements repository-relative paths as an ordered
// sequence of components, independent of the host filesystem's separator
// or working directory.
package repopath

import "strings"

// Component is a single non-empty path segment. Components compare in
// byte-wise order, which is the canonical order used for all tree
// iteration, diffing, and merging in this module.
type Component string

// Compare returns -1, 0 or 1 as c sorts before, equal to, or after other.
func (c Component) Compare(other Component) int {
	return strings.Compare(string(c), string(other))
}

// Path is a repository-relative path: a sequence of Components rooted at
// the repository root. The zero value is the root path.
type Path struct {
	components []Component
}

// Root returns the repository root path.
func Root() Path {
	return Path{}
}

// IsRoot reports whether p is the repository root.
func (p Path) IsRoot() bool {
	return len(p.components) == 0
}

// Components returns p's components in root-to-leaf order. The returned
// slice must not be mutated by the caller.
func (p Path) Components() []Component {
	return p.components
}

// Join returns the path formed by appending component to p.
func (p Path) Join(component Component) Path {
	next := make([]Component, len(p.components)+1)
	copy(next, p.components)
	next[len(p.components)] = component
	return Path{components: next}
}

// Split returns p's parent path and basename. Calling Split on the root
// path returns (Root(), "", false).
func (p Path) Split() (parent Path, basename Component, ok bool) {
	if len(p.components) == 0 {
		return Root(), "", false
	}
	last := len(p.components) - 1
	parentComponents := make([]Component, last)
	copy(parentComponents, p.components[:last])
	return Path{components: parentComponents}, p.components[last], true
}

// Basename returns the final component of p, or "" if p is the root.
func (p Path) Basename() Component {
	if len(p.components) == 0 {
		return ""
	}
	return p.components[len(p.components)-1]
}

// Compare orders paths componentwise: shorter prefixes sort before their
// extensions, matching the ascending RepoPathComponent order required of
// StoredTree iteration.
func (p Path) Compare(other Path) int {
	n := len(p.components)
	if len(other.components) < n {
		n = len(other.components)
	}
	for i := 0; i < n; i++ {
		if c := p.components[i].Compare(other.components[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(p.components) < len(other.components):
		return -1
	case len(p.components) > len(other.components):
		return 1
	default:
		return 0
	}
}

// Equal reports whether p and other name the same path.
func (p Path) Equal(other Path) bool {
	return p.Compare(other) == 0
}

// String renders p using "/" as the component separator, with the root
// rendered as the empty string.
func (p Path) String() string {
	ss := make([]string, len(p.components))
	for i, c := range p.components {
		ss[i] = string(c)
	}
	return strings.Join(ss, "/")
}

// FromString splits a "/"-separated string into a Path. Empty segments
// (leading, trailing, or repeated slashes) are dropped.
func FromString(s string) Path {
	p := Root()
	for _, seg := range strings.Split(s, "/") {
		if seg == "" {
			continue
		}
		p = p.Join(Component(seg))
	}
	return p
}
