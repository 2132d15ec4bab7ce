package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/treestore/matcher"
	"github.com/antgroup/treestore/repopath"
	"github.com/antgroup/treestore/tree"
)

func TestEverythingMatchesAnyPath(t *testing.T) {
	m := matcher.Everything()
	assert.True(t, m.Matches(repopath.Root()))
	assert.True(t, m.Matches(repopath.FromString("a/b/c")))
	assert.Equal(t, tree.VisitDescend, m.Visit(repopath.FromString("a")))
}

func TestNothingMatchesNoPath(t *testing.T) {
	m := matcher.Nothing()
	assert.False(t, m.Matches(repopath.Root()))
	assert.False(t, m.Matches(repopath.FromString("a")))
	assert.Equal(t, tree.VisitSkip, m.Visit(repopath.FromString("a")))
}

func TestPrefixMatcherMatchesPrefixAndDescendants(t *testing.T) {
	m := matcher.PrefixMatcher(repopath.FromString("a/b"))
	assert.True(t, m.Matches(repopath.FromString("a/b")))
	assert.True(t, m.Matches(repopath.FromString("a/b/c")))
	assert.False(t, m.Matches(repopath.FromString("a/c")))
	assert.False(t, m.Matches(repopath.FromString("a")))

	assert.Equal(t, tree.VisitDescend, m.Visit(repopath.FromString("a")))
	assert.Equal(t, tree.VisitDescend, m.Visit(repopath.FromString("a/b")))
	assert.Equal(t, tree.VisitSkip, m.Visit(repopath.FromString("x")))
}

func TestGlobLastMatchWinsWithNegation(t *testing.T) {
	g, err := matcher.NewGlob([]string{"*.txt", "!secret.txt"})
	require.NoError(t, err)

	assert.True(t, g.Matches(repopath.FromString("notes.txt")))
	assert.False(t, g.Matches(repopath.FromString("secret.txt")))
	assert.False(t, g.Matches(repopath.FromString("notes.md")))
}

func TestGlobInvalidPatternReturnsError(t *testing.T) {
	_, err := matcher.NewGlob([]string{"["})
	assert.Error(t, err)
}
