package textmerge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antgroup/treestore/textmerge"
)

func TestDiferencoResolvesNonConflictingChanges(t *testing.T) {
	d := textmerge.New()
	base := []byte("A\nB\nC\n")
	side1 := []byte("A\nB1\nC\n")
	side2 := []byte("A\nB\nC2\n")

	result, err := d.Merge(context.Background(), base, side1, side2)
	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, "A\nB1\nC2\n", string(result.Content))
}

func TestDiferencoReportsUnresolvedOnOverlappingEdits(t *testing.T) {
	d := textmerge.New()
	base := []byte("A\nB\nC\n")
	side1 := []byte("A\ntrout\nC\n")
	side2 := []byte("A\npike\nC\n")

	result, err := d.Merge(context.Background(), base, side1, side2)
	require.NoError(t, err)
	assert.False(t, result.Resolved)
}
