package selector

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectActives(t *testing.T) {
	activities := map[string]float64{"a": 5, "b": 0.3, "c": 5, "d": -1, "e": 0.3}
	ids := []string{"a", "b", "c", "d", "e"}

	got, err := SelectActives(ids, activities)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "e", "a", "c"}, got)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids, "input must not be reordered")
	assert.ElementsMatch(t, ids, got)
}

func TestSelectActivesEmpty(t *testing.T) {
	got, err := SelectActives(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectActivesMissingKey(t *testing.T) {
	_, err := SelectActives([]string{"a", "zz"}, map[string]float64{"a": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Contains(t, err.Error(), `"zz"`)
}
