package selector

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/scaffoldselect/chem"
)

var errBadStructure = errors.New("bad structure")

// prefixExtractor groups by the text before the first '/' and rejects
// structures starting with '!'.
var prefixExtractor = ExtractorFunc(func(smiles string) (string, error) {
	if strings.HasPrefix(smiles, "!") {
		return "", errBadStructure
	}
	head, _, _ := strings.Cut(smiles, "/")
	return head, nil
})

func TestGroupByScaffoldCoversEveryCompound(t *testing.T) {
	ds := NewDataset(
		CompoundRecord{ID: "1", SMILES: "X/a", Activity: 1},
		CompoundRecord{ID: "2", SMILES: "Y/a", Activity: 1},
		CompoundRecord{ID: "3", SMILES: "X/b", Activity: 1},
		CompoundRecord{ID: "4", SMILES: "Z", Activity: 1},
		CompoundRecord{ID: "5", SMILES: "Y/b", Activity: 1},
	)
	idx, failures, err := GroupByScaffold(context.Background(), ds, prefixExtractor, ParseErrorSkip)
	require.NoError(t, err)
	assert.Empty(t, failures)

	assert.Equal(t, []string{"X", "Y", "Z"}, idx.Scaffolds())
	assert.Equal(t, []ScaffoldBucket{
		{Scaffold: "X", Members: []string{"1", "3"}},
		{Scaffold: "Y", Members: []string{"2", "5"}},
		{Scaffold: "Z", Members: []string{"4"}},
	}, idx.Buckets())
	assert.Equal(t, ds.Len(), idx.Size())
	assert.Equal(t, 2, idx.MaxBucketSize())
	assert.Equal(t, []string{"1", "3"}, idx.Members("X"))
	assert.Nil(t, idx.Members("missing"))
}

func TestGroupByScaffoldSkipsFailures(t *testing.T) {
	ds := NewDataset(
		CompoundRecord{ID: "ok", SMILES: "X/a", Activity: 1},
		CompoundRecord{ID: "bad", SMILES: "!X", Activity: 1},
	)
	idx, failures, err := GroupByScaffold(context.Background(), ds, prefixExtractor, ParseErrorSkip)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Size())
	require.Len(t, failures, 1)
	assert.Equal(t, "bad", failures[0].ID)
	assert.Equal(t, "!X", failures[0].SMILES)
	assert.True(t, errors.Is(failures[0], ErrStructureParse))
	assert.True(t, errors.Is(failures[0], errBadStructure))
}

func TestGroupByScaffoldAborts(t *testing.T) {
	ds := NewDataset(
		CompoundRecord{ID: "ok", SMILES: "X/a", Activity: 1},
		CompoundRecord{ID: "bad", SMILES: "!X", Activity: 1},
	)
	idx, failures, err := GroupByScaffold(context.Background(), ds, prefixExtractor, ParseErrorAbort)
	require.Error(t, err)
	assert.Nil(t, idx)
	assert.Nil(t, failures)
	assert.True(t, errors.Is(err, ErrStructureParse))
	assert.Contains(t, err.Error(), `"bad"`)

	var failure ParseFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "bad", failure.ID)
}

func TestGroupByScaffoldHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := GroupByScaffold(ctx, NewDataset(CompoundRecord{ID: "a", SMILES: "X"}), prefixExtractor, ParseErrorSkip)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGroupByScaffoldRequiresExtractor(t *testing.T) {
	_, _, err := GroupByScaffold(context.Background(), NewDataset(), nil, ParseErrorSkip)
	assert.Error(t, err)
}

func TestGroupByMurckoScaffold(t *testing.T) {
	ds := NewDataset(
		CompoundRecord{ID: "phenol", SMILES: "Oc1ccccc1", Activity: 3},
		CompoundRecord{ID: "ethanol", SMILES: "CCO", Activity: 9},
		CompoundRecord{ID: "toluene", SMILES: "c1ccccc1C", Activity: 1},
		CompoundRecord{ID: "broken", SMILES: "c1ccc", Activity: 2},
		CompoundRecord{ID: "acetate", SMILES: "CC(=O)O", Activity: 4},
	)
	idx, failures, err := GroupByScaffold(context.Background(), ds, MurckoExtractor{}, ParseErrorSkip)
	require.NoError(t, err)

	assert.Equal(t, []string{"c1ccccc1", ""}, idx.Scaffolds())
	assert.Equal(t, []string{"phenol", "toluene"}, idx.Members("c1ccccc1"))
	assert.Equal(t, []string{"ethanol", "acetate"}, idx.Members(""))
	require.Len(t, failures, 1)
	assert.Equal(t, "broken", failures[0].ID)
	assert.True(t, errors.Is(failures[0], chem.ErrInvalidSMILES))
}
