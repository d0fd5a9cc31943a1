package selector

import (
	"context"

	"github.com/cockroachdb/errors"
)

// GroupByScaffold buckets every compound of ds by the scaffold of its
// structure, in dataset order. With ParseErrorSkip a structure the extractor
// rejects is recorded as a ParseFailure and left out of the index; with
// ParseErrorAbort the first failure ends the run.
func GroupByScaffold(ctx context.Context, ds *Dataset, extractor ScaffoldExtractor, mode ParseErrorMode) (*ScaffoldIndex, []ParseFailure, error) {
	if extractor == nil {
		return nil, nil, errors.New("scaffold extractor is required")
	}
	idx := NewScaffoldIndex()
	var failures []ParseFailure
	for _, id := range ds.ids {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rec := ds.records[id]
		scaffold, err := extractor.Scaffold(rec.SMILES)
		if err != nil {
			failure := ParseFailure{ID: id, SMILES: rec.SMILES, Err: errors.Mark(err, ErrStructureParse)}
			if mode == ParseErrorAbort {
				return nil, nil, errors.Mark(failure, ErrStructureParse)
			}
			failures = append(failures, failure)
			continue
		}
		idx.Add(scaffold, id)
	}
	return idx, failures, nil
}
