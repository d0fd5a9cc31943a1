package selector

import (
	"cmp"
	"slices"
)

// SelectActives orders ids by ascending activity, most potent first. The
// sort is stable, so equal activities keep their input order. ids is not
// modified.
func SelectActives(ids []string, activities map[string]float64) ([]string, error) {
	for _, id := range ids {
		if _, ok := activities[id]; !ok {
			return nil, missingKeyf("no activity for compound %q", id)
		}
	}
	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b string) int {
		return cmp.Compare(activities[a], activities[b])
	})
	return out, nil
}
