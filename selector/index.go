package selector

import (
	"slices"

	"github.com/samber/lo"
)

// ScaffoldBucket is the list of compounds sharing one scaffold, in the order
// they were encountered.
type ScaffoldBucket struct {
	Scaffold string   `json:"scaffold" yaml:"scaffold"`
	Members  []string `json:"members" yaml:"members"`
}

// ScaffoldIndex maps canonical scaffolds to their compounds. Scaffolds keep
// first-seen order so every pass over the index is reproducible.
type ScaffoldIndex struct {
	order   []string
	buckets map[string][]string
}

// NewScaffoldIndex constructs an empty index.
func NewScaffoldIndex() *ScaffoldIndex {
	return &ScaffoldIndex{buckets: make(map[string][]string)}
}

// Add appends id to the bucket for scaffold, creating the bucket if absent.
func (x *ScaffoldIndex) Add(scaffold, id string) {
	if _, ok := x.buckets[scaffold]; !ok {
		x.order = append(x.order, scaffold)
	}
	x.buckets[scaffold] = append(x.buckets[scaffold], id)
}

// Len returns the number of distinct scaffolds.
func (x *ScaffoldIndex) Len() int { return len(x.order) }

// Scaffolds returns scaffold keys in first-seen order.
func (x *ScaffoldIndex) Scaffolds() []string { return slices.Clone(x.order) }

// Members returns the compounds of one scaffold.
func (x *ScaffoldIndex) Members(scaffold string) []string {
	return slices.Clone(x.buckets[scaffold])
}

// Buckets returns every bucket in scaffold order.
func (x *ScaffoldIndex) Buckets() []ScaffoldBucket {
	return lo.Map(x.order, func(s string, _ int) ScaffoldBucket {
		return ScaffoldBucket{Scaffold: s, Members: slices.Clone(x.buckets[s])}
	})
}

// Size returns the number of compounds across all buckets.
func (x *ScaffoldIndex) Size() int {
	return lo.SumBy(x.order, func(s string) int { return len(x.buckets[s]) })
}

// MaxBucketSize returns the size of the largest bucket, 0 when empty.
func (x *ScaffoldIndex) MaxBucketSize() int {
	return lo.Max(lo.Map(x.order, func(s string, _ int) int { return len(x.buckets[s]) }))
}
