package selector

// Policy draws an active set from ranked scaffold buckets.
type Policy interface {
	Name() string
	// Select returns the actives and the number of selection rounds run.
	Select(idx *ScaffoldIndex, ds *Dataset) (*ActiveSet, int, error)
}

// TopPerScaffold takes the most potent compound of every scaffold. It suits
// datasets that are already diverse enough to fill the target from one
// representative per scaffold.
type TopPerScaffold struct{}

// Name identifies the policy in reports.
func (TopPerScaffold) Name() string { return string(PolicyTop) }

// Select emits exactly one active per scaffold bucket.
func (TopPerScaffold) Select(idx *ScaffoldIndex, ds *Dataset) (*ActiveSet, int, error) {
	buckets, err := rankBuckets(idx, ds)
	if err != nil {
		return nil, 0, err
	}
	set := NewActiveSet()
	for _, b := range buckets {
		if len(b.ranked) == 0 {
			continue
		}
		if err := addActive(set, ds, b, 0); err != nil {
			return nil, 0, err
		}
	}
	rounds := 0
	if len(buckets) > 0 {
		rounds = 1
	}
	return set, rounds, nil
}

// RoundRobin deepens through the scaffolds: round k adds the (k+1)-th most
// potent compound of every bucket that has one. Rounds continue while the set
// holds no more than Target entries, so the last round may overshoot Target.
// Selection also stops once every compound is in the set or no bucket is deep
// enough for another round.
type RoundRobin struct {
	Target int
}

// Name identifies the policy in reports.
func (RoundRobin) Name() string { return string(PolicyRoundRobin) }

// Select runs rounds until one of the stop conditions holds.
func (p RoundRobin) Select(idx *ScaffoldIndex, ds *Dataset) (*ActiveSet, int, error) {
	buckets, err := rankBuckets(idx, ds)
	if err != nil {
		return nil, 0, err
	}
	total := idx.Size()
	depth := idx.MaxBucketSize()
	set := NewActiveSet()
	rounds := 0
	for k := 0; set.Len() <= p.Target && k < depth; k++ {
		for _, b := range buckets {
			if len(b.ranked) > k {
				if err := addActive(set, ds, b, k); err != nil {
					return nil, 0, err
				}
			}
		}
		rounds++
		if set.Len() == total {
			break
		}
	}
	return set, rounds, nil
}

// ChoosePolicy dispatches on the scaffold count unless cfg forces a policy.
func ChoosePolicy(scaffolds int, cfg Config) Policy {
	switch cfg.Policy {
	case PolicyTop:
		return TopPerScaffold{}
	case PolicyRoundRobin:
		return RoundRobin{Target: cfg.TargetActives}
	}
	if scaffolds >= cfg.ScaffoldThreshold {
		return TopPerScaffold{}
	}
	return RoundRobin{Target: cfg.TargetActives}
}

type rankedBucket struct {
	scaffold string
	ranked   []string
}

func rankBuckets(idx *ScaffoldIndex, ds *Dataset) ([]rankedBucket, error) {
	activities := ds.Activities()
	out := make([]rankedBucket, 0, idx.Len())
	for _, scaffold := range idx.order {
		ranked, err := SelectActives(idx.buckets[scaffold], activities)
		if err != nil {
			return nil, err
		}
		out = append(out, rankedBucket{scaffold: scaffold, ranked: ranked})
	}
	return out, nil
}

func addActive(set *ActiveSet, ds *Dataset, b rankedBucket, depth int) error {
	id := b.ranked[depth]
	rec, ok := ds.Record(id)
	if !ok {
		return missingKeyf("no structure for compound %q", id)
	}
	set.Add(Active{
		ID:       id,
		SMILES:   rec.SMILES,
		Activity: rec.Activity,
		Scaffold: b.scaffold,
		Depth:    depth,
	})
	return nil
}
