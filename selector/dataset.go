package selector

import (
	"slices"

	"github.com/samber/lo"
)

// Dataset holds compound records in load order. It is not modified after
// loading.
type Dataset struct {
	ids        []string
	records    map[string]CompoundRecord
	duplicates []string
}

// NewDataset builds a dataset from records. A repeated identifier replaces
// the earlier value but keeps the earlier position, the way a JSON object
// decoded into an insertion-ordered map behaves.
func NewDataset(records ...CompoundRecord) *Dataset {
	ds := newDataset(len(records))
	for _, rec := range records {
		ds.add(rec)
	}
	return ds
}

func newDataset(capacity int) *Dataset {
	return &Dataset{
		ids:     make([]string, 0, capacity),
		records: make(map[string]CompoundRecord, capacity),
	}
}

func (d *Dataset) add(rec CompoundRecord) {
	if _, ok := d.records[rec.ID]; ok {
		d.duplicates = append(d.duplicates, rec.ID)
	} else {
		d.ids = append(d.ids, rec.ID)
	}
	d.records[rec.ID] = rec
}

// Len returns the number of distinct compounds.
func (d *Dataset) Len() int { return len(d.ids) }

// IDs returns compound identifiers in load order.
func (d *Dataset) IDs() []string { return slices.Clone(d.ids) }

// Record looks up a compound by identifier.
func (d *Dataset) Record(id string) (CompoundRecord, bool) {
	rec, ok := d.records[id]
	return rec, ok
}

// Records returns all compounds in load order.
func (d *Dataset) Records() []CompoundRecord {
	return lo.Map(d.ids, func(id string, _ int) CompoundRecord { return d.records[id] })
}

// Duplicates lists identifiers that appeared more than once in the source.
func (d *Dataset) Duplicates() []string { return slices.Clone(d.duplicates) }

// Structures returns the identifier → SMILES mapping.
func (d *Dataset) Structures() map[string]string {
	out := make(map[string]string, len(d.records))
	for id, rec := range d.records {
		out[id] = rec.SMILES
	}
	return out
}

// Activities returns the identifier → activity mapping.
func (d *Dataset) Activities() map[string]float64 {
	out := make(map[string]float64, len(d.records))
	for id, rec := range d.records {
		out[id] = rec.Activity
	}
	return out
}
