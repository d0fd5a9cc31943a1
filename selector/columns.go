package selector

import "slices"

// ColumnCandidates lists header names recognised when auto-detecting CSV/TSV
// columns. Matching is case-insensitive. A nil list falls back to the
// built-in names for that field; an empty list disables header detection for
// it.
type ColumnCandidates struct {
	ID       []string `yaml:"id,omitempty"`
	SMILES   []string `yaml:"smiles,omitempty"`
	Activity []string `yaml:"activity,omitempty"`
}

// DefaultColumnCandidates returns the built-in column detection candidates.
// Each call returns fresh slices.
func DefaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		ID:       []string{"id", "compound_id", "chembl_id", "molecule_chembl_id", "name"},
		SMILES:   []string{"smiles", "canonical_smiles", "structure", "mol"},
		Activity: []string{"activity", "value", "standard_value", "affinity", "ic50", "ki"},
	}
}

// withDefaults overlays the configured lists on the built-in ones.
func (c ColumnCandidates) withDefaults() ColumnCandidates {
	out := DefaultColumnCandidates()
	for _, f := range []struct {
		dst *[]string
		src []string
	}{{&out.ID, c.ID}, {&out.SMILES, c.SMILES}, {&out.Activity, c.Activity}} {
		if f.src != nil {
			*f.dst = slices.Clone(f.src)
		}
	}
	return out
}
