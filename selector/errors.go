package selector

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrLoad marks malformed or missing datasets.
	ErrLoad = errors.New("dataset load failed")
	// ErrStructureParse marks structures the scaffold extractor rejected.
	ErrStructureParse = errors.New("structure parse failed")
	// ErrMissingKey marks identifiers absent from the loaded mappings. It
	// signals an inconsistency between loader and grouper.
	ErrMissingKey = errors.New("missing compound key")
)

func loadErrorf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrLoad)
}

func missingKeyf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrMissingKey)
}

// ParseFailure records a compound whose structure could not be reduced to a
// scaffold.
type ParseFailure struct {
	ID     string
	SMILES string
	Err    error
}

func (f ParseFailure) Error() string {
	return fmt.Sprintf("compound %q (%s): %v", f.ID, f.SMILES, f.Err)
}

func (f ParseFailure) Unwrap() error { return f.Err }
