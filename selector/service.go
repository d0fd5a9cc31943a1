package selector

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Result is the outcome of one selection run.
type Result struct {
	Source    string
	Compounds int
	Scaffolds int
	Policy    string
	Rounds    int
	Actives   *ActiveSet
	Failures  []ParseFailure
}

// FailureError combines every skipped structure into one error, nil when all
// structures were usable.
func (r *Result) FailureError() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Service wires loading, scaffold grouping and active selection.
type Service struct {
	extractor ScaffoldExtractor
	cfg       Config
	logger    *zap.Logger
}

// NewService constructs a service with the given extractor and configuration.
func NewService(extractor ScaffoldExtractor, cfg Config, logger *zap.Logger) (*Service, error) {
	if extractor == nil {
		return nil, errors.New("scaffold extractor is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{extractor: extractor, cfg: cfg, logger: logger}, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// Run loads the dataset at path and selects actives from it.
func (s *Service) Run(ctx context.Context, path string) (*Result, error) {
	ds, err := LoadDatasetWithOptions(path, s.cfg.Input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dataset loaded", zap.String("path", path), zap.Int("compounds", ds.Len()))
	for _, id := range ds.Duplicates() {
		s.logger.Warn("duplicate compound identifier, keeping the last record", zap.String("id", id))
	}
	res, err := s.Select(ctx, ds)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}

// Select groups ds by scaffold and applies the policy chosen for the scaffold
// count.
func (s *Service) Select(ctx context.Context, ds *Dataset) (*Result, error) {
	idx, failures, err := GroupByScaffold(ctx, ds, s.extractor, s.cfg.OnParseError)
	if err != nil {
		s.logger.Error("scaffold grouping failed", zap.Error(err))
		return nil, err
	}
	for _, f := range failures {
		s.logger.Warn("skipping unparsable structure",
			zap.String("id", f.ID), zap.String("smiles", f.SMILES), zap.Error(f.Err))
	}
	if c, ok := s.extractor.(*CachedExtractor); ok {
		hits, misses := c.Stats()
		s.logger.Debug("scaffold cache", zap.Int("hits", hits), zap.Int("misses", misses))
	}

	policy := ChoosePolicy(idx.Len(), s.cfg)
	s.logger.Info("scaffolds grouped",
		zap.Int("scaffolds", idx.Len()),
		zap.Int("largestBucket", idx.MaxBucketSize()),
		zap.String("policy", policy.Name()))

	actives, rounds, err := policy.Select(idx, ds)
	if err != nil {
		s.logger.Error("active selection failed", zap.String("policy", policy.Name()), zap.Error(err))
		return nil, errors.Wrapf(err, "select actives with %s", policy.Name())
	}
	s.logger.Info("actives selected", zap.Int("actives", actives.Len()), zap.Int("rounds", rounds))

	return &Result{
		Compounds: ds.Len(),
		Scaffolds: idx.Len(),
		Policy:    policy.Name(),
		Rounds:    rounds,
		Actives:   actives,
		Failures:  failures,
	}, nil
}
