package selector

import (
	"sync"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru/v2"

	"yashubustudio/scaffoldselect/chem"
)

// ScaffoldExtractor reduces a structure to its canonical scaffold string. The
// service treats it as a deterministic pure function.
type ScaffoldExtractor interface {
	Scaffold(smiles string) (string, error)
}

// ExtractorFunc adapts a plain function to ScaffoldExtractor.
type ExtractorFunc func(smiles string) (string, error)

// Scaffold calls f.
func (f ExtractorFunc) Scaffold(smiles string) (string, error) { return f(smiles) }

// MurckoExtractor computes Bemis-Murcko scaffolds with the chem package.
type MurckoExtractor struct{}

// Scaffold returns the canonical SMILES of the Murcko framework of smiles.
// Acyclic structures map to the empty scaffold.
func (MurckoExtractor) Scaffold(smiles string) (string, error) {
	return chem.ScaffoldSMILES(smiles)
}

// CachedExtractor memoises successful extractions. Activity sets repeat
// structures often (salts stripped upstream, several assays per compound).
type CachedExtractor struct {
	next  ScaffoldExtractor
	cache *lru.Cache[string, string]

	mu     sync.Mutex
	hits   int
	misses int
}

// NewCachedExtractor wraps next with an LRU of the given size.
func NewCachedExtractor(next ScaffoldExtractor, size int) (*CachedExtractor, error) {
	if next == nil {
		return nil, errors.New("scaffold extractor is required")
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "create scaffold cache")
	}
	return &CachedExtractor{next: next, cache: cache}, nil
}

// Scaffold returns the memoised scaffold or asks the wrapped extractor.
// Failures are not cached.
func (c *CachedExtractor) Scaffold(smiles string) (string, error) {
	if scaffold, ok := c.cache.Get(smiles); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return scaffold, nil
	}
	scaffold, err := c.next.Scaffold(smiles)
	if err != nil {
		return "", err
	}
	c.cache.Add(smiles, scaffold)
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return scaffold, nil
}

// Stats reports cache hits and misses so far.
func (c *CachedExtractor) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
