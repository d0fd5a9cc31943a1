package selector

import (
	"github.com/cockroachdb/errors"
)

// PolicyMode selects how actives are drawn from scaffold buckets.
type PolicyMode string

const (
	// PolicyAuto picks top-per-scaffold when the dataset has at least
	// ScaffoldThreshold scaffolds and round-robin otherwise.
	PolicyAuto PolicyMode = "auto"
	// PolicyTop takes the single most potent compound of every scaffold.
	PolicyTop PolicyMode = "top"
	// PolicyRoundRobin deepens through every scaffold one rank at a time.
	PolicyRoundRobin PolicyMode = "roundrobin"
)

// ParseErrorMode controls what happens when a structure can not be parsed.
type ParseErrorMode string

const (
	// ParseErrorSkip records the failure and keeps going.
	ParseErrorSkip ParseErrorMode = "skip"
	// ParseErrorAbort fails the whole run on the first bad structure.
	ParseErrorAbort ParseErrorMode = "abort"
)

// InputConfig controls how datasets are read. Column values are a header
// name or a 1-based "#n" index and only apply to CSV/TSV tables. Identifiers
// and structures are kept exactly as written unless Normalize is set.
type InputConfig struct {
	IDColumn       string           `yaml:"idColumn,omitempty"`
	SMILESColumn   string           `yaml:"smilesColumn,omitempty"`
	ActivityColumn string           `yaml:"activityColumn,omitempty"`
	Candidates     ColumnCandidates `yaml:"candidates,omitempty"`
	Normalize      bool             `yaml:"normalize,omitempty"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// OutputConfig configures the report writer.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// Config aggregates runtime settings persisted to config.yaml.
type Config struct {
	ScaffoldThreshold int            `yaml:"scaffoldThreshold"`
	TargetActives     int            `yaml:"targetActives"`
	Policy            PolicyMode     `yaml:"policy"`
	OnParseError      ParseErrorMode `yaml:"onParseError"`
	// CacheSize bounds the scaffold memo. Negative disables it.
	CacheSize int          `yaml:"cacheSize"`
	Input     InputConfig  `yaml:"input"`
	Log       LogConfig    `yaml:"log"`
	Output    OutputConfig `yaml:"output"`
}

// ApplyDefaults populates zero values with the defaults.
func (c *Config) ApplyDefaults() {
	if c.ScaffoldThreshold == 0 {
		c.ScaffoldThreshold = 100
	}
	if c.TargetActives == 0 {
		c.TargetActives = 100
	}
	if c.Policy == "" {
		c.Policy = PolicyAuto
	}
	if c.OnParseError == "" {
		c.OnParseError = ParseErrorSkip
	}
	if c.CacheSize == 0 {
		c.CacheSize = 4096
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Output.Format == "" {
		c.Output.Format = string(FormatText)
	}
}

// Validate rejects settings the service can not act on.
func (c Config) Validate() error {
	if c.ScaffoldThreshold < 0 {
		return errors.Newf("scaffoldThreshold must not be negative, got %d", c.ScaffoldThreshold)
	}
	if c.TargetActives < 0 {
		return errors.Newf("targetActives must not be negative, got %d", c.TargetActives)
	}
	switch c.Policy {
	case PolicyAuto, PolicyTop, PolicyRoundRobin:
	default:
		return errors.Newf("unknown policy %q", c.Policy)
	}
	switch c.OnParseError {
	case ParseErrorSkip, ParseErrorAbort:
	default:
		return errors.Newf("unknown onParseError mode %q", c.OnParseError)
	}
	if _, err := ParseFormat(c.Output.Format); err != nil {
		return err
	}
	return nil
}

// CompoundRecord is one loaded compound. Lower activity means more potent.
type CompoundRecord struct {
	ID       string  `json:"id" yaml:"id"`
	SMILES   string  `json:"smiles" yaml:"smiles"`
	Activity float64 `json:"activity" yaml:"activity"`
}

// Active is a selected compound.
type Active struct {
	ID       string  `json:"id" yaml:"id"`
	SMILES   string  `json:"smiles" yaml:"smiles"`
	Activity float64 `json:"activity" yaml:"activity"`
	Scaffold string  `json:"scaffold" yaml:"scaffold"`
	// Depth is the 0-based potency rank inside the scaffold bucket.
	Depth int `json:"depth" yaml:"depth"`
}
