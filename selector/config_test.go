package selector

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.ScaffoldThreshold)
	assert.Equal(t, 100, cfg.TargetActives)
	assert.Equal(t, PolicyAuto, cfg.Policy)
	assert.Equal(t, ParseErrorSkip, cfg.OnParseError)
	assert.Equal(t, 4096, cfg.CacheSize)
	assert.Equal(t, LogConfig{Level: "info", Format: "console"}, cfg.Log)
	assert.Equal(t, "text", cfg.Output.Format)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
scaffoldThreshold: 50
targetActives: 25
policy: roundrobin
onParseError: abort
cacheSize: -1
input:
  idColumn: compound
  activityColumn: "#3"
  normalize: true
  candidates:
    smiles: [smi, isosmiles]
log:
  level: debug
  format: json
output:
  format: tsv
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		ScaffoldThreshold: 50,
		TargetActives:     25,
		Policy:            PolicyRoundRobin,
		OnParseError:      ParseErrorAbort,
		CacheSize:         -1,
		Input: InputConfig{
			IDColumn:       "compound",
			ActivityColumn: "#3",
			Normalize:      true,
			Candidates:     ColumnCandidates{SMILES: []string{"smi", "isosmiles"}},
		},
		Log:               LogConfig{Level: "debug", Format: "json"},
		Output:            OutputConfig{Format: "tsv"},
	}, cfg)
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"targetActives": 7, "policy": "top"}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TargetActives)
	assert.Equal(t, PolicyTop, cfg.Policy)
	assert.Equal(t, 100, cfg.ScaffoldThreshold)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"policy":       "policy: random\n",
		"parse mode":   "onParseError: ignore\n",
		"format":       "output:\n  format: xml\n",
		"threshold":    "scaffoldThreshold: -4\n",
		"target":       "targetActives: -1\n",
		"syntax error": "policy: [top\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeFile(t, "config.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Config{TargetActives: 42, Policy: PolicyTop, Input: InputConfig{
		SMILESColumn: "smi",
		Candidates:   ColumnCandidates{ID: []string{"key"}},
	}}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.ApplyDefaults()
	assert.Equal(t, cfg, loaded)
	assert.NoFileExists(t, path+".tmp")
}

func TestNewLogger(t *testing.T) {
	for _, lc := range []LogConfig{
		{},
		{Level: "debug", Format: "console"},
		{Level: "warn", Format: "json"},
	} {
		logger, err := NewLogger(lc)
		require.NoError(t, err, "%+v", lc)
		require.NotNil(t, logger)
	}

	_, err := NewLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Format: "xml"})
	assert.Error(t, err)
}
