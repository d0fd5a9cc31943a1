package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"yashubustudio/scaffoldselect/selector"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-input", " data.csv ", "-format", "json", "-target", "20", "-smiles-column", "#2"})
	require.NoError(t, err)
	assert.Equal(t, "data.csv", opts.inputPath)
	assert.Equal(t, "json", opts.format)
	assert.Equal(t, 20, opts.target)
	assert.Equal(t, "#2", opts.columns.SMILESColumn)

	_, err = parseFlags([]string{"-format", "json"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"-input", "x.json", "-target", "-3"})
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	cfg := selector.Config{}
	cfg.ApplyDefaults()
	applyOverrides(&cfg, cliOptions{
		policy:    "Top",
		format:    "yaml",
		target:    12,
		threshold: 30,
		logLevel:  "warn",
		columns:   selector.InputConfig{IDColumn: "code"},
		normalize: true,
	})
	assert.Equal(t, selector.PolicyTop, cfg.Policy)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 12, cfg.TargetActives)
	assert.Equal(t, 30, cfg.ScaffoldThreshold)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "code", cfg.Input.IDColumn)
	assert.True(t, cfg.Input.Normalize)
}

func TestRunWritesReportToStdout(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "actives.json", `{"A": ["Oc1ccccc1", 5], "B": ["CCN", 3], "C": ["Cc1ccccc1", 1]}`)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), cliOptions{
		configPath: filepath.Join(dir, "config.yaml"),
		inputPath:  input,
		format:     "json",
		logLevel:   "error",
		stdout:     true,
	}, &stdout, &stderr)
	require.NoError(t, err)

	doc := gjson.Parse(stdout.String())
	assert.Equal(t, int64(2), doc.Get("scaffolds").Int())
	assert.Equal(t, "C", doc.Get("actives.0.id").String())
	assert.Contains(t, stderr.String(), "ACTIVES")
}

func TestRunWritesReportFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "actives.tsv", "id\tsmiles\tactivity\na\tc1ccccc1C\t2\nb\tC1CCCCC1\t1\nc\tbad(\t1\n")
	out := filepath.Join(dir, "out", "report.tsv")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), cliOptions{
		configPath: filepath.Join(dir, "config.yaml"),
		inputPath:  input,
		outputPath: out,
		format:     "tsv",
		logLevel:   "error",
	}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "skipped 1 unparsable structures")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "id\tsmiles\tactivity\tscaffold\tdepth", lines[0])
	assert.Len(t, lines, 3)
}

func TestRunRejectsBadFormat(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "actives.json", `{"A": ["C1CC1", 1]}`)
	err := run(context.Background(), cliOptions{
		configPath: filepath.Join(dir, "config.yaml"),
		inputPath:  input,
		format:     "xml",
	}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestPrintColumns(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "table.csv", "name,canonical_smiles,ki\nx,C,1\n")
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cliOptions{
		configPath: filepath.Join(dir, "config.yaml"),
		inputPath:  input,
		inspect:    true,
	}, &stdout, &bytes.Buffer{}))
	assert.Equal(t, "#1\tname\n#2\tcanonical_smiles\n#3\tki\nid: name\nsmiles: canonical_smiles\nactivity: ki\n", stdout.String())
}

func TestPrintColumnsUsesConfiguredCandidates(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "table.csv", "key,smiles,pchembl\nx,C,1\n")
	config := writeInput(t, dir, "config.yaml", "input:\n  candidates:\n    id: [key]\n    activity: [pchembl]\n")
	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), cliOptions{configPath: config, inputPath: input, inspect: true}, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "id: key\nsmiles: smiles\nactivity: pchembl\n")
}

func TestRunKeepsIdentifiersUnlessNormalizing(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "actives.json", `{"A": ["C1CCCCC1", 5], "A ": ["C1CCCCC1", 1]}`)
	for _, tc := range []struct {
		normalize bool
		want      []string
	}{
		{normalize: false, want: []string{"A ", "A"}},
		{normalize: true, want: []string{"A"}},
	} {
		var stdout bytes.Buffer
		err := run(context.Background(), cliOptions{
			configPath: filepath.Join(dir, "config.yaml"),
			inputPath:  input,
			format:     "json",
			logLevel:   "error",
			normalize:  tc.normalize,
		}, &stdout, &bytes.Buffer{})
		require.NoError(t, err)
		doc := gjson.Parse(stdout.String())
		assert.Equal(t, int64(len(tc.want)), doc.Get("compounds").Int(), "normalize=%v", tc.normalize)
		var ids []string
		for _, v := range doc.Get("actives.#.id").Array() {
			ids = append(ids, v.String())
		}
		assert.Equal(t, tc.want, ids, "normalize=%v", tc.normalize)
	}
}

func TestResolveOutputPath(t *testing.T) {
	got, err := resolveOutputPath("", "", selector.FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, got)

	dir := t.TempDir()
	got, err = resolveOutputPath("", filepath.Join(dir, "reports"), selector.FormatText)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports"), filepath.Dir(got))
	assert.True(t, strings.HasPrefix(filepath.Base(got), "actives_"))
	assert.Equal(t, ".txt", filepath.Ext(got))
}
