package selector

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

func sampleResult() *Result {
	set := NewActiveSet()
	set.Add(Active{ID: "C", SMILES: "Cc1ccccc1", Activity: 1, Scaffold: "c1ccccc1", Depth: 0})
	set.Add(Active{ID: "B", SMILES: "CCN", Activity: 3.25, Scaffold: "", Depth: 0})
	set.Add(Active{ID: "A", SMILES: "Oc1ccccc1", Activity: 5, Scaffold: "c1ccccc1", Depth: 1})
	return &Result{
		Source:    "actives.json",
		Compounds: 4,
		Scaffolds: 2,
		Policy:    "roundrobin",
		Rounds:    2,
		Actives:   set,
		Failures: []ParseFailure{
			{ID: "X", SMILES: "c1cc", Err: errors.New("unclosed ring 1")},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"text": FormatText, "JSON": FormatJSON, " yaml ": FormatYAML, "yml": FormatYAML, "tsv": FormatTSV,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
}

func TestWriteReportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), FormatJSON))

	doc := gjson.ParseBytes(buf.Bytes())
	assert.Equal(t, int64(2), doc.Get("scaffolds").Int())
	assert.Equal(t, int64(3), doc.Get("selected").Int())
	assert.Equal(t, "roundrobin", doc.Get("policy").String())
	assert.Equal(t, []string{"C", "B", "A"}, stringsOf(doc.Get("actives.#.id").Array()))
	assert.Equal(t, 3.25, doc.Get("actives.1.activity").Float())
	assert.Equal(t, int64(1), doc.Get("actives.2.depth").Int())
	assert.Equal(t, "X", doc.Get("failures.0.id").String())
	assert.Equal(t, "unclosed ring 1", doc.Get("failures.0.reason").String())
}

func stringsOf(values []gjson.Result) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), FormatYAML))

	var doc struct {
		Source   string   `yaml:"source"`
		Rounds   int      `yaml:"rounds"`
		Selected int      `yaml:"selected"`
		Actives  []Active `yaml:"actives"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "actives.json", doc.Source)
	assert.Equal(t, 2, doc.Rounds)
	assert.Equal(t, 3, doc.Selected)
	assert.Equal(t, sampleResult().Actives.Entries(), doc.Actives)
}

func TestWriteReportTSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), FormatTSV))
	assert.Equal(t, strings.Join([]string{
		"id\tsmiles\tactivity\tscaffold\tdepth",
		"C\tCc1ccccc1\t1\tc1ccccc1\t0",
		"B\tCCN\t3.25\t\t0",
		"A\tOc1ccccc1\t5\tc1ccccc1\t1",
	}, "\n")+"\n", buf.String())
}

func TestWriteReportText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleResult(), FormatText))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "scaffolds: 2\n"))
	assert.Contains(t, out, "policy: roundrobin (2 rounds)\n")
	assert.Contains(t, out, "Oc1ccccc1\tA\t5\n")
	assert.Contains(t, out, "skipped: 1\n")
}

func TestWriteReportEmptyAndInvalid(t *testing.T) {
	var buf bytes.Buffer
	res := &Result{Actives: NewActiveSet()}
	require.NoError(t, WriteReport(&buf, res, FormatJSON))
	assert.Equal(t, int64(0), gjson.GetBytes(buf.Bytes(), "actives.#").Int())
	assert.False(t, gjson.GetBytes(buf.Bytes(), "failures").Exists())

	assert.Error(t, WriteReport(&buf, nil, FormatJSON))
	assert.Error(t, WriteReport(&buf, res, Format("xml")))
}
