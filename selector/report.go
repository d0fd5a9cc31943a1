package selector

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Format names a report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTSV  Format = "tsv"
)

// ParseFormat validates a report format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML, FormatTSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.Newf("unknown report format %q", s)
}

type failureDoc struct {
	ID     string `json:"id" yaml:"id"`
	SMILES string `json:"smiles" yaml:"smiles"`
	Reason string `json:"reason" yaml:"reason"`
}

type reportDoc struct {
	Source    string       `json:"source,omitempty" yaml:"source,omitempty"`
	Compounds int          `json:"compounds" yaml:"compounds"`
	Scaffolds int          `json:"scaffolds" yaml:"scaffolds"`
	Policy    string       `json:"policy" yaml:"policy"`
	Rounds    int          `json:"rounds" yaml:"rounds"`
	Selected  int          `json:"selected" yaml:"selected"`
	Actives   []Active     `json:"actives" yaml:"actives"`
	Failures  []failureDoc `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func newReportDoc(res *Result) reportDoc {
	actives := res.Actives.Entries()
	if actives == nil {
		actives = []Active{}
	}
	return reportDoc{
		Source:    res.Source,
		Compounds: res.Compounds,
		Scaffolds: res.Scaffolds,
		Policy:    res.Policy,
		Rounds:    res.Rounds,
		Selected:  len(actives),
		Actives:   actives,
		Failures: lo.Map(res.Failures, func(f ParseFailure, _ int) failureDoc {
			return failureDoc{ID: f.ID, SMILES: f.SMILES, Reason: f.Err.Error()}
		}),
	}
}

// WriteReport encodes res to w.
func WriteReport(w io.Writer, res *Result, format Format) error {
	if res == nil || res.Actives == nil {
		return errors.New("no result to report")
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(newReportDoc(res), "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode json report")
		}
		_, err = w.Write(append(data, '\n'))
		return errors.Wrap(err, "write json report")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newReportDoc(res)); err != nil {
			return errors.Wrap(err, "encode yaml report")
		}
		return errors.Wrap(enc.Close(), "flush yaml report")
	case FormatTSV:
		return writeTSV(w, res)
	case FormatText, "":
		return writeText(w, res)
	}
	return errors.Newf("unknown report format %q", format)
}

func writeTSV(w io.Writer, res *Result) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	if err := writer.Write([]string{"id", "smiles", "activity", "scaffold", "depth"}); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, a := range res.Actives.Entries() {
		row := []string{a.ID, a.SMILES, formatActivity(a.Activity), a.Scaffold, strconv.Itoa(a.Depth)}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush report")
}

func writeText(w io.Writer, res *Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scaffolds: %d\n", res.Scaffolds)
	fmt.Fprintf(&sb, "compounds: %d\n", res.Compounds)
	fmt.Fprintf(&sb, "policy: %s (%d rounds)\n", res.Policy, res.Rounds)
	fmt.Fprintf(&sb, "actives: %d\n", res.Actives.Len())
	for _, a := range res.Actives.Entries() {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", a.SMILES, a.ID, formatActivity(a.Activity))
	}
	if len(res.Failures) > 0 {
		fmt.Fprintf(&sb, "skipped: %d\n", len(res.Failures))
	}
	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "write text report")
}

func formatActivity(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
