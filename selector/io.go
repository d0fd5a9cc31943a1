package selector

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// TableMetadata provides header information and automatic column suggestions.
type TableMetadata struct {
	Columns   []string
	Suggested InputConfig
}

// LoadDataset reads a dataset, choosing the reader by file extension.
func LoadDataset(path string) (*Dataset, error) {
	return LoadDatasetWithOptions(path, InputConfig{})
}

// LoadDatasetWithOptions reads a JSON record store ({"id": [smiles, activity]})
// or a CSV/TSV table.
func LoadDatasetWithOptions(path string, opts InputConfig) (*Dataset, error) {
	var (
		ds  *Dataset
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ds, err = loadTable(path, ',', opts)
	case ".tsv", ".tab":
		ds, err = loadTable(path, '\t', opts)
	default:
		ds, err = loadRecordStore(path, opts)
	}
	if err != nil {
		return nil, err
	}
	if ds.Len() == 0 {
		return nil, loadErrorf("%s contains no compounds", filepath.Base(path))
	}
	return ds, nil
}

func loadRecordStore(path string, opts InputConfig) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s", filepath.Base(path)), ErrLoad)
	}
	return ParseRecordStore(data, filepath.Base(path), opts)
}

// ParseRecordStore decodes a JSON object mapping identifier → [smiles,
// activity]. Records keep document order. Activities may be JSON numbers or
// numeric strings.
func ParseRecordStore(data []byte, source string, opts InputConfig) (*Dataset, error) {
	if !gjson.ValidBytes(data) {
		return nil, loadErrorf("%s: malformed JSON", source)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, loadErrorf("%s: expected an object of id -> [smiles, activity]", source)
	}
	ds := newDataset(0)
	var walkErr error
	root.ForEach(func(key, value gjson.Result) bool {
		rec, err := recordFromJSON(key.String(), value)
		if err == nil && opts.Normalize {
			rec, err = normalizeRecord(rec)
		}
		if err != nil {
			walkErr = errors.Wrapf(err, "%s", source)
			return false
		}
		ds.add(rec)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return ds, nil
}

func recordFromJSON(id string, value gjson.Result) (CompoundRecord, error) {
	if strings.TrimSpace(id) == "" {
		return CompoundRecord{}, loadErrorf("empty compound identifier")
	}
	if !value.IsArray() {
		return CompoundRecord{}, loadErrorf("compound %q: expected [smiles, activity], got %s", id, value.Type)
	}
	items := value.Array()
	if len(items) < 2 {
		return CompoundRecord{}, loadErrorf("compound %q: expected [smiles, activity], got %d fields", id, len(items))
	}
	if items[0].Type != gjson.String {
		return CompoundRecord{}, loadErrorf("compound %q: structure must be a string", id)
	}
	smiles := items[0].String()
	if strings.TrimSpace(smiles) == "" {
		return CompoundRecord{}, loadErrorf("compound %q: empty structure", id)
	}
	var raw string
	switch items[1].Type {
	case gjson.Number:
		raw = items[1].Raw
	case gjson.String:
		raw = items[1].String()
	default:
		return CompoundRecord{}, loadErrorf("compound %q: activity must be a number", id)
	}
	activity, err := parseActivity(raw)
	if err != nil {
		return CompoundRecord{}, errors.Wrapf(err, "compound %q", id)
	}
	return CompoundRecord{ID: id, SMILES: smiles, Activity: activity}, nil
}

// normalizeRecord applies NormalizeField and NormalizeStructure when
// input.normalize is set.
func normalizeRecord(rec CompoundRecord) (CompoundRecord, error) {
	rec.ID = NormalizeField(rec.ID)
	rec.SMILES = NormalizeStructure(rec.SMILES)
	if rec.ID == "" {
		return rec, loadErrorf("empty compound identifier")
	}
	if rec.SMILES == "" {
		return rec, loadErrorf("compound %q: empty structure", rec.ID)
	}
	return rec, nil
}

func parseActivity(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(v, 0) {
			return 0, loadErrorf("activity %q is not finite", raw)
		}
		return 0, loadErrorf("activity %q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, loadErrorf("activity %q is not finite", raw)
	}
	return v, nil
}

func loadTable(path string, comma rune, opts InputConfig) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "open %s", filepath.Base(path)), ErrLoad)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read %s", filepath.Base(path)), ErrLoad)
	}
	if len(rows) == 0 {
		return nil, loadErrorf("%s is empty", filepath.Base(path))
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	resolved, skipHeader, err := resolveTableColumns(header, opts)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s", filepath.Base(path)), ErrLoad)
	}
	start := 0
	if skipHeader {
		start = 1
	}
	ds := newDataset(len(rows) - start)
	for i, row := range rows[start:] {
		line := start + i + 1
		if isBlankRow(row) {
			continue
		}
		id := rawCellAt(row, resolved.ID.Index)
		smiles := rawCellAt(row, resolved.SMILES.Index)
		rawActivity := rawCellAt(row, resolved.Activity.Index)
		if strings.TrimSpace(id) == "" || strings.TrimSpace(smiles) == "" || strings.TrimSpace(rawActivity) == "" {
			return nil, loadErrorf("%s line %d: id, structure and activity are required", filepath.Base(path), line)
		}
		activity, err := parseActivity(rawActivity)
		if err != nil {
			return nil, errors.Wrapf(err, "%s line %d", filepath.Base(path), line)
		}
		rec := CompoundRecord{ID: id, SMILES: smiles, Activity: activity}
		if opts.Normalize {
			if rec, err = normalizeRecord(rec); err != nil {
				return nil, errors.Wrapf(err, "%s line %d", filepath.Base(path), line)
			}
		}
		ds.add(rec)
	}
	return ds, nil
}

// rawCellAt returns a data cell as written. Only a leading BOM is removed.
func rawCellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimPrefix(row[idx], "\ufeff")
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cleanCell(cell) != "" {
			return false
		}
	}
	return true
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		for _, cand := range candidates {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

type columnResult struct {
	Index      int
	FromHeader bool
	HeaderName string
}

type resolvedColumns struct {
	ID       columnResult
	SMILES   columnResult
	Activity columnResult
}

// resolveTableColumns maps record fields to column indices. Explicit choices
// win, then header candidates. A table whose header matches nothing is read
// positionally as id, smiles, activity with no header row.
func resolveTableColumns(header []string, opts InputConfig) (resolvedColumns, bool, error) {
	res := resolvedColumns{
		ID:       columnResult{Index: -1},
		SMILES:   columnResult{Index: -1},
		Activity: columnResult{Index: -1},
	}
	var err error
	candidates := opts.Candidates.withDefaults()
	if res.ID, err = pickColumn(header, opts.IDColumn, candidates.ID); err != nil {
		return res, false, err
	}
	if res.SMILES, err = pickColumn(header, opts.SMILESColumn, candidates.SMILES); err != nil {
		return res, false, err
	}
	if res.Activity, err = pickColumn(header, opts.ActivityColumn, candidates.Activity); err != nil {
		return res, false, err
	}
	skipHeader := res.ID.FromHeader || res.SMILES.FromHeader || res.Activity.FromHeader
	if !skipHeader {
		for pos, col := range []*columnResult{&res.ID, &res.SMILES, &res.Activity} {
			if col.Index < 0 && pos < len(header) {
				col.Index = pos
			}
		}
	}
	for _, col := range []struct {
		name string
		idx  int
	}{{"id", res.ID.Index}, {"smiles", res.SMILES.Index}, {"activity", res.Activity.Index}} {
		if col.idx < 0 {
			return res, skipHeader, errors.Newf("no usable %s column found", col.name)
		}
	}
	res.ID.HeaderName = headerNameForIndex(header, res.ID.Index, res.ID.FromHeader)
	res.SMILES.HeaderName = headerNameForIndex(header, res.SMILES.Index, res.SMILES.FromHeader)
	res.Activity.HeaderName = headerNameForIndex(header, res.Activity.Index, res.Activity.FromHeader)
	return res, skipHeader, nil
}

func pickColumn(header []string, explicit string, candidates []string) (columnResult, error) {
	res := columnResult{Index: -1}
	if strings.TrimSpace(explicit) != "" {
		idx, fromHeader, err := matchExplicitColumn(header, explicit)
		if err != nil {
			return res, err
		}
		res.Index = idx
		res.FromHeader = fromHeader
		return res, nil
	}
	idx := findColumn(header, candidates)
	if idx >= 0 {
		res.Index = idx
		res.FromHeader = true
	}
	return res, nil
}

func matchExplicitColumn(header []string, explicit string) (int, bool, error) {
	trimmed := strings.TrimSpace(explicit)
	if trimmed == "" {
		return -1, false, nil
	}
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, true, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return -1, false, err
		}
		if idx >= len(header) {
			return -1, false, errors.Newf("column index %s is out of range", trimmed)
		}
		return idx, false, nil
	}
	return -1, false, errors.Newf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	if trimmed == "" {
		return -1, errors.Newf("invalid column index %q", token)
	}
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, errors.Newf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, errors.Newf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}

func headerNameForIndex(header []string, idx int, fromHeader bool) string {
	if idx < 0 {
		return ""
	}
	if fromHeader && idx < len(header) {
		if name := header[idx]; name != "" {
			return name
		}
	}
	return "#" + strconv.Itoa(idx+1)
}

// ReadTableMetadata returns header information and automatic column
// suggestions for CSV/TSV datasets. Other files yield empty metadata. Only the
// candidate lists of opts are consulted.
func ReadTableMetadata(path string, opts InputConfig) (TableMetadata, error) {
	meta := TableMetadata{}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".tsv" && ext != ".tab" {
		return meta, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return meta, errors.Wrapf(err, "open %s", filepath.Base(path))
	}
	defer f.Close()
	reader := csv.NewReader(f)
	if ext != ".csv" {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return meta, nil
		}
		return meta, errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = cleanCell(cell)
	}
	meta.Columns = header
	resolved, _, err := resolveTableColumns(header, InputConfig{Candidates: opts.Candidates})
	if err == nil {
		meta.Suggested = InputConfig{
			IDColumn:       resolved.ID.HeaderName,
			SMILESColumn:   resolved.SMILES.HeaderName,
			ActivityColumn: resolved.Activity.HeaderName,
		}
	}
	return meta, nil
}
