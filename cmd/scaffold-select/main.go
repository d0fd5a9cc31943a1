package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"yashubustudio/scaffoldselect/selector"
)

type cliOptions struct {
	configPath string
	inputPath  string
	outputPath string
	outputDir  string
	format     string
	policy     string
	logLevel   string
	columns    selector.InputConfig
	target     int
	threshold  int
	inspect    bool
	stdout     bool
	normalize  bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("scaffold-select: %v", err)
	}
	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("scaffold-select: %v", err)
	}
}

func parseFlags(args []string) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("scaffold-select", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to config.yaml (default: ./config.yaml)")
	fs.StringVar(&opts.inputPath, "input", "", "JSON record store or CSV/TSV table of compounds")
	fs.StringVar(&opts.outputPath, "output", "", "File to write the report to (default: STDOUT)")
	fs.StringVar(&opts.outputDir, "output-dir", "", "Directory for a timestamped report when --output is omitted")
	fs.StringVar(&opts.format, "format", "", "Report format: text, json, yaml or tsv (default from config)")
	fs.StringVar(&opts.policy, "policy", "", "Selection policy: auto, top or roundrobin (default from config)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	fs.StringVar(&opts.columns.IDColumn, "id-column", "", "Column name or #index for compound identifiers")
	fs.StringVar(&opts.columns.SMILESColumn, "smiles-column", "", "Column name or #index for SMILES")
	fs.StringVar(&opts.columns.ActivityColumn, "activity-column", "", "Column name or #index for activity values")
	fs.IntVar(&opts.target, "target", 0, "Target number of actives for round-robin selection")
	fs.IntVar(&opts.threshold, "threshold", 0, "Scaffold count at which top-per-scaffold selection is used")
	fs.BoolVar(&opts.normalize, "normalize", false, "Fold identifiers and structures to NFKC and drop SMILES titles")
	fs.BoolVar(&opts.inspect, "columns", false, "Print detected table columns and exit")
	fs.BoolVar(&opts.stdout, "stdout", false, "Print a summary preview to STDERR")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s --input FILE [options]\n\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.inputPath = strings.TrimSpace(opts.inputPath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)
	opts.outputDir = strings.TrimSpace(opts.outputDir)
	opts.format = strings.TrimSpace(opts.format)
	opts.policy = strings.TrimSpace(opts.policy)

	if opts.inputPath == "" {
		fs.Usage()
		return opts, errors.New("missing required --input file")
	}
	if opts.target < 0 || opts.threshold < 0 {
		return opts, errors.New("--target and --threshold must not be negative")
	}
	return opts, nil
}

// applyOverrides layers command line flags over the loaded configuration.
func applyOverrides(cfg *selector.Config, opts cliOptions) {
	if opts.policy != "" {
		cfg.Policy = selector.PolicyMode(strings.ToLower(opts.policy))
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.target > 0 {
		cfg.TargetActives = opts.target
	}
	if opts.threshold > 0 {
		cfg.ScaffoldThreshold = opts.threshold
	}
	if opts.columns.IDColumn != "" {
		cfg.Input.IDColumn = opts.columns.IDColumn
	}
	if opts.columns.SMILESColumn != "" {
		cfg.Input.SMILESColumn = opts.columns.SMILESColumn
	}
	if opts.columns.ActivityColumn != "" {
		cfg.Input.ActivityColumn = opts.columns.ActivityColumn
	}
	if opts.normalize {
		cfg.Input.Normalize = true
	}
}

func run(ctx context.Context, opts cliOptions, stdout, stderr io.Writer) error {
	cfg, err := selector.LoadConfig(opts.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if opts.inspect {
		return printColumns(stdout, opts.inputPath, cfg.Input)
	}
	applyOverrides(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, err := selector.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	logger, err := selector.NewLogger(cfg.Log)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = logger.Sync() }()

	var extractor selector.ScaffoldExtractor = selector.MurckoExtractor{}
	if cfg.CacheSize > 0 {
		cached, err := selector.NewCachedExtractor(extractor, cfg.CacheSize)
		if err != nil {
			return err
		}
		extractor = cached
	}

	service, err := selector.NewService(extractor, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "init service")
	}
	res, err := service.Run(ctx, opts.inputPath)
	if err != nil {
		return err
	}

	outputPath, err := resolveOutputPath(opts.outputPath, opts.outputDir, format)
	if err != nil {
		return err
	}
	if outputPath == "" {
		if err := selector.WriteReport(stdout, res, format); err != nil {
			return err
		}
	} else {
		if err := writeReportFile(outputPath, res, format); err != nil {
			return err
		}
		logger.Info("report written", zap.String("path", outputPath))
	}

	if opts.stdout {
		fmt.Fprintln(stderr, renderSummary(res))
	}
	if ferr := res.FailureError(); ferr != nil {
		fmt.Fprintf(stderr, "scaffold-select: skipped %d unparsable structures\n", len(multierr.Errors(ferr)))
	}
	return nil
}

func resolveOutputPath(path, dir string, format selector.Format) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", errors.Wrap(err, "resolve output path")
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", errors.Wrap(err, "create output directory")
		}
		return absPath, nil
	}
	if dir == "" {
		return "", nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolve output dir")
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create output dir")
	}
	ext := string(format)
	if format == selector.FormatText {
		ext = "txt"
	}
	filename := fmt.Sprintf("actives_%s.%s", time.Now().Format("20060102150405"), ext)
	return filepath.Join(absDir, filename), nil
}

func writeReportFile(path string, res *selector.Result, format selector.Format) error {
	var buf bytes.Buffer
	if err := selector.WriteReport(&buf, res, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

func printColumns(w io.Writer, path string, input selector.InputConfig) error {
	meta, err := selector.ReadTableMetadata(path, input)
	if err != nil {
		return err
	}
	if len(meta.Columns) == 0 {
		fmt.Fprintln(w, "no table header (JSON record stores need no column mapping)")
		return nil
	}
	for i, name := range meta.Columns {
		fmt.Fprintf(w, "#%d\t%s\n", i+1, name)
	}
	fmt.Fprintf(w, "id: %s\nsmiles: %s\nactivity: %s\n",
		orDash(meta.Suggested.IDColumn), orDash(meta.Suggested.SMILESColumn), orDash(meta.Suggested.ActivityColumn))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderSummary(res *selector.Result) string {
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("ACTIVES · %s", filepath.Base(res.Source)))

	lines := []string{
		fmt.Sprintf("compounds  %d", res.Compounds),
		fmt.Sprintf("scaffolds  %d", res.Scaffolds),
		fmt.Sprintf("policy     %s (%d rounds)", res.Policy, res.Rounds),
		fmt.Sprintf("selected   %d", res.Actives.Len()),
	}
	if len(res.Failures) > 0 {
		lines = append(lines, fmt.Sprintf("skipped    %d", len(res.Failures)))
	}
	entries := res.Actives.Entries()
	limit := min(len(entries), 5)
	for _, a := range entries[:limit] {
		lines = append(lines, fmt.Sprintf("  %s  %g  %s", a.ID, a.Activity, summarizeSMILES(a.SMILES)))
	}
	if len(entries) > limit {
		lines = append(lines, fmt.Sprintf("  … %d more", len(entries)-limit))
	}
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func summarizeSMILES(s string) string {
	runes := []rune(s)
	if len(runes) > 40 {
		return string(runes[:40]) + "…"
	}
	return s
}
