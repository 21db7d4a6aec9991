package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/pupilbridge/internal/core"
	"github.com/JonMunkholm/pupilbridge/internal/core/tables"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
	"github.com/JonMunkholm/pupilbridge/internal/table"
)

type validateOptions struct {
	importType  string
	rulesFile   string
	useStore    bool
	formatRules string
	jsonOut     bool
	outDir      string
	concurrency int
	maxRows     int
}

// fileReport is the result of validating one file.
type fileReport struct {
	File           string                     `json:"file"`
	ImportType     string                     `json:"importType"`
	Rows           int                        `json:"rows"`
	MissingColumns []string                   `json:"missingColumns,omitempty"`
	Errors         []core.ValidationError     `json:"errors"`
	Summary        core.Summary               `json:"summary"`
	Corrections    []memory.AppliedCorrection `json:"corrections"`
	Output         string                     `json:"output,omitempty"`
	DurationMS     int64                      `json:"durationMs"`
}

// openErrors counts open findings with error severity.
func (r fileReport) openErrors() int {
	n := 0
	for _, e := range r.Errors {
		if e.IsOpen() && e.EffectiveSeverity() == core.SeverityError {
			n++
		}
	}
	return n
}

func newValidateCmd() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate [flags] FILE...",
		Short: "Validate CSV or XLSX exports",
		Long: `Validate one or more LehrerOffice exports. Files are checked concurrently;
the report lists every open finding per file. The exit code is 2 when any
file has open errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.importType, "type", "t", "", "Import type (default: detect from the header row)")
	cmd.Flags().StringVar(&opts.rulesFile, "rules", "", "Replay correction rules from an exported rules file")
	cmd.Flags().BoolVar(&opts.useStore, "use-store", false, "Replay correction rules from the configured rule store")
	cmd.Flags().StringVar(&opts.formatRules, "format-rules", "", "JSON file with additional format rules")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "Write corrected files to this directory")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", core.DefaultMaxConcurrentRuns, "Files validated in parallel")
	cmd.Flags().IntVar(&opts.maxRows, "max-rows", 0, "Reject files with more rows (0 = no limit)")

	return cmd
}

// ruleSource loads correction rules once per import type.
type ruleSource struct {
	fileData []byte
	store    memory.Store

	mu    sync.Mutex
	cache map[string][]memory.Rule
}

func (rs *ruleSource) rules(ctx context.Context, importType string) ([]memory.Rule, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rules, ok := rs.cache[importType]; ok {
		return rules, nil
	}

	var rules []memory.Rule
	if rs.fileData != nil {
		imported, err := memory.Import(rs.fileData, importType)
		if err != nil {
			return nil, err
		}
		rules = imported
	}
	if rs.store != nil {
		stored, err := rs.store.Load(ctx, importType)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		rules = memory.Merge(stored, rules)
	}
	rs.cache[importType] = rules
	return rules, nil
}

func runValidate(ctx context.Context, out io.Writer, opts validateOptions, files []string) error {
	registry := tables.NewRegistry()

	var extra []core.FormatRule
	if opts.formatRules != "" {
		data, err := os.ReadFile(opts.formatRules)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &extra); err != nil {
			return fmt.Errorf("format rules %s: %w", opts.formatRules, err)
		}
	}

	src := &ruleSource{cache: make(map[string][]memory.Rule)}
	if opts.rulesFile != "" {
		data, err := os.ReadFile(opts.rulesFile)
		if err != nil {
			return err
		}
		src.fileData = data
	}
	if opts.useStore {
		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		src.store = st
	}

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return err
		}
	}

	reports := make([]fileReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	for i, path := range files {
		g.Go(func() error {
			report, err := validateFile(gctx, registry, src, opts, extra, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else if err := printReports(out, reports); err != nil {
		return err
	}

	for _, r := range reports {
		if r.openErrors() > 0 {
			return errFindings
		}
	}
	return nil
}

func validateFile(ctx context.Context, registry *core.Registry, src *ruleSource, opts validateOptions, extra []core.FormatRule, path string) (fileReport, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return fileReport{}, err
	}
	defer f.Close()

	t, err := table.Read(filepath.Base(path), f)
	if err != nil {
		return fileReport{}, err
	}

	p, err := resolveProfile(registry, opts.importType, t.Headers)
	if err != nil {
		return fileReport{}, err
	}
	if opts.maxRows > 0 && len(t.Rows) > opts.maxRows {
		return fileReport{}, fmt.Errorf("too many rows: %d rows, limit is %d", len(t.Rows), opts.maxRows)
	}

	ctx = core.ContextWithImportType(ctx, p.ImportType)
	errs, err := core.NewValidator(p).ValidateContext(ctx, t.Rows, extra...)
	if err != nil {
		return fileReport{}, err
	}

	rules, err := src.rules(ctx, p.ImportType)
	if err != nil {
		return fileReport{}, err
	}
	applied := memory.Apply(rules, t.Rows, errs)
	errs = applied.ResolveErrors(errs)
	if errs == nil {
		errs = []core.ValidationError{}
	}

	report := fileReport{
		File:           path,
		ImportType:     p.ImportType,
		Rows:           len(t.Rows),
		MissingColumns: core.MissingColumns(t.Headers, p),
		Errors:         errs,
		Summary:        core.Summarize(errs),
		Corrections:    applied.Corrections,
	}

	if opts.outDir != "" {
		rows := core.ApplyResolutions(applied.ApplyToRows(t.Rows), errs)
		target, err := writeCorrected(opts.outDir, path, t.Headers, rows)
		if err != nil {
			return fileReport{}, err
		}
		report.Output = target
	}

	report.DurationMS = time.Since(start).Milliseconds()
	return report, nil
}

// resolveProfile returns the profile named by importType, or the best match
// for headers when importType is empty.
func resolveProfile(registry *core.Registry, importType string, headers []string) (core.Profile, error) {
	if importType != "" {
		return registry.Get(importType)
	}
	matches := registry.Detect(headers)
	if len(matches) == 0 || matches[0].Score < core.DetectThreshold {
		return core.Profile{}, fmt.Errorf("%w: header row fits no import type, use --type", core.ErrUnknownImportType)
	}
	return registry.Get(matches[0].ImportType)
}

// writeCorrected writes rows next to the original name inside dir, in the
// format of the source file.
func writeCorrected(dir, source string, headers []string, rows []core.Row) (string, error) {
	ext := strings.ToLower(filepath.Ext(source))
	name := filepath.Base(source)
	if ext == ".xlsm" {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	}
	target := filepath.Join(dir, name)

	srcAbs, _ := filepath.Abs(source)
	dstAbs, _ := filepath.Abs(target)
	if srcAbs == dstAbs {
		return "", fmt.Errorf("refusing to overwrite %s, choose another --out directory", source)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}

	switch ext {
	case ".xlsx", ".xlsm":
		err = table.WriteXLSX(f, "Export", headers, rows)
	default:
		err = table.WriteCSV(f, headers, rows)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

func printReports(out io.Writer, reports []fileReport) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d rows\t%d open\t%d resolved\t%d corrections\n",
			r.File, r.ImportType, r.Rows, r.Summary.Open, r.Summary.Resolved, len(r.Corrections))
		if len(r.MissingColumns) > 0 {
			fmt.Fprintf(tw, "  missing columns: %s\n", strings.Join(r.MissingColumns, ", "))
		}
		for _, e := range r.Errors {
			if !e.IsOpen() {
				continue
			}
			fmt.Fprintf(tw, "  row %d\t%s\t%s\t%s\t%s\n", e.Row, e.Column, e.EffectiveSeverity(), e.Kind, e.Message)
		}
		if r.Output != "" {
			fmt.Fprintf(tw, "  written to %s\n", r.Output)
		}
	}
	return tw.Flush()
}
