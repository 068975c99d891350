// Package report turns uploaded rosters into populated grading reports.
package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gradesheet/adapters/excel"
	"gradesheet/domain/roster"
	"gradesheet/internal"
	"gradesheet/internal/archive"
	"gradesheet/internal/errors"
	"gradesheet/internal/scratch"
)

// XLSXContentType is the MIME type of a single populated report
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Mode selects how N input files become reports
type Mode string

const (
	// ModeMerge concatenates every input into one report
	ModeMerge Mode = "merge"
	// ModePerFile builds one report per input
	ModePerFile Mode = "per-file"
)

// ParseMode accepts "merge" or "per-file"; empty falls back to def
func ParseMode(raw string, def Mode) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return def, nil
	case ModeMerge:
		return ModeMerge, nil
	case ModePerFile, "perfile", "per_file":
		return ModePerFile, nil
	}
	return "", errors.ValidationError(fmt.Sprintf("unknown mode %q (want merge or per-file)", raw))
}

// Input is one uploaded roster: the name the client sent and where it was stored
type Input struct {
	Name string
	Path string
}

// Request is one conversion
type Request struct {
	Inputs    []Input
	Spec      roster.ScoreSpec
	ScoreType string
	Mode      Mode
}

// Report is one populated workbook
type Report struct {
	Sources    []string              `json:"sources"`
	OutputName string                `json:"outputName,omitempty"`
	Path       string                `json:"-"`
	Result     *excel.PopulateResult `json:"result"`
	Summary    Summary               `json:"summary"`
}

// Bundle is what a conversion hands back to the client
type Bundle struct {
	Path         string   `json:"-"`
	DownloadName string   `json:"downloadName"`
	ContentType  string   `json:"contentType"`
	Reports      []Report `json:"reports"`
}

// Namer turns an input base name into an output base name (no extension)
type Namer func(base string) string

// TokenNamer appends a timestamp and short uuid
func TokenNamer(base string) string {
	return base + "_" + scratch.Token()
}

// PlainNamer keeps the base name unchanged, for deterministic output names
func PlainNamer(base string) string {
	return base
}

// Orchestrator runs conversions against one template
type Orchestrator struct {
	template  excel.TemplateSource
	reader    *excel.RosterReader
	populator *excel.Populator
	workers   int
	namer     Namer
	logger    *internal.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithWorkers bounds how many per-file reports are built at once
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithNamer replaces the output namer
func WithNamer(n Namer) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.namer = n
		}
	}
}

// NewOrchestrator creates an orchestrator for template
func NewOrchestrator(template excel.TemplateSource, reader *excel.RosterReader, opts ...Option) *Orchestrator {
	if reader == nil {
		reader = excel.NewRosterReader(0)
	}
	o := &Orchestrator{
		template:  template,
		reader:    reader,
		populator: excel.NewPopulator(template.Schema),
		workers:   4,
		namer:     TokenNamer,
		logger:    internal.DefaultLogger.With("Orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Convert builds the reports for req inside scope and returns the artifact
// to send. Every file written is tracked by scope; the caller releases it
// once the response is sent, or right away when an error is returned.
func (o *Orchestrator) Convert(ctx context.Context, scope *scratch.Scope, req Request) (*Bundle, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start := time.Now()

	var reports []Report
	var err error
	switch req.Mode {
	case ModeMerge:
		reports, err = o.buildMerged(ctx, scope, req)
	default:
		reports, err = o.buildPerFile(ctx, scope, req)
	}
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{Reports: reports}
	if len(reports) == 1 {
		bundle.Path = reports[0].Path
		bundle.DownloadName = reports[0].OutputName
		bundle.ContentType = XLSXContentType
	} else {
		paths := make([]string, len(reports))
		for i, r := range reports {
			paths[i] = r.Path
		}
		bundle.DownloadName = o.namer("reports") + ".zip"
		bundle.Path = scope.Path(bundle.DownloadName)
		if err := archive.CreateZip(bundle.Path, paths); err != nil {
			return nil, err
		}
		bundle.ContentType = archive.ContentType
	}

	o.logger.Info("converted %d file(s) into %s (%s mode) in %v",
		len(req.Inputs), bundle.DownloadName, req.Mode, time.Since(start))
	return bundle, nil
}

// Preview populates the reports in memory and discards the workbooks
func (o *Orchestrator) Preview(ctx context.Context, req Request) ([]Report, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	groups := o.groups(req)
	reports := make([]Report, len(groups))
	for i, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := o.populate(g, req, nil, "")
		if err != nil {
			return nil, err
		}
		reports[i] = *r
	}
	return reports, nil
}

func validateRequest(req Request) error {
	if len(req.Inputs) == 0 {
		return errors.ValidationError("at least one CSV file is required")
	}
	if missing := req.Spec.Validate(); len(missing) > 0 {
		return errors.ValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func (o *Orchestrator) groups(req Request) [][]Input {
	if req.Mode == ModeMerge {
		return [][]Input{req.Inputs}
	}
	groups := make([][]Input, len(req.Inputs))
	for i, in := range req.Inputs {
		groups[i] = []Input{in}
	}
	return groups
}

func (o *Orchestrator) buildMerged(ctx context.Context, scope *scratch.Scope, req Request) ([]Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := o.namer("output") + ".xlsx"
	r, err := o.populate(req.Inputs, req, scope, name)
	if err != nil {
		return nil, err
	}
	return []Report{*r}, nil
}

func (o *Orchestrator) buildPerFile(ctx context.Context, scope *scratch.Scope, req Request) ([]Report, error) {
	names := o.outputNames(req.Inputs)
	reports := make([]Report, len(req.Inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, in := range req.Inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := o.populate([]Input{in}, req, scope, names[i])
			if err != nil {
				return err
			}
			reports[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// outputNames names one report per input, keeping names unique within a request
func (o *Orchestrator) outputNames(inputs []Input) []string {
	names := make([]string, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		base := o.namer(baseName(in.Name))
		name := base + ".xlsx"
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d.xlsx", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func baseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" || base == "." || base == "/" {
		return "roster"
	}
	return base
}

// populate reads the inputs in order into one fresh template. When scope is
// nil the workbook is not saved.
func (o *Orchestrator) populate(inputs []Input, req Request, scope *scratch.Scope, outputName string) (*Report, error) {
	var rows []roster.RawRow
	sources := make([]string, 0, len(inputs))
	for _, in := range inputs {
		fileRows, err := o.reader.ReadFile(in.Path)
		if err != nil {
			return nil, errors.InvalidCSV(in.Name, err)
		}
		rows = append(rows, fileRows...)
		sources = append(sources, in.Name)
	}

	f, err := o.template.Open()
	if err != nil {
		return nil, errors.TemplateError(err)
	}
	defer f.Close()

	result, err := o.populator.Populate(f, rows, req.Spec, strings.TrimSpace(req.ScoreType))
	if err != nil {
		return nil, errors.TemplateError(err)
	}

	report := &Report{
		Sources: sources,
		Result:  result,
		Summary: Summarize(result.ComputedScores()),
	}
	if scope == nil {
		return report, nil
	}

	report.OutputName = outputName
	report.Path = scope.Path(outputName)
	if err := f.SaveAs(report.Path); err != nil {
		return nil, errors.StorageError("failed to save report "+outputName, err)
	}
	return report, nil
}
