package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gradesheet/adapters/excel"
	"gradesheet/adapters/postgres"
	"gradesheet/domain/roster"
	"gradesheet/internal/report"
	"gradesheet/internal/scratch"
	"gradesheet/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// reportFlags are shared by convert and preview
type reportFlags struct {
	template  string
	schema    string
	skipRows  int
	component string
	final     string
	scoreType string
	mode      string
	workers   int
	stamp     bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.template, "template", envOr("TEMPLATE_PATH", "template.xlsx"), "Report template (.xlsx)")
	cmd.Flags().StringVar(&f.schema, "schema", os.Getenv("SCHEMA_PATH"), "Optional YAML report schema override")
	cmd.Flags().IntVar(&f.skipRows, "skip-rows", 0, "Data rows to skip after the CSV header")
	cmd.Flags().StringVar(&f.component, "component", "", "Component score column label (required)")
	cmd.Flags().StringVar(&f.final, "final", "", "Final score column label (required)")
	cmd.Flags().StringVar(&f.scoreType, "score-type", "", "Label appended to the score type banner")
	cmd.Flags().StringVar(&f.mode, "mode", "per-file", "merge|per-file")
	cmd.Flags().IntVar(&f.workers, "workers", 4, "Reports built concurrently in per-file mode")
	cmd.Flags().BoolVar(&f.stamp, "stamp", false, "Append a timestamp token to output names")
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("final")
}

func (f *reportFlags) build(files []string) (*report.Orchestrator, report.Request, error) {
	var req report.Request
	schema, err := excel.LoadReportSchema(f.schema)
	if err != nil {
		return nil, req, err
	}
	mode, err := report.ParseMode(f.mode, report.ModePerFile)
	if err != nil {
		return nil, req, err
	}

	req = report.Request{
		Spec:      roster.ScoreSpec{ComponentScoreLabel: f.component, FinalScoreLabel: f.final},
		ScoreType: f.scoreType,
		Mode:      mode,
	}
	for _, path := range files {
		req.Inputs = append(req.Inputs, report.Input{Name: filepath.Base(path), Path: path})
	}

	source := excel.TemplateSource{Path: f.template, Schema: schema}
	namer := report.PlainNamer
	if f.stamp {
		namer = report.TokenNamer
	}
	o := report.NewOrchestrator(source, excel.NewRosterReader(f.skipRows),
		report.WithWorkers(f.workers), report.WithNamer(namer))
	return o, req, nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gradesheet",
		Short:         "Fill grading-report templates from CSV grade rosters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newConvertCmd(),
		newPreviewCmd(),
		newTemplateCmd(),
		newSampleCmd(),
		newMigrateCmd(),
	)
	return rootCmd
}

func newConvertCmd() *cobra.Command {
	var flags reportFlags
	var outDir string

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Populate the template from one or more CSV rosters",
		Long: `Populate the report template from CSV rosters.

In per-file mode every CSV becomes its own report; several reports are
bundled into a zip. In merge mode all rows go into one report.

Example: gradesheet convert --component Midterm --final "Final Exam" --mode merge a.csv b.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, req, err := flags.build(args)
			if err != nil {
				return err
			}
			return runConvert(cmd.Context(), cmd.OutOrStdout(), o, req, outDir)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for the generated file")
	return cmd
}

func runConvert(ctx context.Context, w io.Writer, o *report.Orchestrator, req report.Request, outDir string) error {
	workDir, err := os.MkdirTemp("", "gradesheet-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	storage, err := scratch.NewStorage(workDir)
	if err != nil {
		return err
	}
	scope := storage.NewScope()
	defer scope.Release()

	bundle, err := o.Convert(ctx, scope, req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	dest := filepath.Join(outDir, bundle.DownloadName)
	if err := copyFile(bundle.Path, dest); err != nil {
		return err
	}

	for _, r := range bundle.Reports {
		s := r.Summary
		fmt.Fprintf(w, "%s: %d students, %d scored (mean %.2f, median %.2f, min %.2f, max %.2f)\n",
			r.OutputName, r.Result.StudentCount, s.Count, s.Mean, s.Median, s.Min, s.Max)
	}
	fmt.Fprintf(w, "Wrote %s\n", dest)
	return nil
}

func newPreviewCmd() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "preview [files...]",
		Short: "Print resolved columns, class info and score summaries as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, req, err := flags.build(args)
			if err != nil {
				return err
			}
			reports, err := o.Preview(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		},
	}

	flags.register(cmd)
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var outPath string
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank report template matching the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := excel.LoadReportSchema(schemaPath)
			if err != nil {
				return err
			}
			f, err := excel.NewTemplateWorkbook(schema)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.SaveAs(outPath); err != nil {
				return fmt.Errorf("failed to save template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "template.xlsx", "Output path")
	cmd.Flags().StringVar(&schemaPath, "schema", os.Getenv("SCHEMA_PATH"), "Optional YAML report schema override")
	return cmd
}

func newSampleCmd() *cobra.Command {
	cfg := testkit.DefaultRosterConfig()
	var outPath string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic gradebook CSV for trying out conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := testkit.NewRosterGenerator(cfg).WriteCSV(out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d students to %s\n", cfg.StudentCount, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "roster.csv", "Output path")
	cmd.Flags().IntVar(&cfg.StudentCount, "students", cfg.StudentCount, "Number of students")
	cmd.Flags().StringVar(&cfg.ClassName, "class-name", cfg.ClassName, "Class name in the Section column")
	cmd.Flags().StringVar(&cfg.ClassCode, "class-code", cfg.ClassCode, "Class code in the Section column")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic output")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the conversion log schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := postgres.Connect(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	return cmd
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
