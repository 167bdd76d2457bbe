package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/llevitis/fmriprep-load-confounds/internal/bids"
	"github.com/llevitis/fmriprep-load-confounds/internal/config"
	"github.com/llevitis/fmriprep-load-confounds/internal/confounds"
	"github.com/llevitis/fmriprep-load-confounds/internal/frame"
	"github.com/llevitis/fmriprep-load-confounds/internal/fsutil"
	"github.com/llevitis/fmriprep-load-confounds/internal/report"
	"github.com/llevitis/fmriprep-load-confounds/internal/runlog"
	"github.com/llevitis/fmriprep-load-confounds/internal/version"
)

// splitList parses a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	configPath := flag.String("config", "", "Optional JSON config file; flags override file values")
	strategyFlag := flag.String("strategy", "minimal", "Comma-separated strategies (motion, matter, high_pass_filter, compcor, minimal) or literal column names")
	motionModel := flag.String("motion-model", config.DefaultMotionModel, "Motion model: 6params, derivatives, square, full")
	nComponents := flag.Float64("n-components", config.DefaultNComponents, "Motion reduction: 0 disables, a value in (0,1) is an explained-variance target, an integer >= 1 is a fixed component count")
	uniformFull := flag.Bool("uniform-full", false, "Expand the full motion model uniformly instead of sourcing every parameter variant")
	workers := flag.Int("workers", 0, "Parallel workers for batch loading (0 = one per CPU)")
	keepGoing := flag.Bool("keep-going", false, "Continue past per-file failures instead of stopping at the first error")
	outDir := flag.String("out-dir", config.DefaultOutputDir, "Directory for processed confound tables")
	suffix := flag.String("suffix", config.DefaultOutputSuffix, "Filename suffix for processed tables")
	journalPath := flag.String("journal", "", "Optional SQLite database recording one row per processed file")
	reportDir := flag.String("report-dir", "", "Optional directory for HTML and PNG reports")
	verbose := flag.Bool("v", false, "Verbose per-file logging")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		log.Fatalf("no input files: pass confound tables (.tsv) or preprocessed image paths (.nii.gz)")
	}

	// Track which flags were set explicitly so they can override the config
	// file. Precedence: built-in defaults < config file < flags.
	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfg := config.EmptyRunConfig()
	if *configPath != "" {
		loaded, err := config.LoadRunConfig(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}

	strategies := cfg.GetStrategies()
	if setFlags["strategy"] {
		strategies = splitList(*strategyFlag)
	}
	model := cfg.GetMotionModel()
	if setFlags["motion-model"] {
		model = *motionModel
	}
	components := cfg.GetNComponents()
	if setFlags["n-components"] {
		components = *nComponents
	}
	uniform := cfg.GetUniformFullModel()
	if setFlags["uniform-full"] {
		uniform = *uniformFull
	}
	workerN := cfg.GetWorkers()
	if setFlags["workers"] {
		workerN = *workers
	}
	continueOnError := cfg.GetKeepGoing()
	if setFlags["keep-going"] {
		continueOnError = *keepGoing
	}
	outputDir := cfg.GetOutputDir()
	if setFlags["out-dir"] {
		outputDir = *outDir
	}
	outputSuffix := cfg.GetOutputSuffix()
	if setFlags["suffix"] {
		outputSuffix = *suffix
	}
	journal := cfg.GetJournalPath()
	if setFlags["journal"] {
		journal = *journalPath
	}
	reports := cfg.GetReportDir()
	if setFlags["report-dir"] {
		reports = *reportDir
	}

	reduction, err := confounds.ParseReductionSpec(components)
	if err != nil {
		log.Fatalf("n-components: %v", err)
	}
	opts := confounds.Options{
		Strategies:       strategies,
		MotionModel:      confounds.MotionModel(model),
		Reduction:        reduction,
		UniformFullModel: uniform,
		Workers:          workerN,
	}

	fsys := fsutil.OSFileSystem{}
	if err := fsys.MkdirAll(outputDir, 0755); err != nil {
		log.Fatalf("create output dir %s: %v", outputDir, err)
	}

	// Open the run journal if requested
	var store *runlog.Store
	if journal != "" {
		db, err := runlog.Open(journal)
		if err != nil {
			log.Fatalf("open journal %s: %v", journal, err)
		}
		defer db.Close()
		if err := db.MigrateUp(); err != nil {
			log.Fatalf("migrate journal %s: %v", journal, err)
		}
		store = runlog.NewStore(db)
	}

	// Image paths without the standard preproc suffix cannot be rewritten to
	// a confounds sibling and will be read as-is, which almost always fails.
	for _, p := range paths {
		if bids.IsImagePath(p) && bids.ConfoundsPath(p) == p {
			log.Printf("warning: image path %s has no known confounds mapping", p)
		}
	}

	batchID := uuid.New().String()
	log.Printf("batch %s: %d file(s), strategies [%s], model %s, reduction %s",
		batchID, len(paths), strings.Join(strategies, " "), model, reduction)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the batch
	var outcomes []confounds.FileResult
	if continueOnError {
		outcomes = confounds.LoadFilesEach(ctx, fsys, paths, opts)
	} else {
		results, err := confounds.LoadFiles(ctx, fsys, paths, opts)
		if err != nil {
			log.Fatalf("batch failed: %v", err)
		}
		outcomes = make([]confounds.FileResult, len(results))
		for i, res := range results {
			outcomes[i] = confounds.FileResult{Path: paths[i], Result: res}
		}
	}

	// Write outputs and journal each outcome
	failed := 0
	var reduced []*confounds.Result
	for _, oc := range outcomes {
		run := &runlog.Run{
			BatchID:     batchID,
			SourcePath:  oc.Path,
			Strategies:  strings.Join(strategies, ","),
			MotionModel: model,
			Reduction:   reduction.String(),
		}

		if oc.Err != nil {
			failed++
			run.Status = runlog.StatusError
			run.Error = oc.Err.Error()
			log.Printf("FAILED %s: %v", oc.Path, oc.Err)
		} else {
			res := oc.Result
			outPath := filepath.Join(outputDir, bids.OutputName(res.Path, outputSuffix))
			if err := frame.WriteFile(fsys, outPath, res.Frame); err != nil {
				log.Fatalf("write %s: %v", outPath, err)
			}
			run.SourcePath = res.Path
			run.OutputPath = outPath
			run.Status = runlog.StatusOK
			run.Columns = res.Frame.NumColumns()
			run.Rows = res.Frame.NumRows()
			run.RowsDropped = res.Reduction.RowsDropped
			run.Components = res.Reduction.Components
			for _, v := range res.Reduction.ExplainedVariance {
				run.Explained += v
			}
			run.DurationMS = res.Elapsed.Milliseconds()
			if res.Reduction.Applied {
				reduced = append(reduced, res)
			}
			if *verbose {
				log.Printf("ok %s -> %s (%d cols, %d rows, %d components, %d rows dropped, %v)",
					res.Path, outPath, run.Columns, run.Rows, run.Components, run.RowsDropped, res.Elapsed)
			}
		}

		if store != nil {
			if err := store.Insert(run); err != nil {
				log.Printf("journal: %v", err)
			}
		}
	}

	// Render reports for the reduced tables
	if reports != "" && len(reduced) > 0 {
		if err := writeReports(reports, reduced, outputSuffix); err != nil {
			log.Printf("report: %v", err)
		} else {
			log.Printf("reports written to %s", reports)
		}
	}

	log.Printf("batch %s complete: %d ok, %d failed", batchID, len(outcomes)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// writeReports renders the HTML variance report plus per-file PNG plots.
func writeReports(dir string, reduced []*confounds.Result, suffix string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	htmlPath := filepath.Join(dir, "report.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	if err := report.WriteHTMLReport(f, reduced); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	for _, res := range reduced {
		stem := strings.TrimSuffix(bids.OutputName(res.Path, suffix), filepath.Ext(suffix))

		variancePath := filepath.Join(dir, stem+"_variance.png")
		if err := report.PlotExplainedVariance(res.Reduction.ExplainedVariance, variancePath); err != nil {
			return fmt.Errorf("variance plot for %s: %w", res.Path, err)
		}

		var componentCols []string
		for _, name := range res.Frame.Columns() {
			if strings.HasPrefix(name, "motion_pca_") {
				componentCols = append(componentCols, name)
			}
		}
		tracePath := filepath.Join(dir, stem+"_components.png")
		if err := report.PlotMotionTraces(res.Frame, componentCols, tracePath); err != nil {
			return fmt.Errorf("component plot for %s: %w", res.Path, err)
		}
	}
	return nil
}
