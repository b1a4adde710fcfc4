// Command rackwire calculates and validates structured-cabling BOMs for
// leaf-spine pods from declarative YAML manifests.
//
// Exit codes are shared by every subcommand: 0 when no FAIL findings
// were produced, 1 when any check failed, 2 when only warnings were
// produced and -strict was requested.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rackwire/internal/codec"
	"rackwire/internal/config"
	"rackwire/internal/domain"
	"rackwire/internal/engine"
	"rackwire/internal/loader"
	"rackwire/internal/repository"
	"rackwire/internal/repository/sqlite"
	"rackwire/internal/watcher"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("rackwire: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var (
		code int
		err  error
	)
	switch os.Args[1] {
	case "calculate":
		code, err = runCalculate(os.Args[2:])
	case "validate":
		code, err = runValidate(os.Args[2:])
	case "crossvalidate":
		code, err = runCrossValidate(os.Args[2:])
	case "roundtrip":
		code, err = runRoundtrip(os.Args[2:])
	case "estimate":
		code, err = runEstimate(os.Args[2:])
	case "runs":
		code, err = runRuns(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		log.Printf("unknown subcommand %q", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: rackwire <subcommand> [flags]

subcommands:
  calculate      derive intent and materialize a BOM
  validate       run manifest and policy checks, no BOM required
  crossvalidate  reconcile a materialized BOM against fresh intent
  roundtrip      reconcile BOM-implied terminations against port budgets
  estimate       project cable counts from policy site defaults alone
  runs           list the run-artifact ledger

run "rackwire <subcommand> -h" for flags.`)
}

// sparesOverride maps the flag sentinel to the optional override the
// engine expects. Explicit zero is a valid override.
func sparesOverride(v float64) *float64 {
	if v < 0 {
		return nil
	}
	return &v
}

// outputWriter opens the -o target, defaulting to stdout.
func outputWriter(path string) (io.WriteCloser, error) {
	if path == "" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

func closeOutput(w io.WriteCloser) {
	if w != os.Stdout {
		w.Close()
	}
}

// printFindings writes findings to stderr so artifact output on stdout
// stays clean.
func printFindings(findings []domain.Finding) {
	for _, f := range findings {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", f.Severity, f.Code, f.Message)
	}
}

func countSeverities(findings []domain.Finding) (fail, warn int) {
	for _, f := range findings {
		switch f.Severity {
		case domain.SeverityFail:
			fail++
		case domain.SeverityWarn:
			warn++
		}
	}
	return fail, warn
}

func runCalculate(args []string) (int, error) {
	fs := flag.NewFlagSet("calculate", flag.ExitOnError)
	manifestDir := fs.String("manifests", ".", "directory holding the manifest YAML files")
	policyPath := fs.String("policy", "", "cabling policy YAML (engine defaults when omitted)")
	spares := fs.Float64("spares", -1, "spares fraction override, takes precedence over policy")
	out := fs.String("o", "", "output path (stdout when omitted)")
	format := fs.String("format", "yaml", "output format: yaml, json or csv")
	dbPath := fs.String("db", "", "record the run in this SQLite ledger")
	label := fs.String("label", "", "ledger label for this run (defaults to the manifest dir)")
	fs.Parse(args)

	m, err := loader.LoadManifests(loader.DefaultManifestPaths(*manifestDir))
	if err != nil {
		return 0, err
	}
	pol, _, err := config.Load(*policyPath)
	if err != nil {
		return 0, err
	}

	bom, findings, err := engine.Calculate(m, pol, sparesOverride(*spares))
	if err != nil {
		return 0, err
	}
	printFindings(findings)

	exporter, err := codec.ExporterFor(*format)
	if err != nil {
		return 0, err
	}
	w, err := outputWriter(*out)
	if err != nil {
		return 0, err
	}
	defer closeOutput(w)
	if err := exporter.Export(bom, w); err != nil {
		return 0, err
	}

	if *dbPath != "" {
		repo, err := sqlite.New(*dbPath)
		if err != nil {
			return 0, err
		}
		defer repo.Close()
		runLabel := *label
		if runLabel == "" {
			runLabel = *manifestDir
		}
		id, err := repo.SaveBOM(context.Background(), runLabel, bom)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(os.Stderr, "recorded bom %d in %s\n", id, *dbPath)
	}
	return 0, nil
}

func runValidate(args []string) (int, error) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	manifestDir := fs.String("manifests", ".", "directory holding the manifest YAML files")
	policyPath := fs.String("policy", "", "cabling policy YAML (engine defaults when omitted)")
	strict := fs.Bool("strict", false, "exit 2 when only warnings were produced")
	out := fs.String("o", "", "report path (stdout when omitted)")
	format := fs.String("format", "yaml", "report format: yaml or json")
	dbPath := fs.String("db", "", "record the report in this SQLite ledger")
	watch := fs.Bool("watch", false, "re-run validation whenever a manifest or the policy changes")
	fs.Parse(args)

	paths := loader.DefaultManifestPaths(*manifestDir)

	runOnce := func() (int, error) {
		m, err := loader.LoadManifests(paths)
		if err != nil {
			return 0, err
		}
		pol, _, err := config.Load(*policyPath)
		if err != nil {
			return 0, err
		}

		report := engine.Validate(m, pol)

		w, err := outputWriter(*out)
		if err != nil {
			return 0, err
		}
		defer closeOutput(w)
		if err := codec.WriteReport(w, *format, report); err != nil {
			return 0, err
		}

		if *dbPath != "" {
			if err := recordReport(*dbPath, repository.KindValidate, nil, report.Summary.Fail, report.Summary.Warn, report); err != nil {
				return 0, err
			}
		}
		return report.ExitCode(*strict), nil
	}

	if !*watch {
		return runOnce()
	}

	// Watch mode: validate now, then again on every input change.
	// Failures are reported, not fatal; the session ends on interrupt.
	report := func() {
		code, err := runOnce()
		if err != nil {
			log.Printf("validate: %v", err)
			return
		}
		log.Printf("validate finished (exit code %d)", code)
	}
	report()

	watched := []string{paths.Topology, paths.Tors, paths.Nodes, paths.Site}
	if *policyPath != "" {
		watched = append(watched, *policyPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	err := watcher.New(watched, func(string) { report() }).Watch(ctx)
	if err != nil && err != context.Canceled {
		return 0, err
	}
	return 0, nil
}

// loadBOM resolves the BOM to check: an explicit artifact path wins;
// otherwise the latest ledger entry is used, which also ties the report
// row to the BOM row.
func loadBOM(bomPath, dbPath string) (*domain.BOM, *int64, error) {
	if bomPath != "" {
		importer, err := codec.ImporterFor(bomPath)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.Open(bomPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bom: %w", err)
		}
		defer f.Close()
		bom, err := importer.Parse(f)
		if err != nil {
			return nil, nil, err
		}
		return bom, nil, nil
	}

	if dbPath == "" {
		return nil, nil, fmt.Errorf("either -bom or -db is required")
	}
	repo, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, err
	}
	defer repo.Close()
	record, err := repo.LatestBOM(context.Background())
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, fmt.Errorf("ledger %s holds no boms", dbPath)
	}
	return record.BOM, &record.ID, nil
}

func recordReport(dbPath, kind string, bomID *int64, fail, warn int, report any) error {
	repo, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	_, err = repo.SaveReport(context.Background(), kind, bomID, fail, warn, report)
	return err
}

func runCrossValidate(args []string) (int, error) {
	fs := flag.NewFlagSet("crossvalidate", flag.ExitOnError)
	bomPath := fs.String("bom", "", "materialized BOM artifact (latest ledger entry when omitted)")
	manifestDir := fs.String("manifests", ".", "directory holding the manifest YAML files")
	policyPath := fs.String("policy", "", "cabling policy YAML (engine defaults when omitted)")
	strict := fs.Bool("strict", false, "exit 2 when only warnings were produced")
	out := fs.String("o", "", "report path (stdout when omitted)")
	format := fs.String("format", "yaml", "report format: yaml or json")
	dbPath := fs.String("db", "", "SQLite ledger to read the BOM from and record the report in")
	fs.Parse(args)

	bom, bomID, err := loadBOM(*bomPath, *dbPath)
	if err != nil {
		return 0, err
	}
	m, err := loader.LoadManifests(loader.DefaultManifestPaths(*manifestDir))
	if err != nil {
		return 0, err
	}
	pol, _, err := config.Load(*policyPath)
	if err != nil {
		return 0, err
	}

	report := engine.CrossValidate(bom, m, pol)

	w, err := outputWriter(*out)
	if err != nil {
		return 0, err
	}
	defer closeOutput(w)
	if err := codec.WriteReport(w, *format, report); err != nil {
		return 0, err
	}

	if *dbPath != "" {
		fail, warn := countSeverities(report.Findings)
		if err := recordReport(*dbPath, repository.KindCrossValidate, bomID, fail, warn, report); err != nil {
			return 0, err
		}
	}
	return report.ExitCode(*strict), nil
}

func runRoundtrip(args []string) (int, error) {
	fs := flag.NewFlagSet("roundtrip", flag.ExitOnError)
	bomPath := fs.String("bom", "", "materialized BOM artifact (latest ledger entry when omitted)")
	manifestDir := fs.String("manifests", ".", "directory holding the manifest YAML files")
	policyPath := fs.String("policy", "", "cabling policy YAML (engine defaults when omitted)")
	strict := fs.Bool("strict", false, "exit 2 when only warnings were produced")
	out := fs.String("o", "", "report path (stdout when omitted)")
	format := fs.String("format", "yaml", "report format: yaml or json")
	dbPath := fs.String("db", "", "SQLite ledger to read the BOM from and record the report in")
	fs.Parse(args)

	bom, bomID, err := loadBOM(*bomPath, *dbPath)
	if err != nil {
		return 0, err
	}
	m, err := loader.LoadManifests(loader.DefaultManifestPaths(*manifestDir))
	if err != nil {
		return 0, err
	}
	pol, _, err := config.Load(*policyPath)
	if err != nil {
		return 0, err
	}

	report := engine.Roundtrip(bom, m, pol)

	w, err := outputWriter(*out)
	if err != nil {
		return 0, err
	}
	defer closeOutput(w)
	if err := codec.WriteReport(w, *format, report); err != nil {
		return 0, err
	}

	if *dbPath != "" {
		if err := recordReport(*dbPath, repository.KindRoundtrip, bomID, report.Summary.Fail, report.Summary.Warn, report); err != nil {
			return 0, err
		}
	}
	return report.ExitCode(*strict), nil
}

func runEstimate(args []string) (int, error) {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	policyPath := fs.String("policy", "", "cabling policy YAML (engine defaults when omitted)")
	spares := fs.Float64("spares", -1, "spares fraction override, takes precedence over policy")
	out := fs.String("o", "", "output path (stdout when omitted)")
	format := fs.String("format", "yaml", "output format: yaml or json")
	fs.Parse(args)

	pol, _, err := config.Load(*policyPath)
	if err != nil {
		return 0, err
	}
	if pol.SiteDefaults == nil || pol.SiteDefaults.NumRacks == 0 {
		return 0, fmt.Errorf("estimate needs site_defaults in the policy (num_racks, nodes_per_rack, uplinks_per_rack)")
	}

	res := engine.Estimate(pol, sparesOverride(*spares))

	w, err := outputWriter(*out)
	if err != nil {
		return 0, err
	}
	defer closeOutput(w)
	if err := codec.WriteReport(w, *format, res); err != nil {
		return 0, err
	}
	return 0, nil
}

func runRuns(args []string) (int, error) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "", "SQLite ledger to list")
	fs.Parse(args)

	if *dbPath == "" {
		return 0, fmt.Errorf("-db is required")
	}
	repo, err := sqlite.New(*dbPath)
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	ctx := context.Background()
	boms, err := repo.ListBOMs(ctx)
	if err != nil {
		return 0, err
	}
	reports, err := repo.ListReports(ctx)
	if err != nil {
		return 0, err
	}

	fmt.Printf("boms (%d):\n", len(boms))
	for _, b := range boms {
		fmt.Printf("  %4d  %s  %-20s  %4d cables  spares %.2f\n",
			b.ID, b.CreatedAt.Format("2006-01-02 15:04:05"), b.Label, b.TotalQuantity, b.SparesFraction)
	}
	fmt.Printf("reports (%d):\n", len(reports))
	for _, r := range reports {
		bomRef := "-"
		if r.BOMID != nil {
			bomRef = fmt.Sprintf("bom %d", *r.BOMID)
		}
		fmt.Printf("  %4d  %s  %-14s  %-7s  fail %d  warn %d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, bomRef, r.FailCount, r.WarnCount)
	}
	return 0, nil
}
