// Package main is the kensa CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kensa/internal/cli"
	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/evaluator"
	"github.com/hyperjump/kensa/internal/extract"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/scanner"
	"github.com/hyperjump/kensa/internal/scoring"
	"github.com/hyperjump/kensa/internal/server"
	"github.com/hyperjump/kensa/internal/storage"
	"github.com/hyperjump/kensa/internal/watcher"
	"github.com/hyperjump/kensa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kensa/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if present; when neither exists the built-in defaults are
// used and the returned path is empty.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Load .env file if present (ignore errors)
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "check":
		runCheck()
	case "evaluate":
		runEvaluate()
	case "watch":
		runWatch()
	case "corpus":
		runCorpus()
	case "reports":
		runReports()
	case "status":
		runStatus()
	case "init":
		runInit()
	case "version", "--version", "-v":
		fmt.Printf("kensa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// commonFlags are shared by every subcommand that touches the corpus or config.
type commonFlags struct {
	configPath *string
	corpus     *string
	output     *string
	debug      *bool
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		corpus:     fs.String("corpus", "", "reference corpus directory (overrides corpus.directory)"),
		output:     fs.String("output", "text", "output format: text or json"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
	}
}

// setup loads config, applies flag overrides and creates the logger.
func (c commonFlags) setup() (*config.Config, *zap.Logger, cli.OutputFormat) {
	format, err := cli.ParseOutputFormat(*c.output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *c.corpus != "" {
		cfg.Corpus.Directory = *c.corpus
	}
	if *c.debug {
		cfg.Debug = true
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger, format
}

// Components holds the services shared by the subcommands.
type Components struct {
	Storage   storage.Storage
	Scorer    scoring.Scorer
	Extractor *extract.Extractor
	Scanner   *scanner.Scanner
	Evaluator *evaluator.Evaluator
}

// Close releases the scorer and the report store.
func (c *Components) Close() {
	if c.Scorer != nil {
		_ = c.Scorer.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// initializeComponents wires the evaluator. withStore opens the report database.
// A scorer that cannot be built (e.g. missing API key) is replaced by one that
// records the reason on every report, so the plagiarism check still runs.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, withStore bool) (*Components, error) {
	c := &Components{Extractor: extract.NewExtractor()}
	c.Scanner = scanner.NewScanner(c.Extractor, scanner.WithLogger(logger))

	scorer, err := scoring.New(ctx, &cfg.Scoring)
	if err != nil {
		logger.Warn("scoring unavailable", zap.String("provider", cfg.Scoring.Provider), zap.Error(err))
		scorer = scoring.NewUnavailableScorer(err)
	}
	c.Scorer = scorer

	opts := []evaluator.Option{
		evaluator.WithLogger(logger),
		evaluator.WithExtractor(c.Extractor),
		evaluator.WithCorpusDir(cfg.Corpus.Directory),
		evaluator.WithThreshold(cfg.Report.PlagiarismThreshold),
	}
	if withStore {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = store
		opts = append(opts, evaluator.WithStore(store))
	}
	c.Evaluator = evaluator.New(c.Scanner, c.Scorer, opts...)
	return c, nil
}

// newCheckEvaluator returns an evaluator without scorer or store, for corpus checks only.
func newCheckEvaluator(cfg *config.Config, logger *zap.Logger) *evaluator.Evaluator {
	x := extract.NewExtractor()
	return evaluator.New(scanner.NewScanner(x, scanner.WithLogger(logger)), nil,
		evaluator.WithExtractor(x),
		evaluator.WithLogger(logger),
		evaluator.WithCorpusDir(cfg.Corpus.Directory),
		evaluator.WithThreshold(cfg.Report.PlagiarismThreshold),
	)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	flags := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	cfg, logger, _ := flags.setup()
	defer logger.Sync()
	logger.Info("config loaded",
		zap.String("corpus", cfg.Corpus.Directory),
		zap.String("provider", cfg.Scoring.Provider),
		zap.Bool("debug", cfg.Debug),
	)

	components, err := initializeComponents(context.Background(), cfg, logger, true)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Evaluator, components.Storage, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// readSubmission builds a submission from --text, a file argument, or "-" for stdin.
func readSubmission(text string, args []string, stdin io.Reader) (evaluator.Submission, error) {
	if strings.TrimSpace(text) != "" {
		return evaluator.Submission{Text: text}, nil
	}
	if len(args) < 1 {
		return evaluator.Submission{}, errors.New("provide a file, - for stdin, or --text")
	}
	if args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return evaluator.Submission{}, fmt.Errorf("read stdin: %w", err)
		}
		return evaluator.Submission{Name: "stdin", Text: string(b)}, nil
	}
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return evaluator.Submission{}, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	if !extract.Supported(name) {
		return evaluator.Submission{}, fmt.Errorf("unsupported file type %q (want %s)", name, strings.Join(models.SupportedExtensions(), ", "))
	}
	return evaluator.Submission{Name: name, FileName: name, Content: content}, nil
}

func runCheck() {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	flags := addCommonFlags(fs)
	text := fs.String("text", "", "text to check instead of a file")
	serverURL := fs.String("server", "", "server URL (empty = check locally)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kensa check [flags] <file|->\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	cfg, logger, format := flags.setup()
	defer logger.Sync()

	sub, err := readSubmission(*text, fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
		os.Exit(1)
	}

	var result *models.MatchResult
	if *serverURL != "" {
		result, err = checkViaHTTP(*serverURL, sub)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		ev := newCheckEvaluator(cfg, logger)
		body := ev.SubmissionText(sub)
		if utils.IsBlank(body) {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", evaluator.ErrEmptySubmission)
			os.Exit(1)
		}
		r := ev.Check(body)
		result = &r
	}
	if err := cli.WriteMatchResult(os.Stdout, result, cfg.Report.PlagiarismThreshold, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runEvaluate() {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	flags := addCommonFlags(fs)
	text := fs.String("text", "", "text to evaluate instead of a file")
	saveJSON := fs.String("save-json", "", "also write the report as JSON to this path")
	noSave := fs.Bool("no-save", false, "do not record the report in the history database")
	serverURL := fs.String("server", "", "server URL (empty = evaluate locally)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kensa evaluate [flags] <file|->\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	cfg, logger, format := flags.setup()
	defer logger.Sync()

	sub, err := readSubmission(*text, fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Evaluate failed: %v\n", err)
		os.Exit(1)
	}

	var report *models.Report
	if *serverURL != "" {
		report, err = evaluateViaHTTP(*serverURL, sub)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Scoring.TimeoutSeconds+30)*time.Second)
		defer cancel()
		var components *Components
		components, err = initializeComponents(ctx, cfg, logger, !*noSave)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		report, err = components.Evaluator.Evaluate(ctx, sub)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Evaluate failed: %v\n", err)
		os.Exit(1)
	}

	if err := cli.WriteReport(os.Stdout, report, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if *saveJSON != "" {
		if err := cli.SaveJSON(*saveJSON, report); err != nil {
			fmt.Fprintf(os.Stderr, "Save failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", *saveJSON)
	}
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	flags := addCommonFlags(fs)
	text := fs.String("text", "", "text to check instead of a file")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kensa watch [flags] <file|->\n\nRe-runs the plagiarism check whenever the corpus changes.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(os.Args[2:]))

	cfg, logger, format := flags.setup()
	defer logger.Sync()

	sub, err := readSubmission(*text, fs.Args(), os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		os.Exit(1)
	}
	ev := newCheckEvaluator(cfg, logger)
	body := ev.SubmissionText(sub)
	if utils.IsBlank(body) {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", evaluator.ErrEmptySubmission)
		os.Exit(1)
	}

	check := func() {
		result := ev.Check(body)
		if err := cli.WriteMatchResult(os.Stdout, &result, cfg.Report.PlagiarismThreshold, format); err != nil {
			logger.Warn("output failed", zap.Error(err))
		}
	}
	check()

	watchOpts := []watcher.WatcherOption{watcher.WithExtensions(models.SupportedExtensions())}
	if cfg.Debug {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	w := watcher.NewWatcher(cfg.Corpus.Directory, func(changed []string) {
		if format == cli.OutputText {
			fmt.Printf("\ncorpus changed: %s\n", strings.Join(baseNames(changed), ", "))
		}
		check()
	}, watchOpts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := w.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
		os.Exit(1)
	}
	defer w.Stop()
	if format == cli.OutputText {
		fmt.Printf("\nwatching %s (Ctrl+C to stop)\n", w.Dir())
	}
	<-ctx.Done()
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func runCorpus() {
	fs := flag.NewFlagSet("corpus", flag.ExitOnError)
	flags := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	cfg, logger, format := flags.setup()
	defer logger.Sync()

	entries, err := scanner.NewScanner(nil, scanner.WithLogger(logger)).Entries(cfg.Corpus.Directory)
	if err != nil {
		fmt.Fprintln(os.Stderr, scanner.MissingCorpusWarning(cfg.Corpus.Directory))
		os.Exit(1)
	}
	if err := cli.WriteCorpus(os.Stdout, cfg.Corpus.Directory, entries, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runReports() {
	sub := "list"
	args := os.Args[2:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}
	fs := flag.NewFlagSet("reports", flag.ExitOnError)
	flags := addCommonFlags(fs)
	limit := fs.Int("limit", 20, "number of reports to list")
	offset := fs.Int("offset", 0, "number of reports to skip")
	fp := fs.String("fingerprint", "", "list only reports for this submission fingerprint")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: kensa reports [list|show <id>|delete <id>] [flags]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(args))

	cfg, logger, format := flags.setup()
	defer logger.Sync()

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open report history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()
	ctx := context.Background()

	switch sub {
	case "list":
		reports, total, err := listReports(ctx, store, *fp, *offset, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
		err = cli.WriteReports(os.Stdout, reports, total, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "show":
		if fs.NArg() < 1 {
			fmt.Println("Usage: kensa reports show <id>")
			os.Exit(1)
		}
		report, err := store.GetReport(ctx, fs.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteReport(os.Stdout, report, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "delete":
		if fs.NArg() < 1 {
			fmt.Println("Usage: kensa reports delete <id>")
			os.Exit(1)
		}
		if err := store.DeleteReport(ctx, fs.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted: %s\n", fs.Arg(0))
	default:
		fmt.Printf("Unknown reports subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// listReports pages through the history, or returns every report for fp when it is set.
func listReports(ctx context.Context, store storage.Storage, fp string, offset, limit int) ([]*models.Report, int64, error) {
	if fp != "" {
		reports, err := store.FindByFingerprint(ctx, fp)
		if err != nil {
			return nil, 0, err
		}
		return reports, int64(len(reports)), nil
	}
	reports, err := store.ListReports(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := store.CountReports(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	return reports, total, nil
}

// runInit writes a config file with the built-in defaults.
func runInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("config", "config.yaml", "where to write the config file")
	provider := fs.String("provider", "", "scoring provider: groq, openai, gemini or mock")
	force := fs.Bool("force", false, "overwrite an existing config file")
	_ = fs.Parse(os.Args[2:])

	if err := writeDefaultConfig(*path, *provider, *force); err != nil {
		fmt.Fprintf(os.Stderr, "Init failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *path)
}

func writeDefaultConfig(path, provider string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	cfg := config.Default()
	if provider != "" {
		cfg.Scoring = config.ScoringConfig{Provider: provider}
		config.ApplyDefaults(cfg)
		if cfg.Scoring.Model == "" {
			return fmt.Errorf("%w: %s", scoring.ErrUnknownProvider, provider)
		}
	}
	return config.Save(path, cfg)
}

type statusResponse struct {
	Scorer           string  `json:"scorer"`
	CorpusDirectory  string  `json:"corpus_directory"`
	CorpusFiles      int     `json:"corpus_files"`
	CorpusComparable int     `json:"corpus_comparable"`
	CorpusWarning    string  `json:"corpus_warning,omitempty"`
	Threshold        float64 `json:"plagiarism_threshold"`
	Reports          int64   `json:"reports"`
	DatabasePath     string  `json:"database_path"`
	DiskUsageBytes   *int64  `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	flags := addCommonFlags(fs)
	_ = fs.Parse(os.Args[2:])

	cfg, logger, format := flags.setup()
	defer logger.Sync()

	ctx := context.Background()
	components, err := initializeComponents(ctx, cfg, logger, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	status := statusResponse{
		Scorer:          components.Scorer.Name(),
		CorpusDirectory: cfg.Corpus.Directory,
		Threshold:       cfg.Report.PlagiarismThreshold,
		DatabasePath:    cfg.Storage.DatabasePath,
	}
	if entries, err := components.Scanner.Entries(cfg.Corpus.Directory); err == nil {
		status.CorpusFiles = len(entries)
		for _, e := range entries {
			if e.Comparable {
				status.CorpusComparable++
			}
		}
	} else {
		status.CorpusWarning = scanner.MissingCorpusWarning(cfg.Corpus.Directory)
	}
	status.Reports, err = components.Storage.CountReports(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count reports failed: %v\n", err)
		os.Exit(1)
	}
	if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Corpus.Directory); err == nil {
		status.DiskUsageBytes = &diskBytes
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Printf("scorer:             %s\n", status.Scorer)
	fmt.Printf("corpus_directory:   %s\n", status.CorpusDirectory)
	if status.CorpusWarning != "" {
		fmt.Printf("corpus_warning:     %s\n", status.CorpusWarning)
	} else {
		fmt.Printf("corpus_files:       %d   # %d comparable\n", status.CorpusFiles, status.CorpusComparable)
	}
	fmt.Printf("threshold:          %.2f%%\n", status.Threshold)
	fmt.Printf("reports:            %d   # saved evaluations\n", status.Reports)
	fmt.Printf("database_path:      %s\n", status.DatabasePath)
	if status.DiskUsageBytes != nil {
		fmt.Printf("disk_usage_bytes:   %d   # database + corpus on disk\n", *status.DiskUsageBytes)
	}
}

// postSubmission sends sub to a kensa server: JSON for text, multipart for a file.
func postSubmission(serverURL, endpoint string, sub evaluator.Submission) (*http.Response, error) {
	url := strings.TrimRight(serverURL, "/") + endpoint
	if sub.Content == nil {
		body, err := json.Marshal(map[string]string{"text": sub.Text, "name": sub.Name})
		if err != nil {
			return nil, err
		}
		return http.Post(url, "application/json", bytes.NewReader(body))
	}
	fileName := sub.FileName
	if fileName == "" {
		fileName = sub.Name
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if sub.Name != "" {
		if err := mw.WriteField("name", sub.Name); err != nil {
			return nil, err
		}
	}
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(sub.Content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return http.Post(url, mw.FormDataContentType(), &buf)
}

func checkViaHTTP(serverURL string, sub evaluator.Submission) (*models.MatchResult, error) {
	resp, err := postSubmission(serverURL, "/api/v1/check", sub)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var result models.MatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func evaluateViaHTTP(serverURL string, sub evaluator.Submission) (*models.Report, error) {
	resp, err := postSubmission(serverURL, "/api/v1/evaluate", sub)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var report models.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &report, nil
}

// argsReorder moves any flags (and their values) that appear after the positional
// arguments to the front so that flag.Parse() sees them. Go's flag package stops at
// the first non-flag argument, so "kensa check essay.pdf --output json" would
// otherwise leave --output unparsed.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printUsage() {
	fmt.Println(`kensa - Essay evaluation and naive plagiarism detection

Usage:
  kensa server [flags]               Start the HTTP server
  kensa check [flags] <file|->       Compare a submission against the reference corpus
  kensa evaluate [flags] <file|->    Score a submission and check it for plagiarism
  kensa watch [flags] <file|->       Re-run the check whenever the corpus changes
  kensa corpus [flags]               List the reference corpus
  kensa reports [list|show|delete]   Browse saved evaluation reports
  kensa status [flags]               Show scorer, corpus and storage status
  kensa init [--config path]         Write a config file with the defaults
  kensa version                      Show version
  kensa help                         Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/kensa/config.yaml, or ./config.yaml)
  --corpus string    Reference corpus directory (default: sample_essays)
  --output string    Output format: text or json (default: text)
  --debug            Enable debug logging

Check / Evaluate Flags:
  --text string       Use this text instead of a file (wins over a file)
  --server string     Send the request to a running kensa server
  --save-json string  (evaluate) Also write the report JSON to this path
  --no-save           (evaluate) Do not record the report in the history database

Reports Flags:
  --limit int    Number of reports to list (default: 20)
  --offset int   Number of reports to skip
  --fingerprint  List only reports for this submission fingerprint

Supported formats: .txt, .pdf, .docx
API keys are read from the environment (GROQ_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY) or a .env file.

Examples:
  kensa check essay.docx
  kensa check --corpus ./refs --output json essay.pdf
  kensa evaluate --save-json feedback_report.json essay.txt
  cat essay.txt | kensa evaluate -
  kensa watch essay.txt
  kensa reports show 3f2b...`)
}
