package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jonathan/playstore-scraper/internal/appids"
	"github.com/jonathan/playstore-scraper/internal/catalog"
	"github.com/jonathan/playstore-scraper/internal/config"
	"github.com/jonathan/playstore-scraper/internal/db"
	"github.com/jonathan/playstore-scraper/internal/observability"
	"github.com/jonathan/playstore-scraper/internal/pipeline"
	"github.com/jonathan/playstore-scraper/internal/storage"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape Play Store details for every app in the ids document",
	Long: `Scrape Play Store details for every app listed in the ids document.

Each app is fetched once and written to <out>/<outputID>.json. Apps that cannot
be fetched or written are reported and counted as failed; the command still
exits 0. Only a missing or malformed ids document (or invalid options) makes it
exit non-zero.`,
	RunE: runScrape,
}

var (
	scrapeConfigPath  string
	scrapeRoot        string
	scrapeIDsPath     string
	scrapeOutputDir   string
	scrapeLang        string
	scrapeCountry     string
	scrapeBaseURL     string
	scrapeTimeout     int
	scrapeMaxRetries  int
	scrapeUseBrowser  bool
	scrapeDatabaseURL string
	scrapeOnly        string
	scrapeFailedOut   string
	scrapeJSONEvents  bool
	scrapeVerbose     bool
)

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeConfigPath, "config", "c", "", "Path to JSON config file")
	scrapeCmd.Flags().StringVar(&scrapeRoot, "root", "", "Source root that relative paths resolve against (default: current directory)")
	scrapeCmd.Flags().StringVarP(&scrapeIDsPath, "ids", "i", config.DefaultIDsPath, "Path to the ids document")
	scrapeCmd.Flags().StringVarP(&scrapeOutputDir, "out", "o", config.DefaultOutputDir, "Output directory for <outputID>.json files")
	scrapeCmd.Flags().StringVar(&scrapeLang, "lang", catalog.DefaultLang, "Language of fetched details")
	scrapeCmd.Flags().StringVar(&scrapeCountry, "country", catalog.DefaultCountry, "Country of fetched details")
	scrapeCmd.Flags().StringVar(&scrapeBaseURL, "base-url", catalog.DefaultBaseURL, "Play Store base URL")
	scrapeCmd.Flags().IntVar(&scrapeTimeout, "timeout", 30, "Per-request timeout in seconds")
	scrapeCmd.Flags().IntVar(&scrapeMaxRetries, "max-retries", 0, "Retries for transient failures (0 = single attempt)")
	scrapeCmd.Flags().BoolVar(&scrapeUseBrowser, "use-browser", false, "Render pages with headless Chrome")
	scrapeCmd.Flags().StringVar(&scrapeDatabaseURL, "db-url", "", "Also store records in PostgreSQL (overrides PLAYSTORE_DATABASE_URL/DATABASE_URL)")
	scrapeCmd.Flags().StringVar(&scrapeOnly, "only", "", "Comma-separated app ids to restrict the run to")
	scrapeCmd.Flags().StringVar(&scrapeFailedOut, "failed-out", "", "Write failed entries as an ids document to this path")
	scrapeCmd.Flags().BoolVar(&scrapeJSONEvents, "json-events", false, "Print one JSON object per event instead of progress lines")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(scrapeCmd)
}

// scrapeConfig resolves the effective configuration:
// config file, then explicitly set flags, then defaults.
func scrapeConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if scrapeConfigPath != "" {
		loadedCfg, err := config.LoadConfig(scrapeConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = scrapeRoot
	}
	if flags.Changed("ids") {
		cfg.IDsPath = scrapeIDsPath
	}
	if flags.Changed("out") {
		cfg.OutputDir = scrapeOutputDir
	}
	if flags.Changed("failed-out") {
		cfg.FailedOut = scrapeFailedOut
	}
	if flags.Changed("lang") {
		cfg.Lang = scrapeLang
	}
	if flags.Changed("country") {
		cfg.Country = scrapeCountry
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = scrapeBaseURL
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = scrapeTimeout
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = scrapeMaxRetries
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = scrapeUseBrowser
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = scrapeDatabaseURL
	}
	if flags.Changed("json-events") {
		cfg.JSONEvents = scrapeJSONEvents
	}
	if flags.Changed("verbose") {
		cfg.Verbose = scrapeVerbose
	}

	// Step 3: Apply defaults for unset values
	defaults := config.Defaults()
	defaults.DatabaseURL = config.DatabaseURLFromEnv()
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate merged values (flags are not checked by step 1)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// parseOnly splits a comma-separated list of app ids.
func parseOnly(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Uniq(lo.Compact(parts))
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := scrapeConfig(cmd)
	if err != nil {
		return err
	}

	idsPath := cfg.Resolve(cfg.IDsPath)
	outputDir := cfg.Resolve(cfg.OutputDir)
	runID := uuid.New()
	ctx := context.Background()

	if cfg.Verbose {
		log.Printf("[VERBOSE] run %s: ids=%s out=%s lang=%s country=%s timeout=%s retries=%d",
			runID, idsPath, outputDir, cfg.Lang, cfg.Country, cfg.Timeout(), cfg.MaxRetries)
	}

	// Catalog client
	var source catalog.PageSource = catalog.NewHTTPSource(cfg.Timeout(), cfg.Lang)
	if cfg.UseBrowser {
		source = &catalog.BrowserSource{Timeout: cfg.Timeout(), Verbose: cfg.Verbose}
	}
	client, err := catalog.NewPlayStore(catalog.Options{
		BaseURL: cfg.BaseURL,
		Lang:    cfg.Lang,
		Country: cfg.Country,
		Source:  source,
	})
	if err != nil {
		return err
	}

	// Sinks and reporters
	var out io.Writer = os.Stdout
	files := storage.NewFileWriter(outputDir)
	writer := storage.Chain{files}
	reporters := pipeline.Reporters{consoleOrJSON(out, cfg.JSONEvents)}

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		writer = append(writer, db.NewRecordWriter(database, runID))
		reporters = append(reporters, db.NewRunTracker(ctx, database))
		if cfg.Verbose {
			log.Printf("[VERBOSE] storing records in PostgreSQL")
		}
	}

	orchestrator, err := pipeline.New(pipeline.Options{
		RunID:     runID,
		IDsPath:   idsPath,
		OutputDir: outputDir,
		Only:      parseOnly(scrapeOnly),
		Fetcher:   client,
		Writer:    writer,
		Reporter:  reporters,
		Retry:     pipeline.RetryPolicy{MaxRetries: cfg.MaxRetries},
		Locate:    files.Path,
		Verbose:   cfg.Verbose,
	})
	if err != nil {
		return err
	}

	summary, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.FailedOut != "" {
		failedPath := cfg.Resolve(cfg.FailedOut)
		if err := appids.Save(failedPath, summary.FailedIDs()); err != nil {
			return err
		}
		if !cfg.JSONEvents {
			_, _ = fmt.Fprintf(out, "Failed entries written to: %s\n", failedPath)
		}
	}

	// Item failures do not change the exit status
	return nil
}

func consoleOrJSON(out io.Writer, jsonEvents bool) pipeline.Reporter {
	if jsonEvents {
		return observability.NewJSONReporter(out)
	}
	return observability.NewConsoleReporter(out)
}
