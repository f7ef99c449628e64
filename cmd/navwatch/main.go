package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/navwatch/navwatch/internal/config"
	"github.com/navwatch/navwatch/internal/database"
	"github.com/navwatch/navwatch/internal/pipeline"
	"github.com/navwatch/navwatch/internal/report"
	"github.com/navwatch/navwatch/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "navwatch",
	Short:   "AI & naval defense news watch",
	Long:    "NavWatch collects RSS feeds, filters for AI-in-defense coverage, scores relevance, and renders a static watch report.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("navwatch", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/navwatch/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, thresholds, and translation.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Database: %s\n\n", db.Path())
		fmt.Printf("Runs: %d\n", stats.Runs)
		fmt.Printf("Articles stored: %d\n", stats.Articles)
		fmt.Printf("Cached translations: %d\n", stats.Translations)
		if stats.LastRun != nil {
			fmt.Printf("Last run finished: %s\n", *stats.LastRun)
		} else {
			fmt.Println("No finished run yet.")
		}
		return nil
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured feed sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := append([]config.Source(nil), cfg.Sources...)
		sort.Slice(sources, func(i, j int) bool { return sources[i].Authority > sources[j].Authority })

		fmt.Printf("%-20s %-8s %-10s %-9s %s\n", "NAME", "LANG", "CATEGORY", "AUTHORITY", "URL")
		for _, s := range sources {
			fmt.Printf("%-20s %-8s %-10s %-9.2f %s\n", s.Name, s.Language, s.Category, s.Authority, s.URL)
		}
		return nil
	},
}

// --- run command ---

var (
	dryRun         bool
	daysWindow     int
	relevanceMin   float64
	noTranslate    bool
	outDirOverride string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> enrich -> analyze -> dedupe -> store -> render",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		opts := pipeline.Options{
			DaysWindow:   daysWindow,
			RelevanceMin: relevanceMin,
			NoTranslate:  noTranslate,
			OutDir:       outDirOverride,
		}
		pipe := pipeline.New(cfg, db, opts)
		ctx := context.Background()

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(ctx, opts)
		} else {
			result = pipe.Run(ctx, opts)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if len(result.Rejected) > 0 {
			fmt.Println("\nRejections:")
			reasons := make([]string, 0, len(result.Rejected))
			for r := range result.Rejected {
				reasons = append(reasons, r)
			}
			sort.Strings(reasons)
			for _, r := range reasons {
				fmt.Printf("  %s: %d\n", r, result.Rejected[r])
			}
		}

		if !dryRun {
			fmt.Println("\nPipeline complete! Run 'navwatch serve' to browse runs.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze without storing or rendering")
	runCmd.Flags().IntVar(&daysWindow, "days", 0, "Override the day window")
	runCmd.Flags().Float64Var(&relevanceMin, "min-relevance", -1, "Override the relevance threshold")
	runCmd.Flags().BoolVar(&noTranslate, "no-translate", false, "Skip summary translation")
	runCmd.Flags().StringVar(&outDirOverride, "out", "", "Override the report output directory")
}

// --- report command ---

var reportRunID int64

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Re-render the HTML report and CSV from a stored run",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var run *database.Run
		if reportRunID > 0 {
			run, err = db.GetRun(reportRunID)
		} else {
			run, err = db.GetLatestRun()
		}
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no stored run to report on; run 'navwatch run' first")
		}

		articles, err := db.GetRunArticles(run.ID)
		if err != nil {
			return err
		}

		dir := cfg.Output.ReportDir
		if outDirOverride != "" {
			dir = outDirOverride
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}

		meta := report.Meta{
			DaysWindow:   cfg.Pipeline.DaysWindow,
			RelevanceMin: cfg.Pipeline.RelevanceMin,
		}
		if started, err := parseDBTime(run.StartedAt); err == nil {
			meta.GeneratedAt = started
		}

		htmlPath := filepath.Join(dir, cfg.Output.ReportFile)
		htmlFile, err := os.Create(htmlPath)
		if err != nil {
			return err
		}
		defer htmlFile.Close()
		if err := report.WriteHTML(htmlFile, articles, meta); err != nil {
			return err
		}

		csvPath := filepath.Join(dir, cfg.Output.CSVFile)
		csvFile, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		defer csvFile.Close()
		if err := report.WriteCSV(csvFile, articles); err != nil {
			return err
		}

		fmt.Printf("Rendered run %d: %s, %s (%d articles)\n", run.ID, htmlPath, csvPath, len(articles))
		return nil
	},
}

func init() {
	reportCmd.Flags().Int64Var(&reportRunID, "run", 0, "Run ID to render (default: latest)")
	reportCmd.Flags().StringVar(&outDirOverride, "out", "", "Override the report output directory")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "navwatch.db")
	return database.Open(dbPath)
}

// parseDBTime parses SQLite's datetime('now') text format.
func parseDBTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04:05", s)
}
