package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docseek/internal/chunker"
	"docseek/internal/config"
	"docseek/internal/corpus"
	"docseek/internal/logger"
	"docseek/internal/service"
	"docseek/internal/summarizer"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:           "docseek",
	Short:         "Segment documents and search them with typo-tolerant ranking",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config (default $DOCSEEK_CONFIG, ./docseek.yaml, ~/.config/docseek/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit JSON logs")

	rootCmd.AddCommand(ingestCmd, searchCmd, tuiCmd)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app is everything a subcommand needs, built from flags and config.
type app struct {
	cfg *config.AppConfig
	svc *service.Service
	log logger.Logger
	ctx context.Context
}

func newApp(cmd *cobra.Command) (*app, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if cfgFile == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgFile)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logJSON {
		cfg.Log.JSON = true
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, JSON: cfg.Log.JSON, Output: os.Stderr})
	ctx := logger.ContextWithLogger(cmd.Context(), log)

	ch, err := chunker.NewSentenceChunker(cfg.Segmentation)
	if err != nil {
		return nil, err
	}
	store, err := corpus.Open(ctx, cfg.Corpus)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	svc, err := service.New(ch, store, summarizer.NewFrequencySummarizer(), service.Config{
		SummaryMaxSentences: cfg.Summarizer.MaxSentences,
		CacheSize:           cfg.CacheSize(),
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Debug("corpus ready", "type", cfg.Corpus.Type)
	return &app{cfg: cfg, svc: svc, log: log, ctx: ctx}, nil
}

func (a *app) ingest(paths []string) ([]service.IngestReport, error) {
	reports := make([]service.IngestReport, 0, len(paths))
	for _, p := range paths {
		r, err := a.svc.IngestFile(a.ctx, p)
		if err != nil {
			return reports, fmt.Errorf("ingest %s: %w", p, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func (a *app) Close() error { return a.svc.Close() }
