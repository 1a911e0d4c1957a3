// Package main is the Kotae CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/kotae/internal/analyzer"
	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/learning"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/server"
	"github.com/hyperjump/kotae/internal/session"
	"github.com/hyperjump/kotae/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kotae server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
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
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "learned":
		runLearned()
	case "events":
		runEvents()
	case "lineage":
		runLineage()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components bundles everything a command needs to run analyses.
type components struct {
	Repo     *corpus.XLSXRepository
	Store    *session.SQLiteStore
	Workflow *learning.Workflow
}

func (c *components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	repo := corpus.NewXLSXRepository(cfg.Corpus.WorkbookPath, logger)
	client, err := llm.NewOpenAIClient(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	an := analyzer.New(repo, client, cfg.Analysis, logger)
	store, err := session.NewSQLiteStore(cfg.Session.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	workflow, err := learning.NewWorkflow(an, repo, store, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize workflow: %w", err)
	}
	return &components{Repo: repo, Store: store, Workflow: workflow}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (retrieval scoring, LLM calls, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Corpus.Watch {
		watch := corpus.NewWatcher(comps.Repo, cfg.Corpus.WorkbookPath, logger)
		if err := watch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start corpus watcher", zap.Error(err))
		}
		defer watch.Stop()
	}

	srv := server.NewServer(comps.Workflow, comps.Repo, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printAnalyzeUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae analyze [flags] <ticket-id> [ticket-id ...]\n\n")
	fmt.Fprintf(fs.Output(), "Tickets are analyzed one at a time, in the order given, so that an article\n")
	fmt.Fprintf(fs.Output(), "approved for an early ticket informs the analysis of later ones.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
When an analysis proposes a knowledge draft:
  • --approve publishes it as a learned article before the next ticket runs.
  • --dismiss discards it (the knowledge gap is still recorded).
  • With neither flag the draft is printed and left unresolved.

Examples:
  kotae analyze TICK-1001
  kotae analyze --approve TICK-1001 TICK-1002 TICK-1003
  kotae analyze --output json TICK-1001
`)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	approve := fs.Bool("approve", false, "publish any proposed knowledge draft as a learned article")
	dismiss := fs.Bool("dismiss", false, "discard any proposed knowledge draft")
	fs.Usage = func() { printAnalyzeUsage(fs) }
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		printAnalyzeUsage(fs)
		os.Exit(1)
	}
	if *approve && *dismiss {
		fmt.Fprintln(os.Stderr, "--approve and --dismiss are mutually exclusive")
		os.Exit(1)
	}
	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	cfg, logger := mustLoad(*configPath)
	defer logger.Sync()

	comps, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer comps.Close()

	ctx := context.Background()
	exitCode := 0
	for _, ticketID := range fs.Args() {
		result, err := comps.Workflow.Analyze(ctx, ticketID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Analysis of %s failed: %v\n", ticketID, err)
			exitCode = 1
			continue
		}
		if err := cli.WriteAnalysisResult(os.Stdout, result, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		if comps.Workflow.PendingDraft() == "" {
			continue
		}
		switch {
		case *approve:
			article, err := comps.Workflow.Approve(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Approve failed: %v\n", err)
				exitCode = 1
				continue
			}
			fmt.Printf("Published learned article %s: %s\n\n", article.ID, article.Title)
		case *dismiss:
			if err := comps.Workflow.Dismiss(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "Dismiss failed: %v\n", err)
				exitCode = 1
				continue
			}
			fmt.Printf("Draft dismissed.\n\n")
		default:
			fmt.Println("Draft left unresolved; re-run with --approve or --dismiss to settle it.")
		}
	}
	os.Exit(exitCode)
}

func runLearned() {
	state := mustSessionState()
	if len(state.Learned) == 0 {
		fmt.Println("No learned articles in this session.")
		return
	}
	for _, article := range state.Learned {
		fmt.Printf("[%s] %s (from ticket %s)\n", article.ID, article.Title, article.TicketID)
		fmt.Printf("  %s\n", utils.Truncate(article.Body, 160))
	}
}

func runEvents() {
	state := mustSessionState()
	if len(state.Events) == 0 {
		fmt.Println("No learning events in this session.")
		return
	}
	for _, ev := range state.Events {
		line := fmt.Sprintf("%s  %-15s ticket=%s", ev.Timestamp.Format(time.RFC3339), ev.Kind, ev.TicketID)
		if ev.KBID != "" {
			line += " kb=" + ev.KBID
		}
		if ev.Label != "" {
			line += "  " + ev.Label
		}
		fmt.Println(line)
	}
}

func runLineage() {
	state := mustSessionState()
	if len(state.Lineage) == 0 {
		fmt.Println("No lineage records in this session.")
		return
	}
	for _, rec := range state.Lineage {
		fmt.Printf("%s ← %s %s\n", rec.KBArticleID, rec.SourceType, rec.SourceID)
		fmt.Printf("  evidence: %s\n", rec.EvidenceSnippet)
	}
}

// mustSessionState opens the session store read-only and returns its state.
// Shared by the learned/events/lineage inspection commands.
func mustSessionState() *models.SessionState {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := mustLoad(*configPath)
	defer logger.Sync()

	store, err := session.NewSQLiteStore(cfg.Session.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	state, err := store.Read(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read session state: %v\n", err)
		os.Exit(1)
	}
	return state
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8086", "server URL")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status request failed (is the server running?): %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to decode status: %v\n", err)
		os.Exit(1)
	}
	pretty, _ := json.MarshalIndent(status, "", "  ")
	fmt.Println(string(pretty))
}

// mustLoad loads the config and builds a logger, exiting on failure.
func mustLoad(configPath string) (*config.Config, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

func printUsage() {
	fmt.Println(`Kotae - Support Ticket Resolution Assistant

Usage:
  kotae <command> [flags]

Commands:
  server    Start the HTTP API server
  analyze   Analyze one or more tickets from the command line
  learned   List learned articles published this session
  events    List recorded learning events
  lineage   List knowledge lineage records
  status    Show status of a running server
  version   Show version
  help      Show this help

Run 'kotae <command> -h' for command-specific flags.`)
}
