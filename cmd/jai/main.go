// Package main is the jai CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/legalbot/jai/internal/auth"
	"github.com/legalbot/jai/internal/chat"
	"github.com/legalbot/jai/internal/cli"
	"github.com/legalbot/jai/internal/config"
	"github.com/legalbot/jai/internal/embedding"
	"github.com/legalbot/jai/internal/ingest"
	"github.com/legalbot/jai/internal/models"
	"github.com/legalbot/jai/internal/retrieval"
	"github.com/legalbot/jai/internal/server"
	"github.com/legalbot/jai/internal/storage"
	"github.com/legalbot/jai/internal/tui"
	"github.com/legalbot/jai/internal/watcher"
	"github.com/legalbot/jai/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/jai/config.yaml"

// loadConfig reads the config at path and reports which file was actually
// used. While path is still the built-in default, a config.yaml in the
// current directory takes precedence, so running from a checkout picks up
// the project's own config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				cfg, err := config.Load(local)
				if err != nil {
					return nil, "", err
				}
				return cfg, local, nil
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
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "chat":
		runChat()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "register":
		runRegister()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("jai version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (file ingestion, watch events, etc.)")
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

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	for _, dir := range cfg.Watch.Directories {
		n, ingErr := components.Ingestor.IngestDirectory(ctx, dir, cfg.Watch.Extensions)
		if ingErr != nil {
			logger.Warn("initial ingest failed", zap.String("directory", dir), zap.Error(ingErr))
			continue
		}
		logger.Info("directory ingested", zap.String("directory", dir), zap.Int("answers", n))
	}

	if err := components.Engine.Load(ctx); err != nil {
		if errors.Is(err, retrieval.ErrEmptyCorpus) {
			logger.Fatal("answer store is empty; run \"jai ingest\" or configure watch directories first")
		}
		logger.Fatal("Failed to load answer corpus", zap.Error(err))
	}
	logger.Info("corpus loaded",
		zap.Int("answers", components.Engine.Size()),
		zap.Int("dimensions", components.Engine.Dimensions()),
	)

	ing := components.Ingestor
	exts := cfg.Watch.Extensions
	watchOpts := []watcher.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, watcher.WithLogger(logger))
	}
	watchSvc := watcher.NewWatcher(
		cfg.Watch.Directories,
		exts,
		func(path string) {
			if _, err := ing.IngestFile(context.Background(), path, exts); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				return
			}
			if err := components.Engine.Reload(context.Background()); err != nil {
				logger.Warn("corpus reload failed", zap.Error(err))
			}
		},
		func(path string) {
			abs, absErr := filepath.Abs(path)
			if absErr != nil {
				abs = path
			}
			if _, err := components.Store.DeleteAnswersBySource(context.Background(), abs); err != nil {
				logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
				return
			}
			if err := components.Engine.Reload(context.Background()); err != nil {
				logger.Warn("corpus reload failed", zap.Error(err))
			}
		},
		watchOpts...,
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Engine,
		components.Auth,
		components.Tokens,
		components.Chat,
		components.Store,
		cfg,
		logger,
		version,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(shutdownCtx)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	if err := components.Engine.Load(context.Background()); err != nil {
		if errors.Is(err, retrieval.ErrEmptyCorpus) {
			fmt.Println("The answer store is empty. Run \"jai ingest <file-or-directory>\" first.")
			os.Exit(1)
		}
		fmt.Printf("Failed to load answer corpus: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(tui.New(components.Auth, components.Engine, components.Chat), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Chat failed: %v\n", err)
		os.Exit(1)
	}
}

// printAskUsage prints ask subcommand usage.
func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: jai ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "The question is all remaining arguments joined by spaces, so multi-word questions work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  jai ask how long is the probation period
  jai ask "how long is the probation period"      # same as above
  jai ask --output json what is the notice period
  jai ask --server "" what is the notice period   # direct storage, no server needed
`)
}

// askArgsReorder moves any flags (and their values) that appear after the question
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "jai ask what is a lease -output json"
// would otherwise leave -output unparsed.
func askArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
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

// questionFromArgs joins the positional arguments into one question string.
func questionFromArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	username := fs.String("username", os.Getenv("JAI_USERNAME"), "username for server login (default: $JAI_USERNAME)")
	password := fs.String("password", os.Getenv("JAI_PASSWORD"), "password for server login (default: $JAI_PASSWORD)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(askArgs)

	if fs.NArg() < 1 {
		printAskUsage(fs)
		os.Exit(1)
	}
	question := questionFromArgs(fs.Args())
	if question == "" {
		printAskUsage(fs)
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

	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids SQLite lock conflict).
		response, err := askViaHTTP(*serverURL, *username, *password, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if response == nil {
			cli.WriteNoAnswer(os.Stdout, question)
			return
		}
		if err := cli.WriteAskResult(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if err := components.Engine.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load answer corpus: %v\n", err)
		os.Exit(1)
	}
	match, err := components.Engine.Answer(ctx, question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if match == nil {
		cli.WriteNoAnswer(os.Stdout, question)
		return
	}
	response := &models.AskResponse{
		Question:        question,
		Answer:          match.Record.Answer,
		MatchedQuestion: match.Record.Question,
		Score:           match.Score,
	}
	if err := cli.WriteAskResult(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// askViaHTTP logs in and asks a single question over the HTTP API. A nil
// response with nil error means the server found no confident answer.
func askViaHTTP(serverURL, username, password, question string) (*models.AskResponse, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required (use --username/--password or JAI_USERNAME/JAI_PASSWORD)")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	body, err := json.Marshal(models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	resp, err := client.Post(serverURL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("login failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	resp.Body.Close()

	body, err = json.Marshal(models.AskRequest{Question: question})
	if err != nil {
		return nil, err
	}
	resp, err = client.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		var response models.AskResponse
		if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return &response, nil
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	default:
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: jai ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
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

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		exts := cfg.Watch.Extensions
		if exts == nil {
			exts = []string{".yaml", ".yml", ".json", ".csv", ".xlsx"}
		}
		n, err := components.Ingestor.IngestDirectory(ctx, path, exts)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d QA pair(s) from %s\n", n, path)
		return
	}
	// Single file: no extension filter
	n, err := components.Ingestor.IngestFile(ctx, path, nil)
	if err != nil {
		fmt.Printf("Ingesting failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d QA pair(s) from %s\n", n, path)
}

func runRegister() {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	username := fs.String("username", "", "username for the new account")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	_ = fs.Parse(os.Args[2:])

	if *username == "" || *password == "" {
		fmt.Println("Usage: jai register --username <username> --password <password> [--name <name>] [--email <email>]")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	user, err := components.Auth.Register(context.Background(), *username, *name, *email, *password)
	if err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("User registered: %s\n", user.Username)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	var status *models.StatusResponse
	if *serverURL != "" {
		s, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = s
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		ctx := context.Background()
		answers, err := components.Store.CountAnswers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count answers failed: %v\n", err)
			os.Exit(1)
		}
		users, err := components.Store.CountUsers(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count users failed: %v\n", err)
			os.Exit(1)
		}
		status = &models.StatusResponse{
			Status:     "ok",
			Version:    version,
			Answers:    int(answers),
			Users:      int(users),
			Dimensions: components.Embedder.Dimensions(),
			Provider:   cfg.Embedding.Provider,
		}
		if diskBytes, diskErr := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Embedding.ModelPath); diskErr == nil {
			status.DiskUsageBytes = diskBytes
		}
	}

	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*models.StatusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Store    storage.Store
	Embedder embedding.Embedder
	Engine   *retrieval.Engine
	Auth     *auth.Service
	Tokens   *auth.TokenIssuer
	Chat     chat.Store
	Ingestor *ingest.Ingestor
}

func (c *Components) Close() {
	if c.Chat != nil {
		_ = c.Chat.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		// Fall back to mock embeddings if the configured provider fails
		// (e.g., ONNX model not available).
		if logger != nil {
			logger.Warn("embedding provider unavailable, using mock embeddings",
				zap.String("provider", cfg.Embedding.Provider),
				zap.Error(err))
		}
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	}

	engine := retrieval.NewEngine(store, embedder, &cfg.Retrieval)
	authService := auth.NewService(store)
	tokens := auth.NewTokenIssuer(&cfg.Auth)

	chatStore, err := chat.New(cfg.Chat, tokens.Expiry())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat store: %w", err)
	}

	ingOpts := []ingest.IngestorOption{}
	if debug && logger != nil {
		ingOpts = append(ingOpts, ingest.WithLogger(logger))
	}
	ing := ingest.NewIngestor(store, embedder, ingOpts...)

	return &Components{
		Store:    store,
		Embedder: embedder,
		Engine:   engine,
		Auth:     authService,
		Tokens:   tokens,
		Chat:     chatStore,
		Ingestor: ing,
	}, nil
}

func printUsage() {
	fmt.Println(`jai - Legal QA chat assistant with semantic retrieval

Usage:
  jai server [flags]              Start the HTTP server
  jai chat [flags]                Interactive chat in the terminal
  jai ask [flags] <question>      Ask a single question
  jai ingest [flags] <path>       Ingest a QA file or directory
  jai register [flags]            Register a user account
  jai status [flags]              Show store/corpus status
  jai version                     Show version
  jai help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/jai/config.yaml)
  --debug            Enable debug logging (file ingestion, watch events, etc.)

Chat Flags:
  --config string    Config file path

Ask Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage when the server is not running.
  --username string  Username for server login (default: $JAI_USERNAME)
  --password string  Password for server login (default: $JAI_PASSWORD)
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path
  --debug            Enable debug logging

Register Flags:
  --config string    Config file path
  --username string  Username for the new account
  --name string      Display name
  --email string     Email address
  --password string  Password

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  jai server
  jai chat
  jai ask how long is the probation period
  jai ask --output json "what is the notice period"
  jai ask --server "" what severance pay am I owed
  jai ingest ./data/labor-law.yaml
  jai ingest ./data
  jai register --username maria --name "Maria Silva" --password secret
  jai status
  jai status --output json`)
}
