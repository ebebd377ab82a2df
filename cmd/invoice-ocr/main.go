package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/jumma/invoice-ocr/internal/invoice"
	"github.com/jumma/invoice-ocr/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// Optional .env file for local development
	godotenv.Load()

	fs := ff.NewFlagSet("invoice-ocr")
	var (
		port          = fs.IntLong("port", 5000, "HTTP server port")
		dbPath        = fs.StringLong("db", "invoices.db", "Database file path")
		storagePath   = fs.StringLong("storage", "./uploads", "Storage directory for uploaded images")
		scannerType   = fs.StringLong("scanner", "together", "Scanner type: 'together', 'gemini' or 'ollama'")
		togetherKey   = fs.StringLong("together-key", "", "Together AI API key (or set TOGETHER_API_KEY env var)")
		togetherURL   = fs.StringLong("together-url", "", "Together AI base URL (defaults to the public endpoint)")
		togetherModel = fs.StringLong("together-model", "", "Together AI vision model name")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL     = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_OCR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	slog.Info("Initializing database...")
	db, err := invoice.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var scanner scanning.Scanner
	switch *scannerType {
	case "together":
		apiKey := *togetherKey
		if apiKey == "" {
			apiKey = os.Getenv("TOGETHER_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Together API key is required. Set --together-key flag or TOGETHER_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Together scanner...", "model", *togetherModel)
		scanner, err = scanning.NewTogether(apiKey, *togetherURL, *togetherModel)
		if err != nil {
			slog.Error("Failed to initialize Together", "error", err)
			os.Exit(1)
		}
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini scanner...", "model", *geminiModel)
		scanner, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", *ollamaURL, "model", *ollamaModel)
		scanner, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid scanner type", "type", *scannerType, "valid", "together, gemini or ollama")
		os.Exit(1)
	}
	defer scanner.Close()

	slog.Info("Initializing storage...")
	store, err := invoice.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	invoiceService := invoice.NewService(db, scanner, store)

	basicAuth := invoice.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := invoice.NewServer(invoiceService, basicAuth)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
