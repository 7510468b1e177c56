package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ohadbarr1/dobby/internal/api"
	"github.com/ohadbarr1/dobby/internal/bot"
	"github.com/ohadbarr1/dobby/internal/briefing"
	"github.com/ohadbarr1/dobby/internal/classifier"
	"github.com/ohadbarr1/dobby/internal/conversation"
	"github.com/ohadbarr1/dobby/internal/dispatch"
	"github.com/ohadbarr1/dobby/internal/flow"
	"github.com/ohadbarr1/dobby/internal/genai"
	"github.com/ohadbarr1/dobby/internal/guard"
	"github.com/ohadbarr1/dobby/internal/lockfile"
	"github.com/ohadbarr1/dobby/internal/messaging"
	"github.com/ohadbarr1/dobby/internal/scheduler"
	"github.com/ohadbarr1/dobby/internal/store"
	"github.com/ohadbarr1/dobby/internal/timeparse"
	"github.com/ohadbarr1/dobby/internal/twiliowhatsapp"
	"github.com/ohadbarr1/dobby/internal/util"
	"github.com/ohadbarr1/dobby/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Dobby state data
	DefaultStateDir = "/var/lib/dobby"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "dobby.db"
	// DefaultWhatsAppDBFileName is the default whatsmeow session database filename
	DefaultWhatsAppDBFileName = "whatsmeow.db"
	// TwilioWebhookPattern is where inbound Twilio messages are served
	TwilioWebhookPattern = "POST /webhook/twilio"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	slog.Info("Bootstrapping Dobby with configured modules")
	if err := run(flags); err != nil {
		slog.Error("Dobby failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Dobby exited successfully")
}

// Config holds environment configuration
type Config struct {
	StateDir    string
	DatabaseURL string
	WhatsAppDSN string
	OpenAIKey   string
	APIAddr     string
	APIToken    string
	Transport   string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput  *string
	numeric   *bool
	stateDir  *string
	dbDSN     *string
	waDSN     *string
	openaiKey *string
	apiAddr   *string
	apiToken  *string
	transport *string
}

// initializeLogger sets up structured logging
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:    util.ParseStringEnv("DOBBY_STATE_DIR", DefaultStateDir),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		WhatsAppDSN: os.Getenv("WHATSAPP_DB_DSN"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		APIAddr:     os.Getenv("API_ADDR"),
		APIToken:    os.Getenv("API_TOKEN"),
		Transport:   util.ParseStringEnv("TRANSPORT", "whatsapp"),
	}

	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No DATABASE_URL provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	if config.WhatsAppDSN == "" {
		config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultWhatsAppDBFileName)
		slog.Debug("No WHATSAPP_DB_DSN provided, defaulting to SQLite", "sqlite_path", config.WhatsAppDSN)
	}

	slog.Debug("environment variables loaded",
		"DOBBY_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"API_TOKEN_SET", config.APIToken != "",
		"TRANSPORT", config.Transport)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:  flag.String("qr-output", "", "path to write login QR code"),
		numeric:   flag.Bool("numeric-code", util.ParseBoolEnv("NUMERIC_CODE", false), "use numeric login code instead of QR code (overrides $NUMERIC_CODE)"),
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for Dobby data (overrides $DOBBY_STATE_DIR)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "database DSN for the Dobby store (overrides $DATABASE_URL)"),
		waDSN:     flag.String("wa-db-dsn", config.WhatsAppDSN, "database DSN for the whatsmeow session store (overrides $WHATSAPP_DB_DSN)"),
		openaiKey: flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "admin API server address (overrides $API_ADDR)"),
		apiToken:  flag.String("api-token", config.APIToken, "admin API bearer token (overrides $API_TOKEN)"),
		transport: flag.String("transport", config.Transport, "chat transport: whatsapp or twilio (overrides $TRANSPORT)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"waDSN_set", *flags.waDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"transport", *flags.transport)

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	for _, dsn := range []string{*flags.dbDSN, *flags.waDSN} {
		if store.DetectDSNType(dsn) == "postgres" {
			continue
		}
		dir := filepath.Dir(strings.TrimPrefix(dsn, "file:"))
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", dir)
			return err
		}
	}
	return nil
}

// buildStore opens the Dobby store, auto-detecting the driver from the DSN.
func buildStore(flags Flags) (store.Store, error) {
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(*flags.dbDSN))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
	return store.NewSQLiteStore(store.WithSQLiteDSN(*flags.dbDSN))
}

// buildMessagingService constructs the configured chat transport. For the
// Twilio transport it also returns the inbound webhook handler, which must
// be mounted on an HTTP server for messages to arrive at all.
func buildMessagingService(flags Flags) (messaging.Service, http.HandlerFunc, error) {
	if *flags.transport == "twilio" {
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, nil, err
		}
		svc := messaging.NewTwilioService(client)
		return svc, svc.TwilioWebhookHandler, nil
	}

	var waOpts []whatsapp.Option
	waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDSN))
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	client, err := whatsapp.NewClient(waOpts...)
	if err != nil {
		return nil, nil, err
	}
	return messaging.NewWhatsAppService(client), nil, nil
}

func run(flags Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The WhatsApp session database cannot be shared between processes.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	st, err := buildStore(flags)
	if err != nil {
		return err
	}
	defer st.Close()

	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	genaiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return err
	}

	msgService, webhook, err := buildMessagingService(flags)
	if err != nil {
		return err
	}
	if webhook != nil && *flags.apiAddr == "" {
		return fmt.Errorf("the %s transport receives messages via webhook and requires -api-addr", *flags.transport)
	}

	conv := conversation.NewStore()
	cls := classifier.New(genaiClient, conv)
	flows := flow.NewEngine(flow.NewStore(), timeparse.NewParser(genaiClient))
	dispatcher := dispatch.NewDispatcher(st)
	resolver := bot.NewResolver(flows, cls, dispatcher, st)

	sched := scheduler.NewScheduler()
	service := bot.NewService(msgService, st, resolver, briefing.NewBuilder(st), sched, guard.NewLoopGuard())
	if err := service.Start(ctx); err != nil {
		return err
	}
	defer service.Stop()

	var apiServer *api.Server
	if *flags.apiAddr != "" {
		var apiOpts []api.Option
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
		if *flags.apiToken != "" {
			apiOpts = append(apiOpts, api.WithToken(*flags.apiToken))
		}
		if webhook != nil {
			apiOpts = append(apiOpts, api.WithWebhook(TwilioWebhookPattern, webhook))
		}
		apiServer = api.NewServer(st, apiOpts...)
		if err := apiServer.Start(); err != nil {
			return err
		}
	}

	<-ctx.Done()
	slog.Info("Shutdown signal received")

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			slog.Error("Admin API shutdown failed", "error", err)
		}
	}
	return nil
}
