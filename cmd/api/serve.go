package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"thinkclear-backend/internal/ai"
	"thinkclear-backend/internal/config"
	"thinkclear-backend/internal/contract"
	"thinkclear-backend/internal/db"
	"thinkclear-backend/internal/logging"
	"thinkclear-backend/internal/sanitize"
	"thinkclear-backend/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema for the configured SQL backend",
	RunE:  runMigrate,
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := ai.NewCompleter(ctx, ai.Settings{
		Provider:      cfg.LLM.Provider,
		OpenAIKey:     cfg.LLM.OpenAIKey,
		OpenAIModel:   cfg.LLM.OpenAIModel,
		OpenAIBaseURL: cfg.LLM.OpenAIBaseURL,
		GeminiKey:     cfg.LLM.GeminiKey,
		GeminiModel:   cfg.LLM.GeminiModel,
		Timeout:       cfg.LLM.Timeout,
	})
	if err != nil {
		return err
	}
	log.Info("llm provider", zap.String("provider", cfg.LLM.Provider))

	st, err := server.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	table := contract.NewTable(contract.Options{PushAllowClarify: cfg.Policy.PushAllowClarify})

	h := server.NewHandler(server.Deps{
		Config:    cfg,
		Log:       log,
		AI:        completer,
		Sanitizer: sanitize.New(table),
		Storage:   st,
	})

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return err
	}
	return server.Run(ctx, ln, h, log)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	driver, dsn := cfg.DSN()
	if driver == "" {
		return errors.New("memory storage has no schema to migrate")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, err := db.Connect(ctx, driver, dsn)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✅ %s schema is up to date\n", driver)
	return nil
}
