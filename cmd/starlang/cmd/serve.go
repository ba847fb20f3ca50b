package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bates64/vscode-star-rod/internal/database"
	"github.com/bates64/vscode-star-rod/internal/engine"
	"github.com/bates64/vscode-star-rod/internal/index"
	"github.com/bates64/vscode-star-rod/internal/server"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the websocket language service",
	Long: `Starts the language service: loads the database, watches it for
changes, and serves the websocket protocol for editor tooling.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("cannot load config", err)
		return err
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var idx *index.Index
	if cfg.Index.Enabled {
		idx, err = index.Open(cfg.Index.Path)
		if err != nil {
			logger.WarnWithErr("index unavailable, continuing without it", err)
		} else {
			defer idx.Close()
		}
	}

	eng := engine.New(engine.Config{
		DatabaseDir:  cfg.DatabaseDir(),
		WorkspaceDir: cfg.ModDir,
		Index:        idx,
		Logger:       logger,
	})

	if cfg.Watch.Enabled {
		watcher := database.NewWatcher(eng.Loader(), func(db *database.Database) {
			eng.SetDatabase(ctx, db)
		}, database.WatcherOptions{
			Logger:   logger,
			Debounce: cfg.Watch.Debounce.Duration,
		})
		if err := watcher.Start(ctx); err != nil {
			logger.WarnWithErr("database watcher unavailable", err)
		} else {
			defer watcher.Stop()
		}
	}

	srv := server.New(server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}, eng, logger)
	srv.StartAsync()
	logger.Info("language service listening", log.Fields{"address": srv.Address()})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", log.Fields{"signal": sig.String()})

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}
