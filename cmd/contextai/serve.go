package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/analysis"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/mirror"
	"github.com/Mahaboob-Ashraf/ContextAI/internal/web"
)

var (
	serveAddr    string
	serveVerbose bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analysis API server",
	Long: `Start the ContextAI backend for one service.

Examples:
  contextai serve
  CONTEXTAI_SERVICE=whatsapp contextai serve --addr :3002`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "server address (overrides CONTEXTAI_ADDR)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := LoadConfig()
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	logCfg := zap.NewProductionConfig()
	if serveVerbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	mirrorStore, err := mirror.New(cfg.MirrorDBPath)
	if err != nil {
		return fmt.Errorf("failed to open mirror store: %w", err)
	}
	defer mirrorStore.Close()

	engine, err := analysis.NewEngine(cfg.ToEngineConfig(), mirrorStore, log)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	log.Info("starting server",
		zap.String("service", cfg.Service),
		zap.String("addr", cfg.Addr),
		zap.String("data_dir", cfg.DataDir))

	server := web.NewServer(engine, mirrorStore, log)
	return server.Run(cfg.Addr)
}
