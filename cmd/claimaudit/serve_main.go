package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/claimaudit/claimaudit/internal/config"
	httpapi "github.com/claimaudit/claimaudit/internal/interfaces/http"
)

// runServe starts the audit HTTP API and blocks until interrupted.
func runServe(cmd *cobra.Command, args []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	configPath, _ := cmd.Flags().GetString("config")
	thresholdsPath, _ := cmd.Flags().GetString("thresholds")

	cfg := config.GetDefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	serverCfg := httpapi.DefaultServerConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = time.Duration(cfg.Server.ReadTimeoutSec) * time.Second
	serverCfg.WriteTimeout = time.Duration(cfg.Server.WriteTimeoutSec) * time.Second
	serverCfg.IdleTimeout = time.Duration(cfg.Server.IdleTimeoutSec) * time.Second
	serverCfg.RequestTimeout = time.Duration(cfg.Server.RequestTimeout) * time.Second
	serverCfg.RateLimitRPS = cfg.Server.RateLimitRPS
	serverCfg.RateLimitBurst = cfg.Server.RateLimitBurst
	serverCfg.MaxBodyBytes = cfg.Server.MaxBodyBytes
	serverCfg.Version = version
	if host != "" {
		serverCfg.Host = host
	}
	if port != 0 {
		serverCfg.Port = port
	}

	opts, err := loadOptions(configPath, thresholdsPath)
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(serverCfg, opts)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		addr := server.GetAddress()
		log.Info().
			Str("audit", fmt.Sprintf("http://%s/audit", addr)).
			Str("rules", fmt.Sprintf("http://%s/rules", addr)).
			Str("health", fmt.Sprintf("http://%s/health", addr)).
			Str("metrics", fmt.Sprintf("http://%s/metrics", addr)).
			Msg("Audit API endpoints available")

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
		return err
	}

	log.Info().Msg("Audit API shutdown complete")
	return nil
}
