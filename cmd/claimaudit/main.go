package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/claimaudit/claimaudit/internal/config"
	"github.com/claimaudit/claimaudit/internal/engine"
)

const (
	appName = "ClaimAudit"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     "claimaudit",
		Short:   "Property claim audit engine",
		Version: version,
		Long: `ClaimAudit inspects property-insurance claim estimates for billing
leakage, coverage violations, and supplement risk.

Feed it a claim as JSON or a CSV line-item export and it runs the
financial, water remediation, flooring, and general repair rule
modules, then prints a scorecard with findings, potential impacts,
and a normalized risk score.`,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		levelStr, _ := cmd.Flags().GetString("log-level")
		level, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", levelStr, err)
		}
		zerolog.SetGlobalLevel(level)
		return nil
	}

	auditCmd := &cobra.Command{
		Use:   "audit <file>",
		Short: "Audit a claim file and print the scorecard",
		Long:  "Decode a claim from a JSON document or CSV line-item export, run the enabled audit modules, and print the scorecard.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAudit,
	}

	auditCmd.Flags().String("format", "", "Claim file format (json|csv), inferred from the extension when empty")
	auditCmd.Flags().String("output", "text", "Report style (text|json|html)")
	auditCmd.Flags().Bool("redact-pii", false, "Redact PII from the scorecard")
	auditCmd.Flags().String("disable", "", "Comma-separated modules to skip (financial,water,flooring,general)")
	auditCmd.Flags().String("thresholds", "", "Audit thresholds YAML file")
	auditCmd.Flags().String("config", "", "ClaimAudit config YAML file")
	auditCmd.Flags().String("out", "", "Write the report to a file instead of stdout")

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the audit rule catalog",
		Long:  "List every registered audit rule with its id, category, severity, and enabled state.",
		RunE:  runRules,
	}
	rulesCmd.Flags().Bool("json", false, "Emit the catalog as JSON")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the audit HTTP API",
		Long:  "Serve POST /audit, GET /rules, GET /health, and GET /metrics. Binds to localhost unless configured otherwise.",
		RunE:  runServe,
	}
	serveCmd.Flags().String("host", "", "Bind host (overrides config)")
	serveCmd.Flags().Int("port", 0, "Bind port (overrides config)")
	serveCmd.Flags().String("config", "", "ClaimAudit config YAML file")
	serveCmd.Flags().String("thresholds", "", "Audit thresholds YAML file")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadOptions merges the optional config and thresholds files into
// engine options.
func loadOptions(configPath, thresholdsPath string) (engine.Options, error) {
	cfg := config.GetDefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return engine.Options{}, err
		}
		cfg = loaded
	}

	opts := engine.Options{
		EnableFinancial:        cfg.Engine.EnableFinancial,
		EnableWaterRemediation: cfg.Engine.EnableWaterRemediation,
		EnableFlooring:         cfg.Engine.EnableFlooring,
		EnableGeneralRepair:    cfg.Engine.EnableGeneralRepair,
		AutoRedactPII:          cfg.Engine.AutoRedactPII,
	}

	if thresholdsPath != "" {
		thresholds, err := config.LoadThresholds(thresholdsPath)
		if err != nil {
			return engine.Options{}, err
		}
		opts.Thresholds = thresholds
	}

	return opts, nil
}
