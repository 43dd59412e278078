package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claimaudit/claimaudit/internal/decode"
	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/engine"
	"github.com/claimaudit/claimaudit/internal/report"
)

// runAudit decodes the claim file, runs one engine over it, and writes
// the requested report.
func runAudit(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	disable, _ := cmd.Flags().GetString("disable")
	thresholdsPath, _ := cmd.Flags().GetString("thresholds")
	configPath, _ := cmd.Flags().GetString("config")
	outPath, _ := cmd.Flags().GetString("out")

	claim, err := decodeClaimFile(path, format)
	if err != nil {
		return err
	}

	opts, err := loadOptions(configPath, thresholdsPath)
	if err != nil {
		return err
	}
	if err := applyDisabledModules(&opts, disable); err != nil {
		return err
	}

	eng := engine.New(opts)

	var scorecard *domain.AuditScorecard
	if cmd.Flags().Changed("redact-pii") {
		redactPII, _ := cmd.Flags().GetBool("redact-pii")
		scorecard = eng.AuditWithRedact(claim, redactPII)
	} else {
		scorecard = eng.Audit(claim)
	}

	formatter := report.NewFormatter(scorecard)
	var rendered string
	switch output {
	case "text":
		rendered = formatter.Text()
	case "json":
		rendered, err = formatter.JSON()
		if err != nil {
			return fmt.Errorf("encode scorecard: %w", err)
		}
	case "html":
		rendered = formatter.HTML()
	default:
		return fmt.Errorf("unknown output style %q (want text, json, or html)", output)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(rendered), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Printf("✅ Audit complete: %d findings, risk score %.1f/100, report written to %s\n",
			scorecard.Summary.TotalFindings, scorecard.Summary.RiskScore, outPath)
		return nil
	}

	fmt.Println(rendered)
	return nil
}

// decodeClaimFile picks the decoder by explicit format or extension.
func decodeClaimFile(path, format string) (*domain.ClaimData, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json":
			format = "json"
		case ".csv":
			format = "csv"
		default:
			return nil, fmt.Errorf("cannot infer claim format from %q, pass --format json|csv", path)
		}
	}

	switch format {
	case "json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read claim file: %w", err)
		}
		return decode.ClaimFromJSON(data)
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open claim file: %w", err)
		}
		defer f.Close()
		return decode.ClaimFromCSV(f)
	default:
		return nil, fmt.Errorf("unknown claim format %q (want json or csv)", format)
	}
}

// applyDisabledModules turns off the modules named in the comma list.
func applyDisabledModules(opts *engine.Options, disable string) error {
	if disable == "" {
		return nil
	}
	for _, name := range strings.Split(disable, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "financial":
			opts.EnableFinancial = false
		case "water":
			opts.EnableWaterRemediation = false
		case "flooring":
			opts.EnableFlooring = false
		case "general":
			opts.EnableGeneralRepair = false
		case "":
		default:
			return fmt.Errorf("unknown module %q (want financial, water, flooring, or general)", name)
		}
	}
	return nil
}
