// Package engine orchestrates the validator modules over a single claim
// and assembles the resulting audit scorecard. Each engine owns its rule
// registry, classifier caches, and redaction log, so distinct engines may
// audit distinct claims concurrently.
package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/claimaudit/claimaudit/internal/config"
	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/redact"
	"github.com/claimaudit/claimaudit/internal/report"
	"github.com/claimaudit/claimaudit/internal/rules"
	"github.com/claimaudit/claimaudit/internal/validators"
)

// Options selects which validator modules run and whether scorecards are
// redacted by default. Thresholds overrides the numeric audit knobs; nil
// means the built-in defaults.
type Options struct {
	EnableFinancial        bool
	EnableWaterRemediation bool
	EnableFlooring         bool
	EnableGeneralRepair    bool
	AutoRedactPII          bool
	Thresholds             *config.AuditThresholds
}

// DefaultOptions enables every module and leaves auto-redaction off.
func DefaultOptions() Options {
	return Options{
		EnableFinancial:        true,
		EnableWaterRemediation: true,
		EnableFlooring:         true,
		EnableGeneralRepair:    true,
	}
}

// ConfigureOptions updates engine settings in place; nil fields are left
// unchanged.
type ConfigureOptions struct {
	EnableFinancial        *bool
	EnableWaterRemediation *bool
	EnableFlooring         *bool
	EnableGeneralRepair    *bool
	AutoRedactPII          *bool
}

// AuditObserver receives completed audits and guarded rule failures.
// Implementations must be safe for concurrent use from multiple engines;
// a nil observer is ignored.
type AuditObserver interface {
	ObserveAudit(scorecard *domain.AuditScorecard, duration time.Duration)
	ObserveRuleError(ruleID string)
}

// Engine runs the enabled validator modules in a fixed order and collects
// their findings into one scorecard per claim. Not safe for concurrent
// use; use a Pool to serve parallel audits.
type Engine struct {
	opts      Options
	registry  *rules.Registry
	financial *validators.FinancialValidator
	water     *validators.WaterRemediationValidator
	flooring  *validators.FlooringValidator
	general   *validators.GeneralRepairValidator
	redactor  *redact.Redactor
	observer  AuditObserver
}

// New builds an engine with its own registry and validators.
func New(opts Options) *Engine {
	thresholds := opts.Thresholds
	if thresholds == nil {
		thresholds = config.GetDefaultThresholds()
	}
	registry := rules.NewRegistry()
	return &Engine{
		opts:      opts,
		registry:  registry,
		financial: validators.NewFinancialValidator(registry),
		water:     validators.NewWaterRemediationValidator(registry, thresholds),
		flooring:  validators.NewFlooringValidator(registry, thresholds),
		general:   validators.NewGeneralRepairValidator(registry, thresholds),
		redactor:  redact.NewRedactor(),
	}
}

// NewDefault builds an engine with every module enabled.
func NewDefault() *Engine {
	return New(DefaultOptions())
}

type phase struct {
	enabled  bool
	name     string
	validate func(*domain.ClaimData) []domain.AuditFinding
}

// phases returns the module execution order: financial, water
// remediation, flooring, general repair.
func (e *Engine) phases() []phase {
	return []phase{
		{e.opts.EnableFinancial, e.financial.Name(), e.financial.Validate},
		{e.opts.EnableWaterRemediation, e.water.Name(), e.water.Validate},
		{e.opts.EnableFlooring, e.flooring.Name(), e.flooring.Validate},
		{e.opts.EnableGeneralRepair, e.general.Name(), e.general.Validate},
	}
}

// Audit runs every enabled module against the claim and returns the
// scorecard, redacted when the engine was built with AutoRedactPII.
func (e *Engine) Audit(claim *domain.ClaimData) *domain.AuditScorecard {
	return e.audit(claim, e.opts.AutoRedactPII)
}

// AuditWithRedact runs an audit with an explicit redaction choice,
// overriding the engine default.
func (e *Engine) AuditWithRedact(claim *domain.ClaimData, redactPII bool) *domain.AuditScorecard {
	return e.audit(claim, redactPII)
}

func (e *Engine) audit(claim *domain.ClaimData, redactPII bool) *domain.AuditScorecard {
	start := time.Now()
	builder := report.NewBuilder(claim)
	var all []domain.AuditFinding

	for _, p := range e.phases() {
		if !p.enabled {
			continue
		}
		findings := p.validate(claim)
		all = append(all, findings...)
		builder.AddModule(p.name)
		log.Debug().
			Str("claim_id", claim.ClaimID).
			Str("module", p.name).
			Int("findings", len(findings)).
			Msg("module executed")
	}

	scorecard := builder.AddFindings(all).Build()
	if redactPII {
		scorecard = e.redactor.RedactScorecard(scorecard)
	}

	duration := time.Since(start)
	log.Info().
		Str("claim_id", scorecard.ClaimID).
		Int("findings", scorecard.Summary.TotalFindings).
		Float64("risk_score", scorecard.Summary.RiskScore).
		Bool("redacted", scorecard.Redacted).
		Dur("duration", duration).
		Msg("audit completed")

	if e.observer != nil {
		e.observer.ObserveAudit(scorecard, duration)
	}
	return scorecard
}

// AuditFormatted runs Audit and wraps the scorecard in a report formatter.
func (e *Engine) AuditFormatted(claim *domain.ClaimData) *report.Formatter {
	return report.NewFormatter(e.Audit(claim))
}

// EnabledModules lists the enabled module names in execution order.
func (e *Engine) EnabledModules() []string {
	out := make([]string, 0, 4)
	for _, p := range e.phases() {
		if p.enabled {
			out = append(out, p.name)
		}
	}
	return out
}

// Configure applies the non-nil settings and returns the engine for
// chaining.
func (e *Engine) Configure(opts ConfigureOptions) *Engine {
	if opts.EnableFinancial != nil {
		e.opts.EnableFinancial = *opts.EnableFinancial
	}
	if opts.EnableWaterRemediation != nil {
		e.opts.EnableWaterRemediation = *opts.EnableWaterRemediation
	}
	if opts.EnableFlooring != nil {
		e.opts.EnableFlooring = *opts.EnableFlooring
	}
	if opts.EnableGeneralRepair != nil {
		e.opts.EnableGeneralRepair = *opts.EnableGeneralRepair
	}
	if opts.AutoRedactPII != nil {
		e.opts.AutoRedactPII = *opts.AutoRedactPII
	}
	return e
}

// Rules returns the engine's rule catalog in registration order.
func (e *Engine) Rules() []rules.RuleInfo {
	return e.registry.ListRules()
}

// Redactor exposes the engine's redactor for custom patterns and log
// inspection.
func (e *Engine) Redactor() *redact.Redactor {
	return e.redactor
}

// SetObserver installs obs for audit and rule-error reporting; nil
// removes the current observer.
func (e *Engine) SetObserver(obs AuditObserver) {
	e.observer = obs
	if obs == nil {
		e.registry.SetErrorHook(nil)
		return
	}
	e.registry.SetErrorHook(func(ruleID string, _ error) {
		obs.ObserveRuleError(ruleID)
	})
}

// AuditClaim is a one-shot convenience: build a default engine, audit the
// claim, return the scorecard.
func AuditClaim(claim *domain.ClaimData, redactPII bool) *domain.AuditScorecard {
	opts := DefaultOptions()
	opts.AutoRedactPII = redactPII
	return New(opts).Audit(claim)
}
