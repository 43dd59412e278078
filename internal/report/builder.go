// Package report assembles audit scorecards and renders them as text,
// JSON, or HTML.
package report

import (
	"time"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// Builder accumulates findings and executed-module names for one claim
// and produces the final scorecard. Methods chain.
type Builder struct {
	scorecard *domain.AuditScorecard
}

// NewBuilder starts a scorecard for the given claim, capturing the claim
// summary fields reports show alongside findings.
func NewBuilder(claim *domain.ClaimData) *Builder {
	var gross, net interface{}
	if claim.GrossClaim != nil {
		gross = claim.GrossClaim.String()
	}
	if claim.NetClaim != nil {
		net = claim.NetClaim.String()
	}
	return &Builder{scorecard: &domain.AuditScorecard{
		ClaimID:        claim.ClaimID,
		AuditTimestamp: time.Now().UTC(),
		ClaimSummary: map[string]interface{}{
			"gross_claim":     gross,
			"net_claim":       net,
			"line_item_count": len(claim.LineItems),
			"deductible":      claim.Policy.Deductible.String(),
		},
	}}
}

// AddFinding records one finding.
func (b *Builder) AddFinding(f domain.AuditFinding) *Builder {
	b.scorecard.AddFinding(f)
	return b
}

// AddFindings records findings in order.
func (b *Builder) AddFindings(findings []domain.AuditFinding) *Builder {
	b.scorecard.AddFindings(findings)
	return b
}

// AddModule records that a module ran. Duplicate names collapse.
func (b *Builder) AddModule(name string) *Builder {
	for _, m := range b.scorecard.ModulesExecuted {
		if m == name {
			return b
		}
	}
	b.scorecard.ModulesExecuted = append(b.scorecard.ModulesExecuted, name)
	return b
}

// Build finalizes the risk score and returns the scorecard.
func (b *Builder) Build() *domain.AuditScorecard {
	b.scorecard.CalculateRiskScore()
	return b.scorecard
}

// Formatter builds the scorecard and returns a formatter over it.
func (b *Builder) Formatter() *Formatter {
	return NewFormatter(b.Build())
}
