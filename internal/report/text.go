package report

import (
	"fmt"
	"strings"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// categoryOrder fixes the section order of rendered reports.
var categoryOrder = []domain.AuditCategory{
	domain.CategoryFinancial,
	domain.CategoryLeakage,
	domain.CategorySupplementRisk,
}

const ruleWidth = 70

// Formatter renders one scorecard in the supported output formats.
type Formatter struct {
	scorecard *domain.AuditScorecard
}

// NewFormatter wraps a finished scorecard.
func NewFormatter(sc *domain.AuditScorecard) *Formatter {
	return &Formatter{scorecard: sc}
}

// Text renders the full plain-text report including per-finding detail.
func (f *Formatter) Text() string {
	return f.text(true)
}

// TextSummary renders the header and summary block only.
func (f *Formatter) TextSummary() string {
	return f.text(false)
}

func (f *Formatter) text(includeDetails bool) string {
	sc := f.scorecard
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	var lines []string
	lines = append(lines, heavy, "CLAIM INTEGRITY AUDIT SCORECARD", heavy, "")

	lines = append(lines, "Claim ID: "+sc.ClaimID)
	lines = append(lines, "Audit Date: "+sc.AuditTimestamp.UTC().Format("2006-01-02 15:04:05")+" UTC")
	if sc.Redacted {
		lines = append(lines, "*** PII REDACTED FOR COMPLIANCE ***")
	}
	lines = append(lines, "")

	s := sc.Summary
	lines = append(lines, light, "SUMMARY", light)
	lines = append(lines, fmt.Sprintf("Total Findings: %d", s.TotalFindings))
	lines = append(lines, fmt.Sprintf("  - Financial: %d", s.FinancialFindings))
	lines = append(lines, fmt.Sprintf("  - Leakage: %d", s.LeakageFindings))
	lines = append(lines, fmt.Sprintf("  - Supplement Risk: %d", s.SupplementRiskFindings))
	lines = append(lines, "")
	lines = append(lines, "Potential Leakage Amount: $"+domain.FormatUSD(s.TotalPotentialLeakage))
	lines = append(lines, "Potential Supplement Risk: $"+domain.FormatUSD(s.TotalSupplementRisk))
	lines = append(lines, fmt.Sprintf("Risk Score: %.1f/100", s.RiskScore))
	lines = append(lines, "")

	if len(sc.ModulesExecuted) > 0 {
		lines = append(lines, "Modules Executed: "+strings.Join(sc.ModulesExecuted, ", "), "")
	}

	if includeDetails && len(sc.Findings) > 0 {
		for _, category := range categoryOrder {
			findings := sc.FindingsByCategory(category)
			if len(findings) == 0 {
				continue
			}
			lines = append(lines, light, strings.ToUpper(category.Label()), light)
			for _, finding := range findings {
				lines = append(lines, "")
				lines = append(lines, fmt.Sprintf("%s [%s] %s",
					finding.Severity.Icon(), strings.ToUpper(string(finding.Severity)), finding.Title))
				lines = append(lines, "   Rule: "+finding.RuleName)
				lines = append(lines, "   "+finding.Description)

				if impact := finding.PotentialImpact; impact != nil && !impact.IsZero() {
					lines = append(lines, "   Potential Impact: $"+domain.FormatUSD(*impact))
				}
				if len(finding.AffectedItems) > 0 {
					lines = append(lines, "   Affected Items:")
					shown := finding.AffectedItems
					if len(shown) > 5 {
						shown = shown[:5]
					}
					for _, item := range shown {
						lines = append(lines, "     - "+item)
					}
					if extra := len(finding.AffectedItems) - 5; extra > 0 {
						lines = append(lines, fmt.Sprintf("     ... and %d more", extra))
					}
				}
				if finding.Recommendation != "" {
					lines = append(lines, "   Recommendation: "+finding.Recommendation)
				}
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, heavy, "END OF REPORT", heavy)
	return strings.Join(lines, "\n")
}
