package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// severityColors drives the accent color of finding cards.
var severityColors = map[domain.AuditSeverity]string{
	domain.SeverityInfo:     "#17a2b8",
	domain.SeverityWarning:  "#ffc107",
	domain.SeverityError:    "#dc3545",
	domain.SeverityCritical: "#721c24",
}

const htmlHeader = `<div class="audit-scorecard" style="font-family: Arial, sans-serif; max-width: 900px; margin: 0 auto;">
<style>
  .finding-card { border: 1px solid #ddd; border-radius: 4px; margin: 10px 0; padding: 15px; }
  .summary-box { background: #f8f9fa; padding: 20px; border-radius: 4px; margin: 20px 0; }
  .metric { display: inline-block; margin-right: 30px; }
  .metric-value { font-size: 24px; font-weight: bold; }
  .metric-label { color: #666; font-size: 12px; }
</style>`

// HTML renders the scorecard as a self-contained HTML fragment suitable
// for embedding in dashboards or email bodies.
func (f *Formatter) HTML() string {
	sc := f.scorecard
	var b strings.Builder

	b.WriteString(htmlHeader)
	b.WriteString("\n<h1>Claim Integrity Audit Scorecard</h1>\n")
	fmt.Fprintf(&b, "<p><strong>Claim ID:</strong> %s</p>\n", html.EscapeString(sc.ClaimID))
	fmt.Fprintf(&b, "<p><strong>Audit Date:</strong> %s UTC</p>\n",
		sc.AuditTimestamp.UTC().Format("2006-01-02 15:04:05"))
	if sc.Redacted {
		b.WriteString(`<p style="color: #dc3545;"><strong>⚠️ PII REDACTED FOR COMPLIANCE</strong></p>` + "\n")
	}

	s := sc.Summary
	b.WriteString(`<div class="summary-box">` + "\n<h2>Summary</h2>\n")
	fmt.Fprintf(&b, metricCount, s.TotalFindings, "Total Findings")
	fmt.Fprintf(&b, metricMoney, "#dc3545", domain.FormatUSD(s.TotalPotentialLeakage), "Potential Leakage")
	fmt.Fprintf(&b, metricMoney, "#ffc107", domain.FormatUSD(s.TotalSupplementRisk), "Supplement Risk")
	fmt.Fprintf(&b, metricScore, s.RiskScore, "Risk Score (0-100)")
	b.WriteString("</div>\n")

	for _, category := range categoryOrder {
		findings := sc.FindingsByCategory(category)
		if len(findings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "<h2>%s</h2>\n", category.Label())
		for _, finding := range findings {
			color, ok := severityColors[finding.Severity]
			if !ok {
				color = "#666"
			}
			fmt.Fprintf(&b, `<div class="finding-card" style="border-left: 4px solid %s;">`+"\n", color)
			fmt.Fprintf(&b, `<h3 style="margin-top: 0; color: %s;">%s %s</h3>`+"\n",
				color, finding.Severity.Icon(), html.EscapeString(finding.Title))
			fmt.Fprintf(&b, "<p><strong>Rule:</strong> %s</p>\n", html.EscapeString(finding.RuleName))
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(finding.Description))
			if impact := finding.PotentialImpact; impact != nil && !impact.IsZero() {
				fmt.Fprintf(&b, "<p><strong>Potential Impact:</strong> $%s</p>\n", domain.FormatUSD(*impact))
			}
			if finding.Recommendation != "" {
				fmt.Fprintf(&b, "<p><strong>Recommendation:</strong> %s</p>\n", html.EscapeString(finding.Recommendation))
			}
			b.WriteString("</div>\n")
		}
	}

	b.WriteString("</div>")
	return b.String()
}

const (
	metricCount = `<div class="metric">
  <div class="metric-value">%d</div>
  <div class="metric-label">%s</div>
</div>
`
	metricMoney = `<div class="metric">
  <div class="metric-value" style="color: %s;">$%s</div>
  <div class="metric-label">%s</div>
</div>
`
	metricScore = `<div class="metric">
  <div class="metric-value">%.1f</div>
  <div class="metric-label">%s</div>
</div>
`
)
