package domain

import "time"

// AuditSummary aggregates finding counts and dollar exposure for a scorecard.
type AuditSummary struct {
	TotalFindings          int     `json:"total_findings"`
	FinancialFindings      int     `json:"financial_findings"`
	LeakageFindings        int     `json:"leakage_findings"`
	SupplementRiskFindings int     `json:"supplement_risk_findings"`
	TotalPotentialLeakage  Money   `json:"total_potential_leakage"`
	TotalSupplementRisk    Money   `json:"total_supplement_risk"`
	RiskScore              float64 `json:"risk_score"`
}

// AuditScorecard is the complete result of auditing one claim.
type AuditScorecard struct {
	ClaimID         string                 `json:"claim_id"`
	AuditTimestamp  time.Time              `json:"audit_timestamp"`
	ClaimSummary    map[string]interface{} `json:"claim_summary"`
	Findings        []AuditFinding         `json:"findings"`
	Summary         AuditSummary           `json:"summary"`
	ModulesExecuted []string               `json:"modules_executed"`
	Redacted        bool                   `json:"redacted"`
}

// AddFinding appends a finding and keeps the summary counters and impact
// totals in sync. Impact accumulates only for leakage and supplement risk;
// financial findings are advisory and carry no dollar exposure.
func (sc *AuditScorecard) AddFinding(f AuditFinding) {
	sc.Findings = append(sc.Findings, f)
	sc.Summary.TotalFindings++

	switch f.Category {
	case CategoryFinancial:
		sc.Summary.FinancialFindings++
	case CategoryLeakage:
		sc.Summary.LeakageFindings++
		if f.PotentialImpact != nil {
			sc.Summary.TotalPotentialLeakage = sc.Summary.TotalPotentialLeakage.Add(*f.PotentialImpact)
		}
	case CategorySupplementRisk:
		sc.Summary.SupplementRiskFindings++
		if f.PotentialImpact != nil {
			sc.Summary.TotalSupplementRisk = sc.Summary.TotalSupplementRisk.Add(*f.PotentialImpact)
		}
	}
}

// AddFindings appends findings in order.
func (sc *AuditScorecard) AddFindings(findings []AuditFinding) {
	for _, f := range findings {
		sc.AddFinding(f)
	}
}

// CalculateRiskScore sums severity weights across findings, capped at 100,
// and stores the result on the summary. A clean scorecard scores zero.
func (sc *AuditScorecard) CalculateRiskScore() float64 {
	score := 0.0
	for _, f := range sc.Findings {
		score += f.Severity.RiskWeight()
	}
	if score > 100 {
		score = 100
	}
	sc.Summary.RiskScore = score
	return score
}

// FindingsByCategory returns findings of one category in insertion order.
func (sc *AuditScorecard) FindingsByCategory(c AuditCategory) []AuditFinding {
	var out []AuditFinding
	for _, f := range sc.Findings {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}
