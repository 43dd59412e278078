package report

import (
	"encoding/json"
	"time"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// Dict returns the scorecard as a JSON-ready tree. Monetary values come
// out as floats and timestamps as ISO-8601 strings, so downstream
// consumers never see library-specific types.
func (f *Formatter) Dict() map[string]interface{} {
	sc := f.scorecard

	findings := make([]map[string]interface{}, 0, len(sc.Findings))
	for _, finding := range sc.Findings {
		var impact interface{}
		if finding.PotentialImpact != nil && !finding.PotentialImpact.IsZero() {
			impact = finding.PotentialImpact.InexactFloat64()
		}
		findings = append(findings, map[string]interface{}{
			"finding_id":       finding.FindingID,
			"category":         string(finding.Category),
			"severity":         string(finding.Severity),
			"rule_name":        finding.RuleName,
			"title":            finding.Title,
			"description":      finding.Description,
			"affected_items":   finding.AffectedItems,
			"potential_impact": impact,
			"recommendation":   finding.Recommendation,
			"evidence":         plainDict(finding.Evidence),
		})
	}

	return map[string]interface{}{
		"claim_id":        sc.ClaimID,
		"audit_timestamp": sc.AuditTimestamp.UTC().Format(time.RFC3339Nano),
		"redacted":        sc.Redacted,
		"summary": map[string]interface{}{
			"total_findings":           sc.Summary.TotalFindings,
			"financial_findings":       sc.Summary.FinancialFindings,
			"leakage_findings":         sc.Summary.LeakageFindings,
			"supplement_risk_findings": sc.Summary.SupplementRiskFindings,
			"total_potential_leakage":  sc.Summary.TotalPotentialLeakage.InexactFloat64(),
			"total_supplement_risk":    sc.Summary.TotalSupplementRisk.InexactFloat64(),
			"risk_score":               sc.Summary.RiskScore,
		},
		"modules_executed": sc.ModulesExecuted,
		"findings":         findings,
		"claim_summary":    plainDict(sc.ClaimSummary),
	}
}

// JSON renders the scorecard as indented JSON.
func (f *Formatter) JSON() (string, error) {
	data, err := json.MarshalIndent(f.Dict(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// plainDict copies a map, flattening Money and time values to JSON
// primitives. Nil maps come back as empty, never null.
func plainDict(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case domain.Money:
		return tv.InexactFloat64()
	case *domain.Money:
		if tv == nil {
			return nil
		}
		return tv.InexactFloat64()
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}
