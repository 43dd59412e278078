package domain

import "fmt"

// AuditCategory classifies what kind of exposure a finding represents.
type AuditCategory string

const (
	CategoryFinancial      AuditCategory = "financial"
	CategoryLeakage        AuditCategory = "leakage"
	CategorySupplementRisk AuditCategory = "supplement_risk"
)

// Valid reports whether the category is one of the closed set.
func (c AuditCategory) Valid() bool {
	switch c {
	case CategoryFinancial, CategoryLeakage, CategorySupplementRisk:
		return true
	}
	return false
}

// Label returns the human-readable section heading for reports.
func (c AuditCategory) Label() string {
	switch c {
	case CategoryFinancial:
		return "Financial Validation"
	case CategoryLeakage:
		return "Potential Leakage"
	case CategorySupplementRisk:
		return "Supplement Risk"
	}
	return string(c)
}

// AuditSeverity ranks how strongly a finding should be weighted.
type AuditSeverity string

const (
	SeverityInfo     AuditSeverity = "info"
	SeverityWarning  AuditSeverity = "warning"
	SeverityError    AuditSeverity = "error"
	SeverityCritical AuditSeverity = "critical"
)

// Valid reports whether the severity is one of the closed set.
func (s AuditSeverity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// riskWeights drives scorecard risk scoring. Unknown severities fall back
// to defaultRiskWeight so a malformed finding still moves the needle.
var riskWeights = map[AuditSeverity]float64{
	SeverityInfo:     5,
	SeverityWarning:  15,
	SeverityError:    30,
	SeverityCritical: 50,
}

const defaultRiskWeight = 10

// RiskWeight returns the scoring weight for the severity.
func (s AuditSeverity) RiskWeight() float64 {
	if w, ok := riskWeights[s]; ok {
		return w
	}
	return defaultRiskWeight
}

// Icon returns the marker used in text reports.
func (s AuditSeverity) Icon() string {
	switch s {
	case SeverityInfo:
		return "ℹ️"
	case SeverityWarning:
		return "⚠️"
	case SeverityError:
		return "❌"
	case SeverityCritical:
		return "🚨"
	}
	return "•"
}

// AuditFinding is a single issue surfaced by one rule against one claim.
type AuditFinding struct {
	FindingID       string                 `json:"finding_id"`
	Category        AuditCategory          `json:"category"`
	Severity        AuditSeverity          `json:"severity"`
	RuleName        string                 `json:"rule_name"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	AffectedItems   []string               `json:"affected_items,omitempty"`
	PotentialImpact *Money                 `json:"potential_impact,omitempty"`
	Recommendation  string                 `json:"recommendation,omitempty"`
	Evidence        map[string]interface{} `json:"evidence,omitempty"`
}

// String renders a compact one-line form for logs.
func (f AuditFinding) String() string {
	return fmt.Sprintf("[%s/%s] %s: %s", f.Category, f.Severity, f.FindingID, f.Title)
}
