package rules

import (
	"errors"
	"strings"
	"testing"

	"github.com/claimaudit/claimaudit/internal/domain"
)

func testClaim() *domain.ClaimData {
	return &domain.ClaimData{ClaimID: "CLM-TEST"}
}

func staticRule(id string, category domain.AuditCategory, findings ...domain.AuditFinding) Rule {
	return Rule{
		ID:       id,
		Name:     "Rule " + id,
		Category: category,
		Severity: domain.SeverityWarning,
		Enabled:  true,
		Validator: func(*domain.ClaimData, Context) ([]domain.AuditFinding, error) {
			return findings, nil
		},
	}
}

func TestAddGetRemove(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(staticRule("T-001", domain.CategoryFinancial))

	if _, ok := r.Get("T-001"); !ok {
		t.Fatal("rule not found after Add")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
	if !r.Remove("T-001") {
		t.Error("Remove returned false for known rule")
	}
	if r.Remove("T-001") {
		t.Error("Remove returned true for missing rule")
	}
	if _, ok := r.Get("T-001"); ok {
		t.Error("rule still present after Remove")
	}
}

func TestAddRejectsBadCodePattern(t *testing.T) {
	r := NewRegistry()
	err := r.Add(Rule{
		ID:           "T-BAD",
		Category:     domain.CategoryLeakage,
		CodePatterns: []string{"("},
	})
	if err == nil {
		t.Fatal("expected compile error for unbalanced pattern")
	}
}

func TestEnableDisable(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(staticRule("T-001", domain.CategoryLeakage, domain.AuditFinding{Title: "hit"}))

	if !r.Disable("T-001") {
		t.Error("Disable returned false")
	}
	if got := r.Execute(mustGet(t, r, "T-001"), testClaim(), nil); got != nil {
		t.Errorf("disabled rule produced findings: %v", got)
	}
	if len(r.RulesByCategory(domain.CategoryLeakage)) != 0 {
		t.Error("disabled rule still listed by category")
	}

	if !r.Enable("T-001") {
		t.Error("Enable returned false")
	}
	if got := r.Execute(mustGet(t, r, "T-001"), testClaim(), nil); len(got) != 1 {
		t.Errorf("enabled rule findings = %d, want 1", len(got))
	}

	if r.Enable("nope") || r.Disable("nope") {
		t.Error("unknown rule id should return false")
	}
}

func TestRulesByCategoryPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(staticRule("T-001", domain.CategoryLeakage))
	r.MustAdd(staticRule("T-002", domain.CategoryFinancial))
	r.MustAdd(staticRule("T-003", domain.CategoryLeakage))

	leakage := r.RulesByCategory(domain.CategoryLeakage)
	if len(leakage) != 2 || leakage[0].ID != "T-001" || leakage[1].ID != "T-003" {
		t.Errorf("leakage rules out of order: %+v", leakage)
	}
}

func TestFindingIDFormatAndMonotonicity(t *testing.T) {
	r := NewRegistry()
	first := r.NewFindingID()
	second := r.NewFindingID()

	if first != "FND-000001" {
		t.Errorf("first id = %q, want FND-000001", first)
	}
	if second != "FND-000002" {
		t.Errorf("second id = %q, want FND-000002", second)
	}
}

func TestValidatorErrorContained(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(Rule{
		ID:       "T-ERR",
		Name:     "Exploding Rule",
		Category: domain.CategoryLeakage,
		Severity: domain.SeverityError,
		Enabled:  true,
		Validator: func(*domain.ClaimData, Context) ([]domain.AuditFinding, error) {
			return nil, errors.New("bad state")
		},
	})

	var hookID string
	r.SetErrorHook(func(ruleID string, err error) { hookID = ruleID })

	findings := r.Execute(mustGet(t, r, "T-ERR"), testClaim(), nil)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want exactly 1 synthetic finding", len(findings))
	}
	f := findings[0]
	if f.Title != "Rule Execution Error: Exploding Rule" {
		t.Errorf("title = %q", f.Title)
	}
	if !strings.HasPrefix(f.Description, "Error executing rule: ") {
		t.Errorf("description = %q", f.Description)
	}
	if f.Category != domain.CategoryLeakage || f.Severity != domain.SeverityError {
		t.Errorf("category/severity = %s/%s, want rule's leakage/error", f.Category, f.Severity)
	}
	if f.Evidence["error"] != "bad state" {
		t.Errorf("evidence.error = %v", f.Evidence["error"])
	}
	if f.Evidence["error_type"] == "" {
		t.Error("evidence.error_type missing")
	}
	if hookID != "T-ERR" {
		t.Errorf("error hook rule id = %q, want T-ERR", hookID)
	}
}

func TestValidatorPanicContained(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(Rule{
		ID:       "T-PANIC",
		Name:     "Panicking Rule",
		Category: domain.CategorySupplementRisk,
		Severity: domain.SeverityWarning,
		Enabled:  true,
		Validator: func(*domain.ClaimData, Context) ([]domain.AuditFinding, error) {
			panic("index out of range")
		},
	})

	findings := r.Execute(mustGet(t, r, "T-PANIC"), testClaim(), nil)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Evidence["error_type"] != "panic" {
		t.Errorf("error_type = %v, want panic", findings[0].Evidence["error_type"])
	}
	if !strings.Contains(findings[0].Description, "index out of range") {
		t.Errorf("description = %q", findings[0].Description)
	}
}

func TestFaultIsolationBetweenRules(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(Rule{
		ID:       "T-001",
		Name:     "Broken",
		Category: domain.CategoryLeakage,
		Severity: domain.SeverityWarning,
		Enabled:  true,
		Validator: func(*domain.ClaimData, Context) ([]domain.AuditFinding, error) {
			panic("boom")
		},
	})
	r.MustAdd(staticRule("T-002", domain.CategoryLeakage, domain.AuditFinding{Title: "healthy"}))

	findings := r.ExecuteAll(testClaim(), nil)
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2 (error finding + healthy finding)", len(findings))
	}
	if findings[1].Title != "healthy" {
		t.Errorf("second rule did not run after first panicked: %+v", findings)
	}
}

func TestExecuteAllInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(staticRule("T-002", domain.CategoryFinancial, domain.AuditFinding{Title: "first added"}))
	r.MustAdd(staticRule("T-001", domain.CategoryLeakage, domain.AuditFinding{Title: "second added"}))

	findings := r.ExecuteAll(testClaim(), nil)
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
	if findings[0].Title != "first added" || findings[1].Title != "second added" {
		t.Errorf("execution order does not follow registration order: %+v", findings)
	}
}

func TestExecuteRulesFollowsGivenOrder(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(staticRule("T-001", domain.CategoryLeakage, domain.AuditFinding{Title: "a"}))
	r.MustAdd(staticRule("T-002", domain.CategoryLeakage, domain.AuditFinding{Title: "b"}))

	findings := r.ExecuteRules([]string{"T-002", "missing", "T-001"}, testClaim(), nil)
	if len(findings) != 2 || findings[0].Title != "b" || findings[1].Title != "a" {
		t.Errorf("findings = %+v, want b then a", findings)
	}
}

func TestListRulesIncludesDisabled(t *testing.T) {
	r := NewRegistry()
	r.MustAdd(staticRule("T-001", domain.CategoryFinancial))
	r.MustAdd(staticRule("T-002", domain.CategoryLeakage))
	r.Disable("T-002")

	infos := r.ListRules()
	if len(infos) != 2 {
		t.Fatalf("catalog rows = %d, want 2", len(infos))
	}
	if infos[0].RuleID != "T-001" || infos[1].RuleID != "T-002" {
		t.Errorf("catalog out of order: %+v", infos)
	}
	if infos[1].Enabled {
		t.Error("disabled rule listed as enabled")
	}
}

func TestMatchCodes(t *testing.T) {
	r := NewRegistry()
	codes := []string{"WTR_EXT", "FCC_CPT", "wtr_dry"}

	matched, err := r.MatchCodes(`^WTR`, codes)
	if err != nil {
		t.Fatalf("MatchCodes: %v", err)
	}
	if len(matched) != 2 || matched[0] != "WTR_EXT" || matched[1] != "wtr_dry" {
		t.Errorf("matched = %v", matched)
	}

	if _, err := r.MatchCodes("(", codes); err == nil {
		t.Error("expected compile error")
	}
}

func mustGet(t *testing.T, r *Registry, id string) *Rule {
	t.Helper()
	rule, ok := r.Get(id)
	if !ok {
		t.Fatalf("rule %s not registered", id)
	}
	return rule
}
