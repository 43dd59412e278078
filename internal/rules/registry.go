// Package rules implements the registry that owns audit rule
// definitions, finding identifiers, and guarded rule execution.
package rules

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// Context carries optional execution hints to rule validators.
type Context map[string]interface{}

// ValidatorFunc inspects a claim and returns findings. A returned error
// or a panic is contained by the registry and surfaces as a single
// rule-execution-error finding instead of failing the audit.
type ValidatorFunc func(claim *domain.ClaimData, ctx Context) ([]domain.AuditFinding, error)

// Rule is a registered audit rule.
type Rule struct {
	ID           string
	Name         string
	Description  string
	Category     domain.AuditCategory
	Severity     domain.AuditSeverity
	CodePatterns []string
	Validator    ValidatorFunc
	Enabled      bool
	Metadata     map[string]interface{}
}

// RuleInfo is the catalog row returned by ListRules.
type RuleInfo struct {
	RuleID      string `json:"rule_id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// Registry holds rules indexed by id and category, preserving insertion
// order, and issues monotonically increasing finding ids. A registry is
// owned by one engine and is not safe for concurrent use.
type Registry struct {
	rules          map[string]*Rule
	order          []string
	byCategory     map[domain.AuditCategory][]string
	patterns       map[string]*regexp.Regexp
	findingCounter int
	onRuleError    func(ruleID string, err error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:      make(map[string]*Rule),
		byCategory: make(map[domain.AuditCategory][]string),
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// SetErrorHook installs a callback invoked whenever a rule's validator
// fails. Used for metrics; may be nil.
func (r *Registry) SetErrorHook(hook func(ruleID string, err error)) {
	r.onRuleError = hook
}

// Add registers a rule and pre-compiles its code patterns. Patterns are
// matched case-insensitively.
func (r *Registry) Add(rule Rule) error {
	for _, pattern := range rule.CodePatterns {
		if _, ok := r.patterns[pattern]; ok {
			continue
		}
		compiled, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return fmt.Errorf("rule %s: compile pattern %q: %w", rule.ID, pattern, err)
		}
		r.patterns[pattern] = compiled
	}
	if _, exists := r.rules[rule.ID]; !exists {
		r.order = append(r.order, rule.ID)
		r.byCategory[rule.Category] = append(r.byCategory[rule.Category], rule.ID)
	}
	r.rules[rule.ID] = &rule
	return nil
}

// MustAdd registers a rule and panics on a bad code pattern. Intended
// for static rule tables.
func (r *Registry) MustAdd(rule Rule) {
	if err := r.Add(rule); err != nil {
		panic(err)
	}
}

// Remove deletes a rule. Returns false when the id is unknown.
func (r *Registry) Remove(ruleID string) bool {
	rule, ok := r.rules[ruleID]
	if !ok {
		return false
	}
	delete(r.rules, ruleID)
	r.order = removeID(r.order, ruleID)
	r.byCategory[rule.Category] = removeID(r.byCategory[rule.Category], ruleID)
	return true
}

// Get returns a rule by id.
func (r *Registry) Get(ruleID string) (*Rule, bool) {
	rule, ok := r.rules[ruleID]
	return rule, ok
}

// Enable turns a rule on. Returns false when the id is unknown.
func (r *Registry) Enable(ruleID string) bool {
	rule, ok := r.rules[ruleID]
	if ok {
		rule.Enabled = true
	}
	return ok
}

// Disable turns a rule off. Returns false when the id is unknown.
func (r *Registry) Disable(ruleID string) bool {
	rule, ok := r.rules[ruleID]
	if ok {
		rule.Enabled = false
	}
	return ok
}

// RulesByCategory returns the enabled rules of one category in
// registration order.
func (r *Registry) RulesByCategory(category domain.AuditCategory) []*Rule {
	var out []*Rule
	for _, id := range r.byCategory[category] {
		if rule := r.rules[id]; rule != nil && rule.Enabled {
			out = append(out, rule)
		}
	}
	return out
}

// MatchCodes returns the codes matching a pattern, in input order.
func (r *Registry) MatchCodes(pattern string, codes []string) ([]string, error) {
	compiled, ok := r.patterns[pattern]
	if !ok {
		var err error
		compiled, err = regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pattern, err)
		}
		r.patterns[pattern] = compiled
	}
	var matched []string
	for _, code := range codes {
		if compiled.MatchString(code) {
			matched = append(matched, code)
		}
	}
	return matched, nil
}

// NewFindingID issues the next finding id, formatted FND-000001.
func (r *Registry) NewFindingID() string {
	r.findingCounter++
	return fmt.Sprintf("FND-%06d", r.findingCounter)
}

// Execute runs a single rule. Disabled rules and rules without a
// validator yield nothing. A validator error or panic is contained and
// reported as one finding carrying the rule's category and severity.
func (r *Registry) Execute(rule *Rule, claim *domain.ClaimData, ctx Context) []domain.AuditFinding {
	if rule == nil || !rule.Enabled || rule.Validator == nil {
		return nil
	}
	if ctx == nil {
		ctx = Context{}
	}

	findings, err := r.runGuarded(rule, claim, ctx)
	if err != nil {
		log.Warn().
			Str("rule_id", rule.ID).
			Str("claim_id", claim.ClaimID).
			Err(err).
			Msg("rule execution failed")
		if r.onRuleError != nil {
			r.onRuleError(rule.ID, err)
		}
		return []domain.AuditFinding{r.errorFinding(rule, err)}
	}
	return findings
}

func (r *Registry) runGuarded(rule *Rule, claim *domain.ClaimData, ctx Context) (findings []domain.AuditFinding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			findings = nil
			err = panicError{value: rec}
		}
	}()
	return rule.Validator(claim, ctx)
}

func (r *Registry) errorFinding(rule *Rule, err error) domain.AuditFinding {
	return domain.AuditFinding{
		FindingID:   r.NewFindingID(),
		Category:    rule.Category,
		Severity:    rule.Severity,
		RuleName:    rule.Name,
		Title:       "Rule Execution Error: " + rule.Name,
		Description: "Error executing rule: " + err.Error(),
		Evidence: map[string]interface{}{
			"error":      err.Error(),
			"error_type": errorKind(err),
		},
	}
}

// ExecuteAll runs every enabled rule in registration order.
func (r *Registry) ExecuteAll(claim *domain.ClaimData, ctx Context) []domain.AuditFinding {
	var findings []domain.AuditFinding
	for _, id := range r.order {
		findings = append(findings, r.Execute(r.rules[id], claim, ctx)...)
	}
	return findings
}

// ExecuteCategory runs the enabled rules of one category in
// registration order.
func (r *Registry) ExecuteCategory(category domain.AuditCategory, claim *domain.ClaimData, ctx Context) []domain.AuditFinding {
	var findings []domain.AuditFinding
	for _, rule := range r.RulesByCategory(category) {
		findings = append(findings, r.Execute(rule, claim, ctx)...)
	}
	return findings
}

// ExecuteRules runs the named rules in the given order, skipping
// unknown ids.
func (r *Registry) ExecuteRules(ruleIDs []string, claim *domain.ClaimData, ctx Context) []domain.AuditFinding {
	var findings []domain.AuditFinding
	for _, id := range ruleIDs {
		if rule, ok := r.rules[id]; ok {
			findings = append(findings, r.Execute(rule, claim, ctx)...)
		}
	}
	return findings
}

// ListRules returns the full catalog, enabled or not, in registration
// order.
func (r *Registry) ListRules() []RuleInfo {
	out := make([]RuleInfo, 0, len(r.order))
	for _, id := range r.order {
		rule := r.rules[id]
		out = append(out, RuleInfo{
			RuleID:      rule.ID,
			Name:        rule.Name,
			Category:    string(rule.Category),
			Severity:    string(rule.Severity),
			Enabled:     rule.Enabled,
			Description: rule.Description,
		})
	}
	return out
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.order)
}

type panicError struct {
	value interface{}
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func errorKind(err error) string {
	if _, ok := err.(panicError); ok {
		return "panic"
	}
	return fmt.Sprintf("%T", err)
}

func removeID(ids []string, target string) []string {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
