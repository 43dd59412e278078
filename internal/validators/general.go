package validators

import (
	"fmt"

	"github.com/claimaudit/claimaudit/internal/config"
	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/rules"
	"github.com/claimaudit/claimaudit/internal/xactimate"
)

// GeneralRepairValidator audits cross-trade billing: double-dip charge
// groups, content protection for flooring work, duplicate labor
// minimums, and service call consolidation.
type GeneralRepairValidator struct {
	registry   *rules.Registry
	thresholds *config.AuditThresholds
	ruleIDs    []string
}

// NewGeneralRepairValidator registers the GEN rules into the registry.
// Nil thresholds fall back to the built-in defaults.
func NewGeneralRepairValidator(registry *rules.Registry, thresholds *config.AuditThresholds) *GeneralRepairValidator {
	if thresholds == nil {
		thresholds = config.GetDefaultThresholds()
	}
	v := &GeneralRepairValidator{registry: registry, thresholds: thresholds}
	v.registerRules()
	return v
}

// Name returns the module name recorded on scorecards.
func (v *GeneralRepairValidator) Name() string {
	return "General Repair"
}

// Validate runs the general repair rules against a claim in
// registration order.
func (v *GeneralRepairValidator) Validate(claim *domain.ClaimData) []domain.AuditFinding {
	return v.registry.ExecuteRules(v.ruleIDs, claim, nil)
}

func (v *GeneralRepairValidator) registerRules() {
	add := func(rule rules.Rule) {
		rule.Enabled = true
		v.registry.MustAdd(rule)
		v.ruleIDs = append(v.ruleIDs, rule.ID)
	}

	add(rules.Rule{
		ID:          "GEN-001",
		Name:        "Double-Dip Detection",
		Description: "Flag overlapping charges like pre-hung door + hinges",
		Category:    domain.CategoryLeakage,
		Severity:    domain.SeverityWarning,
		Validator:   v.validateDoubleDip,
	})
	add(rules.Rule{
		ID:          "GEN-002",
		Name:        "Content Protection Check",
		Description: "Verify content manipulation/protection when flooring is replaced",
		Category:    domain.CategorySupplementRisk,
		Severity:    domain.SeverityInfo,
		Validator:   v.validateContentProtection,
	})
	add(rules.Rule{
		ID:          "GEN-003",
		Name:        "Labor Minimum Check",
		Description: "Flag multiple labor minimums for same trade",
		Category:    domain.CategoryLeakage,
		Severity:    domain.SeverityWarning,
		Validator:   v.validateLaborMinimums,
	})
	add(rules.Rule{
		ID:          "GEN-004",
		Name:        "Trade Coordination Check",
		Description: "Check for multiple trade minimums that could share mobilization",
		Category:    domain.CategoryLeakage,
		Severity:    domain.SeverityInfo,
		Validator:   v.validateTradeCoordination,
	})
}

func (v *GeneralRepairValidator) validateDoubleDip(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	var findings []domain.AuditFinding

	for _, group := range xactimate.DoubleDipGroups() {
		// Collect matched items per pattern, in pattern order.
		matchedItems := make([][]*domain.LineItem, len(group.Patterns))
		matchedCount := 0
		for pi, pattern := range group.Patterns {
			for i := range claim.LineItems {
				it := &claim.LineItems[i]
				if pattern.Match(it.Text()) {
					matchedItems[pi] = append(matchedItems[pi], it)
				}
			}
			if len(matchedItems[pi]) > 0 {
				matchedCount++
			}
		}

		if matchedCount < 2 {
			continue
		}

		impact := domain.Money{}
		var affected []string
		var matchedPatterns []string
		for pi, pattern := range group.Patterns {
			if len(matchedItems[pi]) == 0 {
				continue
			}
			matchedPatterns = append(matchedPatterns, pattern.Name)
			for _, it := range matchedItems[pi] {
				affected = append(affected, itemRef(it))
				if group.Overlap != "" && pattern.Name == group.Overlap {
					impact = impact.Add(it.LineTotal())
				}
			}
		}

		var potentialImpact *domain.Money
		if impact.IsPositive() {
			potentialImpact = moneyPtr(impact)
		}

		findings = append(findings, domain.AuditFinding{
			FindingID:       v.registry.NewFindingID(),
			Category:        domain.CategoryLeakage,
			Severity:        domain.SeverityWarning,
			RuleName:        "Double-Dip Detection",
			Title:           "Potential Overlap: " + titleCase(group.Name),
			Description:     group.Description,
			AffectedItems:   affected,
			PotentialImpact: potentialImpact,
			Evidence: map[string]interface{}{
				"group":            group.Name,
				"matched_patterns": matchedPatterns,
			},
			Recommendation: "Review line items for potential overlap. Verify if both charges are justified.",
		})
	}

	return findings, nil
}

func (v *GeneralRepairValidator) validateContentProtection(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	var flooringItems []string
	hasContentManipulation := false
	hasBlockingPadding := false

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()

		if xactimate.FlooringWork.MatchString(text) {
			flooringItems = append(flooringItems, itemRef(it))
		}
		if xactimate.ContentManipulation.MatchString(text) {
			hasContentManipulation = true
		}
		if xactimate.BlockingPadding.MatchString(text) {
			hasBlockingPadding = true
		}
	}

	if len(flooringItems) == 0 || hasContentManipulation || hasBlockingPadding {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategorySupplementRisk,
		Severity:  domain.SeverityInfo,
		RuleName:  "Content Protection Check",
		Title:     "Missing Content Protection for Flooring Work",
		Description: "Flooring replacement found but no content manipulation or " +
			"blocking/padding charges. Furniture may need to be moved.",
		AffectedItems: flooringItems,
		Evidence: map[string]interface{}{
			"flooring_work":        true,
			"content_manipulation": hasContentManipulation,
			"blocking_padding":     hasBlockingPadding,
		},
		Recommendation: "Verify if contents need to be moved or protected. May result in supplement if not included.",
	}}, nil
}

func (v *GeneralRepairValidator) validateLaborMinimums(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	var findings []domain.AuditFinding

	for _, trade := range xactimate.LaborMinimumTrades {
		var items []*domain.LineItem
		for i := range claim.LineItems {
			it := &claim.LineItems[i]
			if trade.Re.MatchString(it.Text()) {
				items = append(items, it)
			}
		}
		if len(items) < 2 {
			continue
		}

		// One minimum per trade is standard; the rest are excess.
		total := domain.Money{}
		var affected []string
		for _, it := range items {
			total = total.Add(it.LineTotal())
			affected = append(affected, itemRef(it))
		}
		impact := total.Sub(items[0].LineTotal())

		findings = append(findings, domain.AuditFinding{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategoryLeakage,
			Severity:  domain.SeverityWarning,
			RuleName:  "Labor Minimum Check",
			Title:     "Multiple " + titleCase(trade.Trade) + " Labor Minimums",
			Description: fmt.Sprintf(
				"Found %d labor minimum charges for %s. Multiple minimums for the same trade may not be appropriate.",
				len(items), trade.Trade),
			AffectedItems:   affected,
			PotentialImpact: moneyPtr(impact),
			Evidence: map[string]interface{}{
				"trade":         trade.Trade,
				"minimum_count": len(items),
			},
			Recommendation: "Review if multiple labor minimums are justified. Typically only one minimum per trade per project.",
		})
	}

	return findings, nil
}

func (v *GeneralRepairValidator) validateTradeCoordination(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	var serviceCalls []*domain.LineItem
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		if xactimate.ServiceCall.MatchString(it.Text()) {
			serviceCalls = append(serviceCalls, it)
		}
	}

	if len(serviceCalls) <= v.thresholds.ServiceCall.MaxCount {
		return nil, nil
	}

	total := domain.Money{}
	var affected []string
	for _, it := range serviceCalls {
		total = total.Add(it.LineTotal())
		affected = append(affected, itemRef(it))
	}
	impact := total.Mul(domain.MoneyFromFloat(v.thresholds.ServiceCall.SavingsRatio))

	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryLeakage,
		Severity:  domain.SeverityInfo,
		RuleName:  "Trade Coordination Check",
		Title:     "Multiple Service Calls",
		Description: fmt.Sprintf(
			"Found %d service call/trip charges. Some trades may be able to coordinate visits.",
			len(serviceCalls)),
		AffectedItems:   affected,
		PotentialImpact: moneyPtr(impact),
		Evidence: map[string]interface{}{
			"service_call_count": len(serviceCalls),
			"total_charges":      total.String(),
		},
		Recommendation: "Review if any trades can combine visits to reduce service call charges.",
	}}, nil
}
