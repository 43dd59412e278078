package validators

import (
	"strings"

	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/rules"
)

// dwellingCodes are the trade prefixes counted against Coverage A.
var dwellingCodes = map[string]bool{
	"DRY": true, "PNT": true, "DEM": true, "WTR": true,
	"FCC": true, "FNC": true, "GEN": true,
}

// otherStructureKeywords mark line items billed against Coverage B.
var otherStructureKeywords = []string{"detached", "garage", "fence", "shed", "outbuilding"}

// moldKeywords mark line items counted against the mold sub-limit.
var moldKeywords = []string{"mold", "fungus", "microbial"}

// FinancialValidator checks claims against policy terms: deductible
// application, coverage A/B/C limits, water and mold sub-limits, and
// net claim arithmetic.
type FinancialValidator struct {
	registry *rules.Registry
	ruleIDs  []string
}

// NewFinancialValidator registers the FIN rules into the registry.
func NewFinancialValidator(registry *rules.Registry) *FinancialValidator {
	v := &FinancialValidator{registry: registry}
	v.registerRules()
	return v
}

// Name returns the module name recorded on scorecards.
func (v *FinancialValidator) Name() string {
	return "Financial Validation"
}

// Validate runs the financial rules against a claim in registration
// order.
func (v *FinancialValidator) Validate(claim *domain.ClaimData) []domain.AuditFinding {
	return v.registry.ExecuteRules(v.ruleIDs, claim, nil)
}

func (v *FinancialValidator) registerRules() {
	add := func(rule rules.Rule) {
		rule.Enabled = true
		v.registry.MustAdd(rule)
		v.ruleIDs = append(v.ruleIDs, rule.ID)
	}

	add(rules.Rule{
		ID:          "FIN-001",
		Name:        "Deductible Application",
		Description: "Verify deductible is correctly applied to net claim",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityError,
		Validator:   v.validateDeductible,
	})
	add(rules.Rule{
		ID:          "FIN-002",
		Name:        "Coverage A Limit",
		Description: "Verify dwelling coverage (Coverage A) limit is not exceeded",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityCritical,
		Validator:   v.validateCoverageA,
	})
	add(rules.Rule{
		ID:          "FIN-003",
		Name:        "Coverage B Limit",
		Description: "Verify other structures coverage (Coverage B) limit is not exceeded",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityError,
		Validator:   v.validateCoverageB,
	})
	add(rules.Rule{
		ID:          "FIN-004",
		Name:        "Coverage C Limit",
		Description: "Verify personal property coverage (Coverage C) limit is not exceeded",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityError,
		Validator:   v.validateCoverageC,
	})
	add(rules.Rule{
		ID:          "FIN-005",
		Name:        "Water Damage Sub-Limit",
		Description: "Verify water damage sub-limit is not exceeded",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityWarning,
		Validator:   v.validateWaterSublimit,
	})
	add(rules.Rule{
		ID:          "FIN-006",
		Name:        "Mold Sub-Limit",
		Description: "Verify mold remediation sub-limit is not exceeded",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityWarning,
		Validator:   v.validateMoldSublimit,
	})
	add(rules.Rule{
		ID:          "FIN-007",
		Name:        "Net Claim Calculation",
		Description: "Verify net claim is correctly calculated (gross - deductible)",
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityError,
		Validator:   v.validateNetClaim,
	})
}

func (v *FinancialValidator) validateDeductible(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	if claim.Policy.Deductible.IsPositive() {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID:   v.registry.NewFindingID(),
		Category:    domain.CategoryFinancial,
		Severity:    domain.SeverityWarning,
		RuleName:    "Deductible Application",
		Title:       "Zero or Missing Deductible",
		Description: "Policy shows zero or no deductible. Verify this is correct.",
		Evidence: map[string]interface{}{
			"deductible": claim.Policy.Deductible.String(),
		},
		Recommendation: "Confirm policy terms show $0 deductible or update claim data.",
	}}, nil
}

// codePrefix returns the 3-letter trade prefix of a code, uppercased.
func codePrefix(code string) string {
	if len(code) >= 3 {
		return strings.ToUpper(code[:3])
	}
	return strings.ToUpper(code)
}

func (v *FinancialValidator) validateCoverageA(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	dwellingTotal := domain.Money{}
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		if dwellingCodes[codePrefix(it.Code)] {
			dwellingTotal = dwellingTotal.Add(it.LineTotal())
		}
	}

	if !dwellingTotal.GreaterThan(claim.Policy.CoverageA) {
		return nil, nil
	}
	overage := dwellingTotal.Sub(claim.Policy.CoverageA)
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryFinancial,
		Severity:  domain.SeverityCritical,
		RuleName:  "Coverage A Limit",
		Title:     "Coverage A Limit Exceeded",
		Description: "Dwelling repairs total " + usd(dwellingTotal) +
			" exceeds Coverage A limit of " + usd(claim.Policy.CoverageA),
		PotentialImpact: moneyPtr(overage),
		Evidence: map[string]interface{}{
			"dwelling_total":   dwellingTotal.String(),
			"coverage_a_limit": claim.Policy.CoverageA.String(),
			"overage":          overage.String(),
		},
		Recommendation: "Review scope or discuss coverage limits with adjuster.",
	}}, nil
}

func (v *FinancialValidator) validateCoverageB(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	structuresTotal := domain.Money{}
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		desc := strings.ToLower(it.Description)
		for _, kw := range otherStructureKeywords {
			if strings.Contains(desc, kw) {
				structuresTotal = structuresTotal.Add(it.LineTotal())
				break
			}
		}
	}

	if !structuresTotal.GreaterThan(claim.Policy.CoverageB) {
		return nil, nil
	}
	overage := structuresTotal.Sub(claim.Policy.CoverageB)
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryFinancial,
		Severity:  domain.SeverityError,
		RuleName:  "Coverage B Limit",
		Title:     "Coverage B Limit Exceeded",
		Description: "Other structures total " + usd(structuresTotal) +
			" exceeds Coverage B limit of " + usd(claim.Policy.CoverageB),
		PotentialImpact: moneyPtr(overage),
		Evidence: map[string]interface{}{
			"other_structures_total": structuresTotal.String(),
			"coverage_b_limit":       claim.Policy.CoverageB.String(),
		},
		Recommendation: "Review other structures scope or policy limits.",
	}}, nil
}

func (v *FinancialValidator) validateCoverageC(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	contentsTotal := domain.Money{}
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		if strings.HasPrefix(strings.ToUpper(it.Code), "CNT") {
			contentsTotal = contentsTotal.Add(it.LineTotal())
		}
	}

	if !contentsTotal.GreaterThan(claim.Policy.CoverageC) {
		return nil, nil
	}
	overage := contentsTotal.Sub(claim.Policy.CoverageC)
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryFinancial,
		Severity:  domain.SeverityError,
		RuleName:  "Coverage C Limit",
		Title:     "Coverage C Limit Exceeded",
		Description: "Personal property total " + usd(contentsTotal) +
			" exceeds Coverage C limit of " + usd(claim.Policy.CoverageC),
		PotentialImpact: moneyPtr(overage),
		Evidence: map[string]interface{}{
			"contents_total":   contentsTotal.String(),
			"coverage_c_limit": claim.Policy.CoverageC.String(),
		},
		Recommendation: "Review contents inventory or policy limits.",
	}}, nil
}

func (v *FinancialValidator) validateWaterSublimit(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	if claim.Policy.WaterDamageLimit == nil {
		return nil, nil
	}

	waterTotal := domain.Money{}
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		if strings.HasPrefix(strings.ToUpper(it.Code), "WTR") {
			waterTotal = waterTotal.Add(it.LineTotal())
		}
	}

	limit := *claim.Policy.WaterDamageLimit
	if !waterTotal.GreaterThan(limit) {
		return nil, nil
	}
	overage := waterTotal.Sub(limit)
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryFinancial,
		Severity:  domain.SeverityWarning,
		RuleName:  "Water Damage Sub-Limit",
		Title:     "Water Damage Sub-Limit Exceeded",
		Description: "Water remediation total " + usd(waterTotal) +
			" exceeds sub-limit of " + usd(limit),
		PotentialImpact: moneyPtr(overage),
		Evidence: map[string]interface{}{
			"water_total": waterTotal.String(),
			"sublimit":    limit.String(),
		},
		Recommendation: "Review water damage scope against policy sub-limits.",
	}}, nil
}

func (v *FinancialValidator) validateMoldSublimit(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	if claim.Policy.MoldLimit == nil {
		return nil, nil
	}

	moldTotal := domain.Money{}
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		desc := strings.ToLower(it.Description)
		for _, kw := range moldKeywords {
			if strings.Contains(desc, kw) {
				moldTotal = moldTotal.Add(it.LineTotal())
				break
			}
		}
	}

	limit := *claim.Policy.MoldLimit
	if !moldTotal.GreaterThan(limit) {
		return nil, nil
	}
	overage := moldTotal.Sub(limit)
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryFinancial,
		Severity:  domain.SeverityWarning,
		RuleName:  "Mold Sub-Limit",
		Title:     "Mold Remediation Sub-Limit Exceeded",
		Description: "Mold remediation total " + usd(moldTotal) +
			" exceeds sub-limit of " + usd(limit),
		PotentialImpact: moneyPtr(overage),
		Evidence: map[string]interface{}{
			"mold_total": moldTotal.String(),
			"sublimit":   limit.String(),
		},
		Recommendation: "Review mold remediation scope against policy sub-limits.",
	}}, nil
}

func (v *FinancialValidator) validateNetClaim(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	if claim.GrossClaim == nil || claim.NetClaim == nil {
		return nil, nil
	}

	expectedNet := claim.GrossClaim.Sub(claim.Policy.Deductible)
	if expectedNet.IsNegative() {
		expectedNet = domain.Money{}
	}
	tolerance := domain.MustMoney("0.01")

	if !claim.NetClaim.Sub(expectedNet).Abs().GreaterThan(tolerance) {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryFinancial,
		Severity:  domain.SeverityError,
		RuleName:  "Net Claim Calculation",
		Title:     "Net Claim Calculation Error",
		Description: "Net claim " + usd(*claim.NetClaim) + " does not match expected " +
			usd(expectedNet) + " (gross " + usd(*claim.GrossClaim) +
			" - deductible " + usd(claim.Policy.Deductible) + ")",
		Evidence: map[string]interface{}{
			"stated_net":   claim.NetClaim.String(),
			"expected_net": expectedNet.String(),
			"gross_claim":  claim.GrossClaim.String(),
			"deductible":   claim.Policy.Deductible.String(),
		},
		Recommendation: "Recalculate net claim amount.",
	}}, nil
}
