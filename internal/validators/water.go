package validators

import (
	"fmt"
	"strconv"

	"github.com/claimaudit/claimaudit/internal/config"
	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/rules"
	"github.com/claimaudit/claimaudit/internal/xactimate"
)

// WaterRemediationValidator audits WTR claims: drying equipment counts
// against affected square footage, monitoring labor against equipment
// rental days, and water-category-appropriate billing.
type WaterRemediationValidator struct {
	registry   *rules.Registry
	thresholds *config.AuditThresholds
	ruleIDs    []string
}

// NewWaterRemediationValidator registers the WTR rules into the
// registry. Nil thresholds fall back to the built-in defaults.
func NewWaterRemediationValidator(registry *rules.Registry, thresholds *config.AuditThresholds) *WaterRemediationValidator {
	if thresholds == nil {
		thresholds = config.GetDefaultThresholds()
	}
	v := &WaterRemediationValidator{registry: registry, thresholds: thresholds}
	v.registerRules()
	return v
}

// Name returns the module name recorded on scorecards.
func (v *WaterRemediationValidator) Name() string {
	return "Water Remediation (WTR)"
}

// Validate runs the water remediation rules against a claim in
// registration order.
func (v *WaterRemediationValidator) Validate(claim *domain.ClaimData) []domain.AuditFinding {
	return v.registry.ExecuteRules(v.ruleIDs, claim, nil)
}

func (v *WaterRemediationValidator) registerRules() {
	add := func(rule rules.Rule) {
		rule.Enabled = true
		v.registry.MustAdd(rule)
		v.ruleIDs = append(v.ruleIDs, rule.ID)
	}

	add(rules.Rule{
		ID:           "WTR-001",
		Name:         "Air Mover Count Audit",
		Description:  "Verify air mover count against room square footage (1 per 50-70 sq ft)",
		Category:     domain.CategoryLeakage,
		Severity:     domain.SeverityWarning,
		CodePatterns: []string{`^WTR.*AIR`, `AIRF`, `FAN`},
		Validator:    v.validateAirMovers,
	})
	add(rules.Rule{
		ID:           "WTR-002",
		Name:         "Dehumidifier Count Audit",
		Description:  "Verify dehumidifier count is appropriate for affected area",
		Category:     domain.CategoryLeakage,
		Severity:     domain.SeverityWarning,
		CodePatterns: []string{`DEHUM`, `DEHU`, `DH\d+`},
		Validator:    v.validateDehumidifiers,
	})
	add(rules.Rule{
		ID:           "WTR-003",
		Name:         "Monitoring Labor Audit",
		Description:  "Flag daily monitoring labor billed without corresponding equipment days",
		Category:     domain.CategoryLeakage,
		Severity:     domain.SeverityError,
		CodePatterns: []string{`MONITOR`, `MOISTURE.*READ`},
		Validator:    v.validateMonitoringLabor,
	})
	add(rules.Rule{
		ID:           "WTR-004",
		Name:         "Water Category Mismatch",
		Description:  "Flag Category 3 (Black Water) PPE/cleaning billed for Category 1 (Clean Water) loss",
		Category:     domain.CategoryLeakage,
		Severity:     domain.SeverityError,
		CodePatterns: []string{`PPE`, `HAZMAT`, `ANTIMICROBIAL`},
		Validator:    v.validateCategoryBilling,
	})
	add(rules.Rule{
		ID:          "WTR-005",
		Name:        "Equipment Days Consistency",
		Description: "Verify equipment rental days are consistent across all equipment types",
		Category:    domain.CategoryLeakage,
		Severity:    domain.SeverityWarning,
		Validator:   v.validateEquipmentDays,
	})
}

func (v *WaterRemediationValidator) validateAirMovers(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	airMoverCount := 0
	var airMoverItems []string

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		if xactimate.AirMover.MatchString(it.Text()) {
			airMoverCount += int(it.Quantity)
			airMoverItems = append(airMoverItems, it.Code+": "+formatQty(it.Quantity))
		}
	}

	if airMoverCount == 0 {
		return nil, nil
	}
	totalSqft := claim.Property.AffectedSqft()
	if totalSqft <= 0 {
		return nil, nil
	}

	t := v.thresholds.AirMover
	minExpected := totalSqft / t.SqftPerUnitMax
	maxExpected := totalSqft / t.SqftPerUnitMin

	if float64(airMoverCount) > maxExpected*1.2 { // 20% tolerance
		excess := airMoverCount - int(maxExpected)
		impact := domain.MoneyFromInt(int64(excess)).Mul(domain.MoneyFromFloat(t.DailyRateUSD))
		return []domain.AuditFinding{{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategoryLeakage,
			Severity:  domain.SeverityWarning,
			RuleName:  "Air Mover Count Audit",
			Title:     "Excessive Air Mover Count",
			Description: fmt.Sprintf(
				"Billed %d air movers for %.0f sq ft. Industry standard is 1 per %.0f-%.0f sq ft (expected %d-%d)",
				airMoverCount, totalSqft, t.SqftPerUnitMin, t.SqftPerUnitMax,
				int(minExpected), int(maxExpected)),
			AffectedItems:   airMoverItems,
			PotentialImpact: moneyPtr(impact),
			Evidence: map[string]interface{}{
				"air_mover_count": airMoverCount,
				"affected_sqft":   totalSqft,
				"expected_min":    int(minExpected),
				"expected_max":    int(maxExpected),
			},
			Recommendation: "Review air mover count against actual affected area.",
		}}, nil
	}

	if float64(airMoverCount) < minExpected*0.5 { // Significantly under
		return []domain.AuditFinding{{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategorySupplementRisk,
			Severity:  domain.SeverityInfo,
			RuleName:  "Air Mover Count Audit",
			Title:     "Low Air Mover Count",
			Description: fmt.Sprintf(
				"Only %d air movers for %.0f sq ft may be insufficient. Industry standard is 1 per %.0f-%.0f sq ft.",
				airMoverCount, totalSqft, t.SqftPerUnitMin, t.SqftPerUnitMax),
			AffectedItems: airMoverItems,
			Evidence: map[string]interface{}{
				"air_mover_count": airMoverCount,
				"affected_sqft":   totalSqft,
			},
			Recommendation: "Verify drying coverage is adequate for affected area.",
		}}, nil
	}

	return nil, nil
}

func (v *WaterRemediationValidator) validateDehumidifiers(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	dehumidifierCount := 0
	var dehumidifierItems []string

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		if xactimate.Dehumidifier.MatchString(it.Text()) {
			dehumidifierCount += int(it.Quantity)
			dehumidifierItems = append(dehumidifierItems, it.Code+": "+formatQty(it.Quantity))
		}
	}

	if dehumidifierCount == 0 {
		return nil, nil
	}
	totalSqft := claim.Property.AffectedSqft()
	if totalSqft <= 0 {
		return nil, nil
	}

	expected := totalSqft / v.thresholds.Dehumidifier.SqftPerUnit
	if expected < 1 {
		expected = 1
	}

	if float64(dehumidifierCount) <= expected*2 {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryLeakage,
		Severity:  domain.SeverityWarning,
		RuleName:  "Dehumidifier Count Audit",
		Title:     "Excessive Dehumidifier Count",
		Description: fmt.Sprintf(
			"Billed %d dehumidifiers for %.0f sq ft. Typical is ~1 per %.0f sq ft (expected ~%d)",
			dehumidifierCount, totalSqft, v.thresholds.Dehumidifier.SqftPerUnit, int(expected)),
		AffectedItems: dehumidifierItems,
		Evidence: map[string]interface{}{
			"dehumidifier_count": dehumidifierCount,
			"affected_sqft":      totalSqft,
			"expected":           int(expected),
		},
		Recommendation: "Review dehumidifier count against actual drying needs.",
	}}, nil
}

func (v *WaterRemediationValidator) validateMonitoringLabor(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	monitoringDays := 0
	var monitoringItems []string

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		if xactimate.DailyMonitor.MatchString(it.Text()) {
			monitoringDays += int(it.Quantity)
			monitoringItems = append(monitoringItems, it.Code+": "+formatQty(it.Quantity)+" days")
		}
	}

	if monitoringDays == 0 {
		return nil, nil
	}

	// Equipment is billed as quantity x days; without an explicit days
	// field the quantity stands in for total days.
	equipmentDays := 0
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()
		if xactimate.AirMover.MatchString(text) || xactimate.Dehumidifier.MatchString(text) {
			days := int(it.Quantity)
			if it.Days != nil {
				days = *it.Days
			}
			if days > equipmentDays {
				equipmentDays = days
			}
		}
	}

	rate := domain.MoneyFromFloat(v.thresholds.Monitoring.DailyRateUSD)
	variance := v.thresholds.Monitoring.DayVariance

	if equipmentDays == 0 {
		impact := domain.MoneyFromInt(int64(monitoringDays)).Mul(rate)
		return []domain.AuditFinding{{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategoryLeakage,
			Severity:  domain.SeverityError,
			RuleName:  "Monitoring Labor Audit",
			Title:     "Monitoring Without Equipment",
			Description: fmt.Sprintf(
				"Daily monitoring labor billed for %d days but no drying equipment found on claim.",
				monitoringDays),
			AffectedItems:   monitoringItems,
			PotentialImpact: moneyPtr(impact),
			Evidence: map[string]interface{}{
				"monitoring_days": monitoringDays,
				"equipment_days":  equipmentDays,
			},
			Recommendation: "Verify equipment is properly documented or remove monitoring charges.",
		}}, nil
	}

	if monitoringDays > equipmentDays+variance {
		excessDays := monitoringDays - equipmentDays
		impact := domain.MoneyFromInt(int64(excessDays)).Mul(rate)
		return []domain.AuditFinding{{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategoryLeakage,
			Severity:  domain.SeverityWarning,
			RuleName:  "Monitoring Labor Audit",
			Title:     "Excess Monitoring Days",
			Description: fmt.Sprintf(
				"Monitoring labor (%d days) exceeds equipment days (%d). Monitoring should align with active drying period.",
				monitoringDays, equipmentDays),
			AffectedItems:   monitoringItems,
			PotentialImpact: moneyPtr(impact),
			Evidence: map[string]interface{}{
				"monitoring_days": monitoringDays,
				"equipment_days":  equipmentDays,
				"excess_days":     excessDays,
			},
			Recommendation: "Align monitoring days with equipment rental period.",
		}}, nil
	}

	return nil, nil
}

func (v *WaterRemediationValidator) validateCategoryBilling(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	wc := claim.Property.WaterCategory
	if wc == nil || *wc != 1 {
		return nil, nil
	}

	// Category 1 is clean water; PPE and antimicrobial treatment belong
	// to Category 3 losses.
	var cat3Items []string
	cat3Total := domain.Money{}
	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()
		if xactimate.PPECat3.MatchString(text) || xactimate.Cat3Cleaning.MatchString(text) {
			cat3Items = append(cat3Items, itemRef(it))
			cat3Total = cat3Total.Add(it.LineTotal())
		}
	}

	if len(cat3Items) == 0 {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryLeakage,
		Severity:  domain.SeverityError,
		RuleName:  "Water Category Mismatch",
		Title:     "Category 3 Items Billed for Category 1 Loss",
		Description: fmt.Sprintf(
			"Claim is documented as Category 1 (Clean Water) but includes %d Category 3 (Black Water) PPE/cleaning items.",
			len(cat3Items)),
		AffectedItems:   cat3Items,
		PotentialImpact: moneyPtr(cat3Total),
		Evidence: map[string]interface{}{
			"documented_category": *wc,
			"flagged_item_count":  len(cat3Items),
		},
		Recommendation: "Verify water category classification or remove Category 3-specific charges.",
	}}, nil
}

func (v *WaterRemediationValidator) validateEquipmentDays(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	// Fixed type order keeps evidence and findings deterministic.
	equipmentTypes := []string{"air_mover", "dehumidifier"}
	daysByType := map[string]int{}

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()

		equipType := ""
		if xactimate.AirMover.MatchString(text) {
			equipType = "air_mover"
		} else if xactimate.Dehumidifier.MatchString(text) {
			equipType = "dehumidifier"
		}
		if equipType == "" {
			continue
		}

		days := int(it.Quantity)
		if it.Days != nil {
			days = *it.Days
		}
		if days > daysByType[equipType] {
			daysByType[equipType] = days
		}
	}

	if len(daysByType) < 2 {
		return nil, nil
	}

	minDays, maxDays := -1, 0
	evidence := map[string]interface{}{}
	for _, et := range equipmentTypes {
		days, ok := daysByType[et]
		if !ok {
			continue
		}
		evidence[et] = days
		if minDays < 0 || days < minDays {
			minDays = days
		}
		if days > maxDays {
			maxDays = days
		}
	}

	maxDiff := maxDays - minDays
	if maxDiff <= v.thresholds.Monitoring.DayVariance {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryLeakage,
		Severity:  domain.SeverityInfo,
		RuleName:  "Equipment Days Consistency",
		Title:     "Inconsistent Equipment Days",
		Description: "Equipment days vary by " + strconv.Itoa(maxDiff) +
			" days across equipment types. Typically all drying equipment runs for the same duration.",
		Evidence:       evidence,
		Recommendation: "Verify equipment days are accurate for each type.",
	}}, nil
}
