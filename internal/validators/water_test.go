package validators

import (
	"testing"

	"github.com/claimaudit/claimaudit/internal/config"
	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/rules"
)

func waterClaim(t *testing.T, property domain.PropertyDetails, items ...domain.LineItem) *domain.ClaimData {
	t.Helper()
	return finalize(t, &domain.ClaimData{
		ClaimID:   "CLM-TEST",
		Policy:    testPolicy(),
		Property:  property,
		LineItems: items,
	})
}

func TestWaterRegistersRules(t *testing.T) {
	r := rules.NewRegistry()
	v := NewWaterRemediationValidator(r, nil)

	if r.Len() != 5 {
		t.Fatalf("registered rules = %d, want 5", r.Len())
	}
	if v.Name() != "Water Remediation (WTR)" {
		t.Errorf("Name = %q", v.Name())
	}
}

func TestAirMoverExcessiveCount(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := waterClaim(t, domain.PropertyDetails{
		AffectedRooms: []domain.Room{
			{Name: "Living Room", Sqft: 75, Affected: true},
			{Name: "Hallway", Sqft: 75, Affected: true},
			{Name: "Bedroom", Sqft: 400}, // not affected, excluded from sqft
		},
	}, li("WTR_AIRF", "Air mover rental", 12, "35"))

	f := onlyFinding(t, execRule(r, "WTR-001", claim))
	if f.Title != "Excessive Air Mover Count" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != domain.SeverityWarning || f.Category != domain.CategoryLeakage {
		t.Errorf("severity/category = %s/%s", f.Severity, f.Category)
	}
	// 150 sqft expects 2-3 units; 12 is 9 over at $35/day.
	wantImpact(t, f, "315")
	if f.Evidence["expected_min"] != 2 || f.Evidence["expected_max"] != 3 {
		t.Errorf("expected band = %v-%v, want 2-3", f.Evidence["expected_min"], f.Evidence["expected_max"])
	}
	if f.Evidence["air_mover_count"] != 12 {
		t.Errorf("evidence.air_mover_count = %v", f.Evidence["air_mover_count"])
	}
	if len(f.AffectedItems) != 1 || f.AffectedItems[0] != "WTR_AIRF: 12" {
		t.Errorf("affected = %v", f.AffectedItems)
	}
}

func TestAirMoverLowCount(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := waterClaim(t, domain.PropertyDetails{
		TotalAffectedSqft: floatPtr(700),
	}, li("WTR_AIRF", "Air mover rental", 1, "35"))

	f := onlyFinding(t, execRule(r, "WTR-001", claim))
	if f.Title != "Low Air Mover Count" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != domain.SeverityInfo || f.Category != domain.CategorySupplementRisk {
		t.Errorf("severity/category = %s/%s, want info/supplement_risk", f.Severity, f.Category)
	}
	wantNoImpact(t, f)
}

func TestAirMoverQuietCases(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	// Count inside the expected band.
	inRange := waterClaim(t, domain.PropertyDetails{TotalAffectedSqft: floatPtr(150)},
		li("WTR_AIRF", "Air mover rental", 3, "35"))
	wantQuiet(t, execRule(r, "WTR-001", inRange))

	// No affected square footage to size against.
	noSqft := waterClaim(t, domain.PropertyDetails{},
		li("WTR_AIRF", "Air mover rental", 12, "35"))
	wantQuiet(t, execRule(r, "WTR-001", noSqft))

	// No air movers on the claim.
	noUnits := waterClaim(t, domain.PropertyDetails{TotalAffectedSqft: floatPtr(150)},
		li("WTR_EXT", "Water extraction", 1, "500"))
	wantQuiet(t, execRule(r, "WTR-001", noUnits))
}

func TestAirMoverCustomThresholds(t *testing.T) {
	r := rules.NewRegistry()
	thresholds := config.GetDefaultThresholds()
	thresholds.AirMover.DailyRateUSD = 50
	NewWaterRemediationValidator(r, thresholds)

	claim := waterClaim(t, domain.PropertyDetails{TotalAffectedSqft: floatPtr(150)},
		li("WTR_AIRF", "Air mover rental", 12, "35"))

	f := onlyFinding(t, execRule(r, "WTR-001", claim))
	wantImpact(t, f, "450") // 9 excess at the configured $50/day
}

func TestDehumidifierExcessiveCount(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := waterClaim(t, domain.PropertyDetails{TotalAffectedSqft: floatPtr(1000)},
		li("WTR_DEHU", "Dehumidifier rental", 3, "95"))

	f := onlyFinding(t, execRule(r, "WTR-002", claim))
	if f.Title != "Excessive Dehumidifier Count" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != domain.SeverityWarning {
		t.Errorf("severity = %s", f.Severity)
	}
	// Sizing heuristics are too coarse to price; the count alone is flagged.
	wantNoImpact(t, f)
	if f.Evidence["expected"] != 1 || f.Evidence["dehumidifier_count"] != 3 {
		t.Errorf("evidence = %v", f.Evidence)
	}
}

func TestDehumidifierWithinDoubleQuiet(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := waterClaim(t, domain.PropertyDetails{TotalAffectedSqft: floatPtr(1000)},
		li("WTR_DEHU", "Dehumidifier rental", 2, "95"))
	wantQuiet(t, execRule(r, "WTR-002", claim))
}

func TestMonitoringWithoutEquipment(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := buildClaim(t, li("WTR_MONITOR", "Daily monitoring", 5, "75"))

	f := onlyFinding(t, execRule(r, "WTR-003", claim))
	if f.Title != "Monitoring Without Equipment" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != domain.SeverityError {
		t.Errorf("severity = %s, want error", f.Severity)
	}
	wantImpact(t, f, "375")
	if f.Evidence["monitoring_days"] != 5 || f.Evidence["equipment_days"] != 0 {
		t.Errorf("evidence = %v", f.Evidence)
	}
	if len(f.AffectedItems) != 1 || f.AffectedItems[0] != "WTR_MONITOR: 5 days" {
		t.Errorf("affected = %v", f.AffectedItems)
	}
}

func TestMonitoringExceedsEquipmentDays(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := buildClaim(t,
		li("WTR_MONITOR", "Daily monitoring", 10, "75"),
		withDays(li("WTR_AIRF", "Air mover rental", 4, "35"), 6),
	)

	f := onlyFinding(t, execRule(r, "WTR-003", claim))
	if f.Title != "Excess Monitoring Days" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != domain.SeverityWarning {
		t.Errorf("severity = %s, want warning", f.Severity)
	}
	wantImpact(t, f, "300")
	if f.Evidence["excess_days"] != 4 {
		t.Errorf("evidence.excess_days = %v", f.Evidence["excess_days"])
	}
}

func TestMonitoringWithinVarianceQuiet(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := buildClaim(t,
		li("WTR_MONITOR", "Daily monitoring", 7, "75"),
		withDays(li("WTR_AIRF", "Air mover rental", 4, "35"), 6),
	)
	wantQuiet(t, execRule(r, "WTR-003", claim))
}

func TestCategoryMismatch(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	items := []domain.LineItem{
		li("WTR_PPE", "PPE - Tyvek suits", 3, "150"),
		li("WTR_EXT", "Water extraction", 1, "500"),
	}

	claim := waterClaim(t, domain.PropertyDetails{WaterCategory: intPtr(1)}, items...)
	f := onlyFinding(t, execRule(r, "WTR-004", claim))
	if f.Title != "Category 3 Items Billed for Category 1 Loss" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != domain.SeverityError {
		t.Errorf("severity = %s, want error", f.Severity)
	}
	wantImpact(t, f, "450")
	if f.Evidence["documented_category"] != 1 || f.Evidence["flagged_item_count"] != 1 {
		t.Errorf("evidence = %v", f.Evidence)
	}
	if len(f.AffectedItems) != 1 || f.AffectedItems[0] != "WTR_PPE: PPE - Tyvek suits" {
		t.Errorf("affected = %v", f.AffectedItems)
	}

	// Category 3 losses legitimately carry PPE.
	cat3 := waterClaim(t, domain.PropertyDetails{WaterCategory: intPtr(3)}, items...)
	wantQuiet(t, execRule(r, "WTR-004", cat3))

	// Undocumented category: nothing to contradict.
	unset := waterClaim(t, domain.PropertyDetails{}, items...)
	wantQuiet(t, execRule(r, "WTR-004", unset))
}

func TestEquipmentDaysInconsistent(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	claim := buildClaim(t,
		withDays(li("WTR_AIRF", "Air mover rental", 4, "35"), 3),
		withDays(li("WTR_DEHU", "Dehumidifier rental", 1, "95"), 7),
	)

	f := onlyFinding(t, execRule(r, "WTR-005", claim))
	if f.Title != "Inconsistent Equipment Days" {
		t.Errorf("title = %q", f.Title)
	}
	if f.Severity != domain.SeverityInfo {
		t.Errorf("severity = %s, want info", f.Severity)
	}
	wantNoImpact(t, f)
	if f.Evidence["air_mover"] != 3 || f.Evidence["dehumidifier"] != 7 {
		t.Errorf("evidence = %v", f.Evidence)
	}
}

func TestEquipmentDaysQuietCases(t *testing.T) {
	r := rules.NewRegistry()
	NewWaterRemediationValidator(r, nil)

	// Gap within the tolerated variance.
	aligned := buildClaim(t,
		withDays(li("WTR_AIRF", "Air mover rental", 4, "35"), 5),
		withDays(li("WTR_DEHU", "Dehumidifier rental", 1, "95"), 6),
	)
	wantQuiet(t, execRule(r, "WTR-005", aligned))

	// A single equipment type has nothing to disagree with.
	single := buildClaim(t,
		withDays(li("WTR_AIRF", "Air mover rental", 4, "35"), 3),
		withDays(li("WTR_AIRF2", "Air mover rental", 4, "35"), 9),
	)
	wantQuiet(t, execRule(r, "WTR-005", single))
}

func TestWaterModuleOrder(t *testing.T) {
	r := rules.NewRegistry()
	v := NewWaterRemediationValidator(r, nil)

	claim := waterClaim(t, domain.PropertyDetails{
		TotalAffectedSqft: floatPtr(150),
		WaterCategory:     intPtr(1),
	},
		li("WTR_AIRF", "Air mover rental", 12, "35"),
		li("WTR_PPE", "PPE - Tyvek suits", 3, "150"),
	)

	findings := v.Validate(claim)
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2: %+v", len(findings), findings)
	}
	if findings[0].Title != "Excessive Air Mover Count" ||
		findings[1].Title != "Category 3 Items Billed for Category 1 Loss" {
		t.Errorf("module order wrong: %q then %q", findings[0].Title, findings[1].Title)
	}
}
