package validators

import (
	"fmt"
	"strings"

	"github.com/claimaudit/claimaudit/internal/config"
	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/rules"
	"github.com/claimaudit/claimaudit/internal/xactimate"
)

// flooringTypes lists the waste-audit buckets in evaluation order.
var flooringTypes = []string{"carpet", "hardwood", "tile", "vinyl_laminate"}

// FlooringValidator audits FCC/FNC claims: waste ratios per flooring
// type, carpet/pad tear-out overlap, missing subfloor prep, and missing
// transition strips.
type FlooringValidator struct {
	registry   *rules.Registry
	thresholds *config.AuditThresholds
	ruleIDs    []string
}

// NewFlooringValidator registers the FLR rules into the registry. Nil
// thresholds fall back to the built-in defaults.
func NewFlooringValidator(registry *rules.Registry, thresholds *config.AuditThresholds) *FlooringValidator {
	if thresholds == nil {
		thresholds = config.GetDefaultThresholds()
	}
	v := &FlooringValidator{registry: registry, thresholds: thresholds}
	v.registerRules()
	return v
}

// Name returns the module name recorded on scorecards.
func (v *FlooringValidator) Name() string {
	return "Flooring (FCC/FNC)"
}

// Validate runs the flooring rules against a claim in registration
// order.
func (v *FlooringValidator) Validate(claim *domain.ClaimData) []domain.AuditFinding {
	return v.registry.ExecuteRules(v.ruleIDs, claim, nil)
}

func (v *FlooringValidator) registerRules() {
	add := func(rule rules.Rule) {
		rule.Enabled = true
		v.registry.MustAdd(rule)
		v.ruleIDs = append(v.ruleIDs, rule.ID)
	}

	add(rules.Rule{
		ID:           "FLR-001",
		Name:         "Flooring Waste Audit",
		Description:  "Calculate and flag excessive waste percentages (>10-15% for simple rooms)",
		Category:     domain.CategoryLeakage,
		Severity:     domain.SeverityWarning,
		CodePatterns: []string{`^FCC`, `^FNC`, `WASTE`},
		Validator:    v.validateWaste,
	})
	add(rules.Rule{
		ID:           "FLR-002",
		Name:         "Carpet/Pad Tear-Out Overlap",
		Description:  "Flag if carpet and pad tear-out are billed separately (pad usually included)",
		Category:     domain.CategoryLeakage,
		Severity:     domain.SeverityWarning,
		CodePatterns: []string{`CARPET.*TEAR`, `PAD.*TEAR`},
		Validator:    v.validateCarpetPadOverlap,
	})
	add(rules.Rule{
		ID:           "FLR-003",
		Name:         "Floor Preparation Check",
		Description:  "Flag missing floor leveling/prep for hardwood or tile replacement",
		Category:     domain.CategorySupplementRisk,
		Severity:     domain.SeverityInfo,
		CodePatterns: []string{`HARDWOOD.*REPLACE`, `TILE.*REPLACE`, `LEVEL`},
		Validator:    v.validateFloorPrep,
	})
	add(rules.Rule{
		ID:          "FLR-004",
		Name:        "Material Matching Check",
		Description: "Check if flooring replacement matches existing or includes transition strips",
		Category:    domain.CategorySupplementRisk,
		Severity:    domain.SeverityInfo,
		Validator:   v.validateMaterialMatching,
	})
}

// wasteThreshold returns the maximum waste-to-material ratio for a
// flooring type.
func (v *FlooringValidator) wasteThreshold(floorType string) float64 {
	switch floorType {
	case "carpet":
		return v.thresholds.Waste.Carpet
	case "hardwood":
		return v.thresholds.Waste.Hardwood
	case "tile":
		return v.thresholds.Waste.Tile
	case "vinyl_laminate":
		return v.thresholds.Waste.VinylLaminate
	}
	return 0.15
}

// flooringType buckets an item by the first flooring pattern to match,
// or returns "" for non-flooring items.
func flooringType(text string) string {
	switch {
	case xactimate.Carpet.MatchString(text):
		return "carpet"
	case xactimate.Hardwood.MatchString(text):
		return "hardwood"
	case xactimate.Tile.MatchString(text):
		return "tile"
	case xactimate.Vinyl.MatchString(text), xactimate.Laminate.MatchString(text):
		return "vinyl_laminate"
	}
	return ""
}

func (v *FlooringValidator) validateWaste(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	type bucket struct {
		material domain.Money
		waste    domain.Money
	}
	byType := map[string]*bucket{}

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()

		floorType := flooringType(text)
		if floorType == "" {
			continue
		}
		b := byType[floorType]
		if b == nil {
			b = &bucket{}
			byType[floorType] = b
		}

		// Waste lines win over install lines when both patterns match.
		if xactimate.Waste.MatchString(text) {
			b.waste = b.waste.Add(it.LineTotal())
		} else if xactimate.Install.MatchString(text) {
			b.material = b.material.Add(it.LineTotal())
		}
	}

	var findings []domain.AuditFinding
	for _, floorType := range flooringTypes {
		b := byType[floorType]
		if b == nil || !b.material.IsPositive() || !b.waste.IsPositive() {
			continue
		}

		maxWaste := v.wasteThreshold(floorType)
		wastePct, _ := b.waste.Div(b.material).Float64()
		if wastePct <= maxWaste {
			continue
		}

		threshold := domain.MoneyFromFloat(maxWaste)
		excessWaste := b.waste.Sub(b.material.Mul(threshold))
		findings = append(findings, domain.AuditFinding{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategoryLeakage,
			Severity:  domain.SeverityWarning,
			RuleName:  "Flooring Waste Audit",
			Title:     "Excessive " + titleCase(floorType) + " Waste",
			Description: fmt.Sprintf(
				"%s waste is %.1f%% of material cost, exceeding the %.0f%% threshold for simple room profiles.",
				titleCase(floorType), wastePct*100, maxWaste*100),
			PotentialImpact: moneyPtr(excessWaste),
			Evidence: map[string]interface{}{
				"floor_type":       floorType,
				"material_cost":    b.material.String(),
				"waste_cost":       b.waste.String(),
				"waste_percentage": fmt.Sprintf("%.1f%%", wastePct*100),
				"threshold":        fmt.Sprintf("%.0f%%", maxWaste*100),
			},
			Recommendation: "Review room layout complexity. Higher waste may be justified for irregular rooms, stairs, or pattern matching.",
		})
	}

	return findings, nil
}

func (v *FlooringValidator) validateCarpetPadOverlap(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	var carpetItems, padItems []string
	padTotal := domain.Money{}

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()
		if !xactimate.TearOut.MatchString(text) {
			continue
		}
		switch {
		case xactimate.Carpet.MatchString(text) && !xactimate.Pad.MatchString(text):
			carpetItems = append(carpetItems, itemRef(it))
		case xactimate.Pad.MatchString(text) && !xactimate.Carpet.MatchString(text):
			padItems = append(padItems, itemRef(it))
			padTotal = padTotal.Add(it.LineTotal())
		}
	}

	if len(carpetItems) == 0 || len(padItems) == 0 {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategoryLeakage,
		Severity:  domain.SeverityWarning,
		RuleName:  "Carpet/Pad Tear-Out Overlap",
		Title:     "Separate Carpet and Pad Tear-Out",
		Description: "Carpet tear-out and pad tear-out are billed as separate line items. " +
			"Standard practice includes pad removal with carpet tear-out.",
		AffectedItems:   append(append([]string{}, carpetItems...), padItems...),
		PotentialImpact: moneyPtr(padTotal),
		Evidence: map[string]interface{}{
			"carpet_tearout_count": len(carpetItems),
			"pad_tearout_count":    len(padItems),
			"pad_tearout_total":    padTotal.String(),
		},
		Recommendation: "Verify if pad tear-out is separate scope or if it should be included in carpet removal.",
	}}, nil
}

func (v *FlooringValidator) validateFloorPrep(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	var hardwoodItems, tileItems []string
	hasLeveling := false

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()

		if xactimate.Install.MatchString(text) || strings.Contains(strings.ToUpper(text), "REPLACE") {
			if xactimate.Hardwood.MatchString(text) {
				hardwoodItems = append(hardwoodItems, itemRef(it))
			} else if xactimate.Tile.MatchString(text) {
				tileItems = append(tileItems, itemRef(it))
			}
		}
		if xactimate.Leveling.MatchString(text) {
			hasLeveling = true
		}
	}

	var findings []domain.AuditFinding
	if len(hardwoodItems) > 0 && !hasLeveling {
		findings = append(findings, domain.AuditFinding{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategorySupplementRisk,
			Severity:  domain.SeverityInfo,
			RuleName:  "Floor Preparation Check",
			Title:     "Missing Floor Prep for Hardwood",
			Description: "Hardwood flooring replacement found but no floor leveling/preparation. " +
				"This may result in a supplement if subfloor prep is needed.",
			AffectedItems: hardwoodItems,
			Evidence: map[string]interface{}{
				"hardwood_replace": true,
				"floor_leveling":   hasLeveling,
			},
			Recommendation: "Verify subfloor condition and include prep work if needed to avoid supplements.",
		})
	}
	if len(tileItems) > 0 && !hasLeveling {
		findings = append(findings, domain.AuditFinding{
			FindingID: v.registry.NewFindingID(),
			Category:  domain.CategorySupplementRisk,
			Severity:  domain.SeverityInfo,
			RuleName:  "Floor Preparation Check",
			Title:     "Missing Floor Prep for Tile",
			Description: "Tile flooring replacement found but no floor leveling/preparation. " +
				"Tile installation typically requires flat, level subfloor.",
			AffectedItems: tileItems,
			Evidence: map[string]interface{}{
				"tile_replace":   true,
				"floor_leveling": hasLeveling,
			},
			Recommendation: "Verify subfloor flatness and include self-leveling compound if needed.",
		})
	}

	return findings, nil
}

func (v *FlooringValidator) validateMaterialMatching(claim *domain.ClaimData, _ rules.Context) ([]domain.AuditFinding, error) {
	var flooringRooms []string
	seenRooms := map[string]bool{}
	hasTransition := false

	for i := range claim.LineItems {
		it := &claim.LineItems[i]
		text := it.Text()

		if xactimate.Install.MatchString(text) && it.Room != "" && flooringType(text) != "" {
			if !seenRooms[it.Room] {
				seenRooms[it.Room] = true
				flooringRooms = append(flooringRooms, it.Room)
			}
		}
		if xactimate.Transition.MatchString(text) {
			hasTransition = true
		}
	}

	if len(flooringRooms) < 2 || hasTransition {
		return nil, nil
	}
	return []domain.AuditFinding{{
		FindingID: v.registry.NewFindingID(),
		Category:  domain.CategorySupplementRisk,
		Severity:  domain.SeverityInfo,
		RuleName:  "Material Matching Check",
		Title:     "Missing Transition Strips",
		Description: fmt.Sprintf(
			"Flooring in %d rooms but no transition strips found. Transitions may be needed between rooms or flooring types.",
			len(flooringRooms)),
		Evidence: map[string]interface{}{
			"rooms_with_flooring": flooringRooms,
			"transition_found":    hasTransition,
		},
		Recommendation: "Verify if transition strips are needed between rooms or at flooring type changes.",
	}}, nil
}
