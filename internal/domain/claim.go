package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ValidationError contains detailed claim construction failure information
type ValidationError struct {
	Field   string
	Message string
	Details map[string]interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Field, e.Message)
}

// Room is a single area of the property. Rooms are immutable once the
// claim is finalized.
type Room struct {
	Name      string  `json:"name"`
	Sqft      float64 `json:"sqft"`
	RoomType  string  `json:"room_type,omitempty"`
	FloorType string  `json:"floor_type,omitempty"`
	Affected  bool    `json:"affected"`
}

// UnmarshalJSON defaults affected to true when the field is absent.
func (r *Room) UnmarshalJSON(data []byte) error {
	type alias Room
	aux := alias{Affected: true}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Room(aux)
	return nil
}

// PropertyDetails describes the insured property and its affected areas.
type PropertyDetails struct {
	AffectedRooms     []Room   `json:"affected_rooms,omitempty"`
	WaterCategory     *int     `json:"water_category,omitempty"`
	TotalAffectedSqft *float64 `json:"total_affected_sqft,omitempty"`
	PropertyType      string   `json:"property_type,omitempty"`
}

// AffectedSqft returns the stored total when present, otherwise the sum
// of sqft across rooms marked affected.
func (p *PropertyDetails) AffectedSqft() float64 {
	if p.TotalAffectedSqft != nil {
		return *p.TotalAffectedSqft
	}
	var total float64
	for _, room := range p.AffectedRooms {
		if room.Affected {
			total += room.Sqft
		}
	}
	return total
}

// PolicyCoverage carries the coverage limits and deductible in force.
type PolicyCoverage struct {
	Deductible       Money  `json:"deductible"`
	CoverageA        Money  `json:"coverage_a"`
	CoverageB        Money  `json:"coverage_b"`
	CoverageC        Money  `json:"coverage_c"`
	CoverageD        *Money `json:"coverage_d,omitempty"`
	WaterDamageLimit *Money `json:"water_damage_limit,omitempty"`
	MoldLimit        *Money `json:"mold_limit,omitempty"`
	ContentsLimit    *Money `json:"contents_limit,omitempty"`
}

// LineItem is one Xactimate-style estimate row. Days is set only for
// rental equipment.
type LineItem struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	UnitPrice   Money   `json:"unit_price"`
	Total       *Money  `json:"total,omitempty"`
	Category    string  `json:"category,omitempty"`
	Room        string  `json:"room,omitempty"`
	Days        *int    `json:"days,omitempty"`
}

// LineTotal returns the stored total when present, otherwise quantity
// times unit price.
func (it *LineItem) LineTotal() Money {
	if it.Total != nil {
		return *it.Total
	}
	return MoneyFromFloat(it.Quantity).Mul(it.UnitPrice)
}

// Text returns the combined code and description probed by audit rules.
func (it *LineItem) Text() string {
	return it.Code + " " + it.Description
}

// ClaimData is a complete claim as submitted for audit. Claims are
// constructed once, finalized, and never mutated by the audit engine.
type ClaimData struct {
	ClaimID    string                 `json:"claim_id"`
	ClaimDate  *time.Time             `json:"claim_date,omitempty"`
	Policy     PolicyCoverage         `json:"policy"`
	LineItems  []LineItem             `json:"line_items"`
	Property   PropertyDetails        `json:"property_details"`
	GrossClaim *Money                 `json:"gross_claim,omitempty"`
	NetClaim   *Money                 `json:"net_claim,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Gross returns the stored gross claim when present, otherwise the sum
// of line item totals.
func (c *ClaimData) Gross() Money {
	if c.GrossClaim != nil {
		return *c.GrossClaim
	}
	total := Money{}
	for i := range c.LineItems {
		total = total.Add(c.LineItems[i].LineTotal())
	}
	return total
}

// Net returns the stored net claim when present, otherwise gross minus
// deductible floored at zero.
func (c *ClaimData) Net() Money {
	if c.NetClaim != nil {
		return *c.NetClaim
	}
	net := c.Gross().Sub(c.Policy.Deductible)
	if net.IsNegative() {
		return Money{}
	}
	return net
}

// Validate checks field constraints without mutating the claim.
func (c *ClaimData) Validate() error {
	if strings.TrimSpace(c.ClaimID) == "" {
		return ValidationError{Field: "claim_id", Message: "claim_id is required"}
	}
	if c.Policy.Deductible.IsNegative() {
		return ValidationError{
			Field:   "policy.deductible",
			Message: "deductible must not be negative",
			Details: map[string]interface{}{"deductible": c.Policy.Deductible.String()},
		}
	}
	coverages := []struct {
		name   string
		amount Money
	}{
		{"coverage_a", c.Policy.CoverageA},
		{"coverage_b", c.Policy.CoverageB},
		{"coverage_c", c.Policy.CoverageC},
	}
	for _, cov := range coverages {
		if cov.amount.IsNegative() {
			return ValidationError{
				Field:   "policy." + cov.name,
				Message: cov.name + " must not be negative",
				Details: map[string]interface{}{cov.name: cov.amount.String()},
			}
		}
	}
	if c.Policy.CoverageD != nil && c.Policy.CoverageD.IsNegative() {
		return ValidationError{
			Field:   "policy.coverage_d",
			Message: "coverage_d must not be negative",
			Details: map[string]interface{}{"coverage_d": c.Policy.CoverageD.String()},
		}
	}
	if wc := c.Property.WaterCategory; wc != nil && (*wc < 1 || *wc > 3) {
		return ValidationError{
			Field:   "property_details.water_category",
			Message: "water_category must be 1, 2, or 3",
			Details: map[string]interface{}{"water_category": *wc},
		}
	}
	for i := range c.LineItems {
		it := &c.LineItems[i]
		if strings.TrimSpace(it.Code) == "" {
			return ValidationError{
				Field:   fmt.Sprintf("line_items[%d].code", i),
				Message: "line item code is required",
			}
		}
		if it.Quantity < 0 {
			return ValidationError{
				Field:   fmt.Sprintf("line_items[%d].quantity", i),
				Message: "quantity must not be negative",
				Details: map[string]interface{}{"quantity": it.Quantity},
			}
		}
		if it.UnitPrice.IsNegative() {
			return ValidationError{
				Field:   fmt.Sprintf("line_items[%d].unit_price", i),
				Message: "unit_price must not be negative",
				Details: map[string]interface{}{"unit_price": it.UnitPrice.String()},
			}
		}
	}
	for i, room := range c.Property.AffectedRooms {
		if room.Sqft <= 0 {
			return ValidationError{
				Field:   fmt.Sprintf("property_details.affected_rooms[%d].sqft", i),
				Message: "room sqft must be positive",
				Details: map[string]interface{}{"sqft": room.Sqft, "room": room.Name},
			}
		}
	}
	return nil
}

// Finalize validates the claim and fills derived fields that were not
// supplied: per-item totals, total affected sqft, gross and net claim.
// Call once at construction time.
func (c *ClaimData) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	for i := range c.LineItems {
		it := &c.LineItems[i]
		if it.Unit == "" {
			it.Unit = "EA"
		}
		if it.Total == nil {
			total := MoneyFromFloat(it.Quantity).Mul(it.UnitPrice)
			it.Total = &total
		}
	}
	if c.Property.PropertyType == "" {
		c.Property.PropertyType = "residential"
	}
	for i := range c.Property.AffectedRooms {
		if c.Property.AffectedRooms[i].RoomType == "" {
			c.Property.AffectedRooms[i].RoomType = "standard"
		}
	}
	if c.Property.TotalAffectedSqft == nil && len(c.Property.AffectedRooms) > 0 {
		total := 0.0
		for _, room := range c.Property.AffectedRooms {
			if room.Affected {
				total += room.Sqft
			}
		}
		c.Property.TotalAffectedSqft = &total
	}
	if c.GrossClaim == nil && len(c.LineItems) > 0 {
		gross := Money{}
		for i := range c.LineItems {
			gross = gross.Add(*c.LineItems[i].Total)
		}
		c.GrossClaim = &gross
	}
	if c.NetClaim == nil && c.GrossClaim != nil {
		net := c.GrossClaim.Sub(c.Policy.Deductible)
		if net.IsNegative() {
			net = Money{}
		}
		c.NetClaim = &net
	}
	return nil
}
