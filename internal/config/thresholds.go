package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AirMoverThresholds sizes air mover counts against affected square
// footage and prices the excess.
type AirMoverThresholds struct {
	SqftPerUnitMin float64 `yaml:"sqft_per_unit_min"` // one unit per N sqft, lower bound
	SqftPerUnitMax float64 `yaml:"sqft_per_unit_max"` // one unit per N sqft, upper bound
	DailyRateUSD   float64 `yaml:"daily_rate_usd"`    // typical per-unit daily rate
}

// DehumidifierThresholds sizes dehumidifier counts.
type DehumidifierThresholds struct {
	SqftPerUnit float64 `yaml:"sqft_per_unit"` // one unit per N sqft
}

// MonitoringThresholds bounds daily monitoring charges.
type MonitoringThresholds struct {
	DailyRateUSD float64 `yaml:"daily_rate_usd"` // typical monitoring day rate
	DayVariance  int     `yaml:"day_variance"`   // tolerated monitoring-vs-equipment day gap
}

// WasteThresholds caps waste as a fraction of material cost per floor type.
type WasteThresholds struct {
	Carpet        float64 `yaml:"carpet"`
	Hardwood      float64 `yaml:"hardwood"`
	Tile          float64 `yaml:"tile"`
	VinylLaminate float64 `yaml:"vinyl_laminate"`
}

// ServiceCallThresholds bounds trip charges per claim.
type ServiceCallThresholds struct {
	MaxCount     int     `yaml:"max_count"`     // service calls tolerated before flagging
	SavingsRatio float64 `yaml:"savings_ratio"` // consolidation savings estimate
}

// AuditThresholds carries every numeric knob the audit rules consult.
// Defaults reproduce standard industry heuristics; a YAML file can
// override any of them.
type AuditThresholds struct {
	AirMover     AirMoverThresholds     `yaml:"air_mover"`
	Dehumidifier DehumidifierThresholds `yaml:"dehumidifier"`
	Monitoring   MonitoringThresholds   `yaml:"monitoring"`
	Waste        WasteThresholds        `yaml:"waste"`
	ServiceCall  ServiceCallThresholds  `yaml:"service_call"`
}

// GetDefaultThresholds returns the built-in audit thresholds.
func GetDefaultThresholds() *AuditThresholds {
	return &AuditThresholds{
		AirMover: AirMoverThresholds{
			SqftPerUnitMin: 50,
			SqftPerUnitMax: 70,
			DailyRateUSD:   35,
		},
		Dehumidifier: DehumidifierThresholds{
			SqftPerUnit: 1000,
		},
		Monitoring: MonitoringThresholds{
			DailyRateUSD: 75,
			DayVariance:  2,
		},
		Waste: WasteThresholds{
			Carpet:        0.10,
			Hardwood:      0.15,
			Tile:          0.15,
			VinylLaminate: 0.10,
		},
		ServiceCall: ServiceCallThresholds{
			MaxCount:     2,
			SavingsRatio: 0.25,
		},
	}
}

// LoadThresholds loads audit thresholds from a YAML file. Fields absent
// from the file keep their defaults.
func LoadThresholds(configPath string) (*AuditThresholds, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read thresholds file %s: %w", configPath, err)
	}

	thresholds := GetDefaultThresholds()
	if err := yaml.Unmarshal(data, thresholds); err != nil {
		return nil, fmt.Errorf("failed to parse thresholds YAML: %w", err)
	}

	if err := validateThresholds(thresholds); err != nil {
		return nil, fmt.Errorf("invalid thresholds: %w", err)
	}
	return thresholds, nil
}

// validateThresholds ensures all thresholds are usable by the rules.
func validateThresholds(t *AuditThresholds) error {
	if t.AirMover.SqftPerUnitMin <= 0 || t.AirMover.SqftPerUnitMax <= 0 {
		return fmt.Errorf("air mover sqft per unit must be positive")
	}
	if t.AirMover.SqftPerUnitMin > t.AirMover.SqftPerUnitMax {
		return fmt.Errorf("air mover sqft band inverted: min %v > max %v",
			t.AirMover.SqftPerUnitMin, t.AirMover.SqftPerUnitMax)
	}
	if t.AirMover.DailyRateUSD < 0 || t.Monitoring.DailyRateUSD < 0 {
		return fmt.Errorf("daily rates must not be negative")
	}
	if t.Dehumidifier.SqftPerUnit <= 0 {
		return fmt.Errorf("dehumidifier sqft per unit must be positive")
	}
	if t.Monitoring.DayVariance < 0 {
		return fmt.Errorf("monitoring day variance must not be negative")
	}
	for name, ratio := range map[string]float64{
		"carpet":         t.Waste.Carpet,
		"hardwood":       t.Waste.Hardwood,
		"tile":           t.Waste.Tile,
		"vinyl_laminate": t.Waste.VinylLaminate,
	} {
		if ratio < 0 || ratio > 1 {
			return fmt.Errorf("waste threshold %s = %v outside [0,1]", name, ratio)
		}
	}
	if t.ServiceCall.MaxCount < 0 {
		return fmt.Errorf("service call max count must not be negative")
	}
	if t.ServiceCall.SavingsRatio < 0 || t.ServiceCall.SavingsRatio > 1 {
		return fmt.Errorf("service call savings ratio %v outside [0,1]", t.ServiceCall.SavingsRatio)
	}
	return nil
}
