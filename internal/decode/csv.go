package decode

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// ClaimFromCSV reads a line-item export with one estimate row per
// record. Columns may be named code|Code, description|Description,
// quantity|Quantity, unit_price|Unit Price, and room|Room; absent or
// empty cells fall back to code "UNKNOWN", description "", quantity 1,
// and unit price 0. The rows are wrapped in a synthesized claim with
// placeholder policy terms and one affected room so every validator
// has enough context to run.
func ClaimFromCSV(r io.Reader) (*domain.ClaimData, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var items []domain.LineItem
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		item := domain.LineItem{Code: "UNKNOWN", Quantity: 1}
		if v, ok := cell(index, record, "code", "Code"); ok && v != "" {
			item.Code = v
		}
		if v, ok := cell(index, record, "description", "Description"); ok {
			item.Description = v
		}
		if v, ok := cell(index, record, "quantity", "Quantity"); ok && v != "" {
			qty, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: parse quantity %q: %w", line, v, err)
			}
			item.Quantity = qty
		}
		if v, ok := cell(index, record, "unit_price", "Unit Price"); ok && v != "" {
			price, err := domain.MoneyFromString(v)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: parse unit_price %q: %w", line, v, err)
			}
			item.UnitPrice = price
		}
		if v, ok := cell(index, record, "room", "Room"); ok {
			item.Room = v
		}
		items = append(items, item)
	}

	claim := &domain.ClaimData{
		ClaimID: "UPLOADED-CLAIM",
		Policy: domain.PolicyCoverage{
			Deductible: domain.MoneyFromInt(1000),
			CoverageA:  domain.MoneyFromInt(250000),
			CoverageB:  domain.MoneyFromInt(25000),
			CoverageC:  domain.MoneyFromInt(125000),
		},
		LineItems: items,
		Property: domain.PropertyDetails{
			AffectedRooms: []domain.Room{{Name: "Uploaded Area", Sqft: 500, Affected: true}},
		},
	}
	if err := claim.Finalize(); err != nil {
		return nil, err
	}
	return claim, nil
}

func cell(index map[string]int, record []string, names ...string) (string, bool) {
	for _, name := range names {
		if i, ok := index[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i]), true
		}
	}
	return "", false
}
