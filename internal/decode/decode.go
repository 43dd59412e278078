// Package decode turns uploaded claim payloads into finalized domain
// claims. Three shapes are accepted: a snake_case JSON document, an
// already-parsed map, and a header-driven CSV line-item export.
package decode

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// ClaimFromJSON decodes a claim document and fills derived fields.
// Monetary values are read from the raw number text, never through a
// float, so amounts like 0.85 stay exact. Validation failures surface
// as domain.ValidationError.
func ClaimFromJSON(data []byte) (*domain.ClaimData, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var claim domain.ClaimData
	if err := dec.Decode(&claim); err != nil {
		return nil, fmt.Errorf("decode claim json: %w", err)
	}
	if err := claim.Finalize(); err != nil {
		return nil, err
	}
	return &claim, nil
}

// ClaimFromMap builds a claim from an already-parsed document with the
// same derivation and validation semantics as ClaimFromJSON. Numbers
// carried as json.Number keep their exact decimal form.
func ClaimFromMap(m map[string]interface{}) (*domain.ClaimData, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode claim map: %w", err)
	}
	return ClaimFromJSON(raw)
}
