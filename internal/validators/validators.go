// Package validators implements the audit rule modules. Each validator
// registers its rules into a shared registry at construction time and
// executes them in registration order, so findings come back in a
// stable order for a given claim.
package validators

import (
	"strconv"
	"strings"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// titleCase uppercases the first letter of every word, where words are
// separated by any non-letter. Matches the casing used in finding
// titles, e.g. "vinyl_laminate" -> "Vinyl_Laminate".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			b.WriteRune(r &^0x20)
		case isLetter:
			b.WriteRune(r | 0x20)
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}

// itemRef renders a line item as "CODE: description" for affected-item
// lists.
func itemRef(it *domain.LineItem) string {
	return it.Code + ": " + it.Description
}

// usd renders a money amount as "$1,234.56" for finding descriptions.
func usd(m domain.Money) string {
	return "$" + domain.FormatUSD(m)
}

// formatQty renders a quantity without trailing zeros, e.g. 12 not 12.0.
func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// moneyPtr returns a pointer for optional potential-impact fields.
func moneyPtr(m domain.Money) *domain.Money {
	return &m
}
