// Package redact strips personally identifiable information from claim
// data and audit scorecards before they leave the engine, keeping a log
// of every substitution for compliance review.
package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/claimaudit/claimaudit/internal/domain"
)

// Placeholder replaces every redacted value.
const Placeholder = "[REDACTED]"

// Redaction records one substitution performed by a Redactor.
type Redaction struct {
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Kind        string `json:"kind"`
	FieldPath   string `json:"field_path"`
}

type namedPattern struct {
	kind string
	re   *regexp.Regexp
}

// valuePatterns apply to free-text values in declaration order; earlier
// kinds claim overlapping matches (a bare 9-digit run is logged as ssn,
// never bank_account). The bank_account pattern is deliberately broad
// and will also catch policy-number-like digit runs.
var valuePatterns = []namedPattern{
	{"ssn", regexp.MustCompile(`\b\d{3}[-\s]?\d{2}[-\s]?\d{4}\b`)},
	{"phone", regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)},
	{"credit_card", regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b|\b\d{15,16}\b`)},
	{"bank_account", regexp.MustCompile(`\b\d{8,17}\b`)},
	{"drivers_license", regexp.MustCompile(`\b[A-Z]{1,2}\d{5,8}\b`)},
	{"date_of_birth", regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])[/\-](?:0?[1-9]|[12]\d|3[01])[/\-](?:19|20)\d{2}\b`)},
	{"zip_code", regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)},
}

var (
	addressPattern = regexp.MustCompile(`(?i)\b\d+\s+[\w\s]+(?:street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|court|ct|lane|ln|way|circle|cir|place|pl)\b`)

	nameTitlePattern = regexp.MustCompile(`(?i)\b(?:Mr\.|Mrs\.|Ms\.|Dr\.|Prof\.)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`)
)

// piiFields names dictionary keys whose string values are replaced
// wholesale, independent of content. The check also fires when a key
// merely contains one of these as a substring.
var piiFields = map[string]struct{}{
	"name":             {},
	"first_name":       {},
	"last_name":        {},
	"full_name":        {},
	"insured_name":     {},
	"claimant_name":    {},
	"policyholder":     {},
	"ssn":              {},
	"social_security":  {},
	"phone":            {},
	"telephone":        {},
	"mobile":           {},
	"email":            {},
	"email_address":    {},
	"address":          {},
	"street_address":   {},
	"mailing_address":  {},
	"property_address": {},
	"date_of_birth":    {},
	"dob":              {},
	"birth_date":       {},
	"driver_license":   {},
	"drivers_license":  {},
	"dl_number":        {},
	"account_number":   {},
	"routing_number":   {},
	"credit_card":      {},
	"card_number":      {},
}

func isPIIField(key string) bool {
	k := strings.ToLower(key)
	if _, ok := piiFields[k]; ok {
		return true
	}
	for f := range piiFields {
		if strings.Contains(k, f) {
			return true
		}
	}
	return false
}

// Redactor replaces PII in strings, maps, claims, and scorecards. Each
// engine holds its own instance; it is not safe for concurrent use.
type Redactor struct {
	redactNames     bool
	redactAddresses bool
	custom          []namedPattern
	log             []Redaction
}

// NewRedactor returns a redactor with name and address redaction enabled.
func NewRedactor() *Redactor {
	return &Redactor{redactNames: true, redactAddresses: true}
}

// SetRedactNames toggles redaction of title-prefixed names (Mr., Dr., ...).
func (r *Redactor) SetRedactNames(enabled bool) { r.redactNames = enabled }

// SetRedactAddresses toggles redaction of street addresses.
func (r *Redactor) SetRedactAddresses(enabled bool) { r.redactAddresses = enabled }

// AddPattern registers a caller-supplied pattern. Its matches are logged
// with kind "custom_<kind>" and applied after the built-in patterns.
func (r *Redactor) AddPattern(kind string, re *regexp.Regexp) {
	r.custom = append(r.custom, namedPattern{kind: kind, re: re})
}

// Log returns a copy of all redactions performed so far.
func (r *Redactor) Log() []Redaction {
	out := make([]Redaction, len(r.log))
	copy(out, r.log)
	return out
}

// ClearLog discards the redaction log.
func (r *Redactor) ClearLog() { r.log = nil }

// Summary counts logged redactions by PII kind.
func (r *Redactor) Summary() map[string]int {
	out := make(map[string]int)
	for _, entry := range r.log {
		out[entry.Kind]++
	}
	return out
}

// RedactString replaces every PII pattern match in value. fieldPath is
// recorded with each log entry so callers can trace where a substitution
// happened.
func (r *Redactor) RedactString(value, fieldPath string) string {
	if value == "" {
		return value
	}
	result := value
	for _, p := range valuePatterns {
		result = r.applyPattern(result, p.kind, p.re, fieldPath)
	}
	for _, p := range r.custom {
		result = r.applyPattern(result, "custom_"+p.kind, p.re, fieldPath)
	}
	if r.redactAddresses {
		result = r.applyPattern(result, "address", addressPattern, fieldPath)
	}
	if r.redactNames {
		result = r.applyPattern(result, "name", nameTitlePattern, fieldPath)
	}
	return result
}

func (r *Redactor) applyPattern(value, kind string, re *regexp.Regexp, fieldPath string) string {
	for _, m := range re.FindAllString(value, -1) {
		if m == "" {
			continue
		}
		r.log = append(r.log, Redaction{
			Original:    m,
			Replacement: Placeholder,
			Kind:        kind,
			FieldPath:   fieldPath,
		})
		value = strings.ReplaceAll(value, m, Placeholder)
	}
	return value
}

// redactField applies the known-field branch before falling back to
// pattern redaction: a PII-bearing key redacts the whole value no matter
// what it contains.
func (r *Redactor) redactField(key, value, fieldPath string) string {
	if isPIIField(key) {
		r.log = append(r.log, Redaction{
			Original:    value,
			Replacement: Placeholder,
			Kind:        "pii_field",
			FieldPath:   fieldPath,
		})
		return Placeholder
	}
	return r.RedactString(value, fieldPath)
}

// RedactMap returns a redacted copy of data, walking nested maps and
// lists. Keys are visited in sorted order so the log is deterministic.
func (r *Redactor) RedactMap(data map[string]interface{}, pathPrefix string) map[string]interface{} {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, len(data))
	for _, key := range keys {
		fieldPath := key
		if pathPrefix != "" {
			fieldPath = pathPrefix + "." + key
		}
		switch tv := data[key].(type) {
		case map[string]interface{}:
			out[key] = r.RedactMap(tv, fieldPath)
		case []interface{}:
			out[key] = r.RedactList(tv, fieldPath)
		case []string:
			items := make([]string, len(tv))
			for i, s := range tv {
				items[i] = r.RedactString(s, fmt.Sprintf("%s[%d]", fieldPath, i))
			}
			out[key] = items
		case string:
			out[key] = r.redactField(key, tv, fieldPath)
		default:
			out[key] = data[key]
		}
	}
	return out
}

// RedactList returns a redacted copy of data, recursing into nested
// containers and indexing field paths as prefix[i].
func (r *Redactor) RedactList(data []interface{}, pathPrefix string) []interface{} {
	out := make([]interface{}, len(data))
	for i, item := range data {
		fieldPath := fmt.Sprintf("%s[%d]", pathPrefix, i)
		switch tv := item.(type) {
		case map[string]interface{}:
			out[i] = r.RedactMap(tv, fieldPath)
		case []interface{}:
			out[i] = r.RedactList(tv, fieldPath)
		case string:
			out[i] = r.RedactString(tv, fieldPath)
		default:
			out[i] = item
		}
	}
	return out
}

// RedactClaim returns a redacted copy of the claim. The input is not
// modified. Room names are treated as known PII fields; a claim ID that
// still matches a PII pattern after redaction collapses to
// "CLM-[REDACTED]".
func (r *Redactor) RedactClaim(claim *domain.ClaimData) *domain.ClaimData {
	before := len(r.log)
	out := *claim

	out.ClaimID = r.RedactString(claim.ClaimID, "claim_id")

	out.LineItems = make([]domain.LineItem, len(claim.LineItems))
	for i, item := range claim.LineItems {
		p := fmt.Sprintf("line_items[%d]", i)
		item.Code = r.RedactString(item.Code, p+".code")
		item.Description = r.RedactString(item.Description, p+".description")
		item.Unit = r.RedactString(item.Unit, p+".unit")
		item.Category = r.RedactString(item.Category, p+".category")
		item.Room = r.RedactString(item.Room, p+".room")
		out.LineItems[i] = item
	}

	out.Property.AffectedRooms = make([]domain.Room, len(claim.Property.AffectedRooms))
	for i, room := range claim.Property.AffectedRooms {
		p := fmt.Sprintf("property.affected_rooms[%d]", i)
		room.Name = r.redactField("name", room.Name, p+".name")
		room.RoomType = r.RedactString(room.RoomType, p+".room_type")
		room.FloorType = r.RedactString(room.FloorType, p+".floor_type")
		out.Property.AffectedRooms[i] = room
	}
	out.Property.PropertyType = r.RedactString(claim.Property.PropertyType, "property.property_type")

	if claim.Metadata != nil {
		out.Metadata = r.RedactMap(claim.Metadata, "metadata")
	}

	if matchesAnyPII(out.ClaimID) {
		out.ClaimID = "CLM-" + Placeholder
	}

	log.Debug().
		Str("claim_id", out.ClaimID).
		Int("redactions", len(r.log)-before).
		Msg("claim PII redacted")
	return &out
}

// RedactScorecard returns a redacted copy of the scorecard with the
// redacted flag set. The input is not modified.
func (r *Redactor) RedactScorecard(sc *domain.AuditScorecard) *domain.AuditScorecard {
	before := len(r.log)
	out := *sc

	out.ClaimID = r.RedactString(sc.ClaimID, "claim_id")
	if sc.ClaimSummary != nil {
		out.ClaimSummary = r.RedactMap(sc.ClaimSummary, "claim_summary")
	}

	out.Findings = make([]domain.AuditFinding, len(sc.Findings))
	for i, f := range sc.Findings {
		p := fmt.Sprintf("findings[%d]", i)
		f.FindingID = r.RedactString(f.FindingID, p+".finding_id")
		f.RuleName = r.redactField("rule_name", f.RuleName, p+".rule_name")
		f.Title = r.RedactString(f.Title, p+".title")
		f.Description = r.RedactString(f.Description, p+".description")
		if len(f.AffectedItems) > 0 {
			items := make([]string, len(f.AffectedItems))
			for j, item := range f.AffectedItems {
				items[j] = r.RedactString(item, fmt.Sprintf("%s.affected_items[%d]", p, j))
			}
			f.AffectedItems = items
		}
		f.Recommendation = r.RedactString(f.Recommendation, p+".recommendation")
		if f.Evidence != nil {
			f.Evidence = r.RedactMap(f.Evidence, p+".evidence")
		}
		out.Findings[i] = f
	}

	if len(sc.ModulesExecuted) > 0 {
		out.ModulesExecuted = append([]string(nil), sc.ModulesExecuted...)
	}
	out.Redacted = true

	log.Debug().
		Str("claim_id", out.ClaimID).
		Int("redactions", len(r.log)-before).
		Msg("scorecard PII redacted")
	return &out
}

func matchesAnyPII(s string) bool {
	for _, p := range valuePatterns {
		if p.re.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact is a one-shot convenience over a fresh Redactor. It accepts a
// claim, a scorecard, or a generic map and fails on anything else.
func Redact(v interface{}) (interface{}, error) {
	r := NewRedactor()
	switch tv := v.(type) {
	case *domain.ClaimData:
		return r.RedactClaim(tv), nil
	case *domain.AuditScorecard:
		return r.RedactScorecard(tv), nil
	case map[string]interface{}:
		return r.RedactMap(tv, ""), nil
	default:
		return nil, fmt.Errorf("redact: unsupported type %T", v)
	}
}
