// Package xactimate parses and classifies Xactimate-style estimate codes.
// It owns every named regex the audit rules probe with, so pattern
// behavior stays consistent across validators.
package xactimate

import (
	"regexp"
	"strings"
	"sync"
)

// Category is the trade category encoded in a line item code prefix.
type Category string

const (
	CategoryWTR     Category = "WTR" // water remediation
	CategoryDRY     Category = "DRY" // drying equipment / drywall
	CategoryFCC     Category = "FCC" // flooring, carpet
	CategoryFNC     Category = "FNC" // flooring, non-carpet
	CategoryPNT     Category = "PNT" // painting
	CategoryCLN     Category = "CLN" // cleaning
	CategoryDEM     Category = "DEM" // demolition
	CategoryCNT     Category = "CNT" // contents
	CategoryGEN     Category = "GEN" // general
	CategoryUnknown Category = "UNKNOWN"
)

// categoryProbes is checked in order; first match wins.
var categoryProbes = []struct {
	category Category
	re       *regexp.Regexp
}{
	{CategoryWTR, regexp.MustCompile(`(?i)^WTR[_\-]?`)},
	{CategoryDRY, regexp.MustCompile(`(?i)^DRY[_\-]?`)},
	{CategoryFCC, regexp.MustCompile(`(?i)^FCC[_\-]?`)},
	{CategoryFNC, regexp.MustCompile(`(?i)^FNC[_\-]?`)},
	{CategoryPNT, regexp.MustCompile(`(?i)^PNT[_\-]?`)},
	{CategoryCLN, regexp.MustCompile(`(?i)^CLN[_\-]?`)},
	{CategoryDEM, regexp.MustCompile(`(?i)^DEM[_\-]?`)},
	{CategoryCNT, regexp.MustCompile(`(?i)^CNT[_\-]?`)},
	{CategoryGEN, regexp.MustCompile(`(?i)^GEN[_\-]?`)},
}

// Equipment probes.
var (
	AirMover      = regexp.MustCompile(`(?i)(AIR\s*MOVER|AIRF|AIR_F|FAN)`)
	Dehumidifier  = regexp.MustCompile(`(?i)(DEHUM|DEHU|DH\d+)`)
	AirScrubber   = regexp.MustCompile(`(?i)(AIR\s*SCRUB|HEPA|SCRUB)`)
	MoistureMeter = regexp.MustCompile(`(?i)(MOIST|METER|READ)`)
)

// Water remediation probes.
var (
	DailyMonitor = regexp.MustCompile(`(?i)(DAILY\s*MONITOR|MONITOR.*DAILY|MOISTURE\s*READ)`)
	PPECat3      = regexp.MustCompile(`(?i)(PPE|TYVEK|RESPIRATOR|HAZMAT|BIOHAZ)`)
	Cat3Cleaning = regexp.MustCompile(`(?i)(ANTIMICROBIAL|DISINFECT|SANITIZE|BIOCIDE)`)
)

// Flooring probes. Pad requires a whole-word match so codes like
// "PADREM" inside larger tokens do not trip it.
var (
	Carpet     = regexp.MustCompile(`(?i)(CARPET|CPT|CRPT)`)
	Pad        = regexp.MustCompile(`(?i)\b(PAD|CUSHION|UNDERLAY)\b`)
	Hardwood   = regexp.MustCompile(`(?i)(HARDWOOD|HWD|WOOD\s*FLOOR|ENGINEERED)`)
	Tile       = regexp.MustCompile(`(?i)(TILE|CERAMIC|PORCELAIN|STONE)`)
	Laminate   = regexp.MustCompile(`(?i)(LAMINATE|LAM\s*FLOOR)`)
	Vinyl      = regexp.MustCompile(`(?i)(VINYL|VNL|LVP|LVT|SHEET)`)
	TearOut    = regexp.MustCompile(`(?i)(TEAR\s*OUT|REMOVE|REM\s|R&R|DEMO)`)
	Install    = regexp.MustCompile(`(?i)(INSTALL|INST|LAY|REPLACE)`)
	Waste      = regexp.MustCompile(`(?i)(WASTE|CUTOFF|CUT\s*OFF|OVERAGE)`)
	Leveling   = regexp.MustCompile(`(?i)(LEVEL|PREP|SUBFLOOR|SELF\s*LEVEL|FLOAT)`)
	Transition = regexp.MustCompile(`(?i)(TRANSITION|T-MOLD|REDUCER|THRESHOLD)`)
)

// General repair probes.
var (
	ContentManipulation = regexp.MustCompile(`(?i)(CONTENT\s*MANIP|MOVE\s*CONTENT|FURNITURE\s*MOVE|MOVE\s*OUT)`)
	BlockingPadding     = regexp.MustCompile(`(?i)(BLOCK|PAD|PROTECT|COVER|MASK).*?(CONTENT|FURNITURE|APPLIANCE)`)
	FlooringWork        = regexp.MustCompile(`(?i)(FLOOR|CARPET|HARDWOOD|TILE|VINYL|LAMINATE).*(INSTALL|REPLACE|TEAR|REMOVE)`)
	ServiceCall         = regexp.MustCompile(`(?i)(SERVICE\s*CALL|TRIP\s*CHARGE|MOBILIZATION|SETUP)`)
)

// LaborMinimumTrades lists the trade probes for labor minimum charges,
// in the order GEN-003 evaluates them.
var LaborMinimumTrades = []struct {
	Trade string
	Re    *regexp.Regexp
}{
	{"plumber", regexp.MustCompile(`(?i)PLUMB.*MIN|MIN.*PLUMB`)},
	{"electrician", regexp.MustCompile(`(?i)ELEC.*MIN|MIN.*ELEC`)},
	{"hvac", regexp.MustCompile(`(?i)HVAC.*MIN|MIN.*HVAC`)},
	{"general", regexp.MustCompile(`(?i)(LABOR|LBR).*MIN|MIN.*(LABOR|LBR)`)},
}

var laborProbes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)LABOR`),
	regexp.MustCompile(`(?i)\bLBR\b`),
	regexp.MustCompile(`(?i)TECH`),
	regexp.MustCompile(`(?i)MONITOR`),
	regexp.MustCompile(`(?i)SUPERVISE`),
	regexp.MustCompile(`(?i)INSPECT`),
}

var materialProbes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)MATERIAL`),
	regexp.MustCompile(`(?i)\bMAT\b`),
	regexp.MustCompile(`(?i)SUPPLY`),
}

var ppeProbes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(PPE|TYVEK|RESPIRATOR|GLOVE|GOGG)`),
	regexp.MustCompile(`(?i)(HAZMAT|HAZ\s*MAT|BIOHAZ)`),
	regexp.MustCompile(`(?i)(CONTAINMENT|BARRIER|POLY)`),
}

// waterMarkerProbes detect explicit water category callouts in item text.
// Checked in ascending order; a later category overrides an earlier one.
var waterMarkerProbes = []struct {
	category int
	re       *regexp.Regexp
}{
	{1, regexp.MustCompile(`(?i)(CAT\s*1|CATEGORY\s*1|CLEAN\s*WATER)`)},
	{2, regexp.MustCompile(`(?i)(CAT\s*2|CATEGORY\s*2|GRAY\s*WATER|GREY\s*WATER)`)},
	{3, regexp.MustCompile(`(?i)(CAT\s*3|CATEGORY\s*3|BLACK\s*WATER|SEWAGE|CONTAM)`)},
}

// equipmentProbes is ordered; the last matching type is recorded on the
// parsed code.
var equipmentProbes = []struct {
	name string
	re   *regexp.Regexp
}{
	{"air_mover", AirMover},
	{"dehumidifier", Dehumidifier},
	{"air_scrubber", AirScrubber},
	{"moisture_meter", MoistureMeter},
}

// flooringAttrProbes is ordered; attributes accumulate in this order.
var flooringAttrProbes = []struct {
	name string
	re   *regexp.Regexp
}{
	{"carpet", Carpet},
	{"pad", Pad},
	{"hardwood", Hardwood},
	{"tile", Tile},
	{"laminate", Laminate},
	{"vinyl", Vinyl},
	{"tear_out", TearOut},
	{"install", Install},
	{"leveling", Leveling},
}

// namedProbes resolves probe lookups by name.
var namedProbes = map[string]*regexp.Regexp{
	"air_mover":            AirMover,
	"dehumidifier":         Dehumidifier,
	"air_scrubber":         AirScrubber,
	"moisture_meter":       MoistureMeter,
	"daily_monitor":        DailyMonitor,
	"ppe_cat3":             PPECat3,
	"cat3_cleaning":        Cat3Cleaning,
	"carpet":               Carpet,
	"pad":                  Pad,
	"hardwood":             Hardwood,
	"tile":                 Tile,
	"laminate":             Laminate,
	"vinyl":                Vinyl,
	"tear_out":             TearOut,
	"install":              Install,
	"waste":                Waste,
	"leveling":             Leveling,
	"transition":           Transition,
	"content_manipulation": ContentManipulation,
	"blocking_padding":     BlockingPadding,
	"flooring_work":        FlooringWork,
	"service_call":         ServiceCall,
}

// Probe returns the named regex, if registered.
func Probe(name string) (*regexp.Regexp, bool) {
	re, ok := namedProbes[name]
	return re, ok
}

// Has reports whether the text matches the named probe. Unknown probe
// names never match.
func Has(text, name string) bool {
	re, ok := namedProbes[name]
	return ok && re.MatchString(text)
}

// ParsedCode is the classification extracted from one line item code.
type ParsedCode struct {
	Code               string
	Category           Category
	Subcategory        string
	IsLabor            bool
	IsMaterial         bool
	IsEquipment        bool
	EquipmentType      string
	FlooringAttributes []string
	WaterCategory      int
	RequiresPPE        bool
}

// Classifier parses codes and memoizes results. Safe for concurrent use.
type Classifier struct {
	mu    sync.RWMutex
	cache map[string]*ParsedCode
}

// NewClassifier creates an empty classifier.
func NewClassifier() *Classifier {
	return &Classifier{cache: make(map[string]*ParsedCode)}
}

// Parse classifies a code, using the description for extra context.
// Results are cached per (code, description) pair.
func (c *Classifier) Parse(code, description string) *ParsedCode {
	key := code + "|" + description

	c.mu.RLock()
	if parsed, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		return parsed
	}
	c.mu.RUnlock()

	parsed := classify(code, description)

	c.mu.Lock()
	c.cache[key] = parsed
	c.mu.Unlock()
	return parsed
}

// CacheSize returns the number of memoized parses.
func (c *Classifier) CacheSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func classify(code, description string) *ParsedCode {
	category := CategoryUnknown
	for _, probe := range categoryProbes {
		if probe.re.MatchString(code) {
			category = probe.category
			break
		}
	}

	text := code + " " + description

	parsed := &ParsedCode{
		Code:        code,
		Category:    category,
		Subcategory: subcategory(code, category),
		IsLabor:     anyMatch(laborProbes, text),
		IsMaterial:  anyMatch(materialProbes, text),
		RequiresPPE: anyMatch(ppeProbes, text),
	}

	for _, probe := range equipmentProbes {
		if probe.re.MatchString(text) {
			parsed.IsEquipment = true
			parsed.EquipmentType = probe.name
		}
	}
	for _, probe := range flooringAttrProbes {
		if probe.re.MatchString(text) {
			parsed.FlooringAttributes = append(parsed.FlooringAttributes, probe.name)
		}
	}
	for _, probe := range waterMarkerProbes {
		if probe.re.MatchString(text) {
			parsed.WaterCategory = probe.category
		}
	}
	return parsed
}

func anyMatch(probes []*regexp.Regexp, text string) bool {
	for _, re := range probes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// subcategory strips the category prefix and returns the first segment
// of what remains.
func subcategory(code string, category Category) string {
	remaining := code
	if category != CategoryUnknown {
		prefix := string(category)
		if len(remaining) >= len(prefix) && strings.EqualFold(remaining[:len(prefix)], prefix) {
			remaining = remaining[len(prefix):]
			if len(remaining) > 0 && (remaining[0] == '_' || remaining[0] == '-') {
				remaining = remaining[1:]
			}
		}
	}
	for i := 0; i < len(remaining); i++ {
		if remaining[i] == '_' || remaining[i] == '-' {
			return remaining[:i]
		}
	}
	return remaining
}
