package xactimate

import "regexp"

// DoubleDipPattern is one side of a potential overlap. When Exclude is
// set, text matching it suppresses the match; this stands in for the
// negative lookahead RE2 does not support.
type DoubleDipPattern struct {
	Name    string
	Re      *regexp.Regexp
	Exclude *regexp.Regexp
}

// Match reports whether the text triggers this pattern.
func (p DoubleDipPattern) Match(text string) bool {
	if !p.Re.MatchString(text) {
		return false
	}
	if p.Exclude != nil && p.Exclude.MatchString(text) {
		return false
	}
	return true
}

// DoubleDipGroup describes line items commonly billed redundantly. When
// two or more patterns in a group match separate charges, the overlap
// pattern names the one considered duplicative; an empty overlap means
// both charges could be legitimate.
type DoubleDipGroup struct {
	Name        string
	Description string
	Patterns    []DoubleDipPattern
	Overlap     string
}

// doubleDipGroups is evaluated in order by the double-dip rule.
var doubleDipGroups = []DoubleDipGroup{
	{
		Name:        "pre_hung_door_hardware",
		Description: "Pre-hung door includes hinges by default",
		Patterns: []DoubleDipPattern{
			{Name: "pre_hung_door", Re: regexp.MustCompile(`(?i)(PRE[\s-]*HUNG|PREHUNG).*DOOR`)},
			{Name: "hinges", Re: regexp.MustCompile(`(?i)\bHINGE`)},
		},
		Overlap: "hinges",
	},
	{
		Name:        "wallboard_wallpaper_removal",
		Description: "Drywall removal inherently removes any attached wallpaper",
		Patterns: []DoubleDipPattern{
			{Name: "wallboard_remove", Re: regexp.MustCompile(`(?i)(WALLBOARD|DRYWALL).*(REMOVE|DEMO|TEAR)`)},
			{Name: "wallpaper_remove", Re: regexp.MustCompile(`(?i)WALLPAPER.*(REMOVE|STRIP)`)},
		},
		Overlap: "wallpaper_remove",
	},
	{
		Name:        "paint_primer",
		Description: "Paint with primer may duplicate separate primer line item",
		Patterns: []DoubleDipPattern{
			{Name: "paint_primer", Re: regexp.MustCompile(`(?i)PAINT.*PRIMER|PRIMER.*PAINT`)},
			{
				Name:    "primer_only",
				Re:      regexp.MustCompile(`(?i)\bPRIMER\b`),
				Exclude: regexp.MustCompile(`(?i)\bPRIMER\b.*PAINT`),
			},
		},
		Overlap: "primer_only",
	},
	{
		Name:        "demo_disposal",
		Description: "Demolition often includes disposal; check for separate haul-off",
		Patterns: []DoubleDipPattern{
			{Name: "demolition", Re: regexp.MustCompile(`(?i)\b(DEMO|DEMOLITION)\b`)},
			{Name: "disposal", Re: regexp.MustCompile(`(?i)(HAUL\s*OFF|DISPOSAL|DUMP|DEBRIS\s*REMOVAL)`)},
		},
		Overlap: "disposal",
	},
	{
		Name:        "base_cap_molding",
		Description: "Base molding replacement may already include cap molding",
		Patterns: []DoubleDipPattern{
			{Name: "base_molding", Re: regexp.MustCompile(`(?i)BASE\s*(BOARD|MOLDING|MOULDING)`)},
			{Name: "cap_molding", Re: regexp.MustCompile(`(?i)(CAP|SHOE)\s*(MOLDING|MOULDING)`)},
		},
		Overlap: "", // both could be legitimate
	},
}

// DoubleDipGroups returns the overlap groups in evaluation order. The
// returned slice is shared; callers must not modify it.
func DoubleDipGroups() []DoubleDipGroup {
	return doubleDipGroups
}
