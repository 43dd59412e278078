package xactimate

import "testing"

func TestCategoryFirstMatchWins(t *testing.T) {
	cases := []struct {
		code string
		want Category
	}{
		{"WTR_EXT", CategoryWTR},
		{"wtr-ext", CategoryWTR},
		{"DRY_DEHU", CategoryDRY},
		{"FCC_CPTINST", CategoryFCC},
		{"FNC_HWDINST", CategoryFNC},
		{"PNT_WALL", CategoryPNT},
		{"CLN_FINAL", CategoryCLN},
		{"DEM_DRYWALL", CategoryDEM},
		{"CNT_MOVE", CategoryCNT},
		{"GEN_LABOR", CategoryGEN},
		{"XYZ_UNKNOWN", CategoryUnknown},
		{"", CategoryUnknown},
	}

	c := NewClassifier()
	for _, tc := range cases {
		if got := c.Parse(tc.code, "").Category; got != tc.want {
			t.Errorf("Parse(%q).Category = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestSubcategoryExtraction(t *testing.T) {
	cases := []struct {
		code, desc, want string
	}{
		{"WTR_EXT_HVY", "", "EXT"},
		{"FCC-CPT-INST", "", "CPT"},
		{"DRY_DHU_LG", "", "DHU"},
		{"GEN", "", ""},
		{"XYZ_ABC", "", "XYZ"}, // unknown category keeps the whole first segment
	}

	c := NewClassifier()
	for _, tc := range cases {
		if got := c.Parse(tc.code, tc.desc).Subcategory; got != tc.want {
			t.Errorf("Parse(%q).Subcategory = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestEquipmentDetection(t *testing.T) {
	c := NewClassifier()

	parsed := c.Parse("WTR_AIRF", "Air Mover - Axial Fan")
	if !parsed.IsEquipment {
		t.Error("air mover not flagged as equipment")
	}
	if parsed.EquipmentType != "air_mover" {
		t.Errorf("equipment_type = %q, want air_mover", parsed.EquipmentType)
	}

	parsed = c.Parse("WTR_DHU_LG", "Dehumidifier - Large")
	if parsed.EquipmentType != "dehumidifier" {
		t.Errorf("equipment_type = %q, want dehumidifier", parsed.EquipmentType)
	}

	if c.Parse("FCC_CPT", "Carpet material").IsEquipment {
		t.Error("carpet flagged as equipment")
	}
}

func TestLaborAndMaterialProbes(t *testing.T) {
	c := NewClassifier()

	if !c.Parse("WTR_LBR", "Remediation labor").IsLabor {
		t.Error("labor text not detected")
	}
	if !c.Parse("GEN_MAT", "General supply run").IsMaterial {
		t.Error("material text not detected")
	}
	p := c.Parse("WTR_MONITOR", "Daily moisture monitoring")
	if !p.IsLabor {
		t.Error("monitoring should count as labor")
	}
}

func TestFlooringAttributeOrder(t *testing.T) {
	c := NewClassifier()
	parsed := c.Parse("FCC_CPTREM", "Tear out Carpet and Pad")

	want := []string{"carpet", "pad", "tear_out"}
	if len(parsed.FlooringAttributes) != len(want) {
		t.Fatalf("attributes = %v, want %v", parsed.FlooringAttributes, want)
	}
	for i, attr := range want {
		if parsed.FlooringAttributes[i] != attr {
			t.Errorf("attributes[%d] = %q, want %q", i, parsed.FlooringAttributes[i], attr)
		}
	}
}

func TestWaterCategoryMarkers(t *testing.T) {
	c := NewClassifier()

	if got := c.Parse("WTR_EXT", "Category 1 clean water extraction").WaterCategory; got != 1 {
		t.Errorf("water category = %d, want 1", got)
	}
	if got := c.Parse("WTR_EXT2", "Gray water extraction").WaterCategory; got != 2 {
		t.Errorf("water category = %d, want 2", got)
	}
	if got := c.Parse("WTR_SEW", "Sewage backup - CAT 3").WaterCategory; got != 3 {
		t.Errorf("water category = %d, want 3", got)
	}
	if got := c.Parse("FCC_CPT", "Carpet").WaterCategory; got != 0 {
		t.Errorf("water category = %d, want 0 for unmarked item", got)
	}
}

func TestPPEDetection(t *testing.T) {
	c := NewClassifier()
	if !c.Parse("CLN_PPE", "Tyvek suits and respirators").RequiresPPE {
		t.Error("PPE text not detected")
	}
	if !c.Parse("DEM_CONT", "Containment barrier - poly").RequiresPPE {
		t.Error("containment text not detected")
	}
}

func TestParseCaching(t *testing.T) {
	c := NewClassifier()

	first := c.Parse("WTR_AIRF", "Air Mover")
	second := c.Parse("WTR_AIRF", "Air Mover")
	if first != second {
		t.Error("identical parse not served from cache")
	}
	if c.CacheSize() != 1 {
		t.Errorf("cache size = %d, want 1", c.CacheSize())
	}

	// Same code with different description is a distinct entry.
	c.Parse("WTR_AIRF", "Axial fan rental")
	if c.CacheSize() != 2 {
		t.Errorf("cache size = %d, want 2", c.CacheSize())
	}
}

func TestNamedProbeLookup(t *testing.T) {
	if !Has("WTR_DHU Dehumidifier - Large", "dehumidifier") {
		t.Error("dehumidifier probe failed")
	}
	if Has("FCC_CPT Carpet", "dehumidifier") {
		t.Error("dehumidifier probe matched carpet")
	}
	if Has("anything", "no_such_probe") {
		t.Error("unknown probe name should never match")
	}
	if _, ok := Probe("service_call"); !ok {
		t.Error("service_call probe not registered")
	}
}

func TestDehumidifierRequiresDigitsAfterDH(t *testing.T) {
	if !Has("WTR_DH2000 unit", "dehumidifier") {
		t.Error("DH2000 should match")
	}
	if Has("HARDHAT PPE", "dehumidifier") {
		t.Error("bare DH inside a word should not match")
	}
}

func TestPadRequiresWholeWord(t *testing.T) {
	if Has("FCC_PADREM", "pad") {
		t.Error("PAD inside a larger token should not match")
	}
	if !Has("Tear out Pad - Living Room", "pad") {
		t.Error("standalone Pad should match")
	}
}
