package xmlvalidate

import "testing"

func TestCheckStructureOK(t *testing.T) {
	xml := `<?xml version="1.0"?><hs:sec><hp:p></hp:p></hs:sec>`
	r := CheckStructure(xml)
	if !r.OK {
		t.Fatalf("expected OK, got problems: %v", r.Problems)
	}
}

func TestCheckStructureTruncated(t *testing.T) {
	xml := `<hs:sec><hp:p>text<hp:t`
	r := CheckStructure(xml)
	if r.OK {
		t.Fatalf("expected truncation to be detected")
	}
}

func TestCheckStructureBrokenOpening(t *testing.T) {
	xml := `<hs:sec><hp:p <hp:t>text</hp:t></hp:p></hs:sec>`
	r := CheckStructure(xml)
	if r.OK {
		t.Fatalf("expected broken opening to be detected")
	}
}

func TestCheckStructureTooShort(t *testing.T) {
	r := CheckStructure(`<a/>`)
	if r.OK {
		t.Fatalf("expected too-short content to fail")
	}
}

func TestCheckTagBalanceOK(t *testing.T) {
	xml := `<hs:sec><hp:tbl><hp:tr><hp:tc><hp:p><hp:run><hp:t>x</hp:t></hp:run></hp:p></hp:tc></hp:tr></hp:tbl></hs:sec>`
	r := CheckTagBalance(xml)
	if !r.Balanced {
		t.Fatalf("expected balanced, got: %+v", r.Imbalances)
	}
}

func TestCheckTagBalanceMissingCloser(t *testing.T) {
	xml := `<hs:sec><hp:tbl><hp:tr></hp:tr></hs:sec>`
	r := CheckTagBalance(xml)
	if r.Balanced {
		t.Fatalf("expected imbalance")
	}
	found := false
	for _, im := range r.Imbalances {
		if im.Tag == "tbl" && im.Opens == 1 && im.Closes == 0 {
			found = true
			if im.Severity != SeverityError {
				t.Fatalf("missing closer should be an error severity")
			}
		}
	}
	if !found {
		t.Fatalf("expected tbl imbalance in %+v", r.Imbalances)
	}
}

func TestCheckTagBalanceOrphanCloser(t *testing.T) {
	xml := `<hs:sec><hp:tbl></hp:tbl></hp:tbl></hs:sec>`
	r := CheckTagBalance(xml)
	if r.Balanced {
		t.Fatalf("expected imbalance")
	}
	for _, im := range r.Imbalances {
		if im.Tag == "tbl" && im.Severity != SeverityWarning {
			t.Fatalf("orphan closer should be a warning severity, got %s", im.Severity)
		}
	}
}

func TestCheckTagBalanceSelfClosing(t *testing.T) {
	xml := `<hs:sec><hp:p/><hp:tbl><hp:tr/></hp:tbl></hs:sec>`
	r := CheckTagBalance(xml)
	if !r.Balanced {
		t.Fatalf("self-closing elements should count as balanced, got %+v", r.Imbalances)
	}
}

func TestFindOrphanTblClosers(t *testing.T) {
	xml := `<hs:sec><hp:tbl id="1"></hp:tbl></hp:tbl><hp:tbl id="2">`
	orphans, missing := FindOrphanTblClosers(xml)
	if len(orphans) != 1 {
		t.Fatalf("expected 1 orphan closer, got %d", len(orphans))
	}
	if missing != 1 {
		t.Fatalf("expected 1 missing closer, got %d", missing)
	}
}

func TestFindOrphanTblClosersNone(t *testing.T) {
	xml := `<hs:sec><hp:tbl id="1"></hp:tbl></hs:sec>`
	orphans, missing := FindOrphanTblClosers(xml)
	if len(orphans) != 0 || missing != 0 {
		t.Fatalf("expected no orphans/missing, got %d/%d", len(orphans), missing)
	}
}
