package core

import (
	"strings"
	"testing"
)

// testSlots mirrors the two parent slots of the student export.
var testSlots = []ParentSlot{
	{
		Label:           "Erziehungsberechtigte/r 1",
		IDColumn:        "P_ERZ1_ID",
		AHVColumn:       "P_ERZ1_AHV",
		NameColumn:      "P_ERZ1_Name",
		FirstNameColumn: "P_ERZ1_Vorname",
		StreetColumn:    "P_ERZ1_Strasse",
		PhoneColumns:    []string{"P_ERZ1_TelefonPrivat", "P_ERZ1_Mobil"},
	},
	{
		Label:           "Erziehungsberechtigte/r 2",
		IDColumn:        "P_ERZ2_ID",
		AHVColumn:       "P_ERZ2_AHV",
		NameColumn:      "P_ERZ2_Name",
		FirstNameColumn: "P_ERZ2_Vorname",
		StreetColumn:    "P_ERZ2_Strasse",
		PhoneColumns:    []string{"P_ERZ2_TelefonPrivat", "P_ERZ2_Mobil"},
	},
}

func TestMatchIdentities_AHV(t *testing.T) {
	tests := []struct {
		name    string
		rows    []Row
		wantErr int
	}{
		{
			name: "different ids",
			rows: []Row{
				{"S_ID": 1, "P_ERZ1_ID": "P1", "P_ERZ1_AHV": "756.9999.9999.99"},
				{"S_ID": 2, "P_ERZ1_ID": "P2", "P_ERZ1_AHV": "756.9999.9999.99"},
			},
			wantErr: 1,
		},
		{
			name: "same id",
			rows: []Row{
				{"S_ID": 1, "P_ERZ1_ID": "P1", "P_ERZ1_AHV": "756.9999.9999.99"},
				{"S_ID": 2, "P_ERZ1_ID": "P1", "P_ERZ1_AHV": "756.9999.9999.99"},
			},
			wantErr: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := MatchIdentities(tt.rows, testSlots)
			if len(errs) != tt.wantErr {
				t.Fatalf("got %d errors, want %d: %v", len(errs), tt.wantErr, errs)
			}
			if tt.wantErr == 0 {
				return
			}

			e := errs[0]
			if e.Row != 2 || e.Column != "P_ERZ1_ID" || e.Value != "P2" {
				t.Errorf("error at row %d column %s value %q, want row 2 P_ERZ1_ID P2", e.Row, e.Column, e.Value)
			}
			if e.Kind != KindIdentity || e.Severity != SeverityError {
				t.Errorf("kind/severity = %s/%s, want identity/error", e.Kind, e.Severity)
			}
			id := e.Identity
			if id == nil {
				t.Fatal("Identity is nil")
			}
			if id.Strategy != StrategyAHV || id.Reliability != ReliabilityHigh {
				t.Errorf("strategy = %s/%s, want AHV/high", id.Strategy, id.Reliability)
			}
			if id.ReferenceID != "P1" || id.ReferenceRow != 1 {
				t.Errorf("reference = %q row %d, want P1 row 1", id.ReferenceID, id.ReferenceRow)
			}
			if id.MatchKey != "756.9999.9999.99" {
				t.Errorf("MatchKey = %q", id.MatchKey)
			}
		})
	}
}

func TestMatchIdentities_AHVAcrossSlots(t *testing.T) {
	rows := []Row{
		{"P_ERZ2_ID": "P1", "P_ERZ2_AHV": "7569999999999"},
		{"P_ERZ1_ID": "P7", "P_ERZ1_AHV": "756.9999.9999.99"},
	}

	errs := MatchIdentities(rows, testSlots)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Identity.ReferenceSlot != "Erziehungsberechtigte/r 2" || errs[0].Identity.SlotLabel != "Erziehungsberechtigte/r 1" {
		t.Errorf("slots = %q <- %q", errs[0].Identity.SlotLabel, errs[0].Identity.ReferenceSlot)
	}
}

func TestMatchIdentities_AHVBeatsNameAddress(t *testing.T) {
	rows := []Row{
		{"P_ERZ1_ID": "P1", "P_ERZ1_AHV": "756.1111.2222.33", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Bahnhofstrasse 1"},
		{"P_ERZ1_ID": "P2", "P_ERZ1_AHV": "756.1111.2222.33", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Bahnhofstrasse 1"},
	}

	errs := MatchIdentities(rows, testSlots)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Identity.Strategy != StrategyAHV {
		t.Errorf("strategy = %s, want AHV", errs[0].Identity.Strategy)
	}
}

func TestMatchIdentities_NameAddress(t *testing.T) {
	rows := []Row{
		{"P_ERZ1_ID": "P1", "P_ERZ1_Name": "Müller", "P_ERZ1_Vorname": "Hans", "P_ERZ1_Strasse": "Dorfstrasse 5"},
		{"P_ERZ1_ID": "P2", "P_ERZ1_Name": "Muller", "P_ERZ1_Vorname": "hans", "P_ERZ1_Strasse": "dorfstrasse  5"},
	}

	errs := MatchIdentities(rows, testSlots)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}

	e := errs[0]
	if e.Identity.Strategy != StrategyNameAddress || e.Identity.Reliability != ReliabilityMedium {
		t.Errorf("strategy = %s/%s, want NAME_ADDRESS/medium", e.Identity.Strategy, e.Identity.Reliability)
	}
	if e.Severity != SeverityError || e.Identity.WarningText == "" {
		t.Errorf("name+address matches are errors with a warning text, got %s %q", e.Severity, e.Identity.WarningText)
	}
	if !strings.Contains(e.Message, e.Identity.WarningText) {
		t.Errorf("message %q does not carry the warning", e.Message)
	}
}

func TestMatchIdentities_ConflictingAHVBlocksNameMatch(t *testing.T) {
	rows := []Row{
		{"P_ERZ1_ID": "P1", "P_ERZ1_AHV": "756.1111.1111.11", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Weg 1"},
		{"P_ERZ1_ID": "P2", "P_ERZ1_AHV": "756.2222.2222.22", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Weg 1"},
	}

	if errs := MatchIdentities(rows, testSlots); len(errs) != 0 {
		t.Errorf("two AHV numbers are two people, got %v", errs)
	}
}

func TestMatchIdentities_NameOnlyDisambiguation(t *testing.T) {
	tests := []struct {
		name    string
		phone2  string
		wantErr int
	}{
		{"no shared phone", "079 222 22 22", 0},
		{"shared phone in other notation", "+41 79 111 11 11", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []Row{
				{"P_ERZ1_ID": "P1", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Weg 1", "P_ERZ1_Mobil": "079 111 11 11"},
				{"P_ERZ1_ID": "P2", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Gasse 9", "P_ERZ1_Mobil": tt.phone2},
			}

			errs := MatchIdentities(rows, testSlots)
			if len(errs) != tt.wantErr {
				t.Fatalf("got %d errors, want %d: %v", len(errs), tt.wantErr, errs)
			}
			if tt.wantErr == 0 {
				return
			}

			e := errs[0]
			if e.Row != 2 || e.Identity.Strategy != StrategyNameOnly || e.Identity.Reliability != ReliabilityLow {
				t.Errorf("got row %d %s/%s, want row 2 NAME_ONLY/low", e.Row, e.Identity.Strategy, e.Identity.Reliability)
			}
			if e.Severity != SeverityWarning {
				t.Errorf("severity = %s, want warning", e.Severity)
			}
			if e.Identity.ReferenceID != "P1" {
				t.Errorf("ReferenceID = %q, want P1", e.Identity.ReferenceID)
			}
		})
	}
}

func TestMatchIdentities_ParentPairSwappedSlots(t *testing.T) {
	rows := []Row{
		{
			"P_ERZ1_ID": "A", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Hans",
			"P_ERZ2_ID": "B", "P_ERZ2_Name": "Muster", "P_ERZ2_Vorname": "Anna",
		},
		{
			"P_ERZ1_ID": "C", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna",
			"P_ERZ2_ID": "A", "P_ERZ2_Name": "Muster", "P_ERZ2_Vorname": "Hans",
		},
	}

	errs := MatchIdentities(rows, testSlots)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}

	e := errs[0]
	if e.Row != 2 || e.Column != "P_ERZ1_ID" || e.Value != "C" {
		t.Errorf("error at row %d %s %q, want row 2 P_ERZ1_ID C", e.Row, e.Column, e.Value)
	}
	if e.Identity.Strategy != StrategyNamePair || e.Severity != SeverityWarning {
		t.Errorf("strategy = %s severity %s, want NAME_PAIR warning", e.Identity.Strategy, e.Severity)
	}
	if e.Identity.ReferenceID != "B" || e.Identity.ReferenceSlot != "Erziehungsberechtigte/r 2" {
		t.Errorf("reference = %q in %q, want B in slot 2", e.Identity.ReferenceID, e.Identity.ReferenceSlot)
	}
}

// Two unrelated couples with identical names are indistinguishable without
// AHV numbers or an address match. They are reported, but only as low
// reliability warnings so bulk resolution does not merge them by default.
func TestMatchIdentities_NamesakeCouplesAreWarnings(t *testing.T) {
	rows := []Row{
		{
			"P_ERZ1_ID": "A", "P_ERZ1_Name": "Meier", "P_ERZ1_Vorname": "Peter", "P_ERZ1_Strasse": "Seeweg 1",
			"P_ERZ2_ID": "B", "P_ERZ2_Name": "Meier", "P_ERZ2_Vorname": "Anna", "P_ERZ2_Strasse": "Seeweg 1",
		},
		{
			"P_ERZ1_ID": "X", "P_ERZ1_Name": "Meier", "P_ERZ1_Vorname": "Peter", "P_ERZ1_Strasse": "Bergstrasse 3",
			"P_ERZ2_ID": "Y", "P_ERZ2_Name": "Meier", "P_ERZ2_Vorname": "Anna", "P_ERZ2_Strasse": "Bergstrasse 3",
		},
	}

	errs := MatchIdentities(rows, testSlots)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Severity != SeverityWarning || e.Identity.Reliability != ReliabilityLow {
			t.Errorf("row %d %s: severity %s reliability %s, want warning/low", e.Row, e.Column, e.Severity, e.Identity.Reliability)
		}
	}

	resolved := ResolveIdentity(errs, false)
	for _, e := range resolved {
		if !e.IsOpen() {
			t.Errorf("warning-tier match at row %d was auto-resolved", e.Row)
		}
	}
}

func TestMatchIdentities_NeverReportsTwice(t *testing.T) {
	// Row 2 matches row 1 by AHV, by name+address and by phone.
	rows := []Row{
		{"P_ERZ1_ID": "P1", "P_ERZ1_AHV": "756.1234.5678.97", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Weg 1", "P_ERZ1_Mobil": "0791111111"},
		{"P_ERZ1_ID": "P2", "P_ERZ1_AHV": "756.1234.5678.97", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Weg 1", "P_ERZ1_Mobil": "0791111111"},
		{"P_ERZ1_ID": "P3", "P_ERZ1_Name": "Muster", "P_ERZ1_Vorname": "Anna", "P_ERZ1_Strasse": "Feld 2", "P_ERZ1_Mobil": "0791111111"},
	}

	errs := MatchIdentities(rows, testSlots)

	type cell struct {
		row    int
		column string
	}
	seen := make(map[cell]bool)
	for _, e := range errs {
		k := cell{e.Row, e.Column}
		if seen[k] {
			t.Errorf("(%d, %s) reported twice", e.Row, e.Column)
		}
		seen[k] = true
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %v", len(errs), errs)
	}
	if errs[0].Identity.Strategy != StrategyAHV || errs[1].Identity.Strategy != StrategyNameOnly {
		t.Errorf("strategies = %s, %s; want AHV, NAME_ONLY", errs[0].Identity.Strategy, errs[1].Identity.Strategy)
	}
	if errs[1].Identity.ReferenceID != "P1" {
		t.Errorf("row 3 reference = %q, want P1", errs[1].Identity.ReferenceID)
	}
}

func TestMatchIdentities_NoSlots(t *testing.T) {
	if errs := MatchIdentities([]Row{{"L_ID": "1"}}, nil); errs != nil {
		t.Errorf("got %v, want nil", errs)
	}
}

func TestSlotEntry_SharesOtherParent(t *testing.T) {
	a := slotEntry{otherNames: []string{"muster\x1fanna"}}
	b := slotEntry{otherNames: []string{"muster\x1fanna"}}
	c := slotEntry{otherNames: []string{"meier\x1fanna"}}

	if !a.sharesOtherParent(b) {
		t.Error("a and b name the same other parent")
	}
	if a.sharesOtherParent(c) {
		t.Error("a and c name different other parents")
	}
	if (slotEntry{}).sharesOtherParent(a) {
		t.Error("an entry without other parents shares nothing")
	}
}
