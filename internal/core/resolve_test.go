package core

import "testing"

func TestResolveIdentity(t *testing.T) {
	errs := []ValidationError{
		{Row: 2, Column: "P_ERZ1_ID", Value: "P2", Kind: KindIdentity, Severity: SeverityError, Identity: &IdentityMatch{ReferenceID: "P1"}},
		{Row: 3, Column: "P_ERZ1_ID", Value: "P3", Kind: KindIdentity, Severity: SeverityWarning, Identity: &IdentityMatch{ReferenceID: "P1"}},
		{Row: 4, Column: "S_PLZ", Value: "abc", Kind: KindFormat},
	}

	tests := []struct {
		name            string
		includeWarnings bool
		wantOpen        []bool
	}{
		{"errors only", false, []bool{false, true, true}},
		{"with warnings", true, []bool{false, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ResolveIdentity(errs, tt.includeWarnings)
			for i, e := range out {
				if e.IsOpen() != tt.wantOpen[i] {
					t.Errorf("error %d open = %v, want %v", i, e.IsOpen(), tt.wantOpen[i])
				}
				if !e.IsOpen() && *e.CorrectedValue != "P1" {
					t.Errorf("error %d corrected to %q, want P1", i, *e.CorrectedValue)
				}
			}
			for i, e := range errs {
				if !e.IsOpen() {
					t.Errorf("input error %d was modified", i)
				}
			}
		})
	}
}

func TestDismiss(t *testing.T) {
	e := Dismiss(ValidationError{Row: 1, Column: "S_Name", Value: "Muller"})
	if e.IsOpen() || *e.CorrectedValue != "Muller" {
		t.Errorf("Dismiss() = %+v, want resolved to its own value", e)
	}
}

func TestApplyResolutions(t *testing.T) {
	rows := []Row{
		{"S_Name": "Müller", "P_ERZ1_ID": "P1"},
		{"S_Name": "Muller", "P_ERZ1_ID": "P2"},
		{"S_Name": "Meier"},
	}
	errs := NewValidator(Profile{NameColumns: []string{"S_Name"}}).Validate(rows)
	errs = append(errs,
		ValidationError{Row: 2, Column: "P_ERZ1_ID", Value: "P2"}.Resolve("P1"),
		Dismiss(ValidationError{Row: 3, Column: "S_Name", Value: "Meier"}),
		ValidationError{Row: 3, Column: "S_Name", Value: "Meier"},
		ValidationError{Row: 9, Column: "S_Name", Value: "x"}.Resolve("y"),
	)

	out := ApplyResolutions(rows, errs)

	if out[1]["S_Name"] != "Müller" || out[1]["P_ERZ1_ID"] != "P1" {
		t.Errorf("row 2 = %v", out[1])
	}
	if rows[1]["S_Name"] != "Muller" {
		t.Error("input row was modified")
	}
	if &out[0] == &rows[0] {
		t.Error("output must be a new slice")
	}

	again := ApplyResolutions(out, errs)
	if again[1]["S_Name"] != "Müller" || again[2]["S_Name"] != "Meier" {
		t.Errorf("second application changed data: %v", again)
	}
}

func TestApplyResolutions_StaleValueSkipped(t *testing.T) {
	rows := []Row{{"S_PLZ": "8001"}}
	errs := []ValidationError{ValidationError{Row: 1, Column: "S_PLZ", Value: "800"}.Resolve("8000")}

	if out := ApplyResolutions(rows, errs); out[0]["S_PLZ"] != "8001" {
		t.Errorf("a cell edited since validation must not be overwritten, got %v", out[0])
	}
}
