package core

import "testing"

func TestRegistry_Detect(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Profile{ImportType: "students", Columns: []ColumnDefinition{
		{Name: "S_ID", Required: true}, {Name: "S_Name", Required: true}, {Name: "S_Vorname", Required: true}, {Name: "S_AHV"},
	}})
	r.MustRegister(Profile{ImportType: "classes", Columns: []ColumnDefinition{
		{Name: "K_ID", Required: true}, {Name: "K_Name", Required: true},
	}})

	tests := []struct {
		name        string
		headers     []string
		wantType    string
		wantMissing int
	}{
		{"exact", []string{"S_ID", "S_Name", "S_Vorname"}, "students", 0},
		{"case and spaces", []string{" s_id ", "S_NAME", "s_vorname", "Extra"}, "students", 0},
		{"classes", []string{"K_ID", "K_Name"}, "classes", 0},
		{"none", []string{"foo", "bar"}, "", 0},
		{"below threshold", []string{"S_ID", "S_Name"}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := r.Detect(tt.headers)
			if tt.wantType == "" {
				if len(matches) != 0 {
					t.Errorf("Detect() = %v, want no match", matches)
				}
				return
			}
			if len(matches) == 0 || matches[0].ImportType != tt.wantType {
				t.Fatalf("Detect() = %v, want %s first", matches, tt.wantType)
			}
			if len(matches[0].Missing) != tt.wantMissing {
				t.Errorf("Missing = %v", matches[0].Missing)
			}
		})
	}
}

func TestMissingColumns(t *testing.T) {
	p := Profile{Columns: []ColumnDefinition{{Name: "A", Required: true}, {Name: "B", Required: true}, {Name: "C"}}}

	got := MissingColumns([]string{"a"}, p)
	if len(got) != 1 || got[0] != "B" {
		t.Errorf("MissingColumns() = %v, want [B]", got)
	}
}
