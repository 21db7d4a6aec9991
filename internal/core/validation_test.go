package core

import (
	"strings"
	"testing"
)

func TestValidateField(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		def     ColumnDefinition
		wantErr bool
	}{
		{"required empty", "", ColumnDefinition{Name: "S_ID", Required: true}, true},
		{"required whitespace", "   ", ColumnDefinition{Name: "S_ID", Required: true}, true},
		{"optional empty ahv", "", ColumnDefinition{Name: "S_AHV", ValidationType: TypeAHV}, false},
		{"text anything", "irgendwas", ColumnDefinition{Name: "S_Name", ValidationType: TypeText}, false},

		{"ahv valid", "756.1234.5678.97", ColumnDefinition{ValidationType: TypeAHV}, false},
		{"ahv digits only", "7561234567897", ColumnDefinition{ValidationType: TypeAHV}, true},
		{"ahv wrong prefix", "757.1234.5678.97", ColumnDefinition{ValidationType: TypeAHV}, true},

		{"date swiss", "31.12.2010", ColumnDefinition{ValidationType: TypeDate}, false},
		{"date iso", "2010-12-31", ColumnDefinition{ValidationType: TypeDate}, false},
		{"date slash", "31/12/2010", ColumnDefinition{ValidationType: TypeDate}, false},
		{"date serial", "40543", ColumnDefinition{ValidationType: TypeDate}, false},
		{"date invalid month", "31.13.2010", ColumnDefinition{ValidationType: TypeDate}, true},
		{"date garbage", "gestern", ColumnDefinition{ValidationType: TypeDate}, true},

		{"email valid", "anna@example.ch", ColumnDefinition{ValidationType: TypeEmail}, false},
		{"email no tld", "anna@example", ColumnDefinition{ValidationType: TypeEmail}, true},

		{"number swiss", "1'234.50", ColumnDefinition{ValidationType: TypeNumber}, false},
		{"number comma", "12,5", ColumnDefinition{ValidationType: TypeNumber}, false},
		{"number text", "zwölf", ColumnDefinition{ValidationType: TypeNumber}, true},

		{"plz 4", "8000", ColumnDefinition{ValidationType: TypePLZ}, false},
		{"plz 5", "79539", ColumnDefinition{ValidationType: TypePLZ}, false},
		{"plz prefixed", "CH-8000", ColumnDefinition{ValidationType: TypePLZ}, true},

		{"gender token", "weiblich", ColumnDefinition{ValidationType: TypeGender}, false},
		{"gender short", "m", ColumnDefinition{ValidationType: TypeGender}, false},
		{"gender unknown", "?", ColumnDefinition{ValidationType: TypeGender}, true},

		{"phone trunk", "079 123 45 67", ColumnDefinition{ValidationType: TypePhone}, false},
		{"phone plus", "+41 79 123 45 67", ColumnDefinition{ValidationType: TypePhone}, false},
		{"phone 00", "0041 79 123 45 67", ColumnDefinition{ValidationType: TypePhone}, false},
		{"phone no prefix", "791234567", ColumnDefinition{ValidationType: TypePhone}, true},
		{"phone too short", "012345", ColumnDefinition{ValidationType: TypePhone}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateField(tt.value, tt.def)
			if (got != "") != tt.wantErr {
				t.Errorf("ValidateField(%q) = %q, wantErr %v", tt.value, got, tt.wantErr)
			}
		})
	}
}

func TestValidateField_RequiredMessageNamesColumn(t *testing.T) {
	msg := ValidateField("", ColumnDefinition{Name: "S_Geburtsdatum", Required: true})
	if !strings.Contains(msg, "S_Geburtsdatum") {
		t.Errorf("message %q does not name the column", msg)
	}
}

func TestSuggestFix(t *testing.T) {
	tests := []struct {
		value  string
		vt     ValidationType
		want   string
		wantOK bool
	}{
		{"7561234567897", TypeAHV, "756.1234.5678.97", true},
		{"079 123 45 67", TypePhone, "+41 79 123 45 67", true},
		{"CH-8000", TypePLZ, "8000", true},
		{" Anna@Example.CH ", TypeEmail, "anna@example.ch", true},
		{"weiblich", TypeGender, "W", true},
		{"2010-12-31", TypeDate, "31.12.2010", true},
		{"abc", TypeDate, "", false},
		{"abc", TypeText, "", false},
	}

	for _, tt := range tests {
		got, ok := SuggestFix(tt.value, ColumnDefinition{ValidationType: tt.vt})
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("SuggestFix(%q, %s) = %q, %v; want %q, %v", tt.value, tt.vt, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValidateRow_FormatRules(t *testing.T) {
	columns := []ColumnDefinition{
		{Name: "S_ID", Required: true},
		{Name: "S_Name"},
		{Name: "S_PLZ", ValidationType: TypePLZ},
	}
	rules := compileFormatRules([]FormatRule{
		{ID: "upper", Columns: []string{"s_name"}, Pattern: `^[A-ZÄÖÜ]`, Message: "must start uppercase", Severity: SeverityWarning},
		{ID: "broken", Pattern: `([`},
		{ID: "off", Pattern: `^x$`, Disabled: true},
		{ID: "zurich", Columns: []string{"S_PLZ"}, Pattern: `^8`},
	})

	if len(rules) != 2 {
		t.Fatalf("compiled %d rules, want 2 (invalid and disabled skipped)", len(rules))
	}

	tests := []struct {
		name      string
		row       Row
		wantKinds []ErrorKind
		wantRules []string
	}{
		{"all good", Row{"S_ID": "1", "S_Name": "Muster", "S_PLZ": "8000"}, nil, nil},
		{"rule fires", Row{"S_ID": "1", "S_Name": "muster"}, []ErrorKind{KindFormatRule}, []string{"upper"}},
		{"builtin wins over rule", Row{"S_ID": "1", "S_PLZ": "abc"}, []ErrorKind{KindFormat}, []string{""}},
		{"rule on plz", Row{"S_ID": "1", "S_PLZ": "3000"}, []ErrorKind{KindFormatRule}, []string{"zurich"}},
		{"required missing", Row{"S_Name": "Muster"}, []ErrorKind{KindRequired}, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateRow(nil, tt.row, 1, columns, rules)
			if len(errs) != len(tt.wantKinds) {
				t.Fatalf("got %d errors %v, want %d", len(errs), errs, len(tt.wantKinds))
			}
			for i, e := range errs {
				if e.Kind != tt.wantKinds[i] || e.RuleID != tt.wantRules[i] {
					t.Errorf("error %d = (%s, %q), want (%s, %q)", i, e.Kind, e.RuleID, tt.wantKinds[i], tt.wantRules[i])
				}
			}
		})
	}
}

func TestValidateRow_RuleSeverityDefaultsToError(t *testing.T) {
	rules := compileFormatRules([]FormatRule{{ID: "digits", Pattern: `^\d+$`}})
	errs := validateRow(nil, Row{"K_Stufe": "x"}, 3, []ColumnDefinition{{Name: "K_Stufe"}}, rules)

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Severity != SeverityError || errs[0].Row != 3 || errs[0].Message == "" {
		t.Errorf("unexpected error %+v", errs[0])
	}
}
