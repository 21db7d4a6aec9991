package core

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func testProfile() Profile {
	return Profile{
		ImportType: "students",
		Columns: []ColumnDefinition{
			{Name: "S_ID", Required: true, ValidationType: TypeText},
			{Name: "S_Name", Required: true, ValidationType: TypeText},
			{Name: "S_AHV", ValidationType: TypeAHV},
			{Name: "P_ERZ1_ID", ValidationType: TypeText},
			{Name: "P_ERZ1_AHV", ValidationType: TypeAHV},
		},
		UniqueColumns: []string{"S_ID", "S_AHV"},
		NameColumns:   []string{"S_Name"},
		ParentSlots:   testSlots,
	}
}

func TestValidator_OrderAndStages(t *testing.T) {
	rows := []Row{
		{"S_ID": "1", "S_Name": "Müller", "P_ERZ1_ID": "P1", "P_ERZ1_AHV": "756.9999.9999.99"},
		{"S_ID": "1", "S_Name": "Muller", "P_ERZ1_ID": "P2", "P_ERZ1_AHV": "756.9999.9999.99", "S_AHV": "123"},
		{"S_Name": "Müller"},
	}

	errs := NewValidator(testProfile()).Validate(rows)

	want := []struct {
		row  int
		kind ErrorKind
	}{
		{2, KindFormat},
		{2, KindDuplicate},
		{2, KindIdentity},
		{2, KindDiacritic},
		{3, KindRequired},
	}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(errs), len(want), errs)
	}
	for i, w := range want {
		if errs[i].Row != w.row || errs[i].Kind != w.kind {
			t.Errorf("error %d = row %d %s, want row %d %s", i, errs[i].Row, errs[i].Kind, w.row, w.kind)
		}
	}
}

func TestValidator_Deterministic(t *testing.T) {
	rows := []Row{
		{"S_ID": "1", "S_Name": "Zoé", "P_ERZ1_ID": "A", "P_ERZ1_AHV": "756.1111.1111.11"},
		{"S_ID": "2", "S_Name": "Zoe", "P_ERZ1_ID": "B", "P_ERZ1_AHV": "756.1111.1111.11"},
		{"S_ID": "2", "S_Name": "Zoë"},
	}
	v := NewValidator(testProfile())

	first := v.Validate(rows)
	for i := 0; i < 10; i++ {
		if again := v.Validate(rows); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestValidator_SparseRows(t *testing.T) {
	rows := []Row{
		{"S_ID": "1", "S_Name": "Muster"},
		{"S_ID": "2", "S_Name": "Meier", "Unbekannt": "x"},
	}

	if errs := NewValidator(testProfile()).Validate(rows); len(errs) != 0 {
		t.Errorf("absent optional columns must not be errors, got %v", errs)
	}
}

func TestValidator_FormatRules(t *testing.T) {
	rules := []FormatRule{{ID: "id-digits", Columns: []string{"S_ID"}, Pattern: `^\d+$`}}
	rows := []Row{{"S_ID": "X1", "S_Name": "Muster"}}

	base := NewValidator(testProfile())
	if errs := base.Validate(rows); len(errs) != 0 {
		t.Fatalf("without rules: %v", errs)
	}
	if errs := base.Validate(rows, rules...); len(errs) != 1 || errs[0].RuleID != "id-digits" {
		t.Errorf("extra rules: %v", errs)
	}
	if errs := NewValidator(testProfile(), WithFormatRules(rules)).Validate(rows); len(errs) != 1 {
		t.Errorf("WithFormatRules: %v", errs)
	}
	if errs := base.Validate(rows); len(errs) != 0 {
		t.Errorf("extra rules leaked into the validator: %v", errs)
	}
}

func TestValidator_InputsUntouched(t *testing.T) {
	rows := []Row{
		{"S_ID": "1", "S_Name": "Müller"},
		{"S_ID": "2", "S_Name": "Muller"},
	}

	NewValidator(testProfile()).Validate(rows)

	if rows[1]["S_Name"] != "Muller" {
		t.Errorf("validation modified the input rows: %v", rows[1])
	}
}

func TestValidator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewValidator(testProfile()).ValidateContext(ctx, []Row{{"S_ID": "1"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
