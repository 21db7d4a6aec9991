package tables

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/pupilbridge/internal/core"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()

	if got := r.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}

	all := r.All()
	want := []string{Classes, Students, Teachers}
	for i, p := range all {
		if p.ImportType != want[i] {
			t.Errorf("All()[%d].ImportType = %q, want %q", i, p.ImportType, want[i])
		}
	}

	if _, err := r.Get("parents"); !errors.Is(err, core.ErrUnknownImportType) {
		t.Errorf("Get(parents) error = %v, want ErrUnknownImportType", err)
	}
}

func TestNewRegistry_IndependentInstances(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	if err := a.Register(core.Profile{ImportType: "custom"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := b.Get("custom"); err == nil {
		t.Error("profiles registered on one registry must not leak into another")
	}
}

func TestStudentsProfile_SlotColumnsDeclared(t *testing.T) {
	p := StudentsProfile()

	if len(p.ParentSlots) != 2 {
		t.Fatalf("ParentSlots = %d, want 2", len(p.ParentSlots))
	}

	for _, slot := range p.ParentSlots {
		cols := append([]string{slot.IDColumn, slot.AHVColumn, slot.NameColumn, slot.FirstNameColumn, slot.StreetColumn}, slot.PhoneColumns...)
		for _, c := range cols {
			if _, ok := p.Column(c); !ok {
				t.Errorf("slot %q references undeclared column %q", slot.Label, c)
			}
		}
	}

	for _, c := range append(p.UniqueColumns, p.NameColumns...) {
		if _, ok := p.Column(c); !ok {
			t.Errorf("profile references undeclared column %q", c)
		}
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(StudentsProfile()); err == nil {
		t.Error("registering students twice should fail")
	}
}
