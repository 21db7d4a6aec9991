// Package tables declares the import profiles for LehrerOffice exports.
//
// Each profile lists the columns PUPIL expects for one import type together
// with the checks that apply across rows (unique columns, name columns for
// diacritic reconciliation, parent slots for identity matching).
package tables

import "github.com/JonMunkholm/pupilbridge/internal/core"

// Import types.
const (
	Students = "students"
	Teachers = "teachers"
	Classes  = "classes"
)

// NewRegistry returns a registry holding all built-in profiles.
func NewRegistry() *core.Registry {
	r := core.NewRegistry()
	r.MustRegister(StudentsProfile())
	r.MustRegister(TeachersProfile())
	r.MustRegister(ClassesProfile())
	return r
}

func col(name, category string, vt core.ValidationType, required bool) core.ColumnDefinition {
	return core.ColumnDefinition{
		Name:           name,
		Category:       category,
		ValidationType: vt,
		Required:       required,
	}
}
