package tables

import "github.com/JonMunkholm/pupilbridge/internal/core"

// Parent slot column prefixes as exported by LehrerOffice.
const (
	parent1Prefix = "P_ERZ1_"
	parent2Prefix = "P_ERZ2_"
)

// StudentsProfile describes the student export with up to two
// parents/guardians (Erziehungsberechtigte) per row.
func StudentsProfile() core.Profile {
	columns := []core.ColumnDefinition{
		col("S_ID", "Schüler", core.TypeText, true),
		col("S_AHV", "Schüler", core.TypeAHV, false),
		col("S_Name", "Schüler", core.TypeText, true),
		col("S_Vorname", "Schüler", core.TypeText, true),
		col("S_Geschlecht", "Schüler", core.TypeGender, true),
		col("S_Geburtsdatum", "Schüler", core.TypeDate, true),
		col("S_Strasse", "Schüler", core.TypeText, false),
		col("S_PLZ", "Schüler", core.TypePLZ, false),
		col("S_Ort", "Schüler", core.TypeText, false),
		col("S_Telefon", "Schüler", core.TypePhone, false),
		col("S_EMail", "Schüler", core.TypeEmail, false),
		col("S_Muttersprache", "Schüler", core.TypeText, false),
		col("S_Nationalitaet", "Schüler", core.TypeText, false),
		col("S_Eintritt", "Schüler", core.TypeDate, false),
		col("K_Name", "Klasse", core.TypeText, true),
		col("K_Stufe", "Klasse", core.TypeNumber, false),
	}
	columns = append(columns, parentColumns(parent1Prefix, "Erziehungsberechtigte/r 1")...)
	columns = append(columns, parentColumns(parent2Prefix, "Erziehungsberechtigte/r 2")...)

	return core.Profile{
		ImportType:    Students,
		Label:         "Schüler/innen",
		Columns:       columns,
		UniqueColumns: []string{"S_ID", "S_AHV"},
		NameColumns: []string{
			"S_Name", "S_Vorname",
			parent1Prefix + "Name", parent1Prefix + "Vorname",
			parent2Prefix + "Name", parent2Prefix + "Vorname",
		},
		ParentSlots: []core.ParentSlot{
			parentSlot(parent1Prefix, "Erziehungsberechtigte/r 1"),
			parentSlot(parent2Prefix, "Erziehungsberechtigte/r 2"),
		},
	}
}

func parentColumns(prefix, category string) []core.ColumnDefinition {
	return []core.ColumnDefinition{
		col(prefix+"ID", category, core.TypeText, false),
		col(prefix+"AHV", category, core.TypeAHV, false),
		col(prefix+"Anrede", category, core.TypeText, false),
		col(prefix+"Name", category, core.TypeText, false),
		col(prefix+"Vorname", category, core.TypeText, false),
		col(prefix+"Strasse", category, core.TypeText, false),
		col(prefix+"PLZ", category, core.TypePLZ, false),
		col(prefix+"Ort", category, core.TypeText, false),
		col(prefix+"TelefonPrivat", category, core.TypePhone, false),
		col(prefix+"TelefonGeschaeft", category, core.TypePhone, false),
		col(prefix+"Mobil", category, core.TypePhone, false),
		col(prefix+"EMail", category, core.TypeEmail, false),
		col(prefix+"Beruf", category, core.TypeText, false),
	}
}

func parentSlot(prefix, label string) core.ParentSlot {
	return core.ParentSlot{
		Label:           label,
		IDColumn:        prefix + "ID",
		AHVColumn:       prefix + "AHV",
		NameColumn:      prefix + "Name",
		FirstNameColumn: prefix + "Vorname",
		StreetColumn:    prefix + "Strasse",
		PhoneColumns: []string{
			prefix + "TelefonPrivat",
			prefix + "TelefonGeschaeft",
			prefix + "Mobil",
		},
	}
}
