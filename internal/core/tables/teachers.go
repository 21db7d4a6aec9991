package tables

import "github.com/JonMunkholm/pupilbridge/internal/core"

// TeachersProfile describes the teacher (Lehrpersonen) export.
func TeachersProfile() core.Profile {
	return core.Profile{
		ImportType: Teachers,
		Label:      "Lehrpersonen",
		Columns: []core.ColumnDefinition{
			col("L_ID", "Lehrperson", core.TypeText, true),
			col("L_AHV", "Lehrperson", core.TypeAHV, false),
			col("L_Kuerzel", "Lehrperson", core.TypeText, true),
			col("L_Name", "Lehrperson", core.TypeText, true),
			col("L_Vorname", "Lehrperson", core.TypeText, true),
			col("L_Geschlecht", "Lehrperson", core.TypeGender, false),
			col("L_Geburtsdatum", "Lehrperson", core.TypeDate, false),
			col("L_Strasse", "Lehrperson", core.TypeText, false),
			col("L_PLZ", "Lehrperson", core.TypePLZ, false),
			col("L_Ort", "Lehrperson", core.TypeText, false),
			col("L_TelefonPrivat", "Lehrperson", core.TypePhone, false),
			col("L_Mobil", "Lehrperson", core.TypePhone, false),
			col("L_EMail", "Lehrperson", core.TypeEmail, true),
			col("L_Pensum", "Anstellung", core.TypeNumber, false),
			col("L_Eintritt", "Anstellung", core.TypeDate, false),
		},
		UniqueColumns: []string{"L_ID", "L_AHV", "L_Kuerzel", "L_EMail"},
		NameColumns:   []string{"L_Name", "L_Vorname"},
	}
}
