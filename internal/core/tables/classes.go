package tables

import "github.com/JonMunkholm/pupilbridge/internal/core"

// ClassesProfile describes the class (Klassen) export.
func ClassesProfile() core.Profile {
	return core.Profile{
		ImportType: Classes,
		Label:      "Klassen",
		Columns: []core.ColumnDefinition{
			col("K_ID", "Klasse", core.TypeText, true),
			col("K_Name", "Klasse", core.TypeText, true),
			col("K_Stufe", "Klasse", core.TypeNumber, false),
			col("K_Schuljahr", "Klasse", core.TypeText, false),
			col("K_Klassenlehrperson", "Klasse", core.TypeText, false),
			col("K_Schulhaus", "Klasse", core.TypeText, false),
		},
		UniqueColumns: []string{"K_ID", "K_Name"},
	}
}
