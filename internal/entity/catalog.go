package entity

// SourceCatalog maps acquisition-channel codes to their display names.
var SourceCatalog = map[string]string{
	"01": "Redes sociales y sitio web",
	"02": "Recomendación",
	"03": "Publicidad tradicional y admisiones",
	"04": "Alianzas educativas",
	"05": "Alianzas empresariales y convenios",
	"06": "Activaciones",
	"07": "Eventos de prospección",
}

// SourceName resolves a catalog code to its name, falling back to the code
// itself so free-text import sources render as-is.
func SourceName(code string) string {
	if name, ok := SourceCatalog[code]; ok {
		return name
	}
	return code
}

// KnownSource reports whether the code belongs to the closed catalog.
func KnownSource(code string) bool {
	_, ok := SourceCatalog[code]
	return ok
}

// BusinessUnit is an organizational grouping a lead can belong to.
type BusinessUnit struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Level          string `json:"level"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`
}

// BusinessUnits is the fixed catalog of units leads may reference.
var BusinessUnits = []BusinessUnit{
	{ID: "beeplay", Name: "Beeplay", Level: "Maternal"},
	{ID: "nuevo_beeplay", Name: "Nuevo Beeplay", Level: "Maternal y Kinder"},
	{ID: "liceo_los_cabos", Name: "Liceo Los Cabos", Level: "Kinder - Preparatoria"},
	{ID: "liceo_universitario", Name: "Liceo Universitario", Level: "Universidad"},
}

// KnownBusinessUnit reports whether the id belongs to the catalog.
func KnownBusinessUnit(id string) bool {
	for _, unit := range BusinessUnits {
		if unit.ID == id {
			return true
		}
	}
	return false
}
