// Package geo holds the static region and comune catalog used to populate
// and validate the registry form. Data only, no I/O.
package geo

import "sort"

// comunesByRegion maps each region to its comunes. The catalog is static
// and ships with the binary; updating it means a redeploy.
var comunesByRegion = map[string][]string{
	"Arica y Parinacota": {"Arica", "Camarones", "Putre", "General Lagos"},
	"Tarapacá":           {"Iquique", "Alto Hospicio", "Pozo Almonte", "Pica", "Huara"},
	"Antofagasta":        {"Antofagasta", "Mejillones", "Taltal", "Calama", "Tocopilla", "San Pedro de Atacama"},
	"Atacama":            {"Copiapó", "Caldera", "Tierra Amarilla", "Vallenar", "Chañaral", "Huasco"},
	"Coquimbo":           {"La Serena", "Coquimbo", "Andacollo", "Vicuña", "Ovalle", "Illapel", "Los Vilos"},
	"Valparaíso":         {"Valparaíso", "Viña del Mar", "Concón", "Quilpué", "Villa Alemana", "Quillota", "San Antonio", "Los Andes", "San Felipe"},
	"Metropolitana de Santiago": {
		"Santiago", "Providencia", "Las Condes", "Ñuñoa", "La Florida", "Maipú",
		"Puente Alto", "San Bernardo", "Quilicura", "Pudahuel", "La Reina",
		"Vitacura", "Lo Barnechea", "Recoleta", "Independencia", "Estación Central",
		"Peñalolén", "Macul", "San Miguel", "La Cisterna", "Colina", "Melipilla", "Talagante",
	},
	"Libertador General Bernardo O'Higgins": {"Rancagua", "Machalí", "Graneros", "Rengo", "San Fernando", "Santa Cruz", "Pichilemu"},
	"Maule":            {"Talca", "Curicó", "Linares", "Cauquenes", "Constitución", "Molina", "Parral"},
	"Ñuble":            {"Chillán", "Chillán Viejo", "Bulnes", "San Carlos", "Quirihue", "Yungay"},
	"Biobío":           {"Concepción", "Talcahuano", "Hualpén", "San Pedro de la Paz", "Chiguayante", "Coronel", "Lota", "Los Ángeles", "Tomé"},
	"La Araucanía":     {"Temuco", "Padre Las Casas", "Villarrica", "Pucón", "Angol", "Victoria", "Nueva Imperial"},
	"Los Ríos":         {"Valdivia", "La Unión", "Río Bueno", "Panguipulli", "Lanco", "Futrono"},
	"Los Lagos":        {"Puerto Montt", "Puerto Varas", "Osorno", "Castro", "Ancud", "Quellón", "Frutillar", "Llanquihue"},
	"Aysén del General Carlos Ibáñez del Campo": {"Coyhaique", "Aysén", "Chile Chico", "Cochrane", "Cisnes"},
	"Magallanes y de la Antártica Chilena":      {"Punta Arenas", "Puerto Natales", "Porvenir", "Cabo de Hornos"},
}

// Regions returns every region name in alphabetical order.
func Regions() []string {
	names := make([]string, 0, len(comunesByRegion))
	for name := range comunesByRegion {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Comunes returns the comunes of a region, or nil if the region is unknown.
func Comunes(region string) []string {
	cs, ok := comunesByRegion[region]
	if !ok {
		return nil
	}
	out := make([]string, len(cs))
	copy(out, cs)
	return out
}

// Valid reports whether the comune belongs to the region.
func Valid(region, comune string) bool {
	for _, c := range comunesByRegion[region] {
		if c == comune {
			return true
		}
	}
	return false
}

// Catalog returns the full region to comunes mapping for form population.
func Catalog() map[string][]string {
	out := make(map[string][]string, len(comunesByRegion))
	for region := range comunesByRegion {
		out[region] = Comunes(region)
	}
	return out
}
