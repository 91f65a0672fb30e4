package extract

import (
	"strings"

	"propiedades/internal/domain"
	"propiedades/internal/shared"
)

// Sale is checked before rent: "venta" wins when both appear.
var (
	saleKeywords = []string{
		"se vende", "en venta", "venta", "vendo", "vendemos", "remato", "remate",
		"precio de venta", "preventa",
	}
	rentKeywords = []string{
		"se renta", "en renta", "renta", "rento", "rentamos", "alquiler", "alquilo",
		"arrendamiento", "arriendo", "/mes", "por mes", "al mes", "mensual", "mensuales",
	}
)

const (
	saleFloor   = 500_000
	rentCeiling = 100_000
)

// ClassifyOperation decides sale vs rent from keywords, falling back to the
// magnitude of an already parsed price. The second result explains the choice.
func ClassifyOperation(text string, price *float64) (domain.OperationType, string) {
	folded := shared.Fold(text)
	if kw, ok := shared.FirstWord(folded, saleKeywords); ok {
		return domain.OperationSale, "keyword:" + kw
	}
	if kw, ok := shared.FirstWord(folded, rentKeywords); ok {
		return domain.OperationRent, "keyword:" + kw
	}
	if price != nil {
		switch {
		case *price >= saleFloor:
			return domain.OperationSale, "price"
		case *price > 0 && *price <= rentCeiling:
			return domain.OperationRent, "price"
		}
	}
	return domain.OperationUnknown, ""
}

type subtypeRule struct {
	phrases []string
	name    string
	// as, when set, refines the category's property type
	as domain.PropertyType
}

type typeRule struct {
	pt       domain.PropertyType
	primary  []string
	subtypes []subtypeRule
	fallback string
}

// Categories in priority order. Descriptions of houses routinely mention
// "terreno", "oficina" or "bodega", so house must come first.
var propertyTypes = []typeRule{
	{
		pt:      domain.PropertyHouse,
		primary: []string{"casa", "casas", "casita", "residencia", "chalet", "villa", "townhouse", "casa habitacion"},
		subtypes: []subtypeRule{
			{phrases: []string{"condominio", "condominio horizontal", "conjunto residencial", "coto"}, name: "condominio", as: domain.PropertyHouseInCondo},
			{phrases: []string{"privada", "en privada", "cerrada"}, name: "privada", as: domain.PropertyHouseInCondo},
			{phrases: []string{"fraccionamiento", "fracc", "residencial"}, name: "fraccionamiento"},
			{phrases: []string{"casa sola", "sola", "independiente"}, name: "sola"},
		},
		fallback: "sola",
	},
	{
		pt:      domain.PropertyApartment,
		primary: []string{"departamento", "departamentos", "depto", "deptos", "depa", "depas", "dpto", "apartamento", "penthouse", "pent house", "loft", "flat"},
		subtypes: []subtypeRule{
			{phrases: []string{"penthouse", "pent house"}, name: "penthouse"},
			{phrases: []string{"loft"}, name: "loft"},
			{phrases: []string{"garden house"}, name: "garden_house"},
		},
		fallback: "departamento",
	},
	{
		pt:      domain.PropertyLand,
		primary: []string{"terreno", "terrenos", "lote", "lotes", "predio", "parcela", "hectarea", "hectareas"},
		subtypes: []subtypeRule{
			{phrases: []string{"uso comercial", "comercial"}, name: "comercial"},
			{phrases: []string{"campestre", "rustico"}, name: "campestre"},
			{phrases: []string{"ejido", "ejidal"}, name: "ejidal"},
			{phrases: []string{"residencial", "fraccionamiento"}, name: "residencial"},
		},
		fallback: "urbano",
	},
	{
		pt:      domain.PropertyRetail,
		primary: []string{"local comercial", "locales comerciales", "local", "locales", "accesoria"},
		subtypes: []subtypeRule{
			{phrases: []string{"plaza comercial", "en plaza"}, name: "plaza"},
		},
		fallback: "local",
	},
	{
		pt:       domain.PropertyOffice,
		primary:  []string{"oficina", "oficinas", "consultorio", "consultorios", "despacho"},
		subtypes: []subtypeRule{{phrases: []string{"consultorio", "consultorios"}, name: "consultorio"}},
		fallback: "oficina",
	},
	{
		pt:       domain.PropertyWarehouse,
		primary:  []string{"bodega", "bodegas", "nave industrial", "nave", "almacen"},
		subtypes: []subtypeRule{{phrases: []string{"nave industrial", "nave"}, name: "nave_industrial"}},
		fallback: "bodega",
	},
}

// phrases that contain a category keyword without naming the listed property
var typeNoise = strings.NewReplacer("casa club", " ", "casa de huespedes", " ", "oficina de ventas", " ")

// ClassifyPropertyType returns the first category whose primary keywords
// occur in text, refined by the first matching subtype.
func ClassifyPropertyType(text string) (domain.PropertyType, string) {
	folded := typeNoise.Replace(shared.Fold(text))
	for _, rule := range propertyTypes {
		if _, ok := shared.FirstWord(folded, rule.primary); !ok {
			continue
		}
		for _, st := range rule.subtypes {
			if _, ok := shared.FirstWord(folded, st.phrases); ok {
				if st.as != "" {
					return st.as, st.name
				}
				return rule.pt, st.name
			}
		}
		return rule.pt, rule.fallback
	}
	return domain.PropertyOther, ""
}
