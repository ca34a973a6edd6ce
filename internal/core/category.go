package core

// Category is the closed set of expense categories.
type Category string

const (
	CategoryKilometer     Category = "kilometer"     // own car, mileage rate
	CategoryFahrt         Category = "fahrt"         // taxi, rental, rail, flight
	CategoryUebernachtung Category = "uebernachtung" // lodging
	CategoryVerpflegung   Category = "verpflegung"   // meals
	CategorySonstiges     Category = "sonstiges"     // everything else
)

// DefaultCategory is the fallback for unknown category ids on legacy
// records.
const DefaultCategory = CategorySonstiges

type categoryInfo struct {
	Label      string
	DefaultVat VatRateID
}

var categories = map[Category]categoryInfo{
	CategoryKilometer:     {Label: "Kilometer", DefaultVat: VatRate0},
	CategoryFahrt:         {Label: "Fahrt", DefaultVat: VatRate7},
	CategoryUebernachtung: {Label: "Übernachtung", DefaultVat: VatRate7},
	CategoryVerpflegung:   {Label: "Verpflegung", DefaultVat: VatRate19},
	CategorySonstiges:     {Label: "Sonstiges", DefaultVat: VatRate19},
}

// Categories lists all categories in entry-form order.
func Categories() []Category {
	return []Category{
		CategoryKilometer,
		CategoryFahrt,
		CategoryUebernachtung,
		CategoryVerpflegung,
		CategorySonstiges,
	}
}

func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Label returns the German display label, falling back to the default
// category for unknown ids.
func (c Category) Label() string {
	if info, ok := categories[c]; ok {
		return info.Label
	}
	return categories[DefaultCategory].Label
}

// DefaultVatRate is the rate preselected when the category is chosen, e.g.
// 7% for rail tickets and lodging, 0% for the mileage flat rate.
func (c Category) DefaultVatRate() VatRateID {
	if info, ok := categories[c]; ok {
		return info.DefaultVat
	}
	return categories[DefaultCategory].DefaultVat
}
