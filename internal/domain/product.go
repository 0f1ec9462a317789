package domain

type Product struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"desc" yaml:"desc"`
	Category    string  `json:"category" yaml:"category"`
	Price       float64 `json:"price" yaml:"price"`
	Stock       int     `json:"stock" yaml:"stock"`
	ImageRef    string  `json:"img" yaml:"img"`
}

type SortMode string

const (
	SortNone      SortMode = ""
	SortPriceAsc  SortMode = "price-asc"
	SortPriceDesc SortMode = "price-desc"
	SortNameAsc   SortMode = "name-asc"
)

// Valid reports whether s is one of the known sort modes.
func (s SortMode) Valid() bool {
	switch s {
	case SortNone, SortPriceAsc, SortPriceDesc, SortNameAsc:
		return true
	}
	return false
}

// Filters narrows a catalog query. Zero values mean "no constraint".
type Filters struct {
	Text     string
	Category string
	MinPrice float64
	MaxPrice float64
	Sort     SortMode
}
