package domain

// Category groups catalog products.
type Category string

const (
	CategoryOther      Category = "other"
	CategorySoftSkill  Category = "soft-skill"
	CategoryHardSkill  Category = "hard-skill"
	CategoryButton     Category = "button"
	CategoryAdditional Category = "additional"
)

// Product is a catalog entry. Products are immutable once loaded; the
// catalog is only ever replaced wholesale.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *int64   `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
}

// Purchasable reports whether the product can be added to the basket.
// A nil price means the product is not for sale.
func (p Product) Purchasable() bool {
	return p.Price != nil
}

// PriceValue returns the price, with unpriced products contributing zero.
func (p Product) PriceValue() int64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}
