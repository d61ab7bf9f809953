package domain

import (
	"encoding/json"
	"time"
)

type Product struct {
	ProductID   string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Images      []string  `json:"images"`
	SellerID    string    `json:"seller_id"`
	Seller      *User     `json:"seller,omitempty"`
	Sold        bool      `json:"sold"`
	Favorited   bool      `json:"favorited,omitempty"`
	CreatedAt   time.Time `json:"created"`
}

// UnmarshalJSON accepts the legacy "estado_de_conservacao" field as the condition.
func (p *Product) UnmarshalJSON(data []byte) error {
	type alias Product
	var raw struct {
		alias
		LegacyCondition string `json:"estado_de_conservacao"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Product(raw.alias)
	if p.Condition == "" {
		p.Condition = raw.LegacyCondition
	}
	return nil
}

type ProductInput struct {
	Title       string  `json:"title" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=2000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Condition   string  `json:"condition" validate:"required"`
}

// ProductFilter narrows the listing. Zero values mean "no filter".
type ProductFilter struct {
	Search    string
	Category  string
	Condition string
	Page      int
}
