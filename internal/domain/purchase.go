package domain

import "time"

// PurchaseCode is generated by the seller and handed to the buyer in person.
type PurchaseCode struct {
	ProductID string    `json:"product_id"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type Purchase struct {
	PurchaseID  string    `json:"id"`
	Product     *Product  `json:"product"`
	BuyerID     string    `json:"buyer_id"`
	SellerID    string    `json:"seller_id"`
	Price       float64   `json:"price"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Address is a postal-code lookup result.
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}
