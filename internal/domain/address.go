package domain

// ShippingAddress is owned by the address book; checkout copies it into the
// shipping form and never writes it back.
type ShippingAddress struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Street    string `json:"street"`
	City      string `json:"city"`
	IsDefault bool   `json:"is_default"`
}

// Customer is the profile view checkout needs: identity plus the loyalty
// point balance redeemable against an order.
type Customer struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	LoyaltyPoints int64  `json:"loyalty_points"`
}
