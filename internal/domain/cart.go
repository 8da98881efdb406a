package domain

// Product is a read-only reference into the catalog; the cart never owns
// or mutates catalog data.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductVariant carries the unit price in minor currency units (VND),
// always non-negative.
type ProductVariant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CartLineItem holds a positive quantity of one variant. At most one line
// item per variant id exists in a cart.
type CartLineItem struct {
	Product  Product        `json:"product"`
	Variant  ProductVariant `json:"variant"`
	Quantity int            `json:"quantity"`
}

func (li CartLineItem) LineTotal() int64 {
	return li.Variant.Price * int64(li.Quantity)
}

// AppliedVoucher is the single active percentage discount on a cart.
type AppliedVoucher struct {
	Code               string `json:"code"`
	DiscountPercentage int64  `json:"discount_percentage"`
}
