package domain

// Shipping destination keys used in Product.ShippingFees. The storefront
// charges different delivery fees inside and outside Dhaka.
const (
	ShippingInside  = "inside"
	ShippingOutside = "outside"
)

// Product is a read-only snapshot of a catalog record. Products are owned by
// the catalog service; the cart never mutates one, it only copies it into a
// line item at add time.
type Product struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Price          float64            `json:"price"`
	SalePrice      float64            `json:"sale_price,omitempty"`
	Category       string             `json:"category,omitempty"`
	ImageURL       string             `json:"image_url,omitempty"`
	Stock          int                `json:"stock"`
	Sizes          []string           `json:"sizes,omitempty"`
	Colors         []string           `json:"colors,omitempty"`
	ShippingFees   map[string]float64 `json:"shipping_fees,omitempty"`
	CashOnDelivery bool               `json:"cash_on_delivery"`
}

// EffectivePrice returns the sale price when one is set, otherwise the
// regular price.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}
