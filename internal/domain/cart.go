package domain

// LineItem is one entry in a cart: a product snapshot plus the chosen
// variant and quantity. ID is a surrogate key unique within the session;
// the (product id, size, color) triple is the natural key that decides
// whether two additions merge into one line.
type LineItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// LineTotal returns the effective unit price times the quantity.
func (li LineItem) LineTotal() float64 {
	return li.Product.EffectivePrice() * float64(li.Quantity)
}

// Matches reports whether the line item has the given natural key.
func (li LineItem) Matches(productID, size, color string) bool {
	return li.Product.ID == productID && li.Size == size && li.Color == color
}

// Cart is an ordered list of line items. Order is insertion order and is
// stable across persistence round-trips. Totals are always derived from the
// items, never stored.
type Cart struct {
	Items []LineItem `json:"items"`
}

// Subtotal sums the line totals over all items.
func (c *Cart) Subtotal() float64 {
	var total float64
	for _, li := range c.Items {
		total += li.LineTotal()
	}
	return total
}

// ItemCount sums the quantities over all items.
func (c *Cart) ItemCount() int {
	var count int
	for _, li := range c.Items {
		count += li.Quantity
	}
	return count
}

// FindLineIndex returns the index of the line item matching the natural key,
// or -1 when no line matches.
func (c *Cart) FindLineIndex(productID, size, color string) int {
	for i := range c.Items {
		if c.Items[i].Matches(productID, size, color) {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the line item with the given surrogate id,
// or -1 when absent.
func (c *Cart) FindByID(lineItemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}
