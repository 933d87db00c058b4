package cart

// Namespace scopes persisted carts. Kept stable so carts survive deploys.
const Namespace = "pop-playground-cart"

// Item is a cart line. Price and title are copied from the catalog at add
// time; checkout snapshots them into the order as-is.
type Item struct {
	BookID   string `json:"book_id"`
	Title    string `json:"title"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	PDFURL   string `json:"pdf_url"`
}

// Customer is the contact info collected before checkout.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Cart is one session's basket.
type Cart struct {
	Items    []Item   `json:"items"`
	Customer Customer `json:"customer"`
}

// TotalItems sums line quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums price times quantity across lines.
func (c *Cart) TotalPrice() int {
	total := 0
	for _, item := range c.Items {
		total += item.Price * item.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) findItem(bookID string) int {
	for i, item := range c.Items {
		if item.BookID == bookID {
			return i
		}
	}
	return -1
}
