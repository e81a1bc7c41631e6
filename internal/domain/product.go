package domain

// Product is the shape the remote catalog API returns. The storefront never
// mutates catalog data; it only carries it into the cart.
type Product struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Discount    float64  `json:"discount"`
	Images      []Image  `json:"images"`
	ImageAlt    string   `json:"imageAlt"`
	Category    Category `json:"category"`
}

type Image struct {
	URL string `json:"url"`
}

type Category struct {
	CategoryName string `json:"categoryName"`
	Slug         string `json:"slug"`
}

// CartItem is a product entry in the cart together with its requested
// quantity. Quantity is at least 1 for any item held in the cart.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}
