package model

// Product represents a row in the `products` table, optionally joined with
// its category.  Images are stored as a JSON array in MySQL and decoded
// into a string slice by the repository.  CategoryName and CategoryImage
// are populated from the LEFT JOIN on categories and are empty when the
// product has no category.
type Product struct {
    ID            uint64   `json:"id"`
    Title         string   `json:"title"`
    Price         float64  `json:"price"`
    Description   *string  `json:"description"`
    CategoryID    *uint64  `json:"category_id"`
    Images        []string `json:"images"`
    CategoryName  *string  `json:"category_name,omitempty"`
    CategoryImage *string  `json:"category_image,omitempty"`
}

// Category represents a row in the `categories` table.
type Category struct {
    ID    uint64  `json:"id"`
    Name  string  `json:"name"`
    Image *string `json:"image"`
}
