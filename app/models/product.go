package models

// Product is a catalogue entry. It is created once and never updated.
type Product struct {
	ID          string  `json:"id"          dynamodbav:"id"`
	Name        string  `json:"name"        dynamodbav:"name"`
	Description string  `json:"description" dynamodbav:"description"`
	Price       float64 `json:"price"       dynamodbav:"price"`
}

// ProductView is a Product joined with its stock count.
type ProductView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// NewProductView joins p with its stock count.
func NewProductView(p Product, stock int) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       stock,
	}
}
