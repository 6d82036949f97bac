package domain

// Category описывает категорию товара
type Category string

const (
	CategoryMain      Category = "main"
	CategoryAccessory Category = "accessory"
)

func (c Category) IsValid() bool {
	return c == CategoryMain || c == CategoryAccessory
}
