package static

import "github.com/DRSN-tech/storefront/internal/domain"

// ProductRepo — неизменяемый каталог в памяти. Все методы безопасны для конкурентного чтения.
type ProductRepo struct {
	list []domain.Product
	byID map[string]int
}

// NewProductRepo создаёт каталог из встроенной таблицы.
func NewProductRepo() *ProductRepo {
	return NewProductRepoFrom(products)
}

// NewProductRepoFrom создаёт каталог из произвольного набора товаров.
func NewProductRepoFrom(list []domain.Product) *ProductRepo {
	repo := &ProductRepo{
		list: make([]domain.Product, len(list)),
		byID: make(map[string]int, len(list)),
	}
	copy(repo.list, list)
	for i, p := range repo.list {
		repo.byID[p.ID] = i
	}

	return repo
}

// GetProduct возвращает товар по ID.
func (r *ProductRepo) GetProduct(id string) (domain.Product, bool) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Product{}, false
	}

	return clone(r.list[i]), true
}

// GetProductsByCategory возвращает товары категории в порядке таблицы.
func (r *ProductRepo) GetProductsByCategory(category domain.Category) []domain.Product {
	return r.filter(func(p domain.Product) bool { return p.Category == category })
}

// GetAccessoriesForProduct возвращает аксессуары, совместимые с mainID.
func (r *ProductRepo) GetAccessoriesForProduct(mainID string) []domain.Product {
	return r.filter(func(p domain.Product) bool {
		return p.Category == domain.CategoryAccessory && p.IsCompatibleWith(mainID)
	})
}

func (r *ProductRepo) ValidateProductID(id string) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *ProductRepo) ListProducts() []domain.Product {
	return r.filter(func(domain.Product) bool { return true })
}

func (r *ProductRepo) filter(keep func(domain.Product) bool) []domain.Product {
	result := make([]domain.Product, 0)
	for _, p := range r.list {
		if keep(p) {
			result = append(result, clone(p))
		}
	}

	return result
}

// clone копирует срез совместимости, чтобы вызывающий не мог изменить таблицу.
func clone(p domain.Product) domain.Product {
	p.CompatibleWith = append([]string(nil), p.CompatibleWith...)
	return p
}
