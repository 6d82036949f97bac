package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
)

// CatalogUseCase отдаёт товары каталога, объединённые с данными витрины из CMS.
type CatalogUseCase struct {
	repo      CatalogRepository
	overrides map[string]domain.DisplayOverride
}

func NewCatalogUC(repo CatalogRepository, overrides map[string]domain.DisplayOverride) *CatalogUseCase {
	if overrides == nil {
		overrides = map[string]domain.DisplayOverride{}
	}

	return &CatalogUseCase{
		repo:      repo,
		overrides: overrides,
	}
}

func (c *CatalogUseCase) ListProducts(_ context.Context) []domain.ProductView {
	return c.views(c.repo.ListProducts())
}

func (c *CatalogUseCase) GetProduct(_ context.Context, id string) (*domain.ProductView, error) {
	const op = "CatalogUseCase.GetProduct"

	p, ok := c.repo.GetProduct(id)
	if !ok {
		return nil, e.Wrap(op, e.ErrProductNotFound)
	}

	view := c.view(p)
	return &view, nil
}

func (c *CatalogUseCase) GetProductsByCategory(_ context.Context, category domain.Category) []domain.ProductView {
	return c.views(c.repo.GetProductsByCategory(category))
}

// GetAccessoriesForProduct возвращает совместимые аксессуары. Неизвестный ID даёт пустой список.
func (c *CatalogUseCase) GetAccessoriesForProduct(_ context.Context, mainID string) []domain.ProductView {
	return c.views(c.repo.GetAccessoriesForProduct(mainID))
}

func (c *CatalogUseCase) view(p domain.Product) domain.ProductView {
	if o, ok := c.overrides[p.ID]; ok {
		return domain.MergeDisplay(p, &o)
	}

	return domain.MergeDisplay(p, nil)
}

func (c *CatalogUseCase) views(products []domain.Product) []domain.ProductView {
	res := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		res = append(res, c.view(p))
	}

	return res
}
