package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/static"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogUseCase_OverridesOnlyDisplayFields(t *testing.T) {
	uc := NewCatalogUC(static.NewProductRepo(), map[string]domain.DisplayOverride{
		"prod_lumen_one": {Name: "Lumen One (2026)", Image: "https://cdn.test/one.png"},
	})

	view, err := uc.GetProduct(context.Background(), "prod_lumen_one")
	require.NoError(t, err)
	assert.Equal(t, "Lumen One (2026)", view.Name)
	assert.Equal(t, "https://cdn.test/one.png", view.Image)
	assert.Equal(t, "249.00", view.Price.StringFixed(2))
	assert.Equal(t, "EUR", view.Currency)
	assert.NotEmpty(t, view.Description)
}

func TestCatalogUseCase_GetUnknownProduct(t *testing.T) {
	uc := NewCatalogUC(static.NewProductRepo(), nil)

	_, err := uc.GetProduct(context.Background(), "prod_missing")
	require.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestCatalogUseCase_AccessoriesAndCategories(t *testing.T) {
	uc := NewCatalogUC(static.NewProductRepo(), nil)
	ctx := context.Background()

	ids := func(views []domain.ProductView) []string {
		res := make([]string, 0, len(views))
		for _, v := range views {
			res = append(res, v.ID)
		}
		return res
	}

	assert.Equal(t, []string{"prod_wall_mount", "prod_travel_case", "prod_charging_dock"},
		ids(uc.GetAccessoriesForProduct(ctx, "prod_lumen_mini")))
	assert.Empty(t, uc.GetAccessoriesForProduct(ctx, "prod_missing"))
	assert.Len(t, uc.GetProductsByCategory(ctx, domain.CategoryMain), 3)
	assert.Len(t, uc.ListProducts(ctx), 8)
}
