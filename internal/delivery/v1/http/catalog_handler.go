package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Возвращает товары каталога с данными витрины. Можно отфильтровать по категории.
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"main или accessory"
//	@Success		200			{array}		domain.ProductView
//	@Failure		400			{object}	ErrorResponse
//	@Router			/products [get]
func (c *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		WriteSuccess(w, http.StatusOK, c.catalogUsecase.ListProducts(r.Context()))
		return
	}

	if !domain.Category(category).IsValid() {
		c.logger.Warnf("%d %s: unknown category %q", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), category)
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	WriteSuccess(w, http.StatusOK, c.catalogUsecase.GetProductsByCategory(r.Context(), domain.Category(category)))
}

// getProduct
//
//	@Summary	Товар по ID
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	domain.ProductView
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (c *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.catalogUsecase.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, product)
}

// getAccessories
//
//	@Summary	Аксессуары к товару
//	@Tags		products
//	@Produce	json
//	@Param		id	path	string	true	"ID основного товара"
//	@Success	200	{array}	domain.ProductView
//	@Router		/products/{id}/accessories [get]
func (c *CatalogHandler) getAccessories(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, http.StatusOK, c.catalogUsecase.GetAccessoriesForProduct(r.Context(), chi.URLParam(r, "id")))
}
