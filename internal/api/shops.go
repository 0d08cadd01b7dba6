package api

import (
	"net/http"

	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/response"
	"github.com/SigNoz/marketplace-go-app/internal/services"
	"github.com/gorilla/mux"
)

const (
	companyPath = "/company/{company_id:[0-9]+}"
	shopPath    = companyPath + "/shop/{shop_id:[0-9]+}"
	productPath = shopPath + "/products/{product_id:[0-9]+}"
)

func (a *App) shopRoutes(shops *mux.Router) {
	shops.HandleFunc("", a.ListShopsHandler).Methods(http.MethodGet)
	shops.HandleFunc("/shop/{shop_id:[0-9]+}", a.GetShopHandler).Methods(http.MethodGet)

	shops.HandleFunc(companyPath, a.ListCompanyShopsHandler).Methods(http.MethodGet)
	shops.HandleFunc(companyPath, a.auth(a.CreateShopHandler)).Methods(http.MethodPost)
	shops.HandleFunc(shopPath, a.GetCompanyShopHandler).Methods(http.MethodGet)
	shops.HandleFunc(shopPath, a.auth(a.UpdateShopHandler)).Methods(http.MethodPatch)
	shops.HandleFunc(shopPath, a.auth(a.DeleteShopHandler)).Methods(http.MethodDelete)

	shops.HandleFunc(shopPath+"/products", a.ListShopProductsHandler).Methods(http.MethodGet)
	shops.HandleFunc(shopPath+"/products", a.auth(a.CreateProductHandler)).Methods(http.MethodPost)
	shops.HandleFunc(productPath, a.GetShopProductHandler).Methods(http.MethodGet)
	shops.HandleFunc(productPath, a.auth(a.UpdateProductHandler)).Methods(http.MethodPatch)
	shops.HandleFunc(productPath, a.auth(a.DeleteProductHandler)).Methods(http.MethodDelete)
}

// ListShopsHandler handles GET /api/v1/shops
func (a *App) ListShopsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r, services.ShopPageSize)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	shops, total, err := a.shops.ListShops(r.Context(), page)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.paged(w, r, "shops", shops, total, page)
}

// GetShopHandler handles GET /api/v1/shops/shop/{shop_id}
func (a *App) GetShopHandler(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "shop_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	shop, err := a.shops.GetShop(r.Context(), shopID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "shop", shop)
}

// ListCompanyShopsHandler handles GET /api/v1/shops/company/{company_id}
func (a *App) ListCompanyShopsHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "company_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	page, err := pageOf(r, services.ShopPageSize)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	shops, total, err := a.shops.ListCompanyShops(r.Context(), companyID, page)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.paged(w, r, "company shops", shops, total, page)
}

// CreateShopHandler handles POST /api/v1/shops/company/{company_id}
func (a *App) CreateShopHandler(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "company_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var in models.ShopInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	shop, err := a.shops.CreateShop(r.Context(), auth.FromContext(r.Context()), companyID, in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, "shop created", shop)
}

// GetCompanyShopHandler handles GET /api/v1/shops/company/{company_id}/shop/{shop_id}
func (a *App) GetCompanyShopHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	shop, err := a.shops.GetCompanyShop(r.Context(), ids[0], ids[1])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "shop", shop)
}

// UpdateShopHandler handles PATCH /api/v1/shops/company/{company_id}/shop/{shop_id}
func (a *App) UpdateShopHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var in models.ShopInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	shop, err := a.shops.UpdateShop(r.Context(), auth.FromContext(r.Context()), ids[0], ids[1], in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "shop updated", shop)
}

// DeleteShopHandler handles DELETE /api/v1/shops/company/{company_id}/shop/{shop_id}
func (a *App) DeleteShopHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.shops.DeleteShop(r.Context(), auth.FromContext(r.Context()), ids[0], ids[1]); err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "shop deleted", nil)
}

// ListShopProductsHandler handles GET .../shop/{shop_id}/products
func (a *App) ListShopProductsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	page, err := pageOf(r, services.ProductPageSize)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	products, total, err := a.shops.ListShopProducts(r.Context(), ids[0], ids[1], page)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.paged(w, r, "shop products", products, total, page)
}

// CreateProductHandler handles POST .../shop/{shop_id}/products
func (a *App) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var in models.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	product, err := a.shops.CreateProduct(r.Context(), auth.FromContext(r.Context()), ids[0], ids[1], in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, "product created", product)
}

// GetShopProductHandler handles GET .../products/{product_id}
func (a *App) GetShopProductHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id", "product_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	product, err := a.shops.GetShopProduct(r.Context(), ids[0], ids[1], ids[2])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "product", product)
}

// UpdateProductHandler handles PATCH .../products/{product_id}
func (a *App) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id", "product_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var in models.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	product, err := a.shops.UpdateProduct(r.Context(), auth.FromContext(r.Context()), ids[0], ids[1], ids[2], in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "product updated", product)
}

// DeleteProductHandler handles DELETE .../products/{product_id}
func (a *App) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "company_id", "shop_id", "product_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.shops.DeleteProduct(r.Context(), auth.FromContext(r.Context()), ids[0], ids[1], ids[2]); err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "product deleted", nil)
}
