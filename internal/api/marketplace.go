package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/response"
	"github.com/SigNoz/marketplace-go-app/internal/services"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func (a *App) marketplaceRoutes(m *mux.Router) {
	m.HandleFunc("/products", a.ListProductsHandler).Methods(http.MethodGet)
	m.HandleFunc("/products/limited-offer", a.LimitedOffersHandler).Methods(http.MethodGet)
	m.HandleFunc("/products/popular", a.PopularProductsHandler).Methods(http.MethodGet)
	m.HandleFunc("/products/recently-viewed", a.auth(a.RecentlyViewedHandler)).Methods(http.MethodGet)
	m.HandleFunc("/products/recently-viewed", a.auth(a.ClearRecentlyViewedHandler)).Methods(http.MethodDelete)
	m.HandleFunc("/products/product-filter", a.FilterProductsHandler).Methods(http.MethodGet)
	m.HandleFunc("/products/search", a.SearchProductsHandler).Methods(http.MethodGet)
	m.HandleFunc("/products/{id:[0-9]+}/similar-products", a.SimilarProductsHandler).Methods(http.MethodGet)
	m.HandleFunc("/products/{id:[0-9]+}/product-detail", a.ProductDetailHandler).Methods(http.MethodGet)
	m.HandleFunc("/products/{id:[0-9]+}/rating", a.auth(a.RateProductHandler)).Methods(http.MethodPut)
	m.HandleFunc("/products/{id:[0-9]+}/rating", a.auth(a.DeleteRatingHandler)).Methods(http.MethodDelete)

	m.HandleFunc("/categories", a.CategoriesHandler).Methods(http.MethodGet)
	m.HandleFunc("/categories/{id:[0-9]+}/products", a.CategoryProductsHandler).Methods(http.MethodGet)
	m.HandleFunc("/categories/{id:[0-9]+}/sub-category", a.SubCategoriesHandler).Methods(http.MethodGet)
	m.HandleFunc("/categories/{id:[0-9]+}/sub-category/{sid:[0-9]+}/products", a.SubCategoryProductsHandler).Methods(http.MethodGet)

	m.HandleFunc("/shops/{id:[0-9]+}", a.MarketplaceShopHandler).Methods(http.MethodGet)
	m.HandleFunc("/shops/{id:[0-9]+}/products", a.MarketplaceShopProductsHandler).Methods(http.MethodGet)
}

// productPage writes one page of a product listing produced by list
func (a *App) productPage(w http.ResponseWriter, r *http.Request, message string,
	list func(page models.Page) ([]models.Product, int64, error)) {
	page, err := pageOf(r, services.ProductPageSize)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	products, total, err := list(page)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.paged(w, r, message, products, total, page)
}

// ListProductsHandler handles GET /api/v1/marketplace/products
func (a *App) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	a.productPage(w, r, "products", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.ListProducts(r.Context(), page)
	})
}

// LimitedOffersHandler handles GET /api/v1/marketplace/products/limited-offer
func (a *App) LimitedOffersHandler(w http.ResponseWriter, r *http.Request) {
	a.productPage(w, r, "limited offers", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.LimitedOffers(r.Context(), page)
	})
}

// PopularProductsHandler handles GET /api/v1/marketplace/products/popular
func (a *App) PopularProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalog.Popular(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "popular products", products)
}

// RecentlyViewedHandler handles GET /api/v1/marketplace/products/recently-viewed
func (a *App) RecentlyViewedHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.FromContext(r.Context()).UserID
	a.productPage(w, r, "recently viewed products", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.RecentlyViewed(r.Context(), userID, page)
	})
}

// ClearRecentlyViewedHandler handles DELETE /api/v1/marketplace/products/recently-viewed
func (a *App) ClearRecentlyViewedHandler(w http.ResponseWriter, r *http.Request) {
	n, err := a.catalog.ClearRecentlyViewed(r.Context(), auth.FromContext(r.Context()).UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "recently viewed products cleared", map[string]int64{"deleted": n})
}

// FilterProductsHandler handles GET /api/v1/marketplace/products/product-filter
func (a *App) FilterProductsHandler(w http.ResponseWriter, r *http.Request) {
	q, err := filterQuery(r.URL.Query())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.productPage(w, r, "filtered products", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.Filter(r.Context(), q, page)
	})
}

// SearchProductsHandler handles GET /api/v1/marketplace/products/search?searchQuery=
func (a *App) SearchProductsHandler(w http.ResponseWriter, r *http.Request) {
	keywords := r.URL.Query().Get("searchQuery")
	a.productPage(w, r, "search results", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.Search(r.Context(), keywords, page)
	})
}

// SimilarProductsHandler handles GET /api/v1/marketplace/products/{id}/similar-products
func (a *App) SimilarProductsHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	products, err := a.catalog.Similar(r.Context(), productID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "similar products", products)
}

// ProductDetailHandler handles GET /api/v1/marketplace/products/{id}/product-detail
func (a *App) ProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	product, err := a.catalog.ProductDetail(r.Context(), auth.FromContext(r.Context()), productID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "product detail", product)
}

// RateProductHandler handles PUT /api/v1/marketplace/products/{id}/rating
func (a *App) RateProductHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var in models.RatingInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.ratings.Rate(r.Context(), auth.FromContext(r.Context()).UserID, productID, in.Rating)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "rating saved", res)
}

// DeleteRatingHandler handles DELETE /api/v1/marketplace/products/{id}/rating
func (a *App) DeleteRatingHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.ratings.DeleteRating(r.Context(), auth.FromContext(r.Context()).UserID, productID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "rating deleted", res)
}

// CategoriesHandler handles GET /api/v1/marketplace/categories
func (a *App) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := a.catalog.Categories(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "categories", categories)
}

// CategoryProductsHandler handles GET /api/v1/marketplace/categories/{id}/products
func (a *App) CategoryProductsHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.productPage(w, r, "category products", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.CategoryProducts(r.Context(), categoryID, page)
	})
}

// SubCategoriesHandler handles GET /api/v1/marketplace/categories/{id}/sub-category
func (a *App) SubCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	subs, err := a.catalog.SubCategories(r.Context(), categoryID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "sub categories", subs)
}

// SubCategoryProductsHandler handles GET .../categories/{id}/sub-category/{sid}/products
func (a *App) SubCategoryProductsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := pathIDs(r, "id", "sid")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.productPage(w, r, "sub category products", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.SubCategoryProducts(r.Context(), ids[0], ids[1], page)
	})
}

// MarketplaceShopHandler handles GET /api/v1/marketplace/shops/{id}
func (a *App) MarketplaceShopHandler(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "id")
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

// MarketplaceShopProductsHandler handles GET /api/v1/marketplace/shops/{id}/products
func (a *App) MarketplaceShopProductsHandler(w http.ResponseWriter, r *http.Request) {
	shopID, err := pathID(r, "id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.productPage(w, r, "shop products", func(page models.Page) ([]models.Product, int64, error) {
		return a.catalog.ShopProducts(r.Context(), shopID, page)
	})
}

// filterQuery maps product-filter query parameters onto a ProductQuery.
// Bounds are exclusive: discount_price and price_max are upper bounds,
// rating and price_min are lower bounds.
func filterQuery(v url.Values) (models.ProductQuery, error) {
	q := models.ProductQuery{
		CategoryName:    v.Get("category"),
		SubCategoryName: v.Get("sub_category"),
		Keywords:        v.Get("keywords"),
	}
	fields := map[string]string{}

	bounds := []struct {
		param string
		dst   *decimal.NullDecimal
	}{
		{"discount_price", &q.DiscountBelow},
		{"rating", &q.RatingAbove},
		{"price_min", &q.PriceAbove},
		{"price_max", &q.PriceBelow},
	}
	for _, b := range bounds {
		raw := v.Get(b.param)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fields[b.param] = "must be a number"
			continue
		}
		*b.dst = decimal.NewNullDecimal(d)
	}

	if raw := v.Get("has_discount"); raw != "" {
		hasDiscount, err := strconv.ParseBool(raw)
		if err != nil {
			fields["has_discount"] = "must be true or false"
		} else {
			q.HasDiscount = &hasDiscount
		}
	}

	if len(fields) > 0 {
		return q, apperr.ValidationFields("invalid filter", fields)
	}
	return q, nil
}
