package api

import (
	"fmt"
	"net/http"

	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/pricing"
	"github.com/SigNoz/marketplace-go-app/internal/response"
	"github.com/SigNoz/marketplace-go-app/internal/services"
	"github.com/gorilla/mux"
)

// containerView is a container together with its totals
type containerView struct {
	*models.Container
	Summary pricing.Summary `json:"summary"`
}

// containerRoutes registers the line item endpoints of one container kind
// under r. Every endpoint acts on the caller's own container.
func (a *App) containerRoutes(r *mux.Router, svc *services.ContainerService) {
	h := &containerHandlers{app: a, svc: svc}

	r.HandleFunc("", a.auth(h.Get)).Methods(http.MethodGet)
	r.HandleFunc("/items", a.auth(h.ListItems)).Methods(http.MethodGet)
	r.HandleFunc("/dump", a.auth(h.Clear)).Methods(http.MethodDelete)
	r.HandleFunc("/add-item/{product_id:[0-9]+}", a.auth(h.AddItem)).Methods(http.MethodPost)
	r.HandleFunc("/remove-item/{product_id:[0-9]+}", a.auth(h.RemoveItem)).Methods(http.MethodDelete)

	switch svc.Kind() {
	case models.KindCart:
		r.HandleFunc("", a.auth(h.UpdateDeliveryAddress)).Methods(http.MethodPatch)
		r.HandleFunc("/update-quantity/{product_id:[0-9]+}", a.auth(h.UpdateQuantity)).Methods(http.MethodPatch)
	case models.KindOrder:
		r.HandleFunc("/update-quantity/{product_id:[0-9]+}", a.auth(h.UpdateQuantity)).Methods(http.MethodPatch)
		r.HandleFunc("/items/{product_id:[0-9]+}/status", a.auth(h.UpdateItemStatus)).Methods(http.MethodPatch)
	}
}

type containerHandlers struct {
	app *App
	svc *services.ContainerService
}

func owner(r *http.Request) int64 {
	return auth.FromContext(r.Context()).UserID
}

// Get returns the caller's container and its summary
func (h *containerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	c, summary, err := h.svc.Container(r.Context(), owner(r))
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, string(h.svc.Kind()), containerView{Container: c, Summary: summary})
}

// ListItems returns a page of the caller's items
func (h *containerHandlers) ListItems(w http.ResponseWriter, r *http.Request) {
	page, err := pageOf(r, services.ContainerPageSize)
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	items, total, err := h.svc.ListItems(r.Context(), owner(r), page)
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	h.app.paged(w, r, fmt.Sprintf("%s items", h.svc.Kind()), items, total, page)
}

// Clear removes every item from the caller's container
func (h *containerHandlers) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Clear(r.Context(), owner(r))
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, fmt.Sprintf("%s cleared", h.svc.Kind()), map[string]int64{"deleted": n})
}

// AddItem adds a product to the caller's container
func (h *containerHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	item, err := h.svc.AddItem(r.Context(), owner(r), productID)
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, fmt.Sprintf("product added to your %s", h.svc.Kind()), item)
}

// RemoveItem removes a product from the caller's container
func (h *containerHandlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	if err := h.svc.RemoveItem(r.Context(), owner(r), productID); err != nil {
		h.app.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, fmt.Sprintf("product removed from your %s", h.svc.Kind()), nil)
}

// UpdateQuantity sets the quantity of one item
func (h *containerHandlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	var in models.QuantityInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.app.fail(w, r, err)
		return
	}
	item, err := h.svc.UpdateQuantity(r.Context(), owner(r), productID, in.Quantity)
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "quantity updated", item)
}

// UpdateDeliveryAddress sets the cart's delivery address
func (h *containerHandlers) UpdateDeliveryAddress(w http.ResponseWriter, r *http.Request) {
	var in models.DeliveryAddressInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.app.fail(w, r, err)
		return
	}
	c, err := h.svc.UpdateDeliveryAddress(r.Context(), owner(r), in)
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "delivery address updated", c)
}

// UpdateItemStatus moves an order item through fulfilment
func (h *containerHandlers) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	var in models.ItemStatusInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.app.fail(w, r, err)
		return
	}
	item, err := h.svc.UpdateItemStatus(r.Context(), owner(r), productID, in)
	if err != nil {
		h.app.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, "item status updated", item)
}
