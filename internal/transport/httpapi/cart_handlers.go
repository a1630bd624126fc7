package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type upsertItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int32 `json:"quantity"`
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := a.cart.Get(r.Context(), ownerFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (a *API) upsertCartItem(w http.ResponseWriter, r *http.Request) {
	var req upsertItemRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	verr := &domain.ValidationError{}
	if req.ProductID <= 0 {
		verr.Add("product_id", "must be a positive integer")
	}
	if req.Quantity <= 0 {
		verr.Add("quantity", "must be a positive integer")
	}
	if err := verr.OrNil(); err != nil {
		a.writeError(w, r, err)
		return
	}

	c, err := a.cart.Upsert(r.Context(), ownerFrom(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	lineID, err := pathID(r, "itemId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		verr := &domain.ValidationError{}
		verr.Add("quantity", "must be a non-negative integer")
		a.writeError(w, r, verr)
		return
	}

	c, err := a.cart.UpdateByLineID(r.Context(), ownerFrom(r.Context()), lineID, *req.Quantity)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	lineID, err := pathID(r, "itemId")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	c, err := a.cart.RemoveByLineID(r.Context(), ownerFrom(r.Context()), lineID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}
