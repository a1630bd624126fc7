package httpapi

import (
	"net/http"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := a.catalog.ListCategories(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	writeJSON(w, http.StatusOK, map[string][]categoryView{"categories": views})
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	verr := &domain.ValidationError{}
	filter := domain.ProductFilter{
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		CategoryID: queryInt(r, "category_id", verr),
		Page:       int(queryInt(r, "page", verr)),
		PageSize:   int(queryInt(r, "page_size", verr)),
	}
	switch sort := domain.ProductSort(r.URL.Query().Get("sort")); sort {
	case domain.ProductSortPriceAsc, domain.ProductSortPriceDesc:
		filter.Sort = sort
	default:
		filter.Sort = domain.ProductSortNewest
	}
	if err := verr.OrNil(); err != nil {
		a.writeError(w, r, err)
		return
	}

	products, err := a.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	writeJSON(w, http.StatusOK, map[string][]productView{"products": views})
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	product, err := a.catalog.GetProduct(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]productView{"product": toProductView(product)})
}
