package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/locator"
)

func (a *API) allStores(w http.ResponseWriter, r *http.Request) {
	stores, err := a.locator.All(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]storeView{"stores": toStoreViews(stores, false)})
}

func (a *API) nearbyStores(w http.ResponseWriter, r *http.Request) {
	verr := &domain.ValidationError{}
	query := locator.NearbyQuery{
		Lat:     queryFloat(r, "lat", verr),
		Lng:     queryFloat(r, "lng", verr),
		Address: r.URL.Query().Get("address"),
	}
	if radius := queryFloat(r, "radius_km", verr); radius != nil {
		query.RadiusKm = *radius
	}
	if err := verr.OrNil(); err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.locator.Nearby(r.Context(), query)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNearbyView(res))
}
