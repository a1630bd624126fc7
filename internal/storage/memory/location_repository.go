package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/geo"
)

type locationRepositoryInMemory struct {
	store *Store
}

func (r *locationRepositoryInMemory) List(_ context.Context) ([]domain.StoreLocation, error) {
	result := make([]domain.StoreLocation, 0)
	err := r.store.read(nil, func(st *state) error {
		for _, l := range st.locations {
			result = append(result, l)
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, err
}

func (r *locationRepositoryInMemory) FindNearby(_ context.Context, origin domain.Coordinates, radiusKm float64, limit int) ([]domain.StoreLocation, error) {
	result := make([]domain.StoreLocation, 0)
	err := r.store.read(nil, func(st *state) error {
		for _, l := range st.locations {
			l.DistanceKm = geo.DistanceKm(origin, domain.Coordinates{Lat: l.Lat, Lng: l.Lng})
			if l.DistanceKm <= radiusKm {
				result = append(result, l)
			}
		}
		return nil
	})
	sort.Slice(result, func(i, j int) bool { return result[i].DistanceKm < result[j].DistanceKm })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, err
}

var _ domain.LocationRepository = (*locationRepositoryInMemory)(nil)
