package postgres

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/geo"
)

type locationRepository struct {
	q querier
}

func (r *locationRepository) List(ctx context.Context) ([]domain.StoreLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, address, lat, lng, 0::double precision
		FROM stores
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return scanLocations(rows)
}

// FindNearby считает расстояние формулой гаверсинусов на стороне базы; acos защищён от выхода за [-1, 1].
func (r *locationRepository) FindNearby(ctx context.Context, origin domain.Coordinates, radiusKm float64, limit int) ([]domain.StoreLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, address, lat, lng, distance_km
		FROM (
			SELECT id, name, address, lat, lng,
			       $4 * ACOS(LEAST(1, GREATEST(-1,
			           COS(RADIANS($1)) * COS(RADIANS(lat)) * COS(RADIANS(lng) - RADIANS($2))
			           + SIN(RADIANS($1)) * SIN(RADIANS(lat))
			       ))) AS distance_km
			FROM stores
		) s
		WHERE distance_km <= $3
		ORDER BY distance_km ASC
		LIMIT $5
	`, origin.Lat, origin.Lng, radiusKm, geo.EarthRadiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("find nearby stores: %w", err)
	}
	return scanLocations(rows)
}

type rowsScanner interface {
	rowScanner
	Next() bool
	Err() error
	Close() error
}

func scanLocations(rows rowsScanner) ([]domain.StoreLocation, error) {
	defer rows.Close()

	result := make([]domain.StoreLocation, 0)
	for rows.Next() {
		var l domain.StoreLocation
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Lat, &l.Lng, &l.DistanceKm); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}
	return result, nil
}

var _ domain.LocationRepository = (*locationRepository)(nil)
