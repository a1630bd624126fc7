// Package locator ищет магазины рядом с точкой или адресом.
package locator

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/geo"
)

// NearbyQuery: параметры поиска. Lat и Lng учитываются только вместе.
type NearbyQuery struct {
	Lat      *float64
	Lng      *float64
	RadiusKm float64
	Address  string
}

// NearbyResult: найденные магазины и точка отсчёта; Origin == nil, если точки нет.
type NearbyResult struct {
	Origin *domain.Coordinates
	Stores []domain.StoreLocation
}

// Service: поиск магазинов.
type Service struct {
	repo     domain.LocationRepository
	geocoder domain.Geocoder
}

// NewService создаёт сервис; geocoder == nil означает, что геокодирование не настроено.
func NewService(repo domain.LocationRepository, geocoder domain.Geocoder) *Service {
	if geocoder == nil {
		geocoder = UnconfiguredGeocoder{}
	}
	return &Service{repo: repo, geocoder: geocoder}
}

// All возвращает все магазины по имени.
func (s *Service) All(ctx context.Context) ([]domain.StoreLocation, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return stores, nil
}

// Nearby ищет магазины в радиусе от координат или геокодированного адреса.
// Без координат и адреса возвращаются все магазины.
func (s *Service) Nearby(ctx context.Context, q NearbyQuery) (NearbyResult, error) {
	var origin *domain.Coordinates
	switch {
	case q.Lat != nil && q.Lng != nil:
		origin = &domain.Coordinates{Lat: *q.Lat, Lng: *q.Lng}
	case strings.TrimSpace(q.Address) != "":
		coords, err := s.geocoder.Geocode(ctx, strings.TrimSpace(q.Address))
		if err != nil {
			return NearbyResult{}, err
		}
		origin = &coords
	}

	if origin == nil {
		stores, err := s.All(ctx)
		if err != nil {
			return NearbyResult{}, err
		}
		return NearbyResult{Stores: stores}, nil
	}

	if !geo.ValidCoordinates(*origin) {
		verr := &domain.ValidationError{}
		verr.Add("lat", "must be within [-90, 90]; lng within [-180, 180]")
		return NearbyResult{}, verr
	}

	radius := q.RadiusKm
	if radius <= 0 {
		radius = domain.DefaultNearbyRadiusKm
	}

	stores, err := s.repo.FindNearby(ctx, *origin, radius, domain.MaxNearbyResults)
	if err != nil {
		return NearbyResult{}, fmt.Errorf("find nearby stores: %w", err)
	}
	return NearbyResult{Origin: origin, Stores: stores}, nil
}
