package locator

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"googlemaps.github.io/maps"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultGeocodeTimeout = 5 * time.Second

type geocodeClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GoogleGeocoder геокодирует адреса через Google Maps Geocoding API.
type GoogleGeocoder struct {
	client geocodeClient
}

// NewGoogleGeocoder создаёт геокодер по API-ключу.
func NewGoogleGeocoder(apiKey string, timeout time.Duration) (*GoogleGeocoder, error) {
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}
	client, err := maps.NewClient(
		maps.WithAPIKey(apiKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

// Geocode возвращает координаты первого результата.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("%w: %v", domain.ErrGeocoderUnavailable, err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, domain.ErrLocationNotFound
	}
	loc := results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// UnconfiguredGeocoder используется без GOOGLE_MAPS_API_KEY.
type UnconfiguredGeocoder struct{}

// Geocode всегда возвращает ErrGeocoderUnavailable.
func (UnconfiguredGeocoder) Geocode(context.Context, string) (domain.Coordinates, error) {
	return domain.Coordinates{}, fmt.Errorf("%w: GOOGLE_MAPS_API_KEY not configured", domain.ErrGeocoderUnavailable)
}

var (
	_ domain.Geocoder = (*GoogleGeocoder)(nil)
	_ domain.Geocoder = UnconfiguredGeocoder{}
)
