package locator

import (
	"context"
	"errors"
	"testing"

	"googlemaps.github.io/maps"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type stubGeocoder struct {
	coords domain.Coordinates
	err    error
	calls  int
}

func (g *stubGeocoder) Geocode(context.Context, string) (domain.Coordinates, error) {
	g.calls++
	return g.coords, g.err
}

func newLocator(t *testing.T, geocoder domain.Geocoder) *Service {
	t.Helper()
	store := memory.NewStore()
	store.AddLocation(domain.StoreLocation{Name: "Berlin Mitte", Address: "Alexanderplatz 1", Lat: 52.5219, Lng: 13.4132})
	store.AddLocation(domain.StoreLocation{Name: "Potsdam", Address: "Brandenburger Str. 1", Lat: 52.3989, Lng: 13.0657})
	store.AddLocation(domain.StoreLocation{Name: "Paris", Address: "Rue de Rivoli 1", Lat: 48.8566, Lng: 2.3522})
	return NewService(store.Locations(), geocoder)
}

func ptr(v float64) *float64 { return &v }

func TestNearby_ByCoordinates(t *testing.T) {
	svc := newLocator(t, nil)

	res, err := svc.Nearby(context.Background(), NearbyQuery{Lat: ptr(52.52), Lng: ptr(13.405)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Origin == nil {
		t.Fatal("expected origin")
	}
	if len(res.Stores) != 2 {
		t.Fatalf("expected 2 stores within default radius, got %d", len(res.Stores))
	}
	if res.Stores[0].Name != "Berlin Mitte" {
		t.Fatalf("expected closest store first, got %s", res.Stores[0].Name)
	}
	if res.Stores[0].DistanceKm > res.Stores[1].DistanceKm {
		t.Fatal("expected ascending distance")
	}
}

func TestNearby_CustomRadius(t *testing.T) {
	svc := newLocator(t, nil)

	res, err := svc.Nearby(context.Background(), NearbyQuery{Lat: ptr(52.52), Lng: ptr(13.405), RadiusKm: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Stores) != 1 {
		t.Fatalf("expected 1 store within 5 km, got %d", len(res.Stores))
	}
}

func TestNearby_GeocodesAddress(t *testing.T) {
	geocoder := &stubGeocoder{coords: domain.Coordinates{Lat: 48.86, Lng: 2.35}}
	svc := newLocator(t, geocoder)

	res, err := svc.Nearby(context.Background(), NearbyQuery{Address: "Paris"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if geocoder.calls != 1 {
		t.Fatalf("expected one geocode call, got %d", geocoder.calls)
	}
	if len(res.Stores) != 1 || res.Stores[0].Name != "Paris" {
		t.Fatalf("unexpected stores: %+v", res.Stores)
	}
}

func TestNearby_CoordinatesWinOverAddress(t *testing.T) {
	geocoder := &stubGeocoder{}
	svc := newLocator(t, geocoder)

	if _, err := svc.Nearby(context.Background(), NearbyQuery{Lat: ptr(52.52), Lng: ptr(13.405), Address: "Paris"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if geocoder.calls != 0 {
		t.Fatal("geocoder must not be called when coordinates are present")
	}
}

func TestNearby_NoOriginReturnsAllStores(t *testing.T) {
	svc := newLocator(t, nil)

	res, err := svc.Nearby(context.Background(), NearbyQuery{Lat: ptr(52.52)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Origin != nil {
		t.Fatal("expected nil origin")
	}
	if len(res.Stores) != 3 {
		t.Fatalf("expected all stores, got %d", len(res.Stores))
	}
}

func TestNearby_GeocoderErrors(t *testing.T) {
	svc := newLocator(t, nil)
	_, err := svc.Nearby(context.Background(), NearbyQuery{Address: "Berlin"})
	if !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Fatalf("expected ErrGeocoderUnavailable, got %v", err)
	}

	svc = newLocator(t, &stubGeocoder{err: domain.ErrLocationNotFound})
	_, err = svc.Nearby(context.Background(), NearbyQuery{Address: "nowhere"})
	if !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestNearby_InvalidCoordinates(t *testing.T) {
	svc := newLocator(t, nil)

	_, err := svc.Nearby(context.Background(), NearbyQuery{Lat: ptr(120), Lng: ptr(13)})
	if domain.KindOf(err) != domain.KindInvalid {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type fakeMaps struct {
	results []maps.GeocodingResult
	err     error
	address string
}

func (f *fakeMaps) Geocode(_ context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	f.address = r.Address
	return f.results, f.err
}

func TestGoogleGeocoder(t *testing.T) {
	fake := &fakeMaps{results: []maps.GeocodingResult{{
		Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: 52.52, Lng: 13.405}},
	}}}
	g := &GoogleGeocoder{client: fake}

	coords, err := g.Geocode(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.address != "Berlin" || coords.Lat != 52.52 || coords.Lng != 13.405 {
		t.Fatalf("unexpected result: %+v (address %q)", coords, fake.address)
	}

	fake.results = nil
	if _, err := g.Geocode(context.Background(), "nowhere"); !errors.Is(err, domain.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}

	fake.err = errors.New("REQUEST_DENIED")
	if _, err := g.Geocode(context.Background(), "Berlin"); !errors.Is(err, domain.ErrGeocoderUnavailable) {
		t.Fatalf("expected ErrGeocoderUnavailable, got %v", err)
	}
}
