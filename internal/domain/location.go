package domain

// Coordinates: точка в градусах.
type Coordinates struct {
	Lat float64
	Lng float64
}

// StoreLocation: офлайн-магазин с координатами.
type StoreLocation struct {
	ID      int64
	Name    string
	Address string
	Lat     float64
	Lng     float64
	// DistanceKm заполняется только поиском по радиусу.
	DistanceKm float64
}

const (
	DefaultNearbyRadiusKm = 50.0
	MaxNearbyResults      = 50
)
