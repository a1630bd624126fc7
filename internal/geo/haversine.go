// Package geo содержит геометрию для поиска ближайших магазинов.
package geo

import (
	"math"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// EarthRadiusKm: средний радиус Земли, тот же, что в SQL-запросе postgres-хранилища.
const EarthRadiusKm = 6371.0

// DistanceKm считает расстояние по большому кругу между двумя точками.
func DistanceKm(a, b domain.Coordinates) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLng := radians(b.Lng - a.Lng)

	cos := math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng) + math.Sin(lat1)*math.Sin(lat2)
	// Погрешность float может вывести значение за [-1, 1], и acos вернёт NaN.
	cos = math.Max(-1, math.Min(1, cos))
	return EarthRadiusKm * math.Acos(cos)
}

// ValidCoordinates проверяет диапазоны широты и долготы.
func ValidCoordinates(c domain.Coordinates) bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
