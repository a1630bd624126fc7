package app

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// demoCatalog: каталог для локального запуска и ручной проверки API.
func demoCatalog() domain.CatalogSeed {
	return domain.CatalogSeed{
		Categories: []domain.Category{
			{Name: "Audio", Slug: "audio"},
			{Name: "Accessories", Slug: "accessories"},
			{Name: "Home Office", Slug: "home-office"},
		},
		Products: []domain.Product{
			{CategorySlug: "audio", Name: "Wireless Headphones", Description: "Over-ear, noise cancelling, 30h battery.", PriceMinor: 12999, Currency: "usd", ImageURL: "https://picsum.photos/seed/headphones/600/400", Stock: 25},
			{CategorySlug: "audio", Name: "Bluetooth Speaker", Description: "Portable speaker with 12h battery.", PriceMinor: 4999, Currency: "usd", ImageURL: "https://picsum.photos/seed/speaker/600/400", Stock: 40},
			{CategorySlug: "audio", Name: "Earbuds", Description: "In-ear, charging case included.", PriceMinor: 7999, Currency: "usd", ImageURL: "https://picsum.photos/seed/earbuds/600/400", Stock: 60},
			{CategorySlug: "accessories", Name: "USB-C Cable", Description: "1m braided cable, 60W.", PriceMinor: 500, Currency: "usd", ImageURL: "https://picsum.photos/seed/cable/600/400", Stock: 200},
			{CategorySlug: "accessories", Name: "Phone Stand", Description: "Aluminium desk stand.", PriceMinor: 1500, Currency: "usd", ImageURL: "https://picsum.photos/seed/stand/600/400", Stock: 80},
			{CategorySlug: "accessories", Name: "Laptop Sleeve", Description: "Fits 13-14 inch laptops.", PriceMinor: 2499, Currency: "usd", ImageURL: "https://picsum.photos/seed/sleeve/600/400", Stock: 35},
			{CategorySlug: "home-office", Name: "Mechanical Keyboard", Description: "Hot-swappable switches, RGB.", PriceMinor: 8999, Currency: "usd", ImageURL: "https://picsum.photos/seed/keyboard/600/400", Stock: 15},
			{CategorySlug: "home-office", Name: "Desk Lamp", Description: "LED lamp with dimmer.", PriceMinor: 3499, Currency: "usd", ImageURL: "https://picsum.photos/seed/lamp/600/400", Stock: 30},
			{CategorySlug: "home-office", Name: "Webcam", Description: "1080p with privacy shutter.", PriceMinor: 5999, Currency: "usd", ImageURL: "https://picsum.photos/seed/webcam/600/400", Stock: 0},
		},
		Locations: []domain.StoreLocation{
			{Name: "Downtown Flagship", Address: "350 5th Ave, New York, NY", Lat: 40.7484, Lng: -73.9857},
			{Name: "Brooklyn Heights", Address: "123 Montague St, Brooklyn, NY", Lat: 40.6944, Lng: -73.9922},
			{Name: "Jersey City", Address: "30 Hudson St, Jersey City, NJ", Lat: 40.7163, Lng: -74.0334},
			{Name: "Mission District", Address: "2500 Mission St, San Francisco, CA", Lat: 37.7566, Lng: -122.4187},
		},
	}
}
