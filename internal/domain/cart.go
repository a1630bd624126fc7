package domain

import "time"

// CartLine: строка корзины: один товар и его количество у одного пользователя.
// Пара (OwnerID, ProductID) уникальна.
type CartLine struct {
	ID        int64
	OwnerID   int64
	ProductID int64
	Quantity  int32
	CreatedAt time.Time
}

// CartItem: строка корзины, обогащённая актуальными данными товара на момент чтения.
type CartItem struct {
	LineID     int64
	ProductID  int64
	Quantity   int32
	Name       string
	PriceMinor int64
	Currency   string
	ImageURL   string
	Stock      int32
}

// Cart: представление корзины с живыми ценами (не снимок).
type Cart struct {
	OwnerID       int64
	Items         []CartItem
	SubtotalMinor int64
	Currency      string
}

// DefaultCurrency используется, когда валюту взять неоткуда.
const DefaultCurrency = "usd"
