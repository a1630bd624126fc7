package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/money"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
	"github.com/vladislavdragonenkov/storefront/internal/service/locator"
)

// Представления ответов API. Суммы отдаются в минимальных единицах (*_cents)
// и строкой для отображения.

type userView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u domain.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type sessionView struct {
	User  userView `json:"user"`
	Token string   `json:"token"`
}

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type productView struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	PriceCents   int64     `json:"price_cents"`
	Price        string    `json:"price"`
	Currency     string    `json:"currency"`
	ImageURL     string    `json:"image_url"`
	Stock        int32     `json:"stock"`
	CategoryID   int64     `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	CategorySlug string    `json:"category_slug,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		PriceCents:   p.PriceMinor,
		Price:        money.Format(p.PriceMinor, p.Currency),
		Currency:     p.Currency,
		ImageURL:     p.ImageURL,
		Stock:        p.Stock,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		CategorySlug: p.CategorySlug,
		CreatedAt:    p.CreatedAt,
	}
}

type cartItemView struct {
	CartItemID int64  `json:"cart_item_id"`
	ProductID  int64  `json:"product_id"`
	Quantity   int32  `json:"quantity"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	ImageURL   string `json:"image_url"`
	Stock      int32  `json:"stock"`
}

type cartView struct {
	Items         []cartItemView `json:"items"`
	SubtotalCents int64          `json:"subtotal_cents"`
	Subtotal      string         `json:"subtotal"`
	Currency      string         `json:"currency"`
}

func toCartView(c domain.Cart) cartView {
	items := make([]cartItemView, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, cartItemView{
			CartItemID: it.LineID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			Name:       it.Name,
			PriceCents: it.PriceMinor,
			Currency:   it.Currency,
			ImageURL:   it.ImageURL,
			Stock:      it.Stock,
		})
	}
	return cartView{
		Items:         items,
		SubtotalCents: c.SubtotalMinor,
		Subtotal:      money.Format(c.SubtotalMinor, c.Currency),
		Currency:      c.Currency,
	}
}

type orderItemView struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Name           string `json:"name"`
	ImageURL       string `json:"image_url"`
}

type orderView struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	Status          string          `json:"status"`
	TotalCents      int64           `json:"total_cents"`
	Total           string          `json:"total"`
	Currency        string          `json:"currency"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []orderItemView `json:"items,omitempty"`
}

func toOrderView(o domain.Order) orderView {
	view := orderView{
		ID:              o.ID,
		UserID:          o.OwnerID,
		Status:          string(o.Status),
		TotalCents:      o.TotalMinor,
		Total:           money.Format(o.TotalMinor, o.Currency),
		Currency:        o.Currency,
		PaymentIntentID: o.PaymentHandle,
		CreatedAt:       o.CreatedAt,
	}
	for _, line := range o.Lines {
		view.Items = append(view.Items, orderItemView{
			ID:             line.ID,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceMinor,
			Name:           line.Name,
			ImageURL:       line.ImageURL,
		})
	}
	return view
}

type checkoutView struct {
	OrderID         int64  `json:"order_id"`
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

func toCheckoutView(res checkout.Result) checkoutView {
	return checkoutView{
		OrderID:         res.OrderID,
		ClientSecret:    res.ClientSecret,
		PaymentIntentID: res.PaymentHandle,
		Amount:          res.AmountMinor,
		Currency:        res.Currency,
	}
}

type storeView struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type originView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type nearbyView struct {
	Origin *originView `json:"origin"`
	Stores []storeView `json:"stores"`
}

func toStoreViews(stores []domain.StoreLocation, withDistance bool) []storeView {
	views := make([]storeView, 0, len(stores))
	for _, s := range stores {
		view := storeView{ID: s.ID, Name: s.Name, Address: s.Address, Lat: s.Lat, Lng: s.Lng}
		if withDistance {
			distance := s.DistanceKm
			view.DistanceKm = &distance
		}
		views = append(views, view)
	}
	return views
}

func toNearbyView(res locator.NearbyResult) nearbyView {
	view := nearbyView{Stores: toStoreViews(res.Stores, res.Origin != nil)}
	if res.Origin != nil {
		view.Origin = &originView{Lat: res.Origin.Lat, Lng: res.Origin.Lng}
	}
	return view
}
