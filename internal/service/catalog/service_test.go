package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestService_ListProducts(t *testing.T) {
	store := memory.NewStore()
	lamps := store.AddCategory(domain.Category{Name: "Lamps", Slug: "lamps"})
	store.AddProduct(domain.Product{CategoryID: lamps.ID, Name: "Desk lamp", PriceMinor: 3000, Stock: 1})
	store.AddProduct(domain.Product{CategoryID: lamps.ID, Name: "Floor lamp", PriceMinor: 9000, Stock: 1})
	store.AddProduct(domain.Product{Name: "Mug", Description: "ceramic", PriceMinor: 500, Stock: 1})

	svc := NewService(store.Catalog())
	ctx := context.Background()

	all, err := svc.ListProducts(ctx, domain.ProductFilter{PageSize: 1000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}

	sorted, err := svc.ListProducts(ctx, domain.ProductFilter{CategoryID: lamps.ID, Sort: domain.ProductSortPriceDesc})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(sorted) != 2 || sorted[0].Name != "Floor lamp" {
		t.Fatalf("unexpected products: %+v", sorted)
	}
	if sorted[0].CategorySlug != "lamps" {
		t.Fatalf("expected category join, got %q", sorted[0].CategorySlug)
	}

	found, err := svc.ListProducts(ctx, domain.ProductFilter{Search: "CERAMIC"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Mug" {
		t.Fatalf("unexpected search result: %+v", found)
	}

	page, err := svc.ListProducts(ctx, domain.ProductFilter{Sort: domain.ProductSortPriceAsc, Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 1 || page[0].Name != "Floor lamp" {
		t.Fatalf("unexpected second page: %+v", page)
	}
}

func TestService_GetProductAndCategories(t *testing.T) {
	store := memory.NewStore()
	store.AddCategory(domain.Category{Name: "Mugs", Slug: "mugs"})
	store.AddCategory(domain.Category{Name: "Lamps", Slug: "lamps"})
	p := store.AddProduct(domain.Product{Name: "Mug", PriceMinor: 500})

	svc := NewService(store.Catalog())
	ctx := context.Background()

	got, err := svc.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Currency != domain.DefaultCurrency {
		t.Fatalf("expected default currency, got %q", got.Currency)
	}

	if _, err := svc.GetProduct(ctx, p.ID+100); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	categories, err := svc.ListCategories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 2 || categories[0].Name != "Lamps" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
}
