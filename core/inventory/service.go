package inventory

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// errors
	ErrNotFound   = errors.New("inventory item not found")
	ErrItemExists = errors.New("an item with this material code already exists")
)

type (
	Repository interface {
		CreateItem(ctx context.Context, item Item) (Item, error)
		CreateItems(ctx context.Context, items []Item) (int, error)
		QueryAllItems(ctx context.Context) ([]Item, error)
		GetItemByCode(ctx context.Context, code string) (Item, error)
		UpdateItem(ctx context.Context, item Item) (Item, error)
		DeleteItemByCode(ctx context.Context, code string) error
		DeleteAllItems(ctx context.Context) (int, error)
		CountItems(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ni NewItem, username string) (Item, error) {
	now := time.Now().UTC()
	item := Item{
		MaterialCode: ni.MaterialCode,
		Name:         ni.Name,
		Category:     ni.Category,
		Unit:         ni.Unit,
		MinStock:     ni.MinStock,
		MaxStock:     ni.MaxStock,
		Quantity:     ni.Quantity,
		Available:    ni.Available,
		Reserved:     ni.Reserved,
		InTransit:    ni.InTransit,
		Warehouse:    ni.Warehouse,
		CreatedBy:    username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateItem(ctx, item)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Item, error) {
	return svc.repo.QueryAllItems(ctx)
}

func (svc *Service) Get(ctx context.Context, code string) (Item, error) {
	return svc.repo.GetItemByCode(ctx, code)
}

func (svc *Service) Update(ctx context.Context, code, username string, ui UpdateItem) (Item, error) {
	item, err := svc.repo.GetItemByCode(ctx, code)
	if err != nil {
		return Item{}, err
	}

	if ui.Quantity != nil {
		item.Quantity = *ui.Quantity
	}
	if ui.MinStock != nil {
		item.MinStock = *ui.MinStock
	}
	if ui.MaxStock != nil {
		item.MaxStock = *ui.MaxStock
	}
	if ui.Available != nil {
		item.Available = *ui.Available
	}
	if ui.Reserved != nil {
		item.Reserved = *ui.Reserved
	}
	if ui.InTransit != nil {
		item.InTransit = *ui.InTransit
	}
	if ui.Warehouse != nil {
		item.Warehouse = *ui.Warehouse
	}
	item.UpdatedBy = username
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateItem(ctx, item)
}

func (svc *Service) Delete(ctx context.Context, code string) error {
	return svc.repo.DeleteItemByCode(ctx, code)
}

func (svc *Service) DeleteAll(ctx context.Context) (int, error) {
	return svc.repo.DeleteAllItems(ctx)
}

// Initialize seeds the material catalog once; it is a no-op when any
// inventory already exists. Reports the number of items present or added
// and whether seeding happened.
func (svc *Service) Initialize(ctx context.Context, username string) (int, bool, error) {
	count, err := svc.repo.CountItems(ctx)
	if err != nil {
		return 0, false, err
	}
	if count > 0 {
		return count, false, nil
	}

	added, err := svc.repo.CreateItems(ctx, SeedItems(username))
	if err != nil {
		return 0, false, err
	}
	return added, true, nil
}

// Materials lists the forecastable materials derived from the stock
// catalog, with display names like "Steel Tons".
func (svc *Service) Materials() []Material {
	materials := make([]Material, 0, len(seedCatalog))
	for _, c := range seedCatalog {
		unit := "units"
		if strings.Contains(c.code, "tons") {
			unit = "tons"
		}
		materials = append(materials, Material{
			ID:   c.code,
			Name: materialDisplayName(c.code),
			Unit: unit,
		})
	}
	return materials
}

// Warehouses returns the distinct non-empty warehouses holding stock.
func (svc *Service) Warehouses(ctx context.Context) ([]string, error) {
	items, err := svc.repo.QueryAllItems(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var warehouses []string
	for _, item := range items {
		if item.Warehouse == "" {
			continue
		}
		if _, ok := seen[item.Warehouse]; ok {
			continue
		}
		seen[item.Warehouse] = struct{}{}
		warehouses = append(warehouses, item.Warehouse)
	}
	return warehouses, nil
}

func materialDisplayName(code string) string {
	words := strings.Split(code, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.Join(words, " ")
	return strings.TrimPrefix(name, "Quantity ")
}
