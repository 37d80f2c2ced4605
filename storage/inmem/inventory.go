package inmem

import (
	"context"
	"sort"

	"github.com/plangrid/matcast/core/inventory"
)

type inventoryRepository struct {
	db *inventoryTable
}

var _ inventory.Repository = (*inventoryRepository)(nil) // interface compliance check

func NewInventoryRepository(db *DB) inventory.Repository {
	return &inventoryRepository{db: db.inventory}
}

func (repo *inventoryRepository) CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[item.MaterialCode]; ok {
		return inventory.Item{}, inventory.ErrItemExists
	}
	repo.db.table[item.MaterialCode] = &item
	return item, nil
}

func (repo *inventoryRepository) CreateItems(ctx context.Context, items []inventory.Item) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var added int
	for _, item := range items {
		if _, ok := repo.db.table[item.MaterialCode]; ok {
			continue
		}
		it := item
		repo.db.table[it.MaterialCode] = &it
		added++
	}
	return added, nil
}

func (repo *inventoryRepository) QueryAllItems(ctx context.Context) ([]inventory.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]inventory.Item, 0, len(repo.db.table))
	for _, item := range repo.db.table {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].MaterialCode < items[j].MaterialCode })
	return items, nil
}

func (repo *inventoryRepository) GetItemByCode(ctx context.Context, code string) (inventory.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if item, ok := repo.db.table[code]; ok {
		return *item, nil
	}
	return inventory.Item{}, inventory.ErrNotFound
}

func (repo *inventoryRepository) UpdateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[item.MaterialCode]; !ok {
		return inventory.Item{}, inventory.ErrNotFound
	}
	repo.db.table[item.MaterialCode] = &item
	return item, nil
}

func (repo *inventoryRepository) DeleteItemByCode(ctx context.Context, code string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[code]; !ok {
		return inventory.ErrNotFound
	}
	delete(repo.db.table, code)
	return nil
}

func (repo *inventoryRepository) DeleteAllItems(ctx context.Context) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	count := len(repo.db.table)
	repo.db.table = make(map[string]*inventory.Item)
	return count, nil
}

func (repo *inventoryRepository) CountItems(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}
