package inmem

import (
	"context"
	"sort"

	"github.com/plangrid/matcast/core/order"
)

type orderRepository struct {
	db *orderTable
}

var _ order.Repository = (*orderRepository)(nil) // interface compliance check

func NewOrderRepository(db *DB) order.Repository {
	return &orderRepository{db: db.order}
}

func (repo *orderRepository) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[o.ID] = &o
	return o, nil
}

func (repo *orderRepository) GetOrderByID(ctx context.Context, id string) (order.Order, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if o, ok := repo.db.table[id]; ok {
		return *o, nil
	}
	return order.Order{}, order.ErrNotFound
}

func (repo *orderRepository) QueryOrdersByProjects(ctx context.Context, projectIDs []string) ([]order.Order, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	idSet := make(map[string]struct{}, len(projectIDs))
	for _, id := range projectIDs {
		idSet[id] = struct{}{}
	}

	var orders []order.Order
	for _, o := range repo.db.table {
		if _, ok := idSet[o.ProjectID]; ok {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (repo *orderRepository) UpdateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[o.ID]; !ok {
		return order.Order{}, order.ErrNotFound
	}
	repo.db.table[o.ID] = &o
	return o, nil
}

func (repo *orderRepository) DeleteOrder(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return order.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
