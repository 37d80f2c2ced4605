package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/plangrid/matcast/core/order"
)

type orderRepository struct {
	col *mongo.Collection
}

var _ order.Repository = (*orderRepository)(nil) // interface compliance check

func NewOrderRepository(db *DB) order.Repository {
	return &orderRepository{col: db.db.Collection(colOrders)}
}

func (repo *orderRepository) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if _, err := repo.col.InsertOne(ctx, o); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (repo *orderRepository) GetOrderByID(ctx context.Context, id string) (order.Order, error) {
	var o order.Order
	if err := repo.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if err == mongo.ErrNoDocuments {
			return order.Order{}, order.ErrNotFound
		}
		return order.Order{}, err
	}
	return o, nil
}

func (repo *orderRepository) QueryOrdersByProjects(ctx context.Context, projectIDs []string) ([]order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := repo.col.Find(ctx, bson.M{"project_id": bson.M{"$in": projectIDs}}, opts)
	if err != nil {
		return nil, err
	}
	var orders []order.Order
	if err = cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (repo *orderRepository) UpdateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	res, err := repo.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return order.Order{}, err
	}
	if res.MatchedCount == 0 {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (repo *orderRepository) DeleteOrder(ctx context.Context, id string) error {
	res, err := repo.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return order.ErrNotFound
	}
	return nil
}
