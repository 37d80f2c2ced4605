package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/plangrid/matcast/core/inventory"
)

type inventoryRepository struct {
	col *mongo.Collection
}

var _ inventory.Repository = (*inventoryRepository)(nil) // interface compliance check

func NewInventoryRepository(db *DB) inventory.Repository {
	return &inventoryRepository{col: db.db.Collection(colInventory)}
}

func (repo *inventoryRepository) CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	if _, err := repo.col.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return inventory.Item{}, inventory.ErrItemExists
		}
		return inventory.Item{}, err
	}
	return item, nil
}

func (repo *inventoryRepository) CreateItems(ctx context.Context, items []inventory.Item) (int, error) {
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	res, err := repo.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return 0, err
	}
	if res == nil {
		return 0, nil
	}
	return len(res.InsertedIDs), nil
}

func (repo *inventoryRepository) QueryAllItems(ctx context.Context) ([]inventory.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := repo.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var items []inventory.Item
	if err = cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (repo *inventoryRepository) GetItemByCode(ctx context.Context, code string) (inventory.Item, error) {
	var item inventory.Item
	if err := repo.col.FindOne(ctx, bson.M{"_id": code}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return inventory.Item{}, inventory.ErrNotFound
		}
		return inventory.Item{}, err
	}
	return item, nil
}

func (repo *inventoryRepository) UpdateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	res, err := repo.col.ReplaceOne(ctx, bson.M{"_id": item.MaterialCode}, item)
	if err != nil {
		return inventory.Item{}, err
	}
	if res.MatchedCount == 0 {
		return inventory.Item{}, inventory.ErrNotFound
	}
	return item, nil
}

func (repo *inventoryRepository) DeleteItemByCode(ctx context.Context, code string) error {
	res, err := repo.col.DeleteOne(ctx, bson.M{"_id": code})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

func (repo *inventoryRepository) DeleteAllItems(ctx context.Context) (int, error) {
	res, err := repo.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

func (repo *inventoryRepository) CountItems(ctx context.Context) (int, error) {
	count, err := repo.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
