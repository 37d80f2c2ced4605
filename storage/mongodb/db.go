// Package mongodb implements the repositories on a MongoDB database.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/plangrid/matcast/core"
)

// Collection names
const (
	colUsers            = "users"
	colProjects         = "projects"
	colTeams            = "teams"
	colTeamInvitations  = "team_invitations"
	colNotifications    = "notifications"
	colProjectForecasts = "project_forecasts"
	colOrders           = "orders"
	colInventory        = "inventory"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongodb")
	}

	db := &DB{client: client, db: client.Database(conf.Database.Name)}
	if err = db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *DB) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colProjects: {
			{Keys: bson.D{{Key: "created_by", Value: 1}}},
			{Keys: bson.D{{Key: "team_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colTeams: {
			{Keys: bson.D{{Key: "members.username", Value: 1}}},
			{Keys: bson.D{{Key: "project_id", Value: 1}}},
		},
		colTeamInvitations: {
			{Keys: bson.D{{Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colNotifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		colProjectForecasts: {
			{Keys: bson.D{{Key: "forecasts.forecast_month", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
	}
	for col, models := range indexes {
		if _, err := d.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", col)
		}
	}
	return nil
}
