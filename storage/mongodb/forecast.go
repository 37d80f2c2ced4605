package mongodb

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/plangrid/matcast/core/forecast"
)

type forecastRepository struct {
	col *mongo.Collection
}

var _ forecast.Repository = (*forecastRepository)(nil) // interface compliance check

func NewForecastRepository(db *DB) forecast.Repository {
	return &forecastRepository{col: db.db.Collection(colProjectForecasts)}
}

func (repo *forecastRepository) EnsureProjectDocument(ctx context.Context, projectID string) error {
	_, err := repo.col.UpdateOne(
		ctx,
		bson.M{"_id": projectID},
		bson.M{"$setOnInsert": bson.M{"forecasts": bson.A{}}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (repo *forecastRepository) UpdateMonthEntry(ctx context.Context, projectID, month string, e forecast.Entry) (bool, error) {
	res, err := repo.col.UpdateOne(
		ctx,
		bson.M{"_id": projectID, "forecasts.forecast_month": month},
		bson.M{"$set": bson.M{
			"forecasts.$.predictions":   e.Predictions,
			"forecasts.$.actual_values": e.ActualValues,
			"forecasts.$.updated_at":    e.UpdatedAt,
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (repo *forecastRepository) AppendMonthEntry(ctx context.Context, projectID string, e forecast.Entry) error {
	_, err := repo.col.UpdateOne(
		ctx,
		bson.M{"_id": projectID},
		bson.M{"$push": bson.M{"forecasts": e}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

func (repo *forecastRepository) GetProjectDocument(ctx context.Context, projectID string) (forecast.Document, error) {
	var doc forecast.Document
	if err := repo.col.FindOne(ctx, bson.M{"_id": projectID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return forecast.Document{}, forecast.ErrNotFound
		}
		return forecast.Document{}, err
	}
	return doc, nil
}

func (repo *forecastRepository) QueryDocuments(ctx context.Context, projectIDs []string) ([]forecast.Document, error) {
	filter := bson.M{}
	if projectIDs != nil {
		filter = bson.M{"_id": bson.M{"$in": projectIDs}}
	}
	cur, err := repo.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []forecast.Document
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// TrimProjectMonths keeps the `keep` lexicographically largest forecast
// months and rewrites the document's array without them.
func (repo *forecastRepository) TrimProjectMonths(ctx context.Context, projectID string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	doc, err := repo.GetProjectDocument(ctx, projectID)
	if err != nil {
		if err == forecast.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	if len(doc.Forecasts) <= keep {
		return 0, nil
	}

	months := make([]string, 0, len(doc.Forecasts))
	for _, e := range doc.Forecasts {
		months = append(months, e.ForecastMonth)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	cutoff := months[keep-1]

	res, err := repo.col.UpdateOne(
		ctx,
		bson.M{"_id": projectID},
		bson.M{"$pull": bson.M{"forecasts": bson.M{"forecast_month": bson.M{"$lt": cutoff}}}},
	)
	if err != nil {
		return 0, err
	}
	if res.ModifiedCount == 0 {
		return 0, nil
	}
	return len(doc.Forecasts) - keep, nil
}

// colLegacyForecasts is the pre-consolidation layout: one document per
// project-month instead of one document per project.
const colLegacyForecasts = "forecasts"

type legacyForecast struct {
	ProjectID     string                 `bson:"project_id"`
	ForecastMonth string                 `bson:"forecast_month"`
	Predictions   map[string]interface{} `bson:"predictions"`
	ActualValues  map[string]interface{} `bson:"actual_values"`
	CreatedAt     time.Time              `bson:"created_at"`
	UpdatedAt     time.Time              `bson:"updated_at"`
}

// MigrateLegacyForecasts folds flat per-month forecast documents into the
// consolidated per-project layout. Already-migrated months are overwritten
// so the migration can be re-run. Returns the number of months migrated.
func (d *DB) MigrateLegacyForecasts(ctx context.Context) (int, error) {
	cur, err := d.db.Collection(colLegacyForecasts).Find(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	var legacy []legacyForecast
	if err = cur.All(ctx, &legacy); err != nil {
		return 0, err
	}

	repo := &forecastRepository{col: d.db.Collection(colProjectForecasts)}
	var migrated int
	for _, lf := range legacy {
		if lf.ProjectID == "" || lf.ForecastMonth == "" {
			continue
		}
		if err = repo.EnsureProjectDocument(ctx, lf.ProjectID); err != nil {
			return migrated, err
		}
		e := forecast.Entry{
			ForecastMonth: lf.ForecastMonth,
			Predictions:   lf.Predictions,
			ActualValues:  lf.ActualValues,
			CreatedAt:     lf.CreatedAt,
			UpdatedAt:     lf.UpdatedAt,
		}
		matched, err := repo.UpdateMonthEntry(ctx, lf.ProjectID, lf.ForecastMonth, e)
		if err != nil {
			return migrated, err
		}
		if !matched {
			if err = repo.AppendMonthEntry(ctx, lf.ProjectID, e); err != nil {
				return migrated, err
			}
		}
		migrated++
	}
	return migrated, nil
}

func (repo *forecastRepository) SetActualValues(ctx context.Context, projectID, month string, values map[string]interface{}, by string) (bool, error) {
	now := time.Now().UTC()
	res, err := repo.col.UpdateOne(
		ctx,
		bson.M{"_id": projectID},
		bson.M{"$set": bson.M{
			"forecasts.$[m].actual_values":            values,
			"forecasts.$[m].updated_at":               now,
			"forecasts.$[m].actual_values_updated_at": now,
			"forecasts.$[m].actual_values_updated_by": by,
		}},
		options.UpdateOne().SetArrayFilters([]interface{}{
			bson.M{"m.forecast_month": month},
		}),
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
