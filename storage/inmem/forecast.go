package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/plangrid/matcast/core/forecast"
)

type forecastRepository struct {
	db *forecastTable
}

var _ forecast.Repository = (*forecastRepository)(nil) // interface compliance check

func NewForecastRepository(db *DB) forecast.Repository {
	return &forecastRepository{db: db.forecast}
}

func (repo *forecastRepository) EnsureProjectDocument(ctx context.Context, projectID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[projectID]; !ok {
		repo.db.table[projectID] = &forecast.Document{ProjectID: projectID, Forecasts: []forecast.Entry{}}
	}
	return nil
}

func (repo *forecastRepository) UpdateMonthEntry(ctx context.Context, projectID, month string, e forecast.Entry) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	doc, ok := repo.db.table[projectID]
	if !ok {
		return false, nil
	}
	for i := range doc.Forecasts {
		if doc.Forecasts[i].ForecastMonth == month {
			e.CreatedAt = doc.Forecasts[i].CreatedAt
			doc.Forecasts[i] = e
			return true, nil
		}
	}
	return false, nil
}

func (repo *forecastRepository) AppendMonthEntry(ctx context.Context, projectID string, e forecast.Entry) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	doc, ok := repo.db.table[projectID]
	if !ok {
		doc = &forecast.Document{ProjectID: projectID}
		repo.db.table[projectID] = doc
	}
	doc.Forecasts = append(doc.Forecasts, e)
	return nil
}

func (repo *forecastRepository) GetProjectDocument(ctx context.Context, projectID string) (forecast.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if doc, ok := repo.db.table[projectID]; ok {
		return cloneDocument(doc), nil
	}
	return forecast.Document{}, forecast.ErrNotFound
}

func (repo *forecastRepository) QueryDocuments(ctx context.Context, projectIDs []string) ([]forecast.Document, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var docs []forecast.Document
	if projectIDs == nil {
		for _, doc := range repo.db.table {
			docs = append(docs, cloneDocument(doc))
		}
		return docs, nil
	}
	for _, id := range projectIDs {
		if doc, ok := repo.db.table[id]; ok {
			docs = append(docs, cloneDocument(doc))
		}
	}
	return docs, nil
}

func (repo *forecastRepository) TrimProjectMonths(ctx context.Context, projectID string, keep int) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	doc, ok := repo.db.table[projectID]
	if !ok || keep <= 0 || len(doc.Forecasts) <= keep {
		return 0, nil
	}
	sort.Slice(doc.Forecasts, func(i, j int) bool {
		return doc.Forecasts[i].ForecastMonth > doc.Forecasts[j].ForecastMonth
	})
	removed := len(doc.Forecasts) - keep
	doc.Forecasts = doc.Forecasts[:keep]
	return removed, nil
}

func (repo *forecastRepository) SetActualValues(ctx context.Context, projectID, month string, values map[string]interface{}, by string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	doc, ok := repo.db.table[projectID]
	if !ok {
		return false, nil
	}
	for i := range doc.Forecasts {
		if doc.Forecasts[i].ForecastMonth == month {
			now := time.Now().UTC()
			doc.Forecasts[i].ActualValues = values
			doc.Forecasts[i].UpdatedAt = now
			doc.Forecasts[i].ActualsUpdatedAt = now
			doc.Forecasts[i].ActualsUpdatedBy = by
			return true, nil
		}
	}
	return false, nil
}

func cloneDocument(doc *forecast.Document) forecast.Document {
	out := forecast.Document{ProjectID: doc.ProjectID, Forecasts: make([]forecast.Entry, len(doc.Forecasts))}
	copy(out.Forecasts, doc.Forecasts)
	return out
}
