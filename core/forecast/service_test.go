package forecast

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plangrid/matcast/core"
)

type fakeRepo struct {
	docs map[string]*Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[string]*Document)}
}

func (r *fakeRepo) EnsureProjectDocument(ctx context.Context, projectID string) error {
	if _, ok := r.docs[projectID]; !ok {
		r.docs[projectID] = &Document{ProjectID: projectID, Forecasts: []Entry{}}
	}
	return nil
}

func (r *fakeRepo) UpdateMonthEntry(ctx context.Context, projectID, month string, e Entry) (bool, error) {
	doc, ok := r.docs[projectID]
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

func (r *fakeRepo) AppendMonthEntry(ctx context.Context, projectID string, e Entry) error {
	doc, ok := r.docs[projectID]
	if !ok {
		return ErrNotFound
	}
	doc.Forecasts = append(doc.Forecasts, e)
	return nil
}

func (r *fakeRepo) GetProjectDocument(ctx context.Context, projectID string) (Document, error) {
	doc, ok := r.docs[projectID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return *doc, nil
}

func (r *fakeRepo) QueryDocuments(ctx context.Context, projectIDs []string) ([]Document, error) {
	var docs []Document
	for _, doc := range r.docs {
		if projectIDs == nil {
			docs = append(docs, *doc)
			continue
		}
		for _, id := range projectIDs {
			if doc.ProjectID == id {
				docs = append(docs, *doc)
				break
			}
		}
	}
	return docs, nil
}

func (r *fakeRepo) TrimProjectMonths(ctx context.Context, projectID string, keep int) (int, error) {
	doc, ok := r.docs[projectID]
	if !ok || len(doc.Forecasts) <= keep {
		return 0, nil
	}
	sort.Slice(doc.Forecasts, func(i, j int) bool {
		return doc.Forecasts[i].ForecastMonth > doc.Forecasts[j].ForecastMonth
	})
	removed := len(doc.Forecasts) - keep
	doc.Forecasts = doc.Forecasts[:keep]
	return removed, nil
}

func (r *fakeRepo) SetActualValues(ctx context.Context, projectID, month string, values map[string]interface{}, by string) (bool, error) {
	doc, ok := r.docs[projectID]
	if !ok {
		return false, nil
	}
	for i := range doc.Forecasts {
		if doc.Forecasts[i].ForecastMonth == month {
			doc.Forecasts[i].ActualValues = values
			doc.Forecasts[i].ActualsUpdatedBy = by
			return true, nil
		}
	}
	return false, nil
}

type fakePredictor struct {
	predictions map[string]float64
	err         error
	lastInput   map[string]interface{}
}

func (p *fakePredictor) Predict(ctx context.Context, features map[string]interface{}) (map[string]float64, error) {
	p.lastInput = features
	return p.predictions, p.err
}

type fakeScope struct{ ids []string }

func (s *fakeScope) VisibleProjectIDs(ctx context.Context, username string) ([]string, error) {
	return s.ids, nil
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                        {}
func (nopLogger) Debug(string, ...interface{})       {}
func (nopLogger) Info(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})        {}
func (nopLogger) Error(string, ...interface{})       {}
func (nopLogger) Fatal(string, ...interface{})       {}

func newTestService(repo Repository, pred Predictor, scope AccessScope, demoMode bool) *Service {
	conf := &core.Config{DemoMode: demoMode, ForecastRetentionMonths: 4}
	return NewService(repo, pred, scope, nopLogger{}, conf)
}

func TestSaveForecast(t *testing.T) {
	ctx := context.Background()

	t.Run("appends new month entry", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, nil, nil, false)

		err := svc.SaveForecast(ctx, "PROJ_1", "2024-03", map[string]interface{}{"steel": 120.0})
		require.NoError(t, err)

		doc, err := repo.GetProjectDocument(ctx, "PROJ_1")
		require.NoError(t, err)
		require.Len(t, doc.Forecasts, 1)
		assert.Equal(t, "2024-03", doc.Forecasts[0].ForecastMonth)
		assert.NotNil(t, doc.Forecasts[0].ActualValues)
		assert.Empty(t, doc.Forecasts[0].ActualValues)
	})

	t.Run("same month overwrites and resets actuals", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, nil, nil, false)

		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-03", map[string]interface{}{"steel": 120.0}))
		_, err := svc.SaveActuals(ctx, "PROJ_1", "alice", NewActuals{
			Month:        "2024-03",
			ActualValues: map[string]interface{}{"steel": 118.0},
		})
		require.NoError(t, err)

		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-03", map[string]interface{}{"steel": 140.0}))

		doc, err := repo.GetProjectDocument(ctx, "PROJ_1")
		require.NoError(t, err)
		require.Len(t, doc.Forecasts, 1)
		assert.Equal(t, 140.0, doc.Forecasts[0].Predictions["steel"])
		assert.Empty(t, doc.Forecasts[0].ActualValues)
	})

	t.Run("retention keeps latest months", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, nil, nil, false)

		months := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}
		for _, month := range months {
			require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", month, map[string]interface{}{"steel": 100.0}))
		}

		doc, err := repo.GetProjectDocument(ctx, "PROJ_1")
		require.NoError(t, err)
		require.Len(t, doc.Forecasts, 4)

		var kept []string
		for _, e := range doc.Forecasts {
			kept = append(kept, e.ForecastMonth)
		}
		assert.ElementsMatch(t, []string{"2024-03", "2024-04", "2024-05", "2024-06"}, kept)
	})
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("fills feature defaults", func(t *testing.T) {
		repo := newFakeRepo()
		pred := &fakePredictor{predictions: map[string]float64{"steel_tons": 120.5}}
		svc := newTestService(repo, pred, nil, false)

		res, err := svc.Generate(ctx, NewForecast{ProjectID: "PROJ_1", ForecastMonth: "2024-03", Budget: 5000000})
		require.NoError(t, err)

		assert.Equal(t, 5000000.0, pred.lastInput["budget"])
		assert.Equal(t, DefaultTaxRate, pred.lastInput["tax_rate"])
		assert.Equal(t, DefaultLeadTimeDays, pred.lastInput["lead_time_days"])
		assert.Equal(t, map[string]float64{"steel_tons": 120.5}, res.Predictions)

		doc, err := repo.GetProjectDocument(ctx, "PROJ_1")
		require.NoError(t, err)
		require.Len(t, doc.Forecasts, 1)
		assert.Equal(t, 120.5, doc.Forecasts[0].Predictions["steel_tons"])
	})

	t.Run("predictor failure surfaces as unavailable", func(t *testing.T) {
		pred := &fakePredictor{err: errors.New("connection refused")}
		svc := newTestService(newFakeRepo(), pred, nil, false)

		_, err := svc.Generate(ctx, NewForecast{ProjectID: "PROJ_1"})
		assert.Equal(t, ErrPredictorUnavailable, err)
	})
}

func TestSaveActuals(t *testing.T) {
	ctx := context.Background()

	t.Run("targets latest month by default", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, nil, nil, false)
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-02", map[string]interface{}{"steel": 100.0}))
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-04", map[string]interface{}{"steel": 110.0}))
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-03", map[string]interface{}{"steel": 105.0}))

		month, err := svc.SaveActuals(ctx, "PROJ_1", "alice", NewActuals{
			ActualValues: map[string]interface{}{"steel": 108.0},
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-04", month)

		e, err := svc.ForecastForMonth(ctx, "PROJ_1", "2024-04")
		require.NoError(t, err)
		assert.Equal(t, 108.0, e.ActualValues["steel"])
		assert.Equal(t, "alice", e.ActualsUpdatedBy)
	})

	t.Run("unknown month", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo, nil, nil, false)
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-02", map[string]interface{}{"steel": 100.0}))

		_, err := svc.SaveActuals(ctx, "PROJ_1", "alice", NewActuals{
			Month:        "2024-05",
			ActualValues: map[string]interface{}{"steel": 1.0},
		})
		assert.Equal(t, ErrMonthNotFound, err)
	})

	t.Run("no forecasts at all", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), nil, nil, false)

		_, err := svc.SaveActuals(ctx, "PROJ_X", "alice", NewActuals{
			ActualValues: map[string]interface{}{"steel": 1.0},
		})
		assert.Equal(t, ErrNotFound, err)
	})
}

func TestProjectForecasts(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil, false)

	require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-01", map[string]interface{}{"steel": 100.0}))
	require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-03", map[string]interface{}{"steel": 120.0}))
	require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-02", map[string]interface{}{"steel": 110.0}))

	entries, err := svc.ProjectForecasts(ctx, "PROJ_1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-03", entries[0].ForecastMonth)
	assert.Equal(t, "2024-02", entries[1].ForecastMonth)
	assert.Equal(t, "2024-01", entries[2].ForecastMonth)
}

func TestTrends(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, svc *Service, projectID string) {
		t.Helper()
		require.NoError(t, svc.SaveForecast(ctx, projectID, "2024-01", map[string]interface{}{"steel": 100.0}))
		_, err := svc.SaveActuals(ctx, projectID, "alice", NewActuals{
			Month:        "2024-01",
			ActualValues: map[string]interface{}{"steel": 120.0},
		})
		require.NoError(t, err)
	}

	t.Run("averages and counts per month", func(t *testing.T) {
		repo := newFakeRepo()
		scope := &fakeScope{ids: []string{"PROJ_1", "PROJ_2"}}
		svc := newTestService(repo, nil, scope, false)

		// two January entries across two projects
		seed(t, svc, "PROJ_1")
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_2", "2024-01", map[string]interface{}{"steel": 200.0}))
		_, err := svc.SaveActuals(ctx, "PROJ_2", "alice", NewActuals{
			Month:        "2024-01",
			ActualValues: map[string]interface{}{"steel": 180.0},
		})
		require.NoError(t, err)

		points, err := svc.Trends(ctx, "alice", "")
		require.NoError(t, err)
		require.Len(t, points, 1)

		p := points[0]
		assert.Equal(t, "Jan", p.Month)
		assert.Equal(t, 150.0, p.Forecast)
		assert.Equal(t, 150.0, p.Actual)
		assert.Equal(t, 2, p.ForecastCount)
		assert.Equal(t, 2, p.ActualCount)
		assert.False(t, p.Estimated)
	})

	t.Run("same month of different years stays distinct", func(t *testing.T) {
		repo := newFakeRepo()
		scope := &fakeScope{ids: []string{"PROJ_1"}}
		svc := newTestService(repo, nil, scope, false)

		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2025-03", map[string]interface{}{"steel": 300.0}))
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-03", map[string]interface{}{"steel": 100.0}))

		points, err := svc.Trends(ctx, "alice", "")
		require.NoError(t, err)
		require.Len(t, points, 2)
		// chronological: 2024-03 before 2025-03
		assert.Equal(t, 100.0, points[0].Forecast)
		assert.Equal(t, 300.0, points[1].Forecast)
	})

	t.Run("no actuals outside demo mode", func(t *testing.T) {
		repo := newFakeRepo()
		scope := &fakeScope{ids: []string{"PROJ_1"}}
		svc := newTestService(repo, nil, scope, false)

		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-01", map[string]interface{}{"steel": 100.0}))

		points, err := svc.Trends(ctx, "alice", "")
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 0, points[0].ActualCount)
		assert.Equal(t, 0.0, points[0].Actual)
		assert.False(t, points[0].Estimated)
	})

	t.Run("demo mode fills synthetic actuals flagged estimated", func(t *testing.T) {
		restore := syntheticVariation
		syntheticVariation = func() float64 { return 1.1 }
		defer func() { syntheticVariation = restore }()

		repo := newFakeRepo()
		scope := &fakeScope{ids: []string{"PROJ_1"}}
		svc := newTestService(repo, nil, scope, true)

		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-01", map[string]interface{}{"steel": 100.0}))

		points, err := svc.Trends(ctx, "alice", "")
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 1, points[0].ActualCount)
		assert.InDelta(t, 110.0, points[0].Actual, 0.001)
		assert.True(t, points[0].Estimated)
	})

	t.Run("unparseable month skipped", func(t *testing.T) {
		repo := newFakeRepo()
		scope := &fakeScope{ids: []string{"PROJ_1"}}
		svc := newTestService(repo, nil, scope, false)

		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "garbage", map[string]interface{}{"steel": 100.0}))
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-01", map[string]interface{}{"steel": 100.0}))

		points, err := svc.Trends(ctx, "alice", "")
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, "Jan", points[0].Month)
	})

	t.Run("empty set yields empty series", func(t *testing.T) {
		svc := newTestService(newFakeRepo(), nil, &fakeScope{}, true)

		points, err := svc.Trends(ctx, "alice", "")
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("project filter", func(t *testing.T) {
		repo := newFakeRepo()
		scope := &fakeScope{ids: []string{"PROJ_1", "PROJ_2"}}
		svc := newTestService(repo, nil, scope, false)

		seed(t, svc, "PROJ_1")
		require.NoError(t, svc.SaveForecast(ctx, "PROJ_2", "2024-02", map[string]interface{}{"steel": 999.0}))

		points, err := svc.Trends(ctx, "alice", "PROJ_1")
		require.NoError(t, err)
		require.Len(t, points, 1)
		assert.Equal(t, 100.0, points[0].Forecast)
	})
}

func TestAccuracyScoped(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	scope := &fakeScope{ids: []string{"PROJ_1"}}
	svc := newTestService(repo, nil, scope, false)

	require.NoError(t, svc.SaveForecast(ctx, "PROJ_1", "2024-01", map[string]interface{}{"steel": 100.0, "copper": 50.0}))
	_, err := svc.SaveActuals(ctx, "PROJ_1", "alice", NewActuals{
		Month:        "2024-01",
		ActualValues: map[string]interface{}{"steel": 90.0, "copper": 45.0},
	})
	require.NoError(t, err)

	// out of scope, must not contribute
	require.NoError(t, svc.SaveForecast(ctx, "PROJ_2", "2024-01", map[string]interface{}{"steel": 1.0}))

	acc, err := svc.Accuracy(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 90.0, acc)
}
