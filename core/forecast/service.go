package forecast

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/plangrid/matcast/core"
)

var (
	// errors
	ErrNotFound             = errors.New("no forecast found")
	ErrMonthNotFound        = errors.New("no forecast found for this month")
	ErrPredictorUnavailable = errors.New("prediction model not available")

	// ErrForecastExists is kept for a strict no-overwrite save mode;
	// the default policy overwrites the month entry instead.
	ErrForecastExists = errors.New("a forecast for this month already exists")
)

// Feature defaults applied when a prediction request leaves fields unset.
const (
	DefaultBudget             = 30000000.0
	DefaultTaxRate            = 18.0
	DefaultProjectSizeKM      = 100.0
	DefaultProjectStartMonth  = 1.0
	DefaultProjectEndMonth    = 12.0
	DefaultLeadTimeDays       = 45.0
	DefaultCommodityPriceIdx  = 105.0
)

type (
	// Repository is the consolidated per-project document store.
	Repository interface {
		EnsureProjectDocument(ctx context.Context, projectID string) error
		UpdateMonthEntry(ctx context.Context, projectID, month string, e Entry) (bool, error)
		AppendMonthEntry(ctx context.Context, projectID string, e Entry) error
		GetProjectDocument(ctx context.Context, projectID string) (Document, error)
		QueryDocuments(ctx context.Context, projectIDs []string) ([]Document, error)
		TrimProjectMonths(ctx context.Context, projectID string, keep int) (int, error)
		SetActualValues(ctx context.Context, projectID, month string, values map[string]interface{}, by string) (bool, error)
	}

	// Predictor turns a feature map into a material→quantity map. The
	// regression model behind it is opaque to this package.
	Predictor interface {
		Predict(ctx context.Context, features map[string]interface{}) (map[string]float64, error)
	}

	// AccessScope resolves which projects a user may read.
	AccessScope interface {
		VisibleProjectIDs(ctx context.Context, username string) ([]string, error)
	}

	Service struct {
		repo      Repository
		predictor Predictor
		scope     AccessScope
		log       core.Logger
		conf      *core.Config
	}
)

func NewService(repo Repository, predictor Predictor, scope AccessScope, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, predictor: predictor, scope: scope, log: logger, conf: conf}
}

// Result is what a prediction request returns to the caller.
type Result struct {
	ProjectID     string                 `json:"project_id"`
	ForecastMonth string                 `json:"forecast_month"`
	Predictions   map[string]float64     `json:"predictions"`
	InputUsed     map[string]interface{} `json:"input_used"`
}

// Generate runs the predictor for the project and stores the result under
// the forecast month, defaulting to the current UTC month.
func (svc *Service) Generate(ctx context.Context, nf NewForecast) (Result, error) {
	month := nf.ForecastMonth
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	features := buildFeatures(nf)
	predictions, err := svc.predictor.Predict(ctx, features)
	if err != nil {
		return Result{}, ErrPredictorUnavailable
	}

	values := make(map[string]interface{}, len(predictions))
	for material, qty := range predictions {
		values[material] = qty
	}
	if err = svc.SaveForecast(ctx, nf.ProjectID, month, values); err != nil {
		return Result{}, err
	}

	return Result{
		ProjectID:     nf.ProjectID,
		ForecastMonth: month,
		Predictions:   predictions,
		InputUsed:     features,
	}, nil
}

// SaveForecast upserts predictions under (projectID, month): the project
// document is created if absent, a matching month entry is overwritten with
// its actuals reset, otherwise a new entry is appended. After a successful
// upsert the document is trimmed to the configured retention window;
// trimming failures are logged, not propagated.
func (svc *Service) SaveForecast(ctx context.Context, projectID, month string, predictions map[string]interface{}) error {
	if err := svc.repo.EnsureProjectDocument(ctx, projectID); err != nil {
		return err
	}

	now := time.Now().UTC()
	matched, err := svc.repo.UpdateMonthEntry(ctx, projectID, month, Entry{
		ForecastMonth: month,
		Predictions:   predictions,
		ActualValues:  map[string]interface{}{},
		UpdatedAt:     now,
	})
	if err != nil {
		return err
	}
	if !matched {
		err = svc.repo.AppendMonthEntry(ctx, projectID, Entry{
			ForecastMonth: month,
			Predictions:   predictions,
			ActualValues:  map[string]interface{}{},
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return err
		}
	}

	if removed, err := svc.repo.TrimProjectMonths(ctx, projectID, svc.conf.ForecastRetentionMonths); err != nil {
		svc.log.Error("trimming forecast history", "project", projectID, "err", err)
	} else if removed > 0 {
		svc.log.Info("trimmed forecast history", "project", projectID, "removed", removed)
	}
	return nil
}

// SaveActuals records observed values against na.Month, or against the
// latest forecast month when unset.
func (svc *Service) SaveActuals(ctx context.Context, projectID, username string, na NewActuals) (string, error) {
	doc, err := svc.repo.GetProjectDocument(ctx, projectID)
	if err != nil {
		return "", err
	}

	month := na.Month
	if month == "" {
		if month = doc.LatestMonth(); month == "" {
			return "", ErrNotFound
		}
	}

	matched, err := svc.repo.SetActualValues(ctx, projectID, month, na.ActualValues, username)
	if err != nil {
		return "", err
	}
	if !matched {
		return "", ErrMonthNotFound
	}
	return month, nil
}

// ProjectForecasts returns the project's forecast entries carrying
// predictions, newest month first.
func (svc *Service) ProjectForecasts(ctx context.Context, projectID string) ([]Entry, error) {
	doc, err := svc.repo.GetProjectDocument(ctx, projectID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(doc.Forecasts))
	for _, e := range doc.Forecasts {
		if e.HasPredictions() {
			entries = append(entries, e)
		}
	}
	sortEntriesByMonthDesc(entries)
	return entries, nil
}

// ForecastForMonth returns the project's entry for one month.
func (svc *Service) ForecastForMonth(ctx context.Context, projectID, month string) (Entry, error) {
	doc, err := svc.repo.GetProjectDocument(ctx, projectID)
	if err != nil {
		return Entry{}, err
	}
	e, ok := doc.Entry(month)
	if !ok {
		return Entry{}, ErrMonthNotFound
	}
	return e, nil
}

// AccessibleEntries collects the forecast entries of every project visible
// to username. A non-empty projectID narrows the result to that project,
// and only if it is itself visible to username.
func (svc *Service) AccessibleEntries(ctx context.Context, username, projectID string) ([]Entry, error) {
	projectIDs, err := svc.scope.VisibleProjectIDs(ctx, username)
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		visible := false
		for _, id := range projectIDs {
			if id == projectID {
				visible = true
				break
			}
		}
		if !visible {
			return nil, nil
		}
		projectIDs = []string{projectID}
	}
	if len(projectIDs) == 0 {
		return nil, nil
	}

	docs, err := svc.repo.QueryDocuments(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, doc := range docs {
		for _, e := range doc.Forecasts {
			if e.HasPredictions() {
				entries = append(entries, e)
			}
		}
	}
	return entries, nil
}

// Accuracy computes the portfolio accuracy over the user's accessible
// forecast entries.
func (svc *Service) Accuracy(ctx context.Context, username string) (float64, error) {
	entries, err := svc.AccessibleEntries(ctx, username, "")
	if err != nil {
		return 0, err
	}
	return PortfolioAccuracy(entries), nil
}

// Trends computes the monthly trend series over the user's accessible
// forecast entries, optionally restricted to one project.
func (svc *Service) Trends(ctx context.Context, username, projectID string) ([]TrendPoint, error) {
	entries, err := svc.AccessibleEntries(ctx, username, projectID)
	if err != nil {
		return nil, err
	}
	return svc.trendPoints(entries), nil
}

func buildFeatures(nf NewForecast) map[string]interface{} {
	features := map[string]interface{}{
		"budget":                nf.Budget,
		"tax_rate":              nf.TaxRate,
		"project_size_km":       nf.ProjectSizeKM,
		"project_start_month":   nf.ProjectStartMonth,
		"project_end_month":     nf.ProjectEndMonth,
		"lead_time_days":        nf.LeadTimeDays,
		"commodity_price_index": nf.CommodityPriceIdx,
		"project_location":      nf.ProjectLocation,
		"tower_type":            nf.TowerType,
		"substation_type":       nf.SubstationType,
		"region_risk_flag":      nf.RegionRiskFlag,
	}
	defaults := map[string]float64{
		"budget":                DefaultBudget,
		"tax_rate":              DefaultTaxRate,
		"project_size_km":       DefaultProjectSizeKM,
		"project_start_month":   DefaultProjectStartMonth,
		"project_end_month":     DefaultProjectEndMonth,
		"lead_time_days":        DefaultLeadTimeDays,
		"commodity_price_index": DefaultCommodityPriceIdx,
	}
	for field, def := range defaults {
		if v, _ := core.CoerceFloat(features[field]); v == 0 {
			features[field] = def
		}
	}
	return features
}

func sortEntriesByMonthDesc(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ForecastMonth > entries[j].ForecastMonth
	})
}
