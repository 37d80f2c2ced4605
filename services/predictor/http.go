// Package predictorsvc provides clients for the material-demand
// regression model, which is served out of process and treated as opaque.
package predictorsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/forecast"
)

type httpPredictor struct {
	url    string
	client *http.Client
	logger core.Logger
}

var _ forecast.Predictor = (*httpPredictor)(nil)

// NewHTTPPredictor talks to the model server's /predict endpoint.
func NewHTTPPredictor(logger core.Logger, conf *core.Config) *httpPredictor {
	return &httpPredictor{
		url:    conf.Predictor.URL,
		client: &http.Client{Timeout: conf.Predictor.Timeout},
		logger: logger,
	}
}

func (p *httpPredictor) Predict(ctx context.Context, features map[string]interface{}) (map[string]float64, error) {
	body, err := json.Marshal(map[string]interface{}{"features": features})
	if err != nil {
		return nil, errors.Wrap(err, "encoding prediction request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building prediction request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("prediction request failed", err)
		return nil, errors.Wrap(err, "calling predictor")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		p.logger.Error(fmt.Sprintf("predictor returned status %d", res.StatusCode))
		return nil, errors.Errorf("predictor returned status %d", res.StatusCode)
	}

	var out struct {
		Predictions map[string]float64 `json:"predictions"`
	}
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, errors.Wrap(err, "decoding prediction response")
	}
	if len(out.Predictions) == 0 {
		return nil, errors.New("predictor returned no predictions")
	}
	return out.Predictions, nil
}
