package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/plangrid/matcast/core/forecast"
)

func Test_forecastApi_generate(t *testing.T) {
	ta := setup(t)
	usr := ta.createUser(t, "Jane", "jane", "jane@test.cd", nil)
	outsider := ta.createUser(t, "Out", "outsider", "out@test.cd", nil)
	prj := ta.createProject(t, usr.Username, "North Corridor Line", "")

	token := getToken(t, usr)

	t.Run("missing token", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/forecast", []byte(`{"project_id":"`+prj.ID+`"}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("inaccessible project", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/forecast", getToken(t, outsider),
			[]byte(`{"project_id":"`+prj.ID+`"}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
	})

	t.Run("invalid month", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/forecast", token,
			[]byte(`{"project_id":"`+prj.ID+`","forecast_month":"2024-13"}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("defaults to current month", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/forecast", token,
			[]byte(`{"project_id":"`+prj.ID+`"}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}

		var res forecast.Result
		decodeBody(t, rec, &res)
		if want := time.Now().UTC().Format("2006-01"); res.ForecastMonth != want {
			t.Errorf("forecast_month = %q; want %q", res.ForecastMonth, want)
		}
		if len(res.Predictions) == 0 {
			t.Fatal("expected predictions")
		}
		if _, ok := res.Predictions["steel_tons"]; !ok {
			t.Error("expected a steel_tons prediction")
		}
		if res.InputUsed["budget"] == nil {
			t.Error("expected defaulted features in input_used")
		}
	})

	t.Run("re-forecast overwrites the month", func(t *testing.T) {
		body := []byte(`{"project_id":"` + prj.ID + `","forecast_month":"2025-06","project_size_km":50}`)
		for i := 0; i < 2; i++ {
			req, rec := newAuthRequest(http.MethodPost, "/v1/forecast", token, body)
			ta.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("attempt %d: code = %v; body %s", i, rec.Code, rec.Body.String())
			}
		}

		req, rec := newAuthRequest(http.MethodGet, "/v1/projects/"+prj.ID+"/forecasts", token)
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var entries []forecast.Entry
		decodeBody(t, rec, &entries)

		var seen int
		for _, e := range entries {
			if e.ForecastMonth == "2025-06" {
				seen++
			}
		}
		if seen != 1 {
			t.Errorf("2025-06 appears %d times; want 1", seen)
		}
	})
}

func Test_forecastApi_retention(t *testing.T) {
	ta := setup(t)
	usr := ta.createUser(t, "Jane", "jane", "jane@test.cd", nil)
	prj := ta.createProject(t, usr.Username, "South Substation", "")
	token := getToken(t, usr)

	months := []string{"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06"}
	for _, m := range months {
		req, rec := newAuthRequest(http.MethodPost, "/v1/forecast", token,
			[]byte(`{"project_id":"`+prj.ID+`","forecast_month":"`+m+`"}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("month %s: code = %v; body %s", m, rec.Code, rec.Body.String())
		}
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/projects/"+prj.ID+"/forecasts", token)
	ta.app.ServeHTTP(rec, req)
	var entries []forecast.Entry
	decodeBody(t, rec, &entries)

	if len(entries) != ta.conf.ForecastRetentionMonths {
		t.Fatalf("got %d months; want %d", len(entries), ta.conf.ForecastRetentionMonths)
	}
	// newest first, oldest months trimmed
	wantOrder := []string{"2025-06", "2025-05", "2025-04", "2025-03"}
	for i, e := range entries {
		if e.ForecastMonth != wantOrder[i] {
			t.Errorf("entries[%d] = %q; want %q", i, e.ForecastMonth, wantOrder[i])
		}
	}
}

func Test_forecastApi_actualValues(t *testing.T) {
	ta := setup(t)
	usr := ta.createUser(t, "Jane", "jane", "jane@test.cd", nil)
	prj := ta.createProject(t, usr.Username, "East Loop", "")
	token := getToken(t, usr)

	t.Run("no forecasts yet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/projects/"+prj.ID+"/actual-values", token,
			[]byte(`{"actual_values":{"steel_tons":10}}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
	})

	for _, m := range []string{"2025-03", "2025-04"} {
		req, rec := newAuthRequest(http.MethodPost, "/v1/forecast", token,
			[]byte(`{"project_id":"`+prj.ID+`","forecast_month":"`+m+`"}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("month %s: code = %v", m, rec.Code)
		}
	}

	t.Run("defaults to latest month", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/projects/"+prj.ID+"/actual-values", token,
			[]byte(`{"actual_values":{"steel_tons":12.5,"copper_tons":"3"}}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var res map[string]string
		decodeBody(t, rec, &res)
		if res["month"] != "2025-04" {
			t.Errorf("month = %q; want %q", res["month"], "2025-04")
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/projects/"+prj.ID+"/forecasts/2025-04", token)
		ta.app.ServeHTTP(rec, req)
		var entry forecast.Entry
		decodeBody(t, rec, &entry)
		if !entry.HasActuals() {
			t.Fatal("actuals not recorded")
		}
		if got := entry.ActualTotal(); got != 15.5 {
			t.Errorf("actual total = %v; want 15.5", got)
		}
	})

	t.Run("explicit month", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/projects/"+prj.ID+"/actual-values", token,
			[]byte(`{"month":"2025-03","actual_values":{}}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/projects/"+prj.ID+"/forecasts/2025-03", token)
		ta.app.ServeHTTP(rec, req)
		var entry forecast.Entry
		decodeBody(t, rec, &entry)
		// empty map counts as recorded
		if !entry.HasActuals() {
			t.Error("empty actuals should still be recorded")
		}
	})

	t.Run("unknown month", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/projects/"+prj.ID+"/actual-values", token,
			[]byte(`{"month":"2030-01","actual_values":{"steel_tons":1}}`))
		ta.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}
