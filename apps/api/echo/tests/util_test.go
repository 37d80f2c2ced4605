package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	. "github.com/plangrid/matcast/apps/api/echo"
	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/forecast"
	"github.com/plangrid/matcast/core/inventory"
	"github.com/plangrid/matcast/core/order"
	"github.com/plangrid/matcast/core/project"
	"github.com/plangrid/matcast/core/team"
	"github.com/plangrid/matcast/core/updates"
	"github.com/plangrid/matcast/core/user"
	emailsvc "github.com/plangrid/matcast/services/email"
	logsvc "github.com/plangrid/matcast/services/logger"
	predictorsvc "github.com/plangrid/matcast/services/predictor"
	"github.com/plangrid/matcast/storage/inmem"
)

const testPassword = "V3ryS3cret!"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func testConfig() *core.Config {
	return &core.Config{
		TestMode:                  true,
		Env:                       "TEST",
		AppName:                   "Matcast",
		SecretKey:                 "test-secret-key",
		FrontendBaseURL:           "http://localhost:5173",
		DefaultFromEmailAddr:      "noreply@localhost",
		PasswordResetTimeoutDelta: time.Hour,
		InvitationExpirationDelta: 7 * 24 * time.Hour,
		ForecastRetentionMonths:   4,
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

type testApp struct {
	app  Server
	conf *core.Config

	usrRepo      user.Repository
	usrSvc       *user.Service
	teamSvc      *team.Service
	projSvc      *project.Service
	forecastSvc  *forecast.Service
	orderSvc     *order.Service
	inventorySvc *inventory.Service
	hub          *updates.InProcessHub
}

// setup wires a server against fresh in-memory storage.
func setup(t *testing.T) *testApp {
	t.Helper()

	conf := testConfig()

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	db, err := inmem.Open()
	if err != nil {
		t.Fatalf("inmem.Open(): %v", err)
	}

	usrRepo := inmem.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	hub := updates.NewInProcessHub()

	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	teamSvc := team.NewService(inmem.NewTeamRepository(db), usrSvc, mailSvc, hub, logger, conf)
	projSvc := project.NewService(inmem.NewProjectRepository(db), teamSvc, hub, logger)
	forecastSvc := forecast.NewService(inmem.NewForecastRepository(db), predictorsvc.NewStaticPredictor(), projSvc, logger, conf)
	orderSvc := order.NewService(inmem.NewOrderRepository(db), projSvc, hub)
	invSvc := inventory.NewService(inmem.NewInventoryRepository(db))

	app := NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			TeamSvc:        teamSvc,
			ProjectSvc:     projSvc,
			ForecastSvc:    forecastSvc,
			OrderSvc:       orderSvc,
			InventorySvc:   invSvc,
			Hub:            hub,
		},
	)

	return &testApp{
		app:          app,
		conf:         conf,
		usrRepo:      usrRepo,
		usrSvc:       usrSvc,
		teamSvc:      teamSvc,
		projSvc:      projSvc,
		forecastSvc:  forecastSvc,
		orderSvc:     orderSvc,
		inventorySvc: invSvc,
		hub:          hub,
	}
}

func (ta *testApp) createUser(t *testing.T, name, uname, email string, roles []string) user.User {
	t.Helper()
	usr, err := ta.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        testPassword,
		PasswordConfirm: testPassword,
		Roles:           roles,
	})
	if err != nil {
		t.Fatalf("createUser(%q): %v", uname, err)
	}
	return usr
}

func (ta *testApp) createProject(t *testing.T, username, name, teamID string) project.Project {
	t.Helper()
	prj, err := ta.projSvc.Create(context.Background(), project.NewProject{
		Name:   name,
		Status: project.StatusInProgress,
		SizeKM: 100,
		TeamID: teamID,
	}, username)
	if err != nil {
		t.Fatalf("createProject(%q): %v", name, err)
	}
	return prj
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}
