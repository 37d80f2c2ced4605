package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/forecast"
	"github.com/plangrid/matcast/core/inventory"
	"github.com/plangrid/matcast/core/order"
	"github.com/plangrid/matcast/core/project"
	"github.com/plangrid/matcast/core/team"
	"github.com/plangrid/matcast/core/updates"
	"github.com/plangrid/matcast/core/user"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		UserSvc      *user.Service
		TeamSvc      *team.Service
		ProjectSvc   *project.Service
		ForecastSvc  *forecast.Service
		OrderSvc     *order.Service
		InventorySvc *inventory.Service
		Hub          updates.Hub
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps         ServerDeps
		app          *echo.Echo
		errChan      chan error
		shutdownChan chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:         deps,
		app:          echo.New(),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	initAuth(deps.Conf)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc)
	registerProjectAPI(v1, jwt, s.deps.ProjectSvc)
	registerForecastAPI(v1, jwt, s.deps.ForecastSvc, s.deps.ProjectSvc)
	registerDashboardAPI(v1, jwt, s.deps.ProjectSvc, s.deps.ForecastSvc, s.deps.OrderSvc)
	registerOrderAPI(v1, jwt, s.deps.OrderSvc)
	registerInventoryAPI(v1, jwt, s.deps.InventorySvc)
	registerTeamAPI(v1, jwt, s.deps.TeamSvc, s.deps.ProjectSvc)
	registerUpdatesAPI(v1, jwt, s.deps.Hub)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.ServerAddress()); err != nil && err != http.ErrServerClosed {
		s.errChan <- err
	}
}

func (s *server) Errors() <-chan error { return s.errChan }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdownChan }

func (s *server) signalShutdown() { s.shutdownChan <- syscall.SIGTERM }

func (s *server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *server) Close() error { return s.app.Close() }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Matcast API!")
}
