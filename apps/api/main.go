package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	echoapi "github.com/plangrid/matcast/apps/api/echo"
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
	"github.com/plangrid/matcast/storage/mongodb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	repos, closeDB, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = closeDB(); err != nil {
			dbLogger.Error("failed to close storage", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	var predictor forecast.Predictor
	if conf.Predictor.URL != "" {
		predictor = predictorsvc.NewHTTPPredictor(logger, conf)
	} else {
		predictor = predictorsvc.NewStaticPredictor()
	}

	hub := updates.NewInProcessHub()

	usrSvc := user.NewService(repos.users, mailSvc, conf)
	teamSvc := team.NewService(repos.teams, usrSvc, mailSvc, hub, logger, conf)
	projSvc := project.NewService(repos.projects, teamSvc, hub, logger)
	forecastSvc := forecast.NewService(repos.forecasts, predictor, projSvc, logger, conf)
	orderSvc := order.NewService(repos.orders, projSvc, hub)
	invSvc := inventory.NewService(repos.inventory)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if err = core.InitValidators(); err != nil {
		logger.Fatal(fmt.Sprintf("initializing validators: %v", err), err)
	}
	if err = user.InitValidators(); err != nil {
		logger.Fatal(fmt.Sprintf("initializing user validators: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			UserSvc:      usrSvc,
			TeamSvc:      teamSvc,
			ProjectSvc:   projSvc,
			ForecastSvc:  forecastSvc,
			OrderSvc:     orderSvc,
			InventorySvc: invSvc,
			Hub:          hub,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type repositories struct {
	users     user.Repository
	teams     team.Repository
	projects  project.Repository
	forecasts forecast.Repository
	orders    order.Repository
	inventory inventory.Repository
}

// setUpStorage opens MongoDB when a URI is configured and falls back to the
// in-memory store in TEST mode or when no URI is set.
func setUpStorage(conf *core.Config) (*repositories, func() error, error) {
	if conf.TestMode || conf.Database.URI == "" {
		db, err := inmem.Open()
		if err != nil {
			return nil, nil, err
		}
		repos := &repositories{
			users:     inmem.NewUserRepository(db),
			teams:     inmem.NewTeamRepository(db),
			projects:  inmem.NewProjectRepository(db),
			forecasts: inmem.NewForecastRepository(db),
			orders:    inmem.NewOrderRepository(db),
			inventory: inmem.NewInventoryRepository(db),
		}
		return repos, func() error { return nil }, nil
	}

	db, err := mongodb.Open(context.Background(), conf)
	if err != nil {
		return nil, nil, err
	}
	repos := &repositories{
		users:     mongodb.NewUserRepository(db),
		teams:     mongodb.NewTeamRepository(db),
		projects:  mongodb.NewProjectRepository(db),
		forecasts: mongodb.NewForecastRepository(db),
		orders:    mongodb.NewOrderRepository(db),
		inventory: mongodb.NewInventoryRepository(db),
	}
	return repos, func() error { return db.Close(context.Background()) }, nil
}
