package app

import (
	"context"
	"turnover/config"
	"turnover/internal/controllers"
	"turnover/internal/database"
	"turnover/internal/events"
	"turnover/internal/handlers/middleware"
	"turnover/internal/jobs"
	"turnover/internal/logger"
	"turnover/internal/repositories"
	"turnover/internal/services"
	"turnover/internal/websockets"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Websocket   *websockets.Manager
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	service := services.New(db)
	repos := repositories.New(db)
	controllers := controllers.New(service, repos, eventBus, config, db)

	websocket, err := websockets.New(db, eventBus, config)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, eventBus, config, repos)

	if config.SchedulerEnabled {
		digestJob := jobs.NewHousekeepingDigestJob(db, services.Hourly)
		if err := service.Scheduler.AddJob(digestJob); err != nil {
			return &App{}, log.Err("failed to register housekeeping digest job", err)
		}
		log.Info("Registered housekeeping digest job with scheduler")

		if err := service.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:    db,
		Middleware:  middleware,
		Websocket:   websocket,
		EventBus:    eventBus,
		Config:      config,
		Services:    service,
		Repos:       repos,
		Controllers: controllers,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.Services.Transaction,
		a.Services.RoomLock,
		a.Services.Scheduler,
		a.Repos.Room,
		a.Repos.Worker,
		a.Repos.History,
		a.Repos.Assignment,
		a.Repos.Message,
		a.Controllers.Room,
		a.Controllers.Assignment,
		a.Controllers.Session,
		a.Controllers.Worker,
		a.Controllers.History,
		a.Controllers.Message,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil && a.Services.Scheduler.IsRunning() {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
