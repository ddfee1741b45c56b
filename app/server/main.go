package main

import (
	"context"
	"fmt"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"school-site-console/app/server/cleanup"
	"school-site-console/app/server/constants"
	"school-site-console/app/server/handlers"
	"school-site-console/app/server/inits"
	"school-site-console/app/server/jwt"
	"school-site-console/app/server/middlewares"
	"school-site-console/app/server/storage"
)

func main() {
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	l, err := inits.Logger(!cfg.System.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}

	l.Debug("logger initialized")

	db, err := inits.DB(cfg.System.DBConnectionString, cfg)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}

	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}

	store, err := storage.New(context.Background(), storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	}, l)
	if err != nil {
		l.Fatal("error initializing storage", zap.Error(err))
	}

	// An unsigned deployment must not silently run
	j, err := jwt.New(cfg.Security.SignatureSecretKey)
	if err != nil {
		l.Fatal("error initializing JWT", zap.Error(err))
	}

	handlerApp := handlers.NewApp(l, db, j, store, cleanup.NewQueue(rdb, l), cfg.System.IsProd, cfg.Storage.SignReads)

	e := echo.New()
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middlewares.SessionGate(j))

	e.GET("/healthz", handlerApp.Healthcheck)

	// Console pages
	e.GET(constants.LoginPagePath, handlerApp.LoginPage)
	e.GET(constants.DashboardPath, handlerApp.DashboardPage)
	e.GET(constants.DashboardPath+"/*", handlerApp.DashboardPage)

	// Auth
	e.POST("/api/auth/login", handlerApp.AuthLogin)
	e.POST("/api/auth/logout", handlerApp.AuthLogout)
	e.GET("/api/auth/me", handlerApp.AuthMe)

	// History records
	e.GET("/api/histories/list", handlerApp.HistoryList)
	e.POST("/api/histories/save", handlerApp.HistoryCreate)
	e.PUT("/api/histories/:id", handlerApp.HistoryUpdate)
	e.DELETE("/api/histories/:id", handlerApp.HistoryDelete)

	// Principal records
	e.GET("/api/principals", handlerApp.PrincipalList)
	e.POST("/api/principals", handlerApp.PrincipalCreate)
	e.PUT("/api/principals", handlerApp.PrincipalUpdate)
	e.DELETE("/api/principals", handlerApp.PrincipalDelete)

	// School details singleton
	e.GET("/api/school-details/get", handlerApp.SchoolDetailsGet)
	e.POST("/api/school-details/save", handlerApp.SchoolDetailsSave)

	if err := e.Start(cfg.System.Listen); err != nil {
		l.Fatal("shutting down the server", zap.Error(err))
	}
}
