package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgdb"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkglog"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkguid"
)

func configDefaults() map[string]any {
	return map[string]any{
		"tz":                                 "UTC",
		"server.cors.allowed_origins":        []string{"*"},
		"log.level":                          "info",
		"server.address.http":                ":8080",
		"database.driver":                    pkgdb.DriverSQLite,
		"database.dsn":                       "chemvis.db",
		"database.log_level":                 "warn",
		"snowflake.node":                     -1,
		"modules.account.enabled":            true,
		"modules.equipment.enabled":          true,
		"modules.equipment.retention":        5,
		"modules.equipment.max_upload_bytes": 10 << 20,
	}
}

func (a *App) initConfig() {
	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path, configDefaults())
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))
	pkglog.SetLevel(cfg.GetString("log.level"))

	a.config = cfg
}

func (a *App) initLibraries() {
	a.uuid = pkguid.NewUUID()

	sf, err := pkguid.NewSnowflake(a.config.GetInt("snowflake.node"))
	if err != nil {
		slog.Error("failed to init snowflake", "error", err)
		os.Exit(1)
	}
	a.idNum = sf
}

func (a *App) initDatabase() {
	db, err := pkgdb.Open(pkgdb.Options{
		Driver:   a.config.GetString("database.driver"),
		DSN:      a.config.GetString("database.dsn"),
		LogLevel: a.config.GetString("database.log_level"),
	})
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	a.db = db
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("server.cors.allowed_origins"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) initClosers() {
	a.closers = append(a.closers,
		closer{name: "HTTP Server", close: a.httpServer.Shutdown},
		closer{name: "Database", close: func(context.Context) error { return pkgdb.Close(a.db) }},
		closer{name: "Config", close: func(context.Context) error { return a.config.Close() }},
	)
}
