package app

import (
	"context"
	"net/http"
	"os"

	"github.com/shandysiswandi/chemvis/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkglog"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkguid"
	"gorm.io/gorm"
)

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid  pkguid.StringID
	idNum pkguid.NumberID

	// resources
	db *gorm.DB

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// released by Stop in order
	closers []closer
}

type closer struct {
	name  string
	close func(context.Context) error
}

func New() *App {
	pkglog.InitLogging(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLibraries()
	app.initDatabase()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
