package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/chemvis/internal/account"
	"github.com/shandysiswandi/chemvis/internal/equipment"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
)

func (a *App) initModules() {
	var auth pkgrouter.Authenticator

	if a.config.GetBool("modules.account.enabled") {
		authenticator, err := account.New(a.ctx, account.Dependency{
			Config: a.config,
			Router: a.router,
			DB:     a.db,
			ID:     a.idNum,
		})
		if err != nil {
			slog.Error("failed to init module account", "error", err)
			os.Exit(1)
		}
		auth = authenticator
	}

	if a.config.GetBool("modules.equipment.enabled") {
		if auth == nil {
			slog.Error("module equipment needs module account for authentication")
			os.Exit(1)
		}

		if err := equipment.New(a.ctx, equipment.Dependency{
			Config: a.config,
			Router: a.router,
			DB:     a.db,
			ID:     a.idNum,
			Auth:   auth,
		}); err != nil {
			slog.Error("failed to init module equipment", "error", err)
			os.Exit(1)
		}
	}
}
