package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/chemvis/internal/account/inbound"
	"github.com/shandysiswandi/chemvis/internal/account/store"
	"github.com/shandysiswandi/chemvis/internal/account/usecase"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkguid"
	"gorm.io/gorm"
)

type Dependency struct {
	Config pkgconfig.Config
	Router *pkgrouter.Router
	DB     *gorm.DB
	ID     pkguid.NumberID
}

// New migrates the account tables, seeds the configured admin and mounts
// the login and user routes. The returned Authenticator guards the other
// modules.
func New(ctx context.Context, dep Dependency) (pkgrouter.Authenticator, error) {
	if dep.DB == nil || dep.ID == nil {
		return nil, errors.New("account: database and id generator are required")
	}

	storage := store.NewGormStore(dep.DB)
	if err := storage.Migrate(ctx); err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		Store: storage,
		ID:    dep.ID,
		Token: pkguid.NewToken(),
	})

	created, err := uc.EnsureAdmin(ctx, usecase.AdminInput{
		Username: dep.Config.GetString("auth.admin.username"),
		Email:    dep.Config.GetString("auth.admin.email"),
		Password: dep.Config.GetString("auth.admin.password"),
	})
	if err != nil {
		return nil, err
	}
	if created {
		slog.InfoContext(ctx, "initial admin account created", "username", dep.Config.GetString("auth.admin.username"))
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, pkgrouter.Authenticate(uc))

	return uc, nil
}
