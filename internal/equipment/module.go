package equipment

import (
	"context"
	"errors"

	"github.com/shandysiswandi/chemvis/internal/equipment/inbound"
	"github.com/shandysiswandi/chemvis/internal/equipment/report"
	"github.com/shandysiswandi/chemvis/internal/equipment/store"
	"github.com/shandysiswandi/chemvis/internal/equipment/usecase"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkguid"
	"gorm.io/gorm"
)

// DefaultMaxUploadBytes is used when modules.equipment.max_upload_bytes is unset.
const DefaultMaxUploadBytes int64 = 10 << 20

type Dependency struct {
	Config pkgconfig.Config
	Router *pkgrouter.Router
	DB     *gorm.DB
	ID     pkguid.NumberID
	Auth   pkgrouter.Authenticator
}

func New(ctx context.Context, dep Dependency) error {
	if dep.DB == nil || dep.Auth == nil || dep.ID == nil {
		return errors.New("equipment: database, authenticator and id generator are required")
	}

	storage := store.NewGormStore(dep.DB)
	if err := storage.Migrate(ctx); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		Store:     storage,
		Renderer:  report.NewPDF(report.DefaultLayout()),
		ID:        dep.ID,
		Retention: int(dep.Config.GetInt("modules.equipment.retention")),
	})

	maxUpload := dep.Config.GetInt("modules.equipment.max_upload_bytes")
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, maxUpload, pkgrouter.Authenticate(dep.Auth))

	return nil
}
