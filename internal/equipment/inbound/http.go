package inbound

import (
	"context"

	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
	"github.com/shandysiswandi/chemvis/internal/equipment/usecase"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgrouter"
)

type uc interface {
	Upload(ctx context.Context, in usecase.UploadInput) (entity.Dataset, error)
	History(ctx context.Context, page, pageSize int) (usecase.HistoryResult, error)
	Records(ctx context.Context, datasetID int64, page, pageSize int) (usecase.RecordsResult, error)
	Summary(ctx context.Context, datasetID int64) (entity.Summary, error)
	Report(ctx context.Context, datasetID int64) (usecase.ReportResult, error)
	Delete(ctx context.Context, datasetID int64) error
}

// RegisterHTTPEndpoint mounts the dataset routes. guard runs before every
// handler, typically pkgrouter.Authenticate.
func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, maxUploadBytes int64, guard ...pkgrouter.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	upload := append([]pkgrouter.Middleware{pkgrouter.MaxBodyBytes(maxUploadBytes)}, guard...)
	r.POST("/upload/", end.Upload, upload...)

	r.GET("/history/", end.History, guard...) // ?page=&page_size=

	r.GET("/dataset/:id/", end.Records, guard...) // ?page=&page_size=
	r.DELETE("/dataset/:id/", end.Delete, guard...)
	r.GET("/dataset/:id/summary/", end.Summary, guard...)
	r.GET("/dataset/:id/report/", end.Report, guard...)
}
