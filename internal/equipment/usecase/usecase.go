package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkguid"
)

const (
	// DefaultRetention is the number of datasets kept when none is configured.
	DefaultRetention = 5
	// PreviewLimit caps the record table printed in a report.
	PreviewLimit = 20
)

type Store interface {
	// CreateDataset persists the dataset and its records, then deletes
	// datasets beyond the keep most recent, all in one transaction. It
	// returns the ids of the deleted datasets.
	CreateDataset(ctx context.Context, ds entity.Dataset, records []entity.EquipmentRecord, keep int) ([]int64, error)
	ListDatasets(ctx context.Context, page, pageSize int) ([]entity.Dataset, int, error)
	GetDataset(ctx context.Context, id int64) (entity.Dataset, error)
	ListRecords(ctx context.Context, datasetID int64, page, pageSize int) ([]entity.EquipmentRecord, int, error)
	PreviewRecords(ctx context.Context, datasetID int64, limit int) ([]entity.EquipmentRecord, error)
	DeleteDataset(ctx context.Context, id int64) error
}

type Renderer interface {
	Render(ds entity.Dataset, preview []entity.EquipmentRecord) ([]byte, error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Store     Store
	Renderer  Renderer
	Clock     Clock
	ID        pkguid.NumberID
	Retention int
}

type Usecase struct {
	store     Store
	renderer  Renderer
	clock     Clock
	id        pkguid.NumberID
	retention int
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	retention := dep.Retention
	if retention < 1 {
		retention = DefaultRetention
	}

	return &Usecase{
		store:     dep.Store,
		renderer:  dep.Renderer,
		clock:     clock,
		id:        dep.ID,
		retention: retention,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Upload validates a CSV upload, computes its summary and stores it. Nothing
// is written unless every check passes.
func (u *Usecase) Upload(ctx context.Context, in UploadInput) (entity.Dataset, error) {
	if u.store == nil || u.id == nil {
		return entity.Dataset{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	if in.Body == nil {
		return entity.Dataset{}, pkgerror.NewRejected("no file provided")
	}

	if err := checkExtension(in.Filename); err != nil {
		return entity.Dataset{}, err
	}

	tbl, err := readTable(ctx, in.Body)
	if err != nil {
		return entity.Dataset{}, err
	}

	records, err := toRecords(tbl)
	if err != nil {
		return entity.Dataset{}, err
	}

	ds := entity.Dataset{
		ID:         u.id.Generate(),
		Filename:   in.Filename,
		UploadedAt: u.clock.Now().UTC().Truncate(time.Microsecond),
		Summary:    summarize(records),
	}
	for i := range records {
		records[i].ID = u.id.Generate()
		records[i].DatasetID = ds.ID
	}

	pruned, err := u.store.CreateDataset(ctx, ds, records, u.retention)
	if err != nil {
		return entity.Dataset{}, normalizeErr(err)
	}

	slog.InfoContext(ctx, "dataset ingested",
		"dataset_id", ds.ID,
		"filename", ds.Filename,
		"rows", ds.Summary.Count,
		"pruned", pruned,
	)

	return ds, nil
}

func (u *Usecase) History(ctx context.Context, page, pageSize int) (HistoryResult, error) {
	if page < 1 || pageSize < 1 {
		return HistoryResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	datasets, total, err := u.store.ListDatasets(ctx, page, pageSize)
	if err != nil {
		return HistoryResult{}, normalizeErr(err)
	}

	return HistoryResult{
		Datasets: datasets,
		Page:     Page{Number: page, Size: pageSize, Total: total},
	}, nil
}

func (u *Usecase) Records(ctx context.Context, datasetID int64, page, pageSize int) (RecordsResult, error) {
	if page < 1 || pageSize < 1 {
		return RecordsResult{}, pkgerror.NewInvalidInput(errors.New("invalid pagination"))
	}

	ds, err := u.store.GetDataset(ctx, datasetID)
	if err != nil {
		return RecordsResult{}, mapStoreErr(err)
	}

	records, total, err := u.store.ListRecords(ctx, datasetID, page, pageSize)
	if err != nil {
		return RecordsResult{}, mapStoreErr(err)
	}

	return RecordsResult{
		Dataset: ds,
		Records: records,
		Page:    Page{Number: page, Size: pageSize, Total: total},
	}, nil
}

func (u *Usecase) Summary(ctx context.Context, datasetID int64) (entity.Summary, error) {
	ds, err := u.store.GetDataset(ctx, datasetID)
	if err != nil {
		return entity.Summary{}, mapStoreErr(err)
	}

	return ds.Summary, nil
}

func (u *Usecase) Report(ctx context.Context, datasetID int64) (ReportResult, error) {
	if u.renderer == nil {
		return ReportResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	ds, err := u.store.GetDataset(ctx, datasetID)
	if err != nil {
		return ReportResult{}, mapStoreErr(err)
	}

	preview, err := u.store.PreviewRecords(ctx, datasetID, PreviewLimit)
	if err != nil {
		return ReportResult{}, mapStoreErr(err)
	}

	content, err := u.renderer.Render(ds, preview)
	if err != nil {
		return ReportResult{}, pkgerror.NewServer(fmt.Errorf("render report: %w", err))
	}

	return ReportResult{
		Filename: fmt.Sprintf("report_%d.pdf", ds.ID),
		Content:  content,
	}, nil
}

func (u *Usecase) Delete(ctx context.Context, datasetID int64) error {
	if err := u.store.DeleteDataset(ctx, datasetID); err != nil {
		return mapStoreErr(err)
	}

	slog.InfoContext(ctx, "dataset deleted", "dataset_id", datasetID)

	return nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, pkgerror.ErrNotFound) {
		return pkgerror.NewBusiness("dataset not found", pkgerror.CodeNotFound)
	}
	return normalizeErr(err)
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
