package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

type datasetModel struct {
	ID         int64                              `gorm:"primaryKey;autoIncrement:false"`
	Filename   string                             `gorm:"size:255;not null"`
	UploadedAt time.Time                          `gorm:"not null;index"`
	Summary    datatypes.JSONType[entity.Summary] `gorm:"not null"`
	Records    []recordModel                      `gorm:"foreignKey:DatasetID;constraint:OnDelete:CASCADE"`
}

func (datasetModel) TableName() string { return "datasets" }

type recordModel struct {
	ID            int64   `gorm:"primaryKey;autoIncrement:false"`
	DatasetID     int64   `gorm:"not null;index"`
	EquipmentName string  `gorm:"size:255;not null"`
	Type          string  `gorm:"size:255;not null"`
	Flowrate      float64 `gorm:"not null"`
	Pressure      float64 `gorm:"not null"`
	Temperature   float64 `gorm:"not null"`
}

func (recordModel) TableName() string { return "equipment_records" }

func toDatasetModel(ds entity.Dataset) datasetModel {
	return datasetModel{
		ID:         ds.ID,
		Filename:   ds.Filename,
		UploadedAt: ds.UploadedAt,
		Summary:    datatypes.NewJSONType(ds.Summary),
	}
}

func (m datasetModel) toEntity() entity.Dataset {
	return entity.Dataset{
		ID:         m.ID,
		Filename:   m.Filename,
		UploadedAt: m.UploadedAt.UTC(),
		Summary:    m.Summary.Data(),
	}
}

func toRecordModel(r entity.EquipmentRecord) recordModel {
	return recordModel(r)
}

func (m recordModel) toEntity() entity.EquipmentRecord {
	return entity.EquipmentRecord(m)
}

// GormStore keeps datasets and their records in a relational database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the datasets and equipment_records tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&datasetModel{}, &recordModel{}); err != nil {
		return fmt.Errorf("migrate equipment tables: %w", err)
	}
	return nil
}

func (s *GormStore) CreateDataset(ctx context.Context, ds entity.Dataset, records []entity.EquipmentRecord, keep int) ([]int64, error) {
	var pruned []int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if stmt := retentionLock(tx.Dialector.Name()); stmt != "" {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("lock datasets for retention: %w", err)
			}
		}

		dm := toDatasetModel(ds)
		if err := tx.Omit(clause.Associations).Create(&dm).Error; err != nil {
			return fmt.Errorf("insert dataset: %w", err)
		}

		if len(records) > 0 {
			rows := make([]recordModel, len(records))
			for i, r := range records {
				rows[i] = toRecordModel(r)
			}
			if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert records: %w", err)
			}
		}

		var ids []int64
		if err := tx.Model(&datasetModel{}).
			Order("uploaded_at DESC").
			Order("id DESC").
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("list datasets for retention: %w", err)
		}

		if keep < 1 || len(ids) <= keep {
			return nil
		}

		stale := ids[keep:]
		if err := deleteDatasets(tx, stale); err != nil {
			return err
		}
		pruned = stale

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pruned, nil
}

// retentionLock serializes uploads so each one prunes against every committed
// dataset. SHARE ROW EXCLUSIVE conflicts with itself but not with readers.
// SQLite needs no statement: it has one writer connection.
func retentionLock(dialect string) string {
	if dialect == "postgres" {
		return "LOCK TABLE datasets IN SHARE ROW EXCLUSIVE MODE"
	}
	return ""
}

func deleteDatasets(tx *gorm.DB, ids []int64) error {
	if err := tx.Where("dataset_id IN ?", ids).Delete(&recordModel{}).Error; err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&datasetModel{}).Error; err != nil {
		return fmt.Errorf("delete datasets: %w", err)
	}
	return nil
}

func (s *GormStore) ListDatasets(ctx context.Context, page, pageSize int) ([]entity.Dataset, int, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&datasetModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	var rows []datasetModel
	if err := db.
		Order("uploaded_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list datasets: %w", err)
	}

	out := make([]entity.Dataset, len(rows))
	for i, m := range rows {
		out[i] = m.toEntity()
	}

	return out, int(total), nil
}

func (s *GormStore) GetDataset(ctx context.Context, id int64) (entity.Dataset, error) {
	var m datasetModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Dataset{}, pkgerror.ErrNotFound
	}
	if err != nil {
		return entity.Dataset{}, fmt.Errorf("get dataset: %w", err)
	}

	return m.toEntity(), nil
}

// ListRecords pages through a dataset's records in upload order.
func (s *GormStore) ListRecords(ctx context.Context, datasetID int64, page, pageSize int) ([]entity.EquipmentRecord, int, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&recordModel{}).Where("dataset_id = ?", datasetID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	var rows []recordModel
	if err := db.
		Where("dataset_id = ?", datasetID).
		Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}

	return recordsToEntities(rows), int(total), nil
}

func (s *GormStore) PreviewRecords(ctx context.Context, datasetID int64, limit int) ([]entity.EquipmentRecord, error) {
	var rows []recordModel
	if err := s.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("preview records: %w", err)
	}

	return recordsToEntities(rows), nil
}

func (s *GormStore) DeleteDataset(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&datasetModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return fmt.Errorf("find dataset: %w", err)
		}
		if n == 0 {
			return pkgerror.ErrNotFound
		}

		return deleteDatasets(tx, []int64{id})
	})
}

func recordsToEntities(rows []recordModel) []entity.EquipmentRecord {
	out := make([]entity.EquipmentRecord, len(rows))
	for i, m := range rows {
		out[i] = m.toEntity()
	}
	return out
}
