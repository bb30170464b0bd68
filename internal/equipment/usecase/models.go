package usecase

import (
	"io"

	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
)

type UploadInput struct {
	Filename string
	Body     io.Reader
}

type Page struct {
	Number int
	Size   int
	Total  int
}

type HistoryResult struct {
	Datasets []entity.Dataset
	Page     Page
}

type RecordsResult struct {
	Dataset entity.Dataset
	Records []entity.EquipmentRecord
	Page    Page
}

type ReportResult struct {
	Filename string
	Content  []byte
}
