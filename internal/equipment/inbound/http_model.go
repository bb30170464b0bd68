package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
	"github.com/shandysiswandi/chemvis/internal/equipment/usecase"
)

type Dataset struct {
	ID              int64          `json:"id"`
	Filename        string         `json:"filename"`
	UploadTimestamp time.Time      `json:"upload_timestamp"`
	SummaryStats    entity.Summary `json:"summary_stats"`
	RecordCount     int            `json:"record_count"`
}

type Record struct {
	ID            int64   `json:"id"`
	Dataset       int64   `json:"dataset"`
	EquipmentName string  `json:"equipment_name"`
	Type          string  `json:"type"`
	Flowrate      float64 `json:"flowrate"`
	Pressure      float64 `json:"pressure"`
	Temperature   float64 `json:"temperature"`
}

type UploadResponse struct {
	Dataset
}

func (UploadResponse) StatusCode() int {
	return http.StatusCreated
}

func (UploadResponse) Message() string {
	return "dataset uploaded"
}

type HistoryResponse struct {
	Results []Dataset `json:"results"`
	page    usecase.Page
}

func (r HistoryResponse) Meta() map[string]any {
	return pageMeta(r.page)
}

type RecordsResponse struct {
	Records []Record       `json:"records"`
	Summary entity.Summary `json:"summary"`
	page    usecase.Page
}

func (r RecordsResponse) Meta() map[string]any {
	return pageMeta(r.page)
}

type DeleteResponse struct{}

func (DeleteResponse) StatusCode() int {
	return http.StatusNoContent
}

func pageMeta(p usecase.Page) map[string]any {
	return map[string]any{
		"page":      p.Number,
		"page_size": p.Size,
		"total":     p.Total,
	}
}

func toHTTPDataset(ds entity.Dataset) Dataset {
	return Dataset{
		ID:              ds.ID,
		Filename:        ds.Filename,
		UploadTimestamp: ds.UploadedAt,
		SummaryStats:    ds.Summary,
		RecordCount:     ds.Summary.Count,
	}
}

func toHTTPRecord(rec entity.EquipmentRecord) Record {
	return Record{
		ID:            rec.ID,
		Dataset:       rec.DatasetID,
		EquipmentName: rec.EquipmentName,
		Type:          rec.Type,
		Flowrate:      rec.Flowrate,
		Pressure:      rec.Pressure,
		Temperature:   rec.Temperature,
	}
}
