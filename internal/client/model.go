package client

import "time"

type Summary struct {
	Count            int            `json:"count"             yaml:"count"`
	AvgFlowrate      float64        `json:"avg_flowrate"      yaml:"avg_flowrate"`
	AvgPressure      float64        `json:"avg_pressure"      yaml:"avg_pressure"`
	AvgTemperature   float64        `json:"avg_temperature"   yaml:"avg_temperature"`
	TypeDistribution map[string]int `json:"type_distribution" yaml:"type_distribution"`
}

type Dataset struct {
	ID              int64     `json:"id"               yaml:"id"`
	Filename        string    `json:"filename"         yaml:"filename"`
	UploadTimestamp time.Time `json:"upload_timestamp" yaml:"upload_timestamp"`
	SummaryStats    Summary   `json:"summary_stats"    yaml:"summary_stats"`
	RecordCount     int       `json:"record_count"     yaml:"record_count"`
}

type Record struct {
	ID            int64   `json:"id"             yaml:"id"`
	Dataset       int64   `json:"dataset"        yaml:"dataset"`
	EquipmentName string  `json:"equipment_name" yaml:"equipment_name"`
	Type          string  `json:"type"           yaml:"type"`
	Flowrate      float64 `json:"flowrate"       yaml:"flowrate"`
	Pressure      float64 `json:"pressure"       yaml:"pressure"`
	Temperature   float64 `json:"temperature"    yaml:"temperature"`
}

type Page struct {
	Number int `json:"page"      yaml:"page"`
	Size   int `json:"page_size" yaml:"page_size"`
	Total  int `json:"total"     yaml:"total"`
}

type History struct {
	Datasets []Dataset `json:"datasets" yaml:"datasets"`
	Page     Page      `json:"page"     yaml:"page"`
}

type DatasetDetail struct {
	Records []Record `json:"records" yaml:"records"`
	Summary Summary  `json:"summary" yaml:"summary"`
	Page    Page     `json:"-"       yaml:"page"`
}

// Dashboard is everything the show command prints for one dataset.
type Dashboard struct {
	Dataset Dataset       `json:"dataset" yaml:"dataset"`
	Detail  DatasetDetail `json:"detail"  yaml:"detail"`
}

type Session struct {
	Token       string `json:"token"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}
