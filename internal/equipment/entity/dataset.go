package entity

import "time"

// Dataset is one uploaded CSV file and the statistics computed from it.
// It is never modified after creation.
type Dataset struct {
	ID         int64
	Filename   string
	UploadedAt time.Time
	Summary    Summary
}

// Summary holds the aggregates computed once at ingestion.
type Summary struct {
	Count            int            `json:"count"`
	AvgFlowrate      float64        `json:"avg_flowrate"`
	AvgPressure      float64        `json:"avg_pressure"`
	AvgTemperature   float64        `json:"avg_temperature"`
	TypeDistribution map[string]int `json:"type_distribution"`
}
