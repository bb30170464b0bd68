package entity

// EquipmentRecord is one row of an uploaded file.
type EquipmentRecord struct {
	ID            int64
	DatasetID     int64
	EquipmentName string
	Type          string
	Flowrate      float64
	Pressure      float64
	Temperature   float64
}
