package entity

// Column names required in the CSV header, matched exactly.
const (
	ColumnEquipmentName = "Equipment Name"
	ColumnType          = "Type"
	ColumnFlowrate      = "Flowrate"
	ColumnPressure      = "Pressure"
	ColumnTemperature   = "Temperature"
)

// RequiredColumns lists the header in the order it is reported to callers.
func RequiredColumns() []string {
	return []string{ColumnEquipmentName, ColumnType, ColumnFlowrate, ColumnPressure, ColumnTemperature}
}

// NumericColumns lists the columns validated as real numbers, in validation order.
func NumericColumns() []string {
	return []string{ColumnFlowrate, ColumnPressure, ColumnTemperature}
}
