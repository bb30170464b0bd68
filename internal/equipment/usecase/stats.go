package usecase

import (
	"math"

	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
)

// summarize computes the dataset aggregates. records must not be empty.
func summarize(records []entity.EquipmentRecord) entity.Summary {
	dist := make(map[string]int)
	for _, rec := range records {
		dist[rec.Type]++
	}

	return entity.Summary{
		Count:            len(records),
		AvgFlowrate:      mean(records, func(r entity.EquipmentRecord) float64 { return r.Flowrate }),
		AvgPressure:      mean(records, func(r entity.EquipmentRecord) float64 { return r.Pressure }),
		AvgTemperature:   mean(records, func(r entity.EquipmentRecord) float64 { return r.Temperature }),
		TypeDistribution: dist,
	}
}

// mean stays finite for any finite inputs: when the plain sum overflows,
// each value is divided by n before it is added.
func mean(records []entity.EquipmentRecord, field func(entity.EquipmentRecord) float64) float64 {
	n := float64(len(records))

	var sum float64
	for _, rec := range records {
		sum += field(rec)
	}
	if !math.IsInf(sum, 0) {
		return sum / n
	}

	var scaled float64
	for _, rec := range records {
		scaled += field(rec) / n
	}
	return scaled
}
