package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shandysiswandi/chemvis/internal/equipment/entity"
	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
)

const utf8BOM = "\ufeff"

// table is a parsed upload: the header index and the raw cells of each row.
type table struct {
	index map[string]int
	rows  [][]string
}

func (t table) cell(row []string, column string) string {
	return strings.TrimSpace(row[t.index[column]])
}

func checkExtension(filename string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return pkgerror.NewRejected("invalid file type, only CSV allowed")
	}
	return nil
}

func missingColumnsError() error {
	return pkgerror.NewRejected("missing columns, required: " + strings.Join(entity.RequiredColumns(), ", "))
}

func readTable(ctx context.Context, r io.Reader) (table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table{}, missingColumnsError()
	}
	if err != nil {
		return table{}, readErr(ctx, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	for _, col := range entity.RequiredColumns() {
		if _, ok := index[col]; !ok {
			return table{}, missingColumnsError()
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return table{}, readErr(ctx, err)
		}
		rows = append(rows, record)
	}

	return table{index: index, rows: rows}, nil
}

func readErr(ctx context.Context, err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		slog.WarnContext(ctx, "failed to parse csv upload", "line", perr.Line, "error", perr.Err)
		return pkgerror.NewRejected("malformed csv: " + err.Error())
	}
	return pkgerror.NewServer(fmt.Errorf("read upload: %w", err))
}

// toRecords validates the numeric columns one at a time, so the reported
// column is the first failing one in Flowrate, Pressure, Temperature order.
func toRecords(t table) ([]entity.EquipmentRecord, error) {
	if len(t.rows) == 0 {
		return nil, pkgerror.NewRejected("uploaded file contains no rows")
	}

	numbers := make(map[string][]float64, 3)
	for _, col := range entity.NumericColumns() {
		values := make([]float64, len(t.rows))
		for i, row := range t.rows {
			v, ok := parseReal(t.cell(row, col))
			if !ok {
				return nil, pkgerror.NewRejected(fmt.Sprintf("column %s contains non-numeric values", col))
			}
			values[i] = v
		}
		numbers[col] = values
	}

	records := make([]entity.EquipmentRecord, len(t.rows))
	for i, row := range t.rows {
		records[i] = entity.EquipmentRecord{
			EquipmentName: t.cell(row, entity.ColumnEquipmentName),
			Type:          t.cell(row, entity.ColumnType),
			Flowrate:      numbers[entity.ColumnFlowrate][i],
			Pressure:      numbers[entity.ColumnPressure][i],
			Temperature:   numbers[entity.ColumnTemperature][i],
		}
	}

	return records, nil
}

// parseReal accepts finite decimal or exponent notation. Empty cells, NaN and
// infinities are rejected.
func parseReal(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}
