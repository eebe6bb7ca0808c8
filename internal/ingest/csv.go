// Package ingest loads the store status, timezone and business-hours data sets
// from CSV exports.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"uptime-report-backend/internal/model"
	"uptime-report-backend/internal/parse"
)

const batchSize = 500

// Result counts the outcome of one import.
type Result struct {
	Total   int
	Success int
	Failed  int
	Errors  []string
}

// Sink receives validated rows.
type Sink interface {
	InsertObservations(ctx context.Context, rows []model.StoreStatus) error
	UpsertTimezones(ctx context.Context, rows []model.StoreTimezone) error
	InsertBusinessHours(ctx context.Context, rows []model.BusinessHours) error
}

// Importer reads CSV streams into a Sink.
type Importer struct {
	sink Sink
}

// NewImporter creates an importer writing to sink.
func NewImporter(sink Sink) *Importer {
	return &Importer{sink: sink}
}

// record gives access to a CSV line by column name.
type record struct {
	fields  []string
	columns map[string]int
}

func (r record) get(col string) string {
	if idx, ok := r.columns[col]; ok && idx < len(r.fields) {
		return strings.TrimSpace(r.fields[idx])
	}
	return ""
}

// ImportObservations loads store_id,status,timestamp_utc rows. Values are
// stored raw; only an empty store id rejects a line.
func (im *Importer) ImportObservations(ctx context.Context, r io.Reader) (*Result, error) {
	return readCSV(ctx, r, []string{"store_id", "status", "timestamp_utc"}, nil,
		func(rec record) (model.StoreStatus, error) {
			id := rec.get("store_id")
			if id == "" {
				return model.StoreStatus{}, errors.New("store_id is empty")
			}
			return model.StoreStatus{StoreID: id, Status: rec.get("status"), TimestampUTC: rec.get("timestamp_utc")}, nil
		}, im.sink.InsertObservations)
}

// ImportTimezones loads store_id,timezone_str rows.
func (im *Importer) ImportTimezones(ctx context.Context, r io.Reader) (*Result, error) {
	return readCSV(ctx, r, []string{"store_id", "timezone_str"}, nil,
		func(rec record) (model.StoreTimezone, error) {
			id, tz := rec.get("store_id"), rec.get("timezone_str")
			if id == "" || tz == "" {
				return model.StoreTimezone{}, errors.New("store_id and timezone_str are required")
			}
			return model.StoreTimezone{StoreID: id, TimezoneStr: tz}, nil
		}, im.sink.UpsertTimezones)
}

// ImportBusinessHours loads store_id,day,start_time_local,end_time_local rows.
// The weekday column may also be named dayOfWeek.
func (im *Importer) ImportBusinessHours(ctx context.Context, r io.Reader) (*Result, error) {
	aliases := map[string]string{"dayofweek": "day"}
	return readCSV(ctx, r, []string{"store_id", "day", "start_time_local", "end_time_local"}, aliases,
		func(rec record) (model.BusinessHours, error) {
			id := rec.get("store_id")
			if id == "" {
				return model.BusinessHours{}, errors.New("store_id is empty")
			}
			day, err := parse.Weekday(rec.get("day"))
			if err != nil {
				return model.BusinessHours{}, err
			}
			start, end := rec.get("start_time_local"), rec.get("end_time_local")
			if _, err := parse.Clock(start); err != nil {
				return model.BusinessHours{}, err
			}
			if _, err := parse.Clock(end); err != nil {
				return model.BusinessHours{}, err
			}
			return model.BusinessHours{
				StoreID:        id,
				Day:            strconv.Itoa(day),
				StartTimeLocal: start,
				EndTimeLocal:   end,
			}, nil
		}, im.sink.InsertBusinessHours)
}

func readCSV[T any](
	ctx context.Context,
	stream io.Reader,
	required []string,
	aliases map[string]string,
	parseRecord func(record) (T, error),
	flush func(context.Context, []T) error,
) (*Result, error) {
	reader := csv.NewReader(stream)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := &Result{}

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		columns[name] = i
	}
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("missing required csv header: %s", col)
		}
	}

	buffer := make([]T, 0, batchSize)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.Total++
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("csv read error at line %d: %v", result.Total+1, err))
			continue
		}

		row, err := parseRecord(record{fields: fields, columns: columns})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", result.Total+1, err))
			continue
		}
		buffer = append(buffer, row)
		result.Success++

		if len(buffer) >= batchSize {
			if err := flush(ctx, buffer); err != nil {
				return result, err
			}
			buffer = buffer[:0]
		}
	}

	if len(buffer) > 0 {
		if err := flush(ctx, buffer); err != nil {
			return result, err
		}
	}
	return result, nil
}
