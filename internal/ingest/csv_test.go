package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uptime-report-backend/internal/model"
)

type memSink struct {
	observations []model.StoreStatus
	timezones    []model.StoreTimezone
	hours        []model.BusinessHours
	batches      int
	err          error
}

func (m *memSink) InsertObservations(_ context.Context, rows []model.StoreStatus) error {
	m.batches++
	m.observations = append(m.observations, rows...)
	return m.err
}

func (m *memSink) UpsertTimezones(_ context.Context, rows []model.StoreTimezone) error {
	m.batches++
	m.timezones = append(m.timezones, rows...)
	return m.err
}

func (m *memSink) InsertBusinessHours(_ context.Context, rows []model.BusinessHours) error {
	m.batches++
	m.hours = append(m.hours, rows...)
	return m.err
}

func TestImportObservations(t *testing.T) {
	sink := &memSink{}
	in := "store_id,status,timestamp_utc\n" +
		"s1,active,2023-01-22 12:09:39.388884 UTC\n" +
		",active,2023-01-22 12:09:39.388884 UTC\n" +
		"s2,inactive,not a time\n"

	res, err := NewImporter(sink).ImportObservations(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"line 3: store_id is empty"}, res.Errors)

	require.Len(t, sink.observations, 2)
	assert.Equal(t, "not a time", sink.observations[1].TimestampUTC, "timestamps are stored raw")
}

func TestImportObservations_Batches(t *testing.T) {
	var b strings.Builder
	b.WriteString("store_id,status,timestamp_utc\n")
	for i := 0; i < batchSize*2+1; i++ {
		fmt.Fprintf(&b, "s%d,active,2023-01-22 12:00:00 UTC\n", i)
	}
	sink := &memSink{}

	res, err := NewImporter(sink).ImportObservations(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Equal(t, batchSize*2+1, res.Success)
	assert.Equal(t, 3, sink.batches)
	assert.Len(t, sink.observations, batchSize*2+1)
}

func TestImportTimezones(t *testing.T) {
	sink := &memSink{}
	in := "Store_ID , timezone_str\ns1,America/New_York\ns2,\n"

	res, err := NewImporter(sink).ImportTimezones(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []model.StoreTimezone{{StoreID: "s1", TimezoneStr: "America/New_York"}}, sink.timezones)
}

func TestImportBusinessHours(t *testing.T) {
	testCases := []struct {
		name    string
		line    string
		wantErr bool
	}{
		{"valid", "s1,0,09:00:00,17:00:00", false},
		{"day out of range", "s1,7,09:00:00,17:00:00", true},
		{"bad start", "s1,1,9am,17:00:00", true},
		{"bad end", "s1,1,09:00:00,25:00:00", true},
		{"no store", ",1,09:00:00,17:00:00", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &memSink{}
			in := "store_id,dayOfWeek,start_time_local,end_time_local\n" + tc.line + "\n"
			res, err := NewImporter(sink).ImportBusinessHours(context.Background(), strings.NewReader(in))
			require.NoError(t, err)
			if tc.wantErr {
				assert.Equal(t, 1, res.Failed)
				assert.Empty(t, sink.hours)
			} else {
				assert.Equal(t, 1, res.Success)
				assert.Equal(t, []model.BusinessHours{{StoreID: "s1", Day: "0", StartTimeLocal: "09:00:00", EndTimeLocal: "17:00:00"}}, sink.hours)
			}
		})
	}
}

func TestImport_Errors(t *testing.T) {
	im := NewImporter(&memSink{})

	_, err := im.ImportTimezones(context.Background(), strings.NewReader("store_id,tz\ns1,UTC\n"))
	assert.EqualError(t, err, "missing required csv header: timezone_str")

	res, err := im.ImportTimezones(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)

	failing := NewImporter(&memSink{err: errors.New("disk full")})
	_, err = failing.ImportTimezones(context.Background(), strings.NewReader("store_id,timezone_str\ns1,UTC\n"))
	assert.EqualError(t, err, "disk full")
}
