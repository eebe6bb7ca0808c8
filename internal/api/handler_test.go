package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"uptime-report-backend/internal/metrics"
	"uptime-report-backend/internal/model"
	"uptime-report-backend/internal/report"
	"uptime-report-backend/internal/uptime"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeReports struct {
	start    report.StartResult
	startErr error
	lookups  map[string]report.Lookup
	running  string
}

func (f *fakeReports) Start(context.Context) (report.StartResult, error) {
	return f.start, f.startErr
}

func (f *fakeReports) Get(_ context.Context, id string) (report.Lookup, error) {
	if f.running != "" {
		return report.Lookup{Status: report.LookupRunning, ReportID: f.running}, nil
	}
	if l, ok := f.lookups[id]; ok {
		return l, nil
	}
	return report.Lookup{Status: report.LookupNotFound, ReportID: id}, nil
}

type fakeSites struct {
	calls int
	rows  map[string]uptime.Row
}

func (f *fakeSites) EstimateSite(_ context.Context, id string) (uptime.Row, error) {
	f.calls++
	row, ok := f.rows[id]
	if !ok {
		return uptime.Row{}, report.ErrUnknownSite
	}
	return row, nil
}

type fakeSubs struct {
	saved   []model.PushSubscription
	deleted [][2]string
	err     error
}

func (f *fakeSubs) SaveSubscription(_ context.Context, sub model.PushSubscription) error {
	f.saved = append(f.saved, sub)
	return f.err
}

func (f *fakeSubs) DeleteSubscription(_ context.Context, endpoint, reportID string) error {
	f.deleted = append(f.deleted, [2]string{endpoint, reportID})
	return f.err
}

func (f *fakeSubs) SubscriptionsForEndpoint(_ context.Context, endpoint string) ([]model.PushSubscription, error) {
	var out []model.PushSubscription
	for _, s := range f.saved {
		if s.Endpoint == endpoint {
			out = append(out, s)
		}
	}
	return out, f.err
}

type testEnv struct {
	router  *gin.Engine
	reports *fakeReports
	sites   *fakeSites
	subs    *fakeSubs
}

func newTestEnv(opts *webpush.Options) *testEnv {
	env := &testEnv{
		reports: &fakeReports{lookups: map[string]report.Lookup{}},
		sites:   &fakeSites{rows: map[string]uptime.Row{}},
		subs:    &fakeSubs{},
	}
	h := NewHandler(env.reports, env.sites, env.subs, opts)
	env.router = NewRouter(h, RouterOptions{
		RateLimit: rate.Inf,
		Burst:     1,
		CacheTTL:  time.Minute,
		Metrics:   metrics.New(),
	})
	return env
}

func (e *testEnv) do(method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestTriggerReport(t *testing.T) {
	testCases := []struct {
		name     string
		start    report.StartResult
		err      error
		wantCode int
		wantBody string
	}{
		{"complete", report.StartResult{ReportID: "r1", Rows: 3}, nil, http.StatusOK, `{"message":"Complete","report_id":"r1"}`},
		{"running", report.StartResult{ReportID: "r0", AlreadyRunning: true}, nil, http.StatusBadRequest, `{"message":"Running","report_id":"r0"}`},
		{"failed", report.StartResult{}, errors.New("boom"), http.StatusInternalServerError, `{"error":"report generation failed"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(nil)
			env.reports.start, env.reports.startErr = tc.start, tc.err
			for _, method := range []string{http.MethodGet, http.MethodPost} {
				w := env.do(method, "/api/trigger-report", "")
				assert.Equal(t, tc.wantCode, w.Code)
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			}
		})
	}
}

func TestGetReport_CSV(t *testing.T) {
	env := newTestEnv(nil)
	env.reports.lookups["r1"] = report.Lookup{
		Status:   report.LookupComplete,
		ReportID: "r1",
		Rows: []uptime.Row{
			uptime.NewRow("s1", uptime.Uptime{LastHourMinutes: 30, LastDayHours: 12.5, LastWeekHours: 100}),
			uptime.NewRow("s2", uptime.Uptime{}),
		},
	}

	want := "store_id,uptime_last_hour,downtime_last_hour,uptime_last_day,downtime_last_day,uptime_last_week,downtime_last_week\n" +
		"s1,30,30,12.5,11.5,100,68\n" +
		"s2,0,60,0,24,0,168\n"

	for _, w := range []*httptest.ResponseRecorder{
		env.do(http.MethodPost, "/api/get-report", `{"report_id":"r1"}`),
		env.do(http.MethodGet, "/api/reports/r1", ""),
	} {
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
		assert.Equal(t, "attachment; filename=report-r1.csv", w.Header().Get("Content-Disposition"))
		assert.Equal(t, want, w.Body.String())
	}
}

func TestGetReport_NotFoundAndRunning(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPost, "/api/get-report", `{"report_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"invalid report id"}`, w.Body.String())

	env.reports.running = "r9"
	w = env.do(http.MethodGet, "/api/reports/nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Running","report_id":"r9"}`, w.Body.String())

	w = env.do(http.MethodPost, "/api/get-report", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestGetSiteUptime(t *testing.T) {
	env := newTestEnv(nil)
	env.sites.rows["s1"] = uptime.NewRow("s1", uptime.Uptime{LastHourMinutes: 60, LastDayHours: 24, LastWeekHours: 168})

	w := env.do(http.MethodGet, "/api/sites/s1/uptime", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"store_id":"s1","uptime_last_hour":60,"downtime_last_hour":0,
		"uptime_last_day":24,"downtime_last_day":0,"uptime_last_week":168,"downtime_last_week":0}`, w.Body.String())

	env.do(http.MethodGet, "/api/sites/s1/uptime", "")
	assert.Equal(t, 1, env.sites.calls, "second read is served from cache")

	w = env.do(http.MethodGet, "/api/sites/unknown/uptime", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPut, "/api/subscriptions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	w = env.do(http.MethodPut, "/api/subscriptions",
		`{"endpoint":"https://push.example.com/a","p256dh":"k","auth":"a","report_id":"r1"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, env.subs.saved, 1)
	assert.Equal(t, "r1", env.subs.saved[0].ReportID)

	w = env.do(http.MethodGet, "/api/subscriptions?endpoint=https://push.example.com/a", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"report_ids":["r1"]}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/subscriptions?endpoint=https://push.example.com/zzz", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/subscriptions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/api/subscriptions", `{"endpoint":"https://push.example.com/a"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, [][2]string{{"https://push.example.com/a", ""}}, env.subs.deleted)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	w := newTestEnv(nil).do(http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = newTestEnv(&webpush.Options{VAPIDPublicKey: "pub"}).do(http.MethodGet, "/api/vapid_public_key", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"pub"}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(nil)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", "").Code)

	w := env.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
