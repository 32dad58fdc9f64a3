package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfolio/devserver/models"
	"portfolio/devserver/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var handlerNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newAnalyticsEngine(t *testing.T) (*gin.Engine, *store.AnalyticsStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analytics.json")
	s, err := store.NewAnalyticsStore(path, zap.NewNop(),
		store.WithClock(func() time.Time { return handlerNow }),
		store.WithLocation(time.UTC))
	require.NoError(t, err)

	h := NewAnalyticsHandlers(s, store.NewMultiSink(zap.NewNop(), time.Second), zap.NewNop())
	r := gin.New()
	r.GET(AnalyticsRoute, h.GetAnalytics)
	r.POST(AnalyticsRoute, h.TrackEvent)
	return r, s
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, AnalyticsRoute, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	req.Header.Set("Accept-Language", "pl-PL")
	req.RemoteAddr = "192.168.1.20:51234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTrackEventTwiceSameVisitor(t *testing.T) {
	r, s := newAnalyticsEngine(t)

	for i := 0; i < 2; i++ {
		rec := post(r, `{"event":"page_view","page":"/music.html","is_mobile":true}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	}

	doc, err := s.Read()
	require.NoError(t, err)
	assert.EqualValues(t, 2, doc.TotalVisits)
	bucket := doc.DailyStats["2026-10-18"]
	assert.EqualValues(t, 2, bucket.Pageviews)
	assert.Len(t, bucket.Visitors, 1)
	assert.Equal(t, handlerNow.UnixMilli(), doc.Events[0].Timestamp)
	assert.NotEmpty(t, doc.Events[0].IPHash)
}

func TestTrackEventMalformedBodyDoesNotMutate(t *testing.T) {
	r, s := newAnalyticsEngine(t)
	require.Equal(t, http.StatusOK, post(r, `{"event":"page_view","page":"/"}`).Code)

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	for _, body := range []string{`{"event":`, ``, `not json`, `[1,2]`, `null`, `{"event":"page_view"} this is not json`, `{"event":"page_view"}{"event":"page_view"}`} {
		rec := post(r, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.JSONEq(t, `{"error":"Invalid data"}`, rec.Body.String())
	}

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestTrackEventStoresFalsyFieldsAsSent(t *testing.T) {
	r, s := newAnalyticsEngine(t)
	rec := post(r, `{"event":"page_view","page":"","is_mobile":false,"browser":"","referrer":""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	var doc struct {
		Events []map[string]any `json:"events"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc.Events, 1)
	for _, key := range []string{"event", "page", "is_mobile", "browser", "referrer", "timestamp", "visitor_hash", "ip_hash"} {
		assert.Contains(t, doc.Events[0], key)
	}
	assert.Equal(t, false, doc.Events[0]["is_mobile"])
}

type blockingSink struct {
	release chan struct{}
	mu      sync.Mutex
	got     []models.Event
}

func (s *blockingSink) Name() string { return "blocking" }

func (s *blockingSink) Write(ctx context.Context, events []models.Event) error {
	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, events...)
	return nil
}

func (s *blockingSink) Close() error { return nil }

func TestTrackEventDoesNotWaitForMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.json")
	s, err := store.NewAnalyticsStore(path, zap.NewNop(),
		store.WithClock(func() time.Time { return handlerNow }),
		store.WithLocation(time.UTC))
	require.NoError(t, err)

	sink := &blockingSink{release: make(chan struct{})}
	mirror := store.NewMultiSink(zap.NewNop(), time.Minute, sink)
	h := NewAnalyticsHandlers(s, mirror, zap.NewNop())
	r := gin.New()
	r.POST(AnalyticsRoute, h.TrackEvent)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() { done <- post(r, `{"event":"page_view","page":"/"}`) }()

	select {
	case rec := <-done:
		assert.Equal(t, http.StatusOK, rec.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("POST blocked on the mirror sink")
	}

	close(sink.release)
	require.NoError(t, mirror.Close())
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.got, 1)
	assert.Equal(t, "/", sink.got[0].Page)
}

func TestGetCounter(t *testing.T) {
	r, _ := newAnalyticsEngine(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, post(r, `{"event":"page_view","page":"/"}`).Code)
	}
	require.Equal(t, http.StatusOK, post(r, `{"event":"cv_download"}`).Code)

	rec := get(r, AnalyticsRoute+"?counter=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"visits":3,"formatted":"3"}`, rec.Body.String())
}

func TestGetDashboard(t *testing.T) {
	r, _ := newAnalyticsEngine(t)
	require.Equal(t, http.StatusOK, post(r, `{"event":"page_view","page":"/music.html","is_mobile":true}`).Code)
	require.Equal(t, http.StatusOK, post(r, `{"event":"page_view","page":"/index.html"}`).Code)

	rec := get(r, AnalyticsRoute+"?range=7d")
	require.Equal(t, http.StatusOK, rec.Code)

	var d models.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, 1, d.Summary.TotalVisitors)
	assert.Equal(t, 2, d.Summary.TotalPageViews)
	assert.Equal(t, "50.0%", d.Summary.MobilePercent)
	require.Len(t, d.VisitorsOverTime, 7)
	assert.Equal(t, "2026-10-12", d.VisitorsOverTime[0].Date)
	assert.Equal(t, models.DailyVisitors{Date: "2026-10-18", Visitors: 1}, d.VisitorsOverTime[6])
	assert.Len(t, d.TopPages, 2)
	assert.EqualValues(t, 2, d.TotalVisits)
	assert.Equal(t, "real_data", d.Status)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"summary", "visitorsOverTime", "topPages", "topCountries", "browsers", "musicPlays", "totalVisits", "status"} {
		assert.Contains(t, raw, key)
	}
}

func TestGetDashboardDefaultsToSevenDays(t *testing.T) {
	r, _ := newAnalyticsEngine(t)
	rec := get(r, AnalyticsRoute)
	require.Equal(t, http.StatusOK, rec.Code)

	var d models.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Len(t, d.VisitorsOverTime, 7)
}

func TestGetServerErrorEchoesMessage(t *testing.T) {
	r, s := newAnalyticsEngine(t)
	require.NoError(t, os.Remove(s.Path()))
	require.NoError(t, os.Mkdir(s.Path(), 0o755))

	rec := get(r, AnalyticsRoute+"?range=30d")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["error"], "Server error: "), body["error"])
}
