// devserver/store/analytics_store.go
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"portfolio/devserver/models"
	"portfolio/devserver/utils"
)

const dateLayout = "2006-01-02"

// AnalyticsStore keeps every analytics event in a single JSON document that
// is read and rewritten whole on each request. The mutex only serialises
// requests inside this process; another process writing the same file can
// still lose updates.
type AnalyticsStore struct {
	path   string
	now    func() time.Time
	loc    *time.Location
	logger *zap.Logger

	mu sync.Mutex
}

type Option func(*AnalyticsStore)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *AnalyticsStore) { s.now = now }
}

// WithLocation sets the zone whose calendar date rotates visitor hashes.
func WithLocation(loc *time.Location) Option {
	return func(s *AnalyticsStore) { s.loc = loc }
}

// Visitor carries the request attributes the hashes are derived from.
type Visitor struct {
	UserAgent      string
	AcceptLanguage string
	RemoteAddr     string
}

// NewAnalyticsStore creates the document at path if it does not exist yet.
func NewAnalyticsStore(path string, logger *zap.Logger, opts ...Option) (*AnalyticsStore, error) {
	s := &AnalyticsStore{
		path:   path,
		now:    time.Now,
		loc:    time.Local,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating analytics directory: %w", err)
			}
		}
		if err := s.write(models.NewAnalyticsDocument()); err != nil {
			return nil, err
		}
		logger.Info("initialized analytics store", zap.String("path", path))
	} else if err != nil {
		return nil, fmt.Errorf("accessing analytics file %s: %w", path, err)
	}

	return s, nil
}

func (s *AnalyticsStore) Path() string { return s.path }

// Now returns the store clock's current time.
func (s *AnalyticsStore) Now() time.Time { return s.now() }

// Read returns the current document. A missing or unparsable file reads as
// an empty document; other IO failures are returned.
func (s *AnalyticsStore) Read() (*models.AnalyticsDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *AnalyticsStore) read() (*models.AnalyticsDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.NewAnalyticsDocument(), nil
		}
		return nil, fmt.Errorf("reading analytics file: %w", err)
	}

	doc := models.NewAnalyticsDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("analytics file is corrupt, starting from an empty document",
			zap.String("path", s.path), zap.Error(err))
		return models.NewAnalyticsDocument(), nil
	}
	doc.Normalize()
	return doc, nil
}

func (s *AnalyticsStore) write(doc *models.AnalyticsDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding analytics document: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing analytics file: %w", err)
	}
	return nil
}

// Record stamps the event with the server time and the daily hashes, appends
// it, and for page views bumps totalVisits and today's bucket. The stored
// event is returned.
func (s *AnalyticsStore) Record(event models.Event, visitor Visitor) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return models.Event{}, err
	}

	now := s.now()
	local := now.In(s.loc)
	event.Timestamp = now.UnixMilli()
	event.VisitorHash = utils.VisitorHash(visitor.UserAgent, visitor.AcceptLanguage, local)
	event.IPHash = utils.IPHash(visitor.RemoteAddr, local)

	doc.Events = append(doc.Events, event)

	if event.IsPageView() {
		doc.TotalVisits++

		today := now.UTC().Format(dateLayout)
		bucket := doc.DailyStats[today]
		bucket.Visitors = addVisitor(bucket.Visitors, event.VisitorHash)
		bucket.Pageviews++
		doc.DailyStats[today] = bucket
	}

	if err := s.write(doc); err != nil {
		return models.Event{}, err
	}

	s.logger.Debug("recorded analytics event",
		zap.String("event", event.Event),
		zap.String("page", event.Page),
		zap.Int64("total_visits", doc.TotalVisits))
	return event, nil
}

// addVisitor returns visitors with hash appended, dropping duplicates that a
// hand-edited bucket may carry.
func addVisitor(visitors []string, hash string) []string {
	seen := make(map[string]struct{}, len(visitors)+1)
	out := make([]string, 0, len(visitors)+1)
	for _, v := range append(visitors, hash) {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Counter returns the all-time visit counter.
func (s *AnalyticsStore) Counter() (models.VisitCounter, error) {
	doc, err := s.Read()
	if err != nil {
		return models.VisitCounter{}, err
	}
	return models.VisitCounter{
		Visits:    doc.TotalVisits,
		Formatted: utils.FormatCount(doc.TotalVisits),
	}, nil
}

// Dashboard aggregates page views for the trailing window named by rangeName.
func (s *AnalyticsStore) Dashboard(rangeName string) (*models.Dashboard, error) {
	doc, err := s.Read()
	if err != nil {
		return nil, err
	}
	return BuildDashboard(doc, rangeName, s.now()), nil
}
