// devserver/handlers/analytics_handlers.go
package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/devserver/models"
	"portfolio/devserver/store"
	"portfolio/devserver/utils"
)

// AnalyticsRoute keeps the path the site's scripts already post to.
const AnalyticsRoute = "/api/analytics.php"

type AnalyticsHandlers struct {
	AnalyticsStore *store.AnalyticsStore
	Mirror         *store.MultiSink
	logger         *zap.Logger
}

func NewAnalyticsHandlers(s *store.AnalyticsStore, mirror *store.MultiSink, logger *zap.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		AnalyticsStore: s,
		Mirror:         mirror,
		logger:         logger,
	}
}

// TrackEvent stores one event posted by the site's analytics beacon.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Debug("reading analytics payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	// json.Unmarshal rejects trailing bytes after the object.
	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Debug("rejecting analytics payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	stored, err := h.AnalyticsStore.Record(event, store.Visitor{
		UserAgent:      c.GetHeader("User-Agent"),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		RemoteAddr:     c.RemoteIP(),
	})
	if err != nil {
		h.serverError(c, err)
		return
	}

	if h.Mirror != nil {
		h.Mirror.WriteAsync(c.Request.Context(), []models.Event{stored})
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// GetAnalytics answers the visit counter (?counter=1) and the dashboard
// (?range=24h|7d|30d|90d).
func (h *AnalyticsHandlers) GetAnalytics(c *gin.Context) {
	if c.Query("counter") != "" {
		counter, err := h.AnalyticsStore.Counter()
		if err != nil {
			h.serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, counter)
		return
	}

	rangeName := c.DefaultQuery("range", utils.DefaultRange)
	dashboard, err := h.AnalyticsStore.Dashboard(rangeName)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Preflight answers OPTIONS; the CORS middleware has already set the headers.
func (h *AnalyticsHandlers) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *AnalyticsHandlers) serverError(c *gin.Context, err error) {
	h.logger.Error("analytics request failed",
		zap.String("method", c.Request.Method),
		zap.String("query", c.Request.URL.RawQuery),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error: " + err.Error()})
}

// MethodNotAllowed answers a known path hit with an unsupported method,
// listing the methods registered for it on engine.
func MethodNotAllowed(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var allowed []string
		seen := make(map[string]bool)
		for _, route := range engine.Routes() {
			if route.Path == c.Request.URL.Path && !seen[route.Method] {
				seen[route.Method] = true
				allowed = append(allowed, route.Method)
			}
		}
		if len(allowed) == 0 {
			allowed = []string{http.MethodGet}
		}
		sort.SliceStable(allowed, func(i, j int) bool {
			return methodOrder(allowed[i]) < methodOrder(allowed[j])
		})

		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Allow", strings.Join(allowed, ", "))
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

func methodOrder(method string) int {
	switch method {
	case http.MethodGet:
		return 0
	case http.MethodPost:
		return 1
	case http.MethodOptions:
		return 2
	default:
		return 3
	}
}
