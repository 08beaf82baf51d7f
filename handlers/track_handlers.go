// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"codingcats/api/analytics"
	"codingcats/api/models"
	"codingcats/api/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// VisitWarehouse is the optional analytical store every visit is mirrored into.
type VisitWarehouse interface {
	analytics.Sink
	GetUniqueVisitorsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error)
	GetPageViewsOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error)
	GetTopPagePaths(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopPathResult, error)
}

type AnalyticsHandlers struct {
	LogStore     analytics.Store
	Warehouse    VisitWarehouse
	Geo          analytics.CountryResolver
	CookieSecure bool

	reader *analytics.Tracker
}

func NewAnalyticsHandlers(logStore analytics.Store, warehouse VisitWarehouse, geo analytics.CountryResolver, cookieSecure bool) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		LogStore:     logStore,
		Warehouse:    warehouse,
		Geo:          geo,
		CookieSecure: cookieSecure,
		reader:       analytics.NewTracker(logStore, logStore),
	}
}

// tracker keeps visitor identifiers in the client's cookies and the visit log in LogStore.
func (h *AnalyticsHandlers) tracker(c *gin.Context, env analytics.Environment) *analytics.Tracker {
	opts := []analytics.Option{
		analytics.WithLogStore(h.LogStore),
		analytics.WithEnvironment(env),
	}
	if h.Warehouse != nil {
		opts = append(opts, analytics.WithSink(h.Warehouse))
	}
	if h.Geo != nil {
		opts = append(opts, analytics.WithCountryResolver(h.Geo))
	}
	return analytics.NewTracker(
		utils.NewCookieStore(c, utils.DurableScope, h.CookieSecure),
		utils.NewCookieStore(c, utils.SessionScope, h.CookieSecure),
		opts...,
	)
}

func (h *AnalyticsHandlers) TrackPageView(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = primaryLanguage(c.GetHeader("Accept-Language"))
	}
	env := analytics.Environment{
		UserAgent:    c.Request.UserAgent(),
		ScreenWidth:  req.ScreenWidth,
		ScreenHeight: req.ScreenHeight,
		Language:     language,
		Referrer:     req.Referrer,
		ClientIP:     c.ClientIP(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	record, err := h.tracker(c, env).TrackPageView(ctx, req.Path)
	if err != nil {
		log.Error().Err(err).Str("path", req.Path).Msg("Error recording page view")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record page view"})
		return
	}

	c.JSON(http.StatusAccepted, record)
}

func (h *AnalyticsHandlers) GetIdentity(c *gin.Context) {
	identity, err := h.tracker(c, analytics.Environment{}).ResolveIdentity(c.Request.Context())
	if err != nil {
		log.Warn().Err(err).Msg("Visitor identity not persisted")
	}
	c.JSON(http.StatusOK, identity)
}

func (h *AnalyticsHandlers) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.reader.Summary(c.Request.Context()))
}

func (h *AnalyticsHandlers) GetUniqueVisitors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"uniqueVisitors": h.reader.UniqueVisitors(c.Request.Context())})
}

func (h *AnalyticsHandlers) GetTotalPageViews(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"totalPageViews": h.reader.TotalPageViews(c.Request.Context())})
}

func (h *AnalyticsHandlers) GetVisitorsByDevice(c *gin.Context) {
	c.JSON(http.StatusOK, h.reader.VisitorsByDevice(c.Request.Context()))
}

func (h *AnalyticsHandlers) GetVisitorsByBrowser(c *gin.Context) {
	c.JSON(http.StatusOK, h.reader.VisitorsByBrowser(c.Request.Context()))
}

func (h *AnalyticsHandlers) GetVisitorsByReferrer(c *gin.Context) {
	c.JSON(http.StatusOK, h.reader.VisitorsByReferrer(c.Request.Context()))
}

func (h *AnalyticsHandlers) GetVisitorsByCountry(c *gin.Context) {
	c.JSON(http.StatusOK, h.reader.VisitorsByCountry(c.Request.Context()))
}

func (h *AnalyticsHandlers) GetTopPages(c *gin.Context) {
	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.reader.TopPages(c.Request.Context(), int(limit)))
}

func (h *AnalyticsHandlers) GetUniqueVisitorsOverTime(c *gin.Context) {
	h.countOverTime(c, "unique visitors", func(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error) {
		return h.Warehouse.GetUniqueVisitorsOverTime(ctx, interval, start, end)
	})
}

func (h *AnalyticsHandlers) GetPageViewsOverTime(c *gin.Context) {
	h.countOverTime(c, "page views", func(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error) {
		return h.Warehouse.GetPageViewsOverTime(ctx, interval, start, end)
	})
}

func (h *AnalyticsHandlers) countOverTime(c *gin.Context, what string, query func(context.Context, string, time.Time, time.Time) ([]models.CountByTime, error)) {
	if h.Warehouse == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Time series statistics are not configured"})
		return
	}

	interval := c.Query("interval")
	if !utils.IsValidInterval(interval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter is required (e.g., 'Day', 'Hour')"})
		return
	}

	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), 7*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := query(ctx, interval, start, end)
	if err != nil {
		log.Error().Err(err).Str("interval", interval).Msgf("Error getting %s over time", what)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve " + what + " statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetTopPagePaths(c *gin.Context) {
	if h.Warehouse == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Time series statistics are not configured"})
		return
	}

	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), 7*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Warehouse.GetTopPagePaths(ctx, start, end, limit)
	if err != nil {
		log.Error().Err(err).Msg("Error getting top page paths")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top page paths statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}

const maxLimit = 1000

// parseLimit reads ?limit=, defaulting to 10 and capping at maxLimit.
func parseLimit(c *gin.Context) (uint64, bool) {
	limitParam := c.Query("limit")
	if limitParam == "" {
		return 10, true
	}
	limit, err := strconv.ParseUint(limitParam, 10, 64)
	if err != nil || limit == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
		return 0, false
	}
	return min(limit, maxLimit), true
}

// primaryLanguage returns the first tag of an Accept-Language header.
func primaryLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}
