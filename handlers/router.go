package handlers

import (
	"net/http"

	"codingcats/api/middleware"
	"codingcats/api/utils"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Analytics     *AnalyticsHandlers
	Auth          *AuthHandlers // nil when dashboard accounts are disabled
	Cards         *CardHandlers
	APIKey        string
	JWT           *utils.JWTManager
	AllowedOrigin string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORSMiddleware(cfg.AllowedOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/track", cfg.Analytics.TrackPageView)
		api.GET("/identity", cfg.Analytics.GetIdentity)
		api.GET("/cards/ws", cfg.Cards.Board)

		if cfg.Auth != nil {
			api.POST("/signup", cfg.Auth.Signup)
			api.POST("/login", cfg.Auth.Login)
			api.POST("/logout", cfg.Auth.Logout)
		} else {
			accountsDisabled := func(c *gin.Context) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Dashboard accounts are not configured"})
			}
			api.POST("/signup", accountsDisabled)
			api.POST("/login", accountsDisabled)
			api.POST("/logout", accountsDisabled)
		}

		stats := api.Group("/stats")
		stats.Use(middleware.AuthRequired(cfg.APIKey, cfg.JWT))
		{
			stats.GET("/summary", cfg.Analytics.GetSummary)
			stats.GET("/unique-visitors", cfg.Analytics.GetUniqueVisitors)
			stats.GET("/page-views", cfg.Analytics.GetTotalPageViews)
			stats.GET("/devices", cfg.Analytics.GetVisitorsByDevice)
			stats.GET("/browsers", cfg.Analytics.GetVisitorsByBrowser)
			stats.GET("/referrers", cfg.Analytics.GetVisitorsByReferrer)
			stats.GET("/countries", cfg.Analytics.GetVisitorsByCountry)
			stats.GET("/top-pages", cfg.Analytics.GetTopPages)
			stats.GET("/unique-users", cfg.Analytics.GetUniqueVisitorsOverTime)
			stats.GET("/page-views-over-time", cfg.Analytics.GetPageViewsOverTime)
			stats.GET("/top-paths", cfg.Analytics.GetTopPagePaths)
		}
	}
	return r
}
