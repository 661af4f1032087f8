package dashboard

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// Pages.
	router.GET("/", handleIndex(db))
	router.GET("/tasks", handleTaskList(db))
	router.GET("/clients/:id", handleClientDetail(db))
	router.GET("/runs", handleRuns(db))

	// Partials, refreshed in place by the layout's poll script.
	router.GET("/partials/overview", handlePartialOverview(db))
	router.GET("/partials/overdue", handlePartialOverdue(db))
	router.GET("/partials/runs", handlePartialRuns(db))

	// JSON + SSE endpoints.
	router.GET("/api/summary", handleSummary(db))
	router.GET("/api/events", handleSSE(db))
}

func handleSummary(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		c.JSON(http.StatusOK, gin.H{
			"counts": Overview(db, now),
			"runs":   RecentRuns(db, 5),
		})
	}
}

// dashboardData gathers everything the index page renders.
func dashboardData(db *gorm.DB) gin.H {
	now := time.Now()
	return gin.H{
		"page":     "dashboard",
		"Counts":   Overview(db, now),
		"Overdue":  OverdueTasks(db, now, 20),
		"Upcoming": UpcomingTasks(db, now, 7, 20),
		"Runs":     RecentRuns(db, 5),
	}
}

func handleIndex(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "layout.html", dashboardData(db))
	}
}

func handleTaskList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := TaskFilters{
			Status:     c.Query("status"),
			TaskType:   c.Query("type"),
			ClientID:   c.Query("client"),
			Unassigned: c.Query("unassigned") == "1",
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":    "tasks",
			"Result":  TaskList(db, filters, time.Now()),
			"Filters": filters,
		})
	}
}

func handleClientDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := GetClientDetail(db, c.Param("id"), time.Now())
		if err != nil {
			c.HTML(http.StatusNotFound, "layout.html", gin.H{
				"page":  "not-found",
				"Error": "client not found",
			})
			return
		}
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page":   "client",
			"Client": detail,
		})
	}
}

func handleRuns(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "layout.html", gin.H{
			"page": "runs",
			"Runs": RecentRuns(db, 50),
		})
	}
}

func handlePartialOverview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "partial_overview.html", gin.H{
			"Counts": Overview(db, time.Now()),
		})
	}
}

func handlePartialOverdue(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "partial_overdue.html", gin.H{
			"Overdue": OverdueTasks(db, time.Now(), 20),
		})
	}
}

func handlePartialRuns(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "partial_runs.html", gin.H{
			"Runs": RecentRuns(db, 5),
		})
	}
}
