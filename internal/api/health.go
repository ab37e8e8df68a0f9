package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports whether the database answers
func HealthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// LivenessHandler answers as long as the process serves HTTP
func LivenessHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}
