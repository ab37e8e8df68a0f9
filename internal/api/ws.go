package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"clubcorra/internal/middleware"
	"clubcorra/internal/notify"
)

// EventsHandler upgrades to a WebSocket streaming notification events.
// Admin sockets get every event; user sockets get only their own.
func EventsHandler(hub *notify.Hub, admin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.UserID(c)
		// The upgrader has already answered the request when this fails
		if err := hub.ServeWS(c.Writer, c.Request, admin, id); err != nil {
			logrus.WithFields(logrus.Fields{
				"subject_id": id,
				"admin":      admin,
				"error":      err.Error(),
			}).Warn("WebSocket upgrade failed")
		}
	}
}
