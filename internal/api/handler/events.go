package handler

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/api/models"
	"github.com/jon4hz/bixblion/internal/appearance"
)

type event struct {
	name string
	data any
}

// Events streams session and theme changes as server-sent events.
func (h *Handler) Events(c *gin.Context) {
	events := make(chan event, 16)
	publish := func(e event) {
		select {
		case events <- e:
		default:
			log.Warn("Dropping event for slow client", "event", e.name)
		}
	}

	unsubscribeSession := account.FromContext(c.Request.Context()).Subscribe(func(identity *account.Identity) {
		publish(event{name: "session", data: models.UserResponse{
			OK:   identity != nil,
			User: models.ToUser(identity, h.config.Gravatar),
		}})
	})
	defer unsubscribeSession()

	unsubscribeTheme := h.engine.Appearance().Subscribe(func(theme appearance.Theme) {
		publish(event{name: "theme", data: gin.H{"theme": theme}})
	})
	defer unsubscribeTheme()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case e := <-events:
			c.SSEvent(e.name, e.data)
			return true
		}
	})
}
