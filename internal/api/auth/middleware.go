package auth

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/api/models"
)

// Session keys of the cookie session.
const (
	SessionKeyFrom = "from"
)

// Provide installs dir into the context of every request.
func Provide(dir *account.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(account.NewContext(c.Request.Context(), dir))
		c.Next()
	}
}

// RequireSession aborts requests without an active session.
// Page requests are redirected to /login and the requested location is
// remembered, API requests get a 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := account.FromContext(c.Request.Context()).CurrentSession()
		if identity != nil {
			c.Set("user", identity)
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
				OK:      false,
				Message: account.ErrNotAuthenticated.Error(),
			})
			return
		}

		session := sessions.Default(c)
		session.Set(SessionKeyFrom, c.Request.RequestURI)
		if err := session.Save(); err != nil {
			log.Error("Failed to save session", "error", err)
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// PopFrom returns and forgets the remembered location, defaulting to "/".
func PopFrom(c *gin.Context) string {
	session := sessions.Default(c)
	from, _ := session.Get(SessionKeyFrom).(string)
	if from == "" {
		return "/"
	}
	session.Delete(SessionKeyFrom)
	if err := session.Save(); err != nil {
		log.Error("Failed to save session", "error", err)
	}
	return from
}

// PeekFrom returns the remembered location without forgetting it.
func PeekFrom(c *gin.Context) string {
	from, _ := sessions.Default(c).Get(SessionKeyFrom).(string)
	return from
}
