package middleware

import (
	"net/http"

	"food_marketplace/internal/guard"
	"food_marketplace/internal/model"
	"food_marketplace/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionKey is where the guarded handlers find the session snapshot
const SessionKey = "session"

// SessionReader is the part of session.Store the route guard reads
type SessionReader interface {
	Snapshot() session.Session
}

// RouteGuardMiddleware applies guard.Decide to every screen request. requiredRoles restricts
// the screens it is attached to. Redirects use 302 so the screen is replaced, not stacked.
func RouteGuardMiddleware(store SessionReader, cfg guard.Config, requiredRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := store.Snapshot()
		d := guard.Decide(c.Request.URL.Path, snap, cfg, requiredRoles...)

		switch d.Action {
		case guard.Pending:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusOK, gin.H{"screen": "loading"})
		case guard.Redirect:
			c.Redirect(http.StatusFound, d.Target)
			c.Abort()
		case guard.Block:
			c.AbortWithStatus(http.StatusNoContent)
		default:
			c.Set(SessionKey, snap)
			c.Next()
		}
	}
}

// SessionFromContext returns the snapshot the route guard admitted the request with
func SessionFromContext(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(SessionKey)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// ScreenFollower is told about every screen the shell actually shows
type ScreenFollower interface {
	Navigate(path string) guard.Decision
}

// FollowScreens reports admitted GET screens to follower once the handler has run.
// Requests the route guard never admitted are not reported.
func FollowScreens(follower ScreenFollower) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Request.Method != http.MethodGet {
			return
		}
		if _, ok := SessionFromContext(c); !ok {
			return
		}
		follower.Navigate(c.Request.URL.Path)
	}
}
