package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie names the anonymous session cookie the cart hangs off.
	SessionCookie = "reservation_session"

	sessionKey = "session_id"

	// sessionMaxAge keeps the cookie alive for thirty days; the cart's own
	// TTL in the store is shorter and wins.
	sessionMaxAge = 30 * 24 * 60 * 60
)

// Session assigns every request an anonymous session id, minting a cookie
// on first contact. Carts are keyed by this id and nothing else, so no
// login is required to shop.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sessionID, sessionMaxAge, "/", "", false, true)
		}
		c.Set(sessionKey, sessionID)
		c.Next()
	}
}

// GetSessionID returns the session id assigned by Session.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
