package middleware

import (
	"crypto/subtle"
	"net/http"

	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SessionCookieName mirrors the cookie set by the login handler.
const SessionCookieName = "tt_session"

func validSessionCookie(c *gin.Context, appSecret string) bool {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie == "" {
		return false
	}
	claims, err := utils.ValidateSessionToken([]byte(appSecret), cookie)
	if err != nil {
		return false
	}
	c.Set("username", claims.Username)
	return true
}

// APIAuthMiddleware guards the JSON API. A request passes with either the
// shared-secret X-API-Key header or a valid browser session cookie. When no
// API token is configured the API is open, which matches the single-user
// local deployment.
func APIAuthMiddleware(apiToken, appSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiToken == "" {
			c.Next()
			return
		}

		if key := c.GetHeader("X-API-Key"); key != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiToken)) == 1 {
				c.Next()
				return
			}
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid API key.", "invalid X-API-Key"))
			c.Abort()
			return
		}

		if validSessionCookie(c, appSecret) {
			c.Next()
			return
		}

		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required.", "missing X-API-Key or session"))
		c.Abort()
	}
}

// UIAuthMiddleware guards the HTML pages, redirecting anonymous visitors to
// the login form. When no UI username is configured the pages are open.
func UIAuthMiddleware(uiUsername, appSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uiUsername == "" {
			c.Next()
			return
		}
		if validSessionCookie(c, appSecret) {
			c.Next()
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}
