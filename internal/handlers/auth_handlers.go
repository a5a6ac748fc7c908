package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"tickettrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the browser session cookie carrying the signed token.
const SessionCookieName = "tt_session"

const sessionTTL = 12 * time.Hour

// AuthConfig holds the single-user UI credentials. PasswordHash takes
// precedence over the plain Password when both are set.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
	AppSecret    string
}

// AuthHandler serves the login flow for the server-rendered UI.
type AuthHandler struct {
	cfg AuthConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg AuthConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

func (h *AuthHandler) checkCredentials(username, password string) bool {
	if h.cfg.Username == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.Username)) != 1 {
		return false
	}
	if h.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(h.cfg.PasswordHash), []byte(password)) == nil
	}
	if h.cfg.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(h.cfg.Password)) == 1
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// Login validates the posted credentials and issues the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if !h.checkCredentials(username, password) {
		utils.LogInfo("Failed UI login attempt", map[string]interface{}{"username": username})
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := utils.GenerateSessionToken([]byte(h.cfg.AppSecret), username, sessionTTL)
	if err != nil {
		utils.LogError(err, "Login: Failed to generate session token")
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"error": "Something went wrong, try again"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}
