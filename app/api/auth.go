package api

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Index(c *gin.Context) {
	session := sessions.Default(c)
	if sessionString(session, sessionTokenKey) != "" {
		c.Redirect(http.StatusFound, "/feeds")
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{})
}

func (h *Handler) About(c *gin.Context) {
	session := sessions.Default(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"About":    true,
		"Username": sessionString(session, sessionUsernameKey),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}

// Auth sends the user to put.io to authorize the app.
func (h *Handler) Auth(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		slog.Error("Failed to generate OAuth state", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	if err := session.Save(); err != nil {
		slog.Error("Failed to save session", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// Register is the OAuth callback. It exchanges the code for an access token
// and keeps the token and the put.io username in the session.
func (h *Handler) Register(c *gin.Context) {
	if reason := c.Query("error"); reason != "" {
		slog.Warn("put.io authorization denied", "error", reason)
		c.String(http.StatusBadRequest, "ERROR: %s", reason)
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	session := sessions.Default(c)
	state := sessionString(session, sessionStateKey)
	if state == "" || c.Query("state") != state {
		slog.Warn("OAuth state mismatch")
		c.String(http.StatusBadRequest, "ERROR: invalid state")
		return
	}
	// The state is single use, even when the exchange below fails
	session.Delete(sessionStateKey)
	if err := session.Save(); err != nil {
		slog.Error("Failed to save session", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		slog.Error("OAuth code exchange failed", "error", err)
		c.String(http.StatusBadGateway, "ERROR: token exchange failed")
		return
	}

	account, err := h.provider.AccountInfo(c.Request.Context(), token.AccessToken)
	if err != nil {
		slog.Error("Failed to load account info", "error", err)
		c.String(statusFor(err), "ERROR: could not load account")
		return
	}

	session.Set(sessionTokenKey, token.AccessToken)
	session.Set(sessionUsernameKey, account.Username)
	if err := session.Save(); err != nil {
		slog.Error("Failed to save session", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	slog.Info("User signed in", "username", account.Username)
	c.Redirect(http.StatusFound, "/")
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
