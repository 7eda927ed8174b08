package api

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionName = "putcast_session"

	sessionTokenKey    = "oauth_token"
	sessionUsernameKey = "username"
	sessionStateKey    = "oauth_state"

	credentialKey = "credential"
)

// authRequired redirects to the landing page unless the session holds a
// put.io access token. The token is exposed to handlers via credential.
func authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionString(sessions.Default(c), sessionTokenKey)
		if token == "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		c.Set(credentialKey, token)
		c.Next()
	}
}

func credential(c *gin.Context) string {
	return c.GetString(credentialKey)
}

func sessionString(session sessions.Session, key string) string {
	value, _ := session.Get(key).(string)
	return value
}
