package api

import (
	"embed"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = []string{"index.html", "feeds.html"}

const sessionMaxAge = 30 * 24 * 60 * 60

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, sessionSecret string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{Formatter: accessLogFormatter}))

	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	renderer, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	setupRoutes(r, handler)

	return r, nil
}

// accessLogFormatter writes one line per request. Only the path is logged:
// query strings carry OAuth codes and state.
func accessLogFormatter(param gin.LogFormatterParams) string {
	return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
		param.ClientIP,
		param.TimeStamp.Format(time.RFC3339),
		param.Method,
		param.Request.URL.Path,
		param.Request.Proto,
		param.StatusCode,
		param.Latency,
		param.Request.UserAgent(),
		param.ErrorMessage,
	)
}

func loadTemplates() (multitemplate.Render, error) {
	renderer := multitemplate.New()
	for _, page := range pages {
		content, err := templatesFS.ReadFile("templates/" + page)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", page, err)
		}
		renderer.AddFromString(page, string(content))
	}
	return renderer, nil
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/", handler.Index)
	r.GET("/about", handler.About)
	r.GET("/logout", handler.Logout)
	r.GET("/auth", handler.Auth)
	r.GET("/register", handler.Register)

	// Feed documents are fetched by podcast clients without a session
	r.GET("/feed/:token/", handler.GetFeed)
	r.GET("/feed/:token/:name", handler.GetFeed)

	authorized := r.Group("/")
	authorized.Use(authRequired())
	{
		authorized.GET("/feeds", handler.ListFeeds)
		authorized.POST("/feed/create", handler.CreateFeed)
		authorized.POST("/feed/delete", handler.DeleteFeed)
		authorized.GET("/proxy/files/:parent_id", handler.ListFolder)
	}

	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}
