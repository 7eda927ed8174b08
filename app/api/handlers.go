package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/putcast/app/cfg"
	"github.com/lysyi3m/putcast/app/database"
	"github.com/lysyi3m/putcast/app/feed"
	"github.com/samber/lo"
)

const rssContentType = "application/rss+xml"

func NewHandler(service *feed.Service, feedRepo database.FeedRepository,
	provider AccountProvider, oauth OAuthConfig, publicURL string) *Handler {
	return &Handler{
		service:   service,
		feedRepo:  feedRepo,
		generator: feed.NewGenerator(),
		provider:  provider,
		oauth:     oauth,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// GetFeed crawls the feed's folders and renders the result as RSS. The
// optional name segment is ignored. The channel link is the URL as requested,
// query string included.
func (h *Handler) GetFeed(c *gin.Context) {
	token := c.Param("token")
	selfURL := h.publicURL + c.Request.URL.RequestURI()

	doc, err := h.service.BuildDocument(c.Request.Context(), token, selfURL)
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			slog.Error("Feed build failed", "feed", token, "error", err)
		} else {
			slog.Warn("Feed build rejected", "feed", token, "status", status, "error", err)
		}
		c.Status(status)
		return
	}

	rss, err := h.generator.Run(doc)
	if err != nil {
		slog.Error("RSS generation error", "feed", token, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(len(doc.Entries)))
	c.Data(http.StatusOK, rssContentType, []byte(rss))
}

func (h *Handler) ListFeeds(c *gin.Context) {
	summaries, err := h.service.ListFeeds(c.Request.Context(), credential(c))
	if err != nil {
		slog.Error("Failed to list feeds", "error", err)
		c.Status(statusFor(err))
		return
	}

	feeds := lo.Map(summaries, func(s feed.Summary, _ int) feedView {
		return feedView{
			Token:          s.Token,
			Name:           s.Name,
			URL:            s.URL,
			Audio:          s.Audio,
			Video:          s.Video,
			PreferOriginal: s.PreferOriginal,
			FolderIDs:      s.FolderIDs,
		}
	})

	if c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON {
		c.JSON(http.StatusOK, gin.H{
			"feeds": feeds,
			"total": len(feeds),
		})
		return
	}

	c.HTML(http.StatusOK, "feeds.html", gin.H{
		"Feeds":    feeds,
		"Username": sessionString(sessions.Default(c), sessionUsernameKey),
	})
}

// CreateFeed accepts the feed form: feed_name, a comma separated items list
// of folder ids, types (audio, video) and the org checkbox.
func (h *Handler) CreateFeed(c *gin.Context) {
	name, hasName := c.GetPostForm("feed_name")
	items, hasItems := c.GetPostForm("items")
	if !hasName || !hasItems {
		c.String(http.StatusBadRequest, "feed_name and items are required")
		return
	}

	types := c.PostFormArray("types")
	_, org := c.GetPostForm("org")

	created, err := h.service.CreateFeed(c.Request.Context(), credential(c), feed.NewFeed{
		Name:           name,
		FolderIDs:      strings.Split(items, ","),
		Audio:          lo.Contains(types, "audio"),
		Video:          lo.Contains(types, "video"),
		PreferOriginal: org,
	})
	if err != nil {
		status := statusFor(err)
		slog.Warn("Feed creation failed", "status", status, "error", err)
		c.String(status, http.StatusText(status))
		return
	}

	slog.Debug("Feed form accepted", "feed", created.Token)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	token, ok := c.GetPostForm("feed_token")
	if !ok {
		c.String(http.StatusBadRequest, "feed_token is required")
		return
	}

	if err := h.service.DeleteFeed(c.Request.Context(), credential(c), token); err != nil {
		status := statusFor(err)
		slog.Warn("Feed deletion failed", "feed", token, "status", status, "error", err)
		c.String(status, http.StatusText(status))
		return
	}

	c.Redirect(http.StatusFound, "/feeds")
}

// ListFolder proxies a put.io folder listing for the folder picker.
func (h *Handler) ListFolder(c *gin.Context) {
	parentID, err := strconv.ParseInt(c.Param("parent_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid folder id"})
		return
	}

	files, err := h.provider.ListFolder(c.Request.Context(), strconv.FormatInt(parentID, 10), credential(c))
	if err != nil {
		status := statusFor(err)
		slog.Warn("Folder listing failed", "parent_id", parentID, "status", status, "error", err)
		c.JSON(status, gin.H{"error": http.StatusText(status)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"parent_id": parentID,
		"files":     files,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"version":   cfg.GetVersion(),
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	feedCount, err := h.feedRepo.GetFeedCount(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_feed_count", "error", err)
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	health["feeds"] = feedCount

	c.JSON(http.StatusOK, health)
}
