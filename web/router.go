package web

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/mwaldt/driftwood/db"
	"github.com/mwaldt/driftwood/federation"
	"github.com/mwaldt/driftwood/util"
	"golang.org/x/time/rate"
)

// Server bundles the handler dependencies. The federation services carry
// their repositories, so all wiring stays in main.
type Server struct {
	Conf       *util.AppConfig
	DB         *db.DB
	Dispatcher *federation.Dispatcher
	Visibility *federation.Visibility
	Follows    *federation.FollowService
	Content    *federation.ContentService
	Nodes      *federation.NodeService
}

// Router builds the gin engine with all API routes.
func (s *Server) Router() *gin.Engine {
	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))

	// Global rate limiter: 10 requests per second per IP, burst of 20
	globalLimiter := NewRateLimiter(rate.Limit(10), 20)
	g.Use(RateLimitMiddleware(globalLimiter))

	// Stricter rate limit for the inbox: 5 req/sec per IP
	inboxLimiter := NewRateLimiter(rate.Limit(5), 10)

	// Max 1MB request body size for inbound activities
	maxBodySize := MaxBytesMiddleware(1 * 1024 * 1024) // 1MB

	nodeAuth := NodeAuthMiddleware(s.DB)

	api := g.Group("/api")

	api.POST("/authors/:id/inbox/", RateLimitMiddleware(inboxLimiter), maxBodySize, nodeAuth, s.handlePostInbox)
	api.GET("/authors/:id/inbox/", s.handleGetInbox)

	api.GET("/authors/", s.handleListAuthors)
	api.GET("/authors/:id", s.handleGetAuthor)
	api.GET("/authors/:id/entries/", s.handleListAuthorEntries)
	api.GET("/authors/:id/entries/:eid", s.handleGetEntry)
	api.POST("/authors/:id/entries/", s.handleCreateEntry)
	api.PUT("/authors/:id/entries/:eid", s.handleUpdateEntry)
	api.DELETE("/authors/:id/entries/:eid", s.handleDeleteEntry)

	api.GET("/entries/", s.handleListEntries)

	api.POST("/likes/", s.handleCreateLike)
	api.DELETE("/likes/", s.handleDeleteLike)
	api.POST("/comments/", s.handleCreateComment)

	api.POST("/follows/", s.handleCreateFollow)
	api.PUT("/follows/", s.handleRespondFollow)
	api.DELETE("/follows/", s.handleDeleteFollow)

	api.POST("/nodes/", s.handleCreateNode)
	api.GET("/nodes/", s.handleListNodes)
	api.PUT("/nodes/:id", s.handleUpdateNode)
	api.DELETE("/nodes/:id", s.handleDeleteNode)

	// RSS Feed of public entries
	g.GET("/feed", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")

		rss, err := s.GetRSS(c.Query("author"))
		if err != nil {
			c.Render(404, render.String{Format: ""})
		} else {
			c.Render(200, render.String{Format: rss})
		}
	})

	return g
}
