package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/federation"
)

type entryRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	ContentType string   `json:"contentType"`
	Categories  []string `json:"categories"`
	Visibility  string   `json:"visibility"`
}

type likeRequest struct {
	Object string `json:"object"`
}

type commentRequest struct {
	Entry       string `json:"entry"`
	Comment     string `json:"comment"`
	ContentType string `json:"contentType"`
}

// actingAuthor requires the viewer to be the author addressed by the :id
// path segment. Local mutations are always made in the author's own name.
func (s *Server) actingAuthor(c *gin.Context) (*domain.Author, bool) {
	author, ok := s.authorParam(c)
	if !ok {
		return nil, false
	}
	viewer := s.viewer(c)
	if viewer == nil || viewer.URL != author.URL {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting author required"})
		return nil, false
	}
	return author, true
}

// handleCreateEntry stores a new entry for the acting author and fans it out
// to the known remote authors.
func (s *Server) handleCreateEntry(c *gin.Context) {
	author, ok := s.actingAuthor(c)
	if !ok {
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry payload"})
		return
	}

	entry, err := s.Content.CreateEntry(author.URL, &domain.Entry{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ContentType: req.ContentType,
		Categories:  req.Categories,
		Visibility:  req.Visibility,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, federation.NewEntryPayload(entry, author))
}

func (s *Server) handleUpdateEntry(c *gin.Context) {
	author, ok := s.actingAuthor(c)
	if !ok {
		return
	}
	eid, err := uuid.Parse(c.Param("eid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid entry ID"})
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry payload"})
		return
	}

	entry, err := s.Content.UpdateEntry(author.URL, eid, &domain.Entry{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		ContentType: req.ContentType,
		Categories:  req.Categories,
		Visibility:  req.Visibility,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, federation.NewEntryPayload(entry, author))
}

// handleDeleteEntry soft-deletes the entry and announces the tombstone.
func (s *Server) handleDeleteEntry(c *gin.Context) {
	author, ok := s.actingAuthor(c)
	if !ok {
		return
	}
	eid, err := uuid.Parse(c.Param("eid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid entry ID"})
		return
	}

	if err := s.Content.DeleteEntry(author.URL, eid); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// handleCreateLike records a like by the acting viewer on the object url.
// A repeated like of the same object answers 200 instead of 201.
func (s *Server) handleCreateLike(c *gin.Context) {
	viewer := s.viewer(c)
	if viewer == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting author required"})
		return
	}

	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object is required"})
		return
	}

	like, created, err := s.Content.CreateLike(viewer.URL, req.Object)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, federation.NewLikePayload(like, viewer))
}

func (s *Server) handleDeleteLike(c *gin.Context) {
	viewer := s.viewer(c)
	if viewer == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting author required"})
		return
	}

	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Object == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "object is required"})
		return
	}

	if err := s.Content.UndoLike(viewer.URL, req.Object); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unliked"})
}

func (s *Server) handleCreateComment(c *gin.Context) {
	viewer := s.viewer(c)
	if viewer == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acting author required"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Entry == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entry is required"})
		return
	}

	comment, err := s.Content.CreateComment(viewer.URL, req.Entry, req.Comment, req.ContentType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, federation.NewCommentPayload(comment, viewer))
}
