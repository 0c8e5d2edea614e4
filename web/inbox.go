package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/federation"
	"github.com/mwaldt/driftwood/util"
)

// authorParam resolves the :id path segment to an author, answering 404
// itself when the id is malformed or unknown.
func (s *Server) authorParam(c *gin.Context) (*domain.Author, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid author ID"})
		return nil, false
	}
	err, author := s.DB.ReadAuthorById(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Author not found"})
		return nil, false
	}
	return author, true
}

// viewer identifies the acting local author from the X-Author header. There
// is no session layer; the API trusts the local frontend to set the header.
// An absent or unknown value means an anonymous viewer.
func (s *Server) viewer(c *gin.Context) *domain.Author {
	raw := c.GetHeader("X-Author")
	if raw == "" {
		return nil
	}
	err, author := s.DB.ReadAuthorByURL(util.NormalizeURL(raw))
	if err != nil {
		return nil
	}
	return author
}

// handlePostInbox accepts one activity delivery for a local author. The
// caller is already node-authenticated by middleware.
func (s *Server) handlePostInbox(c *gin.Context) {
	author, ok := s.authorParam(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		log.Printf("Inbox: failed to read body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	act, err := domain.DecodeActivity(body)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if node := callerNode(c); node != nil {
		log.Printf("Inbox: %s delivery from %s for %s", act.ActivityType(), node.Host, author.URL)
	}

	applied, err := s.Dispatcher.Dispatch(author.URL, act, body)
	if err != nil {
		if errors.Is(err, federation.ErrNotResolvable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Inbox: dispatch failed for %s: %v", author.URL, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process activity"})
		return
	}

	if applied {
		c.JSON(http.StatusCreated, gin.H{"status": "applied"})
	} else {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
	}
}

// handleGetInbox lists the stored deliveries of a local author, owner only.
func (s *Server) handleGetInbox(c *gin.Context) {
	author, ok := s.authorParam(c)
	if !ok {
		return
	}

	viewer := s.viewer(c)
	if viewer == nil || viewer.URL != author.URL || !author.IsLocal() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Inbox is owner-only"})
		return
	}

	page, size := pageParams(c)
	err, items := s.DB.ReadInboxItems(author.URL, size, (page-1)*size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read inbox"})
		return
	}
	count, err := s.DB.CountInboxItems(author.URL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read inbox"})
		return
	}

	src := make([]gin.H, 0, len(*items))
	for i := range *items {
		item := &(*items)[i]
		src = append(src, gin.H{
			"type":         "inboxItem",
			"activityType": item.ActivityType,
			"object":       item.ObjectData,
			"isRead":       item.IsRead,
			"deliveredAt":  item.DeliveredAt.Format(util.DateTimeFormat()),
		})
	}

	if c.Query("markRead") == "true" {
		if err := s.DB.MarkInboxRead(author.URL); err != nil {
			log.Printf("Inbox: mark read failed for %s: %v", author.URL, err)
		}
	}

	c.JSON(http.StatusOK, collectionJSON{
		Type:       "inbox",
		Id:         author.URL + "/inbox",
		PageNumber: page,
		Size:       size,
		Count:      count,
		Src:        src,
	})
}
