package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/federation"
)

// handleListAuthors serves the paginated author directory. Peers pull this
// endpoint on registration, so the shape must stay {type, items}.
func (s *Server) handleListAuthors(c *gin.Context) {
	page, size := pageParams(c)

	err, authors := s.DB.ReadAuthors(size, (page-1)*size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read authors"})
		return
	}
	count, err := s.DB.CountAuthors()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read authors"})
		return
	}

	items := make([]federation.AuthorPayload, 0, len(*authors))
	for i := range *authors {
		items = append(items, s.authorJSON(&(*authors)[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"type":        "authors",
		"page_number": page,
		"size":        size,
		"count":       count,
		"items":       items,
	})
}

func (s *Server) handleGetAuthor(c *gin.Context) {
	author, ok := s.authorParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.authorJSON(author))
}

// handleListAuthorEntries lists one author's entries the viewer may see.
func (s *Server) handleListAuthorEntries(c *gin.Context) {
	author, ok := s.authorParam(c)
	if !ok {
		return
	}

	viewer := s.viewer(c)
	page, size := pageParams(c)

	// Listing visibility is decided per viewer in Go, so pagination happens
	// after the filter. A negative limit reads unbounded in sqlite.
	err, entries := s.DB.ReadEntriesByAuthor(author.URL, -1, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read entries"})
		return
	}

	listed := make([]federation.EntryPayload, 0, len(*entries))
	for i := range *entries {
		e := &(*entries)[i]
		ok, err := s.Visibility.ListedForViewer(e, viewer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read entries"})
			return
		}
		if ok {
			listed = append(listed, federation.NewEntryPayload(e, author))
		}
	}

	count := len(listed)
	start := (page - 1) * size
	if start > count {
		start = count
	}
	end := start + size
	if end > count {
		end = count
	}

	c.JSON(http.StatusOK, collectionJSON{
		Type:       "entries",
		Id:         author.URL + "/entries",
		Web:        author.Web,
		PageNumber: page,
		Size:       size,
		Count:      count,
		Src:        listed[start:end],
	})
}

// handleGetEntry serves one entry with nested author and comment/like
// summaries. Entries the viewer may not see answer 404 to avoid leaking
// their existence.
func (s *Server) handleGetEntry(c *gin.Context) {
	author, ok := s.authorParam(c)
	if !ok {
		return
	}

	eid, err := uuid.Parse(c.Param("eid"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid entry ID"})
		return
	}
	err, entry := s.DB.ReadEntryById(eid)
	if err != nil || entry.AuthorURL != author.URL {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	viewer := s.viewer(c)
	visible, err := s.Visibility.IsVisible(entry, viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read entry"})
		return
	}
	if !visible {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		return
	}

	page, size := pageParams(c)
	out, err := s.entryRepresentation(entry, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read entry"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// handleListEntries serves the federated feed for the current viewer.
func (s *Server) handleListEntries(c *gin.Context) {
	viewer := s.viewer(c)
	page, size := pageParams(c)

	err, entries := s.Visibility.VisibleEntries(viewer, size, (page-1)*size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read feed"})
		return
	}
	count, err := s.Visibility.CountVisibleEntries(viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read feed"})
		return
	}

	src := make([]federation.EntryPayload, 0, len(*entries))
	for i := range *entries {
		e := &(*entries)[i]
		err, author := s.DB.ReadAuthorByURL(e.AuthorURL)
		if err != nil {
			continue
		}
		src = append(src, federation.NewEntryPayload(e, author))
	}

	c.JSON(http.StatusOK, collectionJSON{
		Type:       "entries",
		PageNumber: page,
		Size:       size,
		Count:      count,
		Src:        src,
	})
}
