package web

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/federation"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// collectionJSON is the paginated summary shape embedded in entry
// representations and returned by the list endpoints.
type collectionJSON struct {
	Type       string `json:"type"`
	Id         string `json:"id,omitempty"`
	Web        string `json:"web,omitempty"`
	PageNumber int    `json:"page_number"`
	Size       int    `json:"size"`
	Count      int    `json:"count"`
	Src        any    `json:"src"`
}

// entryJSON is the entry wire payload plus nested comment and like
// summaries for the read API.
type entryJSON struct {
	federation.EntryPayload
	Comments *collectionJSON `json:"comments,omitempty"`
	Likes    *collectionJSON `json:"likes,omitempty"`
}

type nodeJSON struct {
	Type     string `json:"type"`
	Id       string `json:"id"`
	Name     string `json:"name"`
	Host     string `json:"host"`
	Username string `json:"username"`
	IsActive bool   `json:"isActive"`
}

// createdNodeJSON is the creation response. Password is set only when the
// server generated one for the caller.
type createdNodeJSON struct {
	nodeJSON
	Password string `json:"password,omitempty"`
}

func newNodeJSON(n *domain.Node) nodeJSON {
	return nodeJSON{
		Type:     "node",
		Id:       n.Id.String(),
		Name:     n.Name,
		Host:     n.Host,
		Username: n.Username,
		IsActive: n.IsActive,
	}
}

// pageParams reads page/size query parameters with sane bounds. Pages are
// 1-based on the wire.
func pageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func (s *Server) authorJSON(a *domain.Author) federation.AuthorPayload {
	return federation.NewAuthorPayload(a)
}

// entryRepresentation builds the full entry payload with nested author and
// one page of comment and like summaries.
func (s *Server) entryRepresentation(e *domain.Entry, page, size int) (*entryJSON, error) {
	err, author := s.DB.ReadAuthorByURL(e.AuthorURL)
	if err != nil {
		return nil, err
	}

	out := &entryJSON{EntryPayload: federation.NewEntryPayload(e, author)}

	comments, err := s.commentSummary(e, page, size)
	if err != nil {
		return nil, err
	}
	out.Comments = comments

	likes, err := s.likeSummary(e, page, size)
	if err != nil {
		return nil, err
	}
	out.Likes = likes

	return out, nil
}

func (s *Server) commentSummary(e *domain.Entry, page, size int) (*collectionJSON, error) {
	err, comments := s.DB.ReadCommentsByEntry(e.URL, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	count, err := s.DB.CountCommentsByEntry(e.URL)
	if err != nil {
		return nil, err
	}

	src := make([]federation.CommentPayload, 0, len(*comments))
	for i := range *comments {
		c := &(*comments)[i]
		err, author := s.DB.ReadAuthorByURL(c.AuthorURL)
		if err != nil {
			return nil, err
		}
		src = append(src, federation.NewCommentPayload(c, author))
	}

	return &collectionJSON{
		Type:       "comments",
		Id:         e.URL + "/comments",
		Web:        e.Web,
		PageNumber: page,
		Size:       size,
		Count:      count,
		Src:        src,
	}, nil
}

func (s *Server) likeSummary(e *domain.Entry, page, size int) (*collectionJSON, error) {
	err, likes := s.DB.ReadLikesByEntry(e.URL, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	count, err := s.DB.CountLikesByEntry(e.URL)
	if err != nil {
		return nil, err
	}

	src := make([]federation.LikePayload, 0, len(*likes))
	for i := range *likes {
		l := &(*likes)[i]
		err, author := s.DB.ReadAuthorByURL(l.AuthorURL)
		if err != nil {
			return nil, err
		}
		src = append(src, federation.NewLikePayload(l, author))
	}

	return &collectionJSON{
		Type:       "likes",
		Id:         e.URL + "/likes",
		Web:        e.Web,
		PageNumber: page,
		Size:       size,
		Count:      count,
		Src:        src,
	}, nil
}
