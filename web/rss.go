package web

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/feeds"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

const rssFeedSize = 50

// GetRSS renders the public entry feed as RSS. A non-empty authorId narrows
// the feed to one author.
func (s *Server) GetRSS(authorId string) (string, error) {
	conf := s.Conf.Conf

	var title string
	var entries []domain.Entry
	if authorId != "" {
		author, err := s.authorById(authorId)
		if err != nil {
			return "", err
		}
		entries, err = s.publicEntriesByAuthor(author)
		if err != nil {
			return "", err
		}
		name := author.DisplayName
		if name == "" {
			name = author.Username
		}
		title = fmt.Sprintf("%s - Entries by %s", conf.NodeName, name)
	} else {
		err, list := s.Visibility.VisibleEntries(nil, rssFeedSize, 0)
		if err != nil {
			log.Println("Could not get entries!", err)
			return "", errors.New("error retrieving entries")
		}
		entries = *list
		title = fmt.Sprintf("%s - All Entries", conf.NodeName)
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/feed", conf.SiteURL)},
		Description: fmt.Sprintf("public entries on %s", conf.NodeName),
		Created:     time.Now(),
	}

	var feedItems []*feeds.Item
	for i := range entries {
		e := &entries[i]

		err, author := s.DB.ReadAuthorByURL(e.AuthorURL)
		if err != nil {
			continue
		}

		content := e.Content
		if e.ContentType == domain.ContentTypeMarkdown {
			content = util.MarkdownLinksToHTML(content)
		}

		link := e.Web
		if link == "" {
			link = e.URL
		}

		feedItems = append(feedItems,
			&feeds.Item{
				Id:          e.URL,
				Title:       e.Title,
				Link:        &feeds.Link{Href: link},
				Description: e.Description,
				Content:     content,
				Author:      &feeds.Author{Name: author.DisplayName},
				Created:     e.Published,
			})
	}

	feed.Items = feedItems
	return feed.ToRss()
}

func (s *Server) authorById(id string) (*domain.Author, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.New("invalid author id")
	}
	err, author := s.DB.ReadAuthorById(parsed)
	if err != nil {
		return nil, errors.New("author not found")
	}
	return author, nil
}

// publicEntriesByAuthor returns up to rssFeedSize PUBLIC entries of one
// author, newest first.
func (s *Server) publicEntriesByAuthor(author *domain.Author) ([]domain.Entry, error) {
	err, entries := s.DB.ReadEntriesByAuthor(author.URL, rssFeedSize, 0)
	if err != nil {
		log.Println("Could not get entries!", err)
		return nil, errors.New("error retrieving entries by author")
	}
	public := make([]domain.Entry, 0, len(*entries))
	for _, e := range *entries {
		if e.Visibility == domain.VisibilityPublic {
			public = append(public, e)
		}
	}
	return public, nil
}
