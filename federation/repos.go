package federation

import (
	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

// Storage interfaces for the engine. The sqlite db.DB satisfies all of them;
// tests inject in-memory fakes.

type AuthorRepo interface {
	UpsertAuthor(a *domain.Author) error
	ReadAuthorByURL(url string) (error, *domain.Author)
	ReadRemoteAuthors() (error, *[]domain.Author)
}

type EntryRepo interface {
	UpsertEntry(e *domain.Entry) error
	ReadEntryByURL(url string) (error, *domain.Entry)
	ReadEntryById(id uuid.UUID) (error, *domain.Entry)
	ReadVisibleEntries(viewerURL string, limit, offset int) (error, *[]domain.Entry)
	CountVisibleEntries(viewerURL string) (int, error)
	SoftDeleteEntry(url string) error
}

type FollowRepo interface {
	GetOrCreateFollow(followerURL, followedURL string) (error, *domain.Follow, bool)
	ReadFollow(followerURL, followedURL string) (error, *domain.Follow)
	UpdateFollowStatus(followerURL, followedURL, status string) error
	DeleteFollow(followerURL, followedURL string) error
	AcceptedFollowExists(followerURL, followedURL string) (bool, error)
}

type FriendshipRepo interface {
	EnsureFriendship(aURL, bURL string) error
	DeleteFriendship(aURL, bURL string) error
	FriendshipExists(aURL, bURL string) (bool, error)
}

type LikeRepo interface {
	CreateLike(l *domain.Like) (error, bool)
	ReadLikeByURL(url string) (error, *domain.Like)
	ReadLikeByAuthorAndTarget(authorURL, targetURL string) (error, *domain.Like)
	DeleteLikeByURL(url string) error
	DeleteLikeByAuthorAndTarget(authorURL, targetURL string) error
}

type CommentRepo interface {
	UpsertComment(c *domain.Comment) error
	ReadCommentByURL(url string) (error, *domain.Comment)
	ReadCommentById(id uuid.UUID) (error, *domain.Comment)
}

type InboxRepo interface {
	GetOrCreateInboxItem(item *domain.InboxItem) (error, *domain.InboxItem, bool)
	CreateInboxDelivery(d *domain.InboxDelivery) error
}

type NodeRepo interface {
	CreateNode(n *domain.Node) error
	ReadNodeByHost(host string) (error, *domain.Node)
	ReadNodeById(id uuid.UUID) (error, *domain.Node)
	ReadAllNodes() (error, *[]domain.Node)
	SetNodeActive(id uuid.UUID, active bool) error
}
