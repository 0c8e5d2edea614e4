package federation

import (
	"fmt"

	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

// FollowService is the local command surface for the follow graph. Every
// mutation resynchronizes the friendship pair before returning and pushes
// the matching activity when the other side lives on a remote node.
type FollowService struct {
	Authors    AuthorRepo
	Follows    FollowRepo
	Friendship *FriendshipMaintainer
	Publisher  *Publisher
}

// RequestFollow opens a follow request from actor to object.
func (s *FollowService) RequestFollow(actorURL, objectURL string) (*domain.Follow, error) {
	actor, object, err := s.pair(actorURL, objectURL)
	if err != nil {
		return nil, err
	}

	err, follow, created := s.Follows.GetOrCreateFollow(actor.URL, object.URL)
	if err != nil {
		return nil, err
	}
	if err := s.Friendship.SyncFriendship(actor.URL, object.URL); err != nil {
		return nil, err
	}
	if created && object.IsRemote() {
		s.Publisher.PublishFollow(actor, object)
	}
	return follow, nil
}

// RespondToFollow accepts or rejects a pending request from follower.
func (s *FollowService) RespondToFollow(followerURL, followedURL string, accept bool) error {
	follower, followed, err := s.pair(followerURL, followedURL)
	if err != nil {
		return err
	}
	if err, _ := s.Follows.ReadFollow(follower.URL, followed.URL); err != nil {
		return fmt.Errorf("no follow request from %s: %w", follower.URL, err)
	}

	status := domain.FollowRejected
	responseType := domain.ResponseReject
	if accept {
		status = domain.FollowAccepted
		responseType = domain.ResponseAccept
	}
	if err := s.Follows.UpdateFollowStatus(follower.URL, followed.URL, status); err != nil {
		return err
	}
	if err := s.Friendship.SyncFriendship(follower.URL, followed.URL); err != nil {
		return err
	}
	if follower.IsRemote() {
		s.Publisher.PublishFollowResponse(follower, followed, responseType)
	}
	return nil
}

// Unfollow removes the follow edge from actor to object. The friendship pair
// follows the edge out.
func (s *FollowService) Unfollow(actorURL, objectURL string) error {
	actor, object, err := s.pair(actorURL, objectURL)
	if err != nil {
		return err
	}
	if err := s.Follows.DeleteFollow(actor.URL, object.URL); err != nil {
		return err
	}
	if err := s.Friendship.SyncFriendship(actor.URL, object.URL); err != nil {
		return err
	}
	if object.IsRemote() {
		s.Publisher.PublishUndoFollow(actor, object)
	}
	return nil
}

func (s *FollowService) pair(aURL, bURL string) (*domain.Author, *domain.Author, error) {
	err, a := s.Authors.ReadAuthorByURL(util.NormalizeURL(aURL))
	if err != nil {
		return nil, nil, fmt.Errorf("unknown author %s: %w", aURL, err)
	}
	err, b := s.Authors.ReadAuthorByURL(util.NormalizeURL(bURL))
	if err != nil {
		return nil, nil, fmt.Errorf("unknown author %s: %w", bURL, err)
	}
	if a.URL == b.URL {
		return nil, nil, fmt.Errorf("author %s cannot follow itself", a.URL)
	}
	return a, b, nil
}
