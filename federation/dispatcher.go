package federation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
	"github.com/mwaldt/driftwood/util"
)

// Dispatcher applies inbound activities for a recipient. Every kind of
// processing is idempotent: a repeated delivery of the same activity changes
// nothing and is reported as a duplicate.
type Dispatcher struct {
	Resolver   *Resolver
	Follows    FollowRepo
	Likes      LikeRepo
	Comments   CommentRepo
	Inbox      InboxRepo
	Friendship *FriendshipMaintainer
}

// Dispatch runs one activity against local state and records the delivery
// envelope. Applied reports whether this delivery had not been seen before
// for the recipient; a duplicate returns (false, nil).
func (d *Dispatcher) Dispatch(recipientURL string, act domain.Activity, raw []byte) (bool, error) {
	recipientURL = util.NormalizeURL(recipientURL)

	var objectData []byte
	var err error
	switch a := act.(type) {
	case *domain.EntryActivity:
		objectData, err = d.handleEntry(a)
	case *domain.FollowActivity:
		objectData, err = d.handleFollow(a)
	case *domain.FollowResponseActivity:
		objectData, err = d.handleFollowResponse(a)
	case *domain.LikeActivity:
		objectData, err = d.handleLike(a)
	case *domain.CommentActivity:
		objectData, err = d.handleComment(a)
	case *domain.UndoActivity:
		objectData, err = d.handleUndo(a)
	default:
		// The union is closed; hitting this means a new activity type was
		// added without a handler.
		return false, fmt.Errorf("no handler for activity %T", act)
	}
	if err != nil {
		return false, err
	}

	item := &domain.InboxItem{
		Id:           uuid.New(),
		RecipientURL: recipientURL,
		ActivityType: act.ActivityType(),
		ObjectData:   objectData,
		ObjectHash:   contentHash(objectData),
		RawData:      raw,
	}
	err, _, created := d.Inbox.GetOrCreateInboxItem(item)
	if err != nil {
		return false, err
	}
	if !created {
		log.Printf("Inbox: duplicate %s activity for %s", act.ActivityType(), recipientURL)
	}
	return created, nil
}

func (d *Dispatcher) handleEntry(a *domain.EntryActivity) ([]byte, error) {
	entry, err := d.Resolver.ResolveEntry(a)
	if err != nil {
		return nil, err
	}
	err, author := d.Resolver.Authors.ReadAuthorByURL(entry.AuthorURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Inbox: stored entry %s by %s", entry.URL, author.URL)
	return canonicalJSON(NewEntryPayload(entry, author)), nil
}

func (d *Dispatcher) handleFollow(a *domain.FollowActivity) ([]byte, error) {
	actor, err := d.Resolver.ResolveAuthor(a.Actor)
	if err != nil {
		return nil, err
	}
	object, err := d.Resolver.ResolveAuthor(a.Object)
	if err != nil {
		return nil, err
	}

	err, _, created := d.Follows.GetOrCreateFollow(actor.URL, object.URL)
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("Inbox: follow request %s -> %s", actor.URL, object.URL)
	}
	if err := d.Friendship.SyncFriendship(actor.URL, object.URL); err != nil {
		return nil, err
	}
	return canonicalJSON(NewFollowPayload(actor, object)), nil
}

func (d *Dispatcher) handleFollowResponse(a *domain.FollowResponseActivity) ([]byte, error) {
	follower, err := d.Resolver.ResolveAuthor(a.Follower)
	if err != nil {
		return nil, err
	}
	followed, err := d.Resolver.ResolveAuthor(a.Followed)
	if err != nil {
		return nil, err
	}

	status := domain.FollowRejected
	if a.ResponseType == domain.ResponseAccept {
		status = domain.FollowAccepted
	}

	// The response may arrive before we ever saw the request.
	if err, _, _ := d.Follows.GetOrCreateFollow(follower.URL, followed.URL); err != nil {
		return nil, err
	}
	if err := d.Follows.UpdateFollowStatus(follower.URL, followed.URL, status); err != nil {
		return nil, err
	}
	log.Printf("Inbox: follow %s -> %s is now %s", follower.URL, followed.URL, status)

	if err := d.Friendship.SyncFriendship(follower.URL, followed.URL); err != nil {
		return nil, err
	}
	return canonicalJSON(NewFollowResponsePayload(follower, followed, a.ResponseType)), nil
}

func (d *Dispatcher) handleLike(a *domain.LikeActivity) ([]byte, error) {
	like, err := d.Resolver.ResolveLike(a)
	if err != nil {
		return nil, err
	}
	err, created := d.Likes.CreateLike(like)
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("Inbox: like %s on %s", like.AuthorURL, like.TargetURL())
	}
	err, author := d.Resolver.Authors.ReadAuthorByURL(like.AuthorURL)
	if err != nil {
		return nil, err
	}
	return canonicalJSON(NewLikePayload(like, author)), nil
}

func (d *Dispatcher) handleComment(a *domain.CommentActivity) ([]byte, error) {
	comment, err := d.Resolver.ResolveComment(a)
	if err != nil {
		return nil, err
	}
	if err := d.Comments.UpsertComment(comment); err != nil {
		return nil, err
	}
	err, author := d.Resolver.Authors.ReadAuthorByURL(comment.AuthorURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Inbox: comment %s on %s", comment.URL, comment.EntryURL)
	return canonicalJSON(NewCommentPayload(comment, author)), nil
}

// handleUndo reverses a nested like. Deletion is best-effort: a missing like
// still counts as success, so repeated undo deliveries are harmless.
func (d *Dispatcher) handleUndo(a *domain.UndoActivity) ([]byte, error) {
	actor, err := d.Resolver.ResolveAuthor(a.Actor)
	if err != nil {
		return nil, err
	}

	if follow, ok := a.UndoneFollow(); ok {
		return d.undoFollow(actor, follow)
	}

	like, ok := a.UndoneLike()
	if !ok {
		log.Printf("Inbox: undo with unhandled nested object from %s", actor.URL)
		return canonicalJSON(UndoPayload{Type: domain.ActivityUndo, Actor: NewAuthorPayload(actor), Object: json.RawMessage(a.Object)}), nil
	}

	likeURL := util.NormalizeURL(like.Id)
	targetURL := util.NormalizeURL(like.Object)
	if likeURL != "" {
		if err := d.Likes.DeleteLikeByURL(likeURL); err != nil {
			return nil, err
		}
	}
	if targetURL != "" {
		if err := d.Likes.DeleteLikeByAuthorAndTarget(actor.URL, targetURL); err != nil {
			return nil, err
		}
	}
	log.Printf("Inbox: undo like %s by %s", likeURL, actor.URL)

	undone := &domain.Like{URL: likeURL, AuthorURL: actor.URL, EntryURL: targetURL}
	return canonicalJSON(NewUndoLikePayload(undone, actor)), nil
}

// undoFollow removes the follow edge and resynchronizes the friendship pair.
// Deleting an absent edge still counts as success.
func (d *Dispatcher) undoFollow(actor *domain.Author, follow *domain.FollowActivity) ([]byte, error) {
	object, err := d.Resolver.ResolveAuthor(follow.Object)
	if err != nil {
		return nil, err
	}

	if err := d.Follows.DeleteFollow(actor.URL, object.URL); err != nil {
		return nil, err
	}
	if err := d.Friendship.SyncFriendship(actor.URL, object.URL); err != nil {
		return nil, err
	}
	log.Printf("Inbox: undo follow %s -> %s", actor.URL, object.URL)
	return canonicalJSON(NewUndoFollowPayload(actor, object)), nil
}

func canonicalJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
