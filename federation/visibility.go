package federation

import "github.com/mwaldt/driftwood/domain"

// Visibility answers whether a viewer may read an entry. The batch feed form
// lives in the entry store as a single query; the single-entry form here
// backs direct object reads.
type Visibility struct {
	Follows     FollowRepo
	Friendships FriendshipRepo
	Entries     EntryRepo
}

// IsVisible reports read permission for one entry. A nil viewer is
// anonymous. Precedence: DELETED beats everything except operator access;
// PUBLIC is open; UNLISTED is link-visible to anyone; FRIENDS needs a
// friendship with the author.
func (v *Visibility) IsVisible(entry *domain.Entry, viewer *domain.Author) (bool, error) {
	if entry.IsDeleted() {
		return viewer != nil && viewer.IsOperator, nil
	}

	switch entry.Visibility {
	case domain.VisibilityPublic, domain.VisibilityUnlisted:
		return true, nil
	case domain.VisibilityFriends:
		if viewer == nil {
			return false, nil
		}
		if viewer.URL == entry.AuthorURL {
			return true, nil
		}
		return v.Friendships.FriendshipExists(viewer.URL, entry.AuthorURL)
	default:
		return false, nil
	}
}

// ListedForViewer reports whether the entry belongs in the viewer's
// aggregation views. Stricter than IsVisible for UNLISTED: link access is
// open, listing needs the viewer to be the author, an accepted follower or
// a friend.
func (v *Visibility) ListedForViewer(entry *domain.Entry, viewer *domain.Author) (bool, error) {
	if entry.IsDeleted() {
		return false, nil
	}
	if entry.Visibility == domain.VisibilityPublic {
		return true, nil
	}
	if viewer == nil {
		return false, nil
	}
	if viewer.URL == entry.AuthorURL {
		return true, nil
	}

	switch entry.Visibility {
	case domain.VisibilityUnlisted:
		follows, err := v.Follows.AcceptedFollowExists(viewer.URL, entry.AuthorURL)
		if err != nil {
			return false, err
		}
		if follows {
			return true, nil
		}
		return v.Friendships.FriendshipExists(viewer.URL, entry.AuthorURL)
	case domain.VisibilityFriends:
		return v.Friendships.FriendshipExists(viewer.URL, entry.AuthorURL)
	default:
		return false, nil
	}
}

// VisibleEntries returns the feed for the viewer, newest first. DELETED
// entries never appear, whoever asks.
func (v *Visibility) VisibleEntries(viewer *domain.Author, limit, offset int) (error, *[]domain.Entry) {
	viewerURL := ""
	if viewer != nil {
		viewerURL = viewer.URL
	}
	return v.Entries.ReadVisibleEntries(viewerURL, limit, offset)
}

// CountVisibleEntries reports the total feed size for the viewer.
func (v *Visibility) CountVisibleEntries(viewer *domain.Author) (int, error) {
	viewerURL := ""
	if viewer != nil {
		viewerURL = viewer.URL
	}
	return v.Entries.CountVisibleEntries(viewerURL)
}
