package federation

import "github.com/mwaldt/driftwood/util"

// FriendshipMaintainer keeps the derived friendship relation in step with
// the follow graph: a pair row exists exactly when both directions are
// accepted. It reads follow state but never changes it.
type FriendshipMaintainer struct {
	Follows     FollowRepo
	Friendships FriendshipRepo
}

// SyncFriendship recomputes the pair after any follow mutation between the
// two authors. Call it from every code path that touches a follow.
func (m *FriendshipMaintainer) SyncFriendship(aURL, bURL string) error {
	aURL = util.NormalizeURL(aURL)
	bURL = util.NormalizeURL(bURL)

	aToB, err := m.Follows.AcceptedFollowExists(aURL, bURL)
	if err != nil {
		return err
	}
	bToA, err := m.Follows.AcceptedFollowExists(bURL, aURL)
	if err != nil {
		return err
	}

	if aToB && bToA {
		return m.Friendships.EnsureFriendship(aURL, bURL)
	}
	return m.Friendships.DeleteFriendship(aURL, bURL)
}
