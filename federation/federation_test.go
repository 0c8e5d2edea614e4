package federation

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

var errNotFound = errors.New("not found")

// fakeStore is an in-memory implementation of every repository interface.
type fakeStore struct {
	mu          sync.Mutex
	authors     map[string]*domain.Author
	entries     map[string]*domain.Entry
	comments    map[string]*domain.Comment
	likes       map[string]*domain.Like
	follows     map[string]*domain.Follow
	friendships map[string]bool
	inboxItems  map[string]*domain.InboxItem
	nodes       map[string]*domain.Node
	deliveries  []domain.InboxDelivery
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		authors:     make(map[string]*domain.Author),
		entries:     make(map[string]*domain.Entry),
		comments:    make(map[string]*domain.Comment),
		likes:       make(map[string]*domain.Like),
		follows:     make(map[string]*domain.Follow),
		friendships: make(map[string]bool),
		inboxItems:  make(map[string]*domain.InboxItem),
		nodes:       make(map[string]*domain.Node),
	}
}

func followKey(follower, followed string) string { return follower + "|" + followed }

func pairKey(a, b string) string {
	a1, a2 := domain.OrderPair(a, b)
	return a1 + "|" + a2
}

func (s *fakeStore) UpsertAuthor(a *domain.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.authors[a.URL]; ok {
		existing.Username = a.Username
		existing.DisplayName = a.DisplayName
		existing.ProfileImage = a.ProfileImage
		existing.Host = a.Host
		existing.Web = a.Web
		existing.NodeId = a.NodeId
		return nil
	}
	copied := *a
	s.authors[a.URL] = &copied
	return nil
}

func (s *fakeStore) ReadAuthorByURL(url string) (error, *domain.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.authors[url]; ok {
		copied := *a
		return nil, &copied
	}
	return errNotFound, nil
}

func (s *fakeStore) ReadRemoteAuthors() (error, *[]domain.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var remotes []domain.Author
	for _, a := range s.authors {
		if a.IsRemote() {
			remotes = append(remotes, *a)
		}
	}
	return nil, &remotes
}

func (s *fakeStore) UpsertEntry(e *domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[e.URL]; ok {
		id := existing.Id
		*existing = *e
		existing.Id = id
		return nil
	}
	copied := *e
	s.entries[e.URL] = &copied
	return nil
}

func (s *fakeStore) ReadEntryByURL(url string) (error, *domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[url]; ok {
		copied := *e
		return nil, &copied
	}
	return errNotFound, nil
}

func (s *fakeStore) ReadEntryById(id uuid.UUID) (error, *domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Id == id {
			copied := *e
			return nil, &copied
		}
	}
	return errNotFound, nil
}

func (s *fakeStore) ReadVisibleEntries(viewerURL string, limit, offset int) (error, *[]domain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var visible []domain.Entry
	for _, e := range s.entries {
		if e.IsDeleted() {
			continue
		}
		if e.Visibility == domain.VisibilityPublic || e.AuthorURL == viewerURL {
			visible = append(visible, *e)
		}
	}
	return nil, &visible
}

func (s *fakeStore) CountVisibleEntries(viewerURL string) (int, error) {
	err, visible := s.ReadVisibleEntries(viewerURL, -1, 0)
	if err != nil {
		return 0, err
	}
	return len(*visible), nil
}

func (s *fakeStore) SoftDeleteEntry(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[url]; ok {
		e.Visibility = domain.VisibilityDeleted
	}
	return nil
}

func (s *fakeStore) GetOrCreateFollow(followerURL, followedURL string) (error, *domain.Follow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := followKey(followerURL, followedURL)
	if f, ok := s.follows[key]; ok {
		copied := *f
		return nil, &copied, false
	}
	f := &domain.Follow{Id: uuid.New(), FollowerURL: followerURL, FollowedURL: followedURL, Status: domain.FollowRequesting}
	s.follows[key] = f
	copied := *f
	return nil, &copied, true
}

func (s *fakeStore) ReadFollow(followerURL, followedURL string) (error, *domain.Follow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.follows[followKey(followerURL, followedURL)]; ok {
		copied := *f
		return nil, &copied
	}
	return errNotFound, nil
}

func (s *fakeStore) UpdateFollowStatus(followerURL, followedURL, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.follows[followKey(followerURL, followedURL)]; ok {
		f.Status = status
	}
	return nil
}

func (s *fakeStore) DeleteFollow(followerURL, followedURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.follows, followKey(followerURL, followedURL))
	return nil
}

func (s *fakeStore) AcceptedFollowExists(followerURL, followedURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.follows[followKey(followerURL, followedURL)]
	return ok && f.Status == domain.FollowAccepted, nil
}

func (s *fakeStore) EnsureFriendship(aURL, bURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendships[pairKey(aURL, bURL)] = true
	return nil
}

func (s *fakeStore) DeleteFriendship(aURL, bURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friendships, pairKey(aURL, bURL))
	return nil
}

func (s *fakeStore) FriendshipExists(aURL, bURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friendships[pairKey(aURL, bURL)], nil
}

func (s *fakeStore) CreateLike(l *domain.Like) (error, bool) {
	if err := l.Validate(); err != nil {
		return err, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.likes[l.URL]; ok {
		return nil, false
	}
	for _, existing := range s.likes {
		if existing.AuthorURL == l.AuthorURL && existing.TargetURL() == l.TargetURL() {
			return nil, false
		}
	}
	copied := *l
	s.likes[l.URL] = &copied
	return nil, true
}

func (s *fakeStore) ReadLikeByURL(url string) (error, *domain.Like) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.likes[url]; ok {
		copied := *l
		return nil, &copied
	}
	return errNotFound, nil
}

func (s *fakeStore) ReadLikeByAuthorAndTarget(authorURL, targetURL string) (error, *domain.Like) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if l.AuthorURL == authorURL && l.TargetURL() == targetURL {
			copied := *l
			return nil, &copied
		}
	}
	return errNotFound, nil
}

func (s *fakeStore) DeleteLikeByURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.likes, url)
	return nil
}

func (s *fakeStore) DeleteLikeByAuthorAndTarget(authorURL, targetURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for url, l := range s.likes {
		if l.AuthorURL == authorURL && l.TargetURL() == targetURL {
			delete(s.likes, url)
		}
	}
	return nil
}

func (s *fakeStore) UpsertComment(c *domain.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	if existing, ok := s.comments[c.URL]; ok {
		copied.Id = existing.Id
	}
	s.comments[c.URL] = &copied
	return nil
}

func (s *fakeStore) ReadCommentByURL(url string) (error, *domain.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.comments[url]; ok {
		copied := *c
		return nil, &copied
	}
	return errNotFound, nil
}

func (s *fakeStore) ReadCommentById(id uuid.UUID) (error, *domain.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.Id == id {
			copied := *c
			return nil, &copied
		}
	}
	return errNotFound, nil
}

func (s *fakeStore) GetOrCreateInboxItem(item *domain.InboxItem) (error, *domain.InboxItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := item.RecipientURL + "|" + item.ActivityType + "|" + item.ObjectHash
	if existing, ok := s.inboxItems[key]; ok {
		copied := *existing
		return nil, &copied, false
	}
	copied := *item
	s.inboxItems[key] = &copied
	stored := copied
	return nil, &stored, true
}

func (s *fakeStore) CreateInboxDelivery(d *domain.InboxDelivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries = append(s.deliveries, *d)
	return nil
}

func (s *fakeStore) CreateNode(n *domain.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.nodes {
		if existing.Host == n.Host {
			return errors.New("host already registered")
		}
	}
	copied := *n
	s.nodes[n.Id.String()] = &copied
	return nil
}

func (s *fakeStore) ReadNodeByHost(host string) (error, *domain.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.Host == host {
			copied := *n
			return nil, &copied
		}
	}
	return errNotFound, nil
}

func (s *fakeStore) ReadNodeById(id uuid.UUID) (error, *domain.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id.String()]; ok {
		copied := *n
		return nil, &copied
	}
	return errNotFound, nil
}

func (s *fakeStore) ReadAllNodes() (error, *[]domain.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var nodes []domain.Node
	for _, n := range s.nodes {
		nodes = append(nodes, *n)
	}
	return nil, &nodes
}

func (s *fakeStore) SetNodeActive(id uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.nodes[id.String()]; ok {
		n.IsActive = active
	}
	return nil
}

func newTestDispatcher(store *fakeStore) *Dispatcher {
	resolver := &Resolver{Authors: store, Entries: store, Likes: store, Comments: store, Nodes: store}
	return &Dispatcher{
		Resolver:   resolver,
		Follows:    store,
		Likes:      store,
		Comments:   store,
		Inbox:      store,
		Friendship: &FriendshipMaintainer{Follows: store, Friendships: store},
	}
}
