package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwaldt/driftwood/domain"
)

func setupTestDB(t *testing.T) *DB {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testAuthor(url string) *domain.Author {
	return &domain.Author{
		Id:       uuid.New(),
		URL:      url,
		Username: "author",
		Host:     "http://node-a.example/api",
	}
}

func TestUpsertAuthorCreatesAndUpdates(t *testing.T) {
	db := setupTestDB(t)

	a := testAuthor("http://node-a.example/api/authors/1")
	a.DisplayName = "Alice"
	if err := db.UpsertAuthor(a); err != nil {
		t.Fatalf("UpsertAuthor failed: %v", err)
	}

	// Second upsert with the same url must not create a second row and must
	// overwrite mutable fields while keeping the original id.
	b := testAuthor("http://node-a.example/api/authors/1")
	b.DisplayName = "Alice Renamed"
	if err := db.UpsertAuthor(b); err != nil {
		t.Fatalf("second UpsertAuthor failed: %v", err)
	}

	count, err := db.CountAuthors()
	if err != nil {
		t.Fatalf("CountAuthors failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 author, got %d", count)
	}

	err, stored := db.ReadAuthorByURL(a.URL)
	if err != nil {
		t.Fatalf("ReadAuthorByURL failed: %v", err)
	}
	if stored.DisplayName != "Alice Renamed" {
		t.Errorf("Expected updated display name, got %q", stored.DisplayName)
	}
	if stored.Id != a.Id {
		t.Errorf("Expected original id %s to survive, got %s", a.Id, stored.Id)
	}
}

func TestReadAuthorNotFound(t *testing.T) {
	db := setupTestDB(t)

	err, a := db.ReadAuthorByURL("http://nowhere.example/api/authors/0")
	if err == nil {
		t.Error("Expected error for unknown author")
	}
	if a != nil {
		t.Error("Expected nil author")
	}
}

func TestReadRemoteAuthors(t *testing.T) {
	db := setupTestDB(t)

	local := testAuthor("http://here.example/api/authors/1")
	db.UpsertAuthor(local)

	nodeId := uuid.New()
	remote := testAuthor("http://peer.example/api/authors/2")
	remote.NodeId = &nodeId
	db.UpsertAuthor(remote)

	err, remotes := db.ReadRemoteAuthors()
	if err != nil {
		t.Fatalf("ReadRemoteAuthors failed: %v", err)
	}
	if len(*remotes) != 1 {
		t.Fatalf("Expected 1 remote author, got %d", len(*remotes))
	}
	if (*remotes)[0].URL != remote.URL {
		t.Errorf("Expected %s, got %s", remote.URL, (*remotes)[0].URL)
	}
	if (*remotes)[0].NodeId == nil || *(*remotes)[0].NodeId != nodeId {
		t.Error("Expected node id to round-trip")
	}
}

func testEntry(url, authorURL, visibility string) *domain.Entry {
	return &domain.Entry{
		Id:          uuid.New(),
		URL:         url,
		AuthorURL:   authorURL,
		Title:       "title",
		Content:     "content",
		ContentType: domain.ContentTypePlain,
		Visibility:  visibility,
		Published:   time.Now(),
	}
}

func TestUpsertEntryLastWriteWins(t *testing.T) {
	db := setupTestDB(t)

	url := "http://node-a.example/api/authors/1/entries/9"
	first := testEntry(url, "http://node-a.example/api/authors/1", domain.VisibilityPublic)
	first.Categories = []string{"go"}
	if err := db.UpsertEntry(first); err != nil {
		t.Fatalf("UpsertEntry failed: %v", err)
	}

	second := testEntry(url, "http://node-a.example/api/authors/1", domain.VisibilityFriends)
	second.Content = "edited"
	if err := db.UpsertEntry(second); err != nil {
		t.Fatalf("second UpsertEntry failed: %v", err)
	}

	err, stored := db.ReadEntryByURL(url)
	if err != nil {
		t.Fatalf("ReadEntryByURL failed: %v", err)
	}
	if stored.Content != "edited" {
		t.Errorf("Expected edited content, got %q", stored.Content)
	}
	if stored.Visibility != domain.VisibilityFriends {
		t.Errorf("Expected FRIENDS visibility, got %s", stored.Visibility)
	}
	if stored.Id != first.Id {
		t.Errorf("Expected original id to survive the update")
	}
}

func TestEntryCategoriesRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	e := testEntry("http://a.example/api/authors/1/entries/1", "http://a.example/api/authors/1", domain.VisibilityPublic)
	e.Categories = []string{"go", "federation"}
	if err := db.UpsertEntry(e); err != nil {
		t.Fatalf("UpsertEntry failed: %v", err)
	}

	err, stored := db.ReadEntryByURL(e.URL)
	if err != nil {
		t.Fatalf("ReadEntryByURL failed: %v", err)
	}
	if len(stored.Categories) != 2 || stored.Categories[0] != "go" {
		t.Errorf("categories = %v", stored.Categories)
	}
}

func TestSoftDeleteEntry(t *testing.T) {
	db := setupTestDB(t)

	e := testEntry("http://a.example/api/authors/1/entries/1", "http://a.example/api/authors/1", domain.VisibilityPublic)
	db.UpsertEntry(e)

	if err := db.SoftDeleteEntry(e.URL); err != nil {
		t.Fatalf("SoftDeleteEntry failed: %v", err)
	}

	// Row must survive for referential integrity.
	err, stored := db.ReadEntryByURL(e.URL)
	if err != nil {
		t.Fatalf("ReadEntryByURL failed: %v", err)
	}
	if !stored.IsDeleted() {
		t.Error("Expected entry to be marked DELETED")
	}
}

func TestReadVisibleEntries(t *testing.T) {
	db := setupTestDB(t)

	author := "http://a.example/api/authors/alice"
	friend := "http://b.example/api/authors/bob"
	follower := "http://c.example/api/authors/carol"
	stranger := "http://d.example/api/authors/dave"

	db.UpsertEntry(testEntry("http://a.example/e/public", author, domain.VisibilityPublic))
	db.UpsertEntry(testEntry("http://a.example/e/unlisted", author, domain.VisibilityUnlisted))
	db.UpsertEntry(testEntry("http://a.example/e/friends", author, domain.VisibilityFriends))
	db.UpsertEntry(testEntry("http://a.example/e/deleted", author, domain.VisibilityDeleted))

	// bob is a friend, carol an accepted follower.
	if err := db.EnsureFriendship(author, friend); err != nil {
		t.Fatalf("EnsureFriendship failed: %v", err)
	}
	db.GetOrCreateFollow(follower, author)
	db.UpdateFollowStatus(follower, author, domain.FollowAccepted)

	cases := []struct {
		name   string
		viewer string
		want   int
	}{
		{"anonymous sees public only", "", 1},
		{"stranger sees public only", stranger, 1},
		{"follower sees public and unlisted", follower, 2},
		{"friend sees everything but deleted", friend, 3},
		{"author sees everything but deleted", author, 3},
	}
	for _, tc := range cases {
		err, entries := db.ReadVisibleEntries(tc.viewer, 50, 0)
		if err != nil {
			t.Fatalf("%s: ReadVisibleEntries failed: %v", tc.name, err)
		}
		if len(*entries) != tc.want {
			t.Errorf("%s: expected %d entries, got %d", tc.name, tc.want, len(*entries))
		}
		count, err := db.CountVisibleEntries(tc.viewer)
		if err != nil {
			t.Fatalf("%s: CountVisibleEntries failed: %v", tc.name, err)
		}
		if count != tc.want {
			t.Errorf("%s: expected count %d, got %d", tc.name, tc.want, count)
		}
	}
}

func TestGetOrCreateFollow(t *testing.T) {
	db := setupTestDB(t)

	follower := "http://a.example/api/authors/alice"
	followed := "http://b.example/api/authors/bob"

	err, follow, created := db.GetOrCreateFollow(follower, followed)
	if err != nil {
		t.Fatalf("GetOrCreateFollow failed: %v", err)
	}
	if !created {
		t.Error("Expected first call to create")
	}
	if follow.Status != domain.FollowRequesting {
		t.Errorf("Expected requesting status, got %s", follow.Status)
	}

	err, again, created := db.GetOrCreateFollow(follower, followed)
	if err != nil {
		t.Fatalf("second GetOrCreateFollow failed: %v", err)
	}
	if created {
		t.Error("Expected second call to be a no-op")
	}
	if again.Id != follow.Id {
		t.Error("Expected the same follow row back")
	}
}

func TestAcceptedFollowExists(t *testing.T) {
	db := setupTestDB(t)

	follower := "http://a.example/api/authors/alice"
	followed := "http://b.example/api/authors/bob"
	db.GetOrCreateFollow(follower, followed)

	ok, err := db.AcceptedFollowExists(follower, followed)
	if err != nil {
		t.Fatalf("AcceptedFollowExists failed: %v", err)
	}
	if ok {
		t.Error("requesting follow should not count as accepted")
	}

	db.UpdateFollowStatus(follower, followed, domain.FollowAccepted)
	ok, err = db.AcceptedFollowExists(follower, followed)
	if err != nil {
		t.Fatalf("AcceptedFollowExists failed: %v", err)
	}
	if !ok {
		t.Error("accepted follow not reported")
	}

	// Direction matters.
	ok, _ = db.AcceptedFollowExists(followed, follower)
	if ok {
		t.Error("reverse direction should not exist")
	}
}

func TestFriendshipCanonicalOrder(t *testing.T) {
	db := setupTestDB(t)

	a := "http://b.example/api/authors/bob"
	b := "http://a.example/api/authors/alice"

	// Ensure twice, in both argument orders; exactly one row.
	if err := db.EnsureFriendship(a, b); err != nil {
		t.Fatalf("EnsureFriendship failed: %v", err)
	}
	if err := db.EnsureFriendship(b, a); err != nil {
		t.Fatalf("second EnsureFriendship failed: %v", err)
	}

	ok, err := db.FriendshipExists(a, b)
	if err != nil {
		t.Fatalf("FriendshipExists failed: %v", err)
	}
	if !ok {
		t.Error("friendship not found")
	}

	err, friends := db.ReadFriendsOf(a)
	if err != nil {
		t.Fatalf("ReadFriendsOf failed: %v", err)
	}
	if len(*friends) != 1 || (*friends)[0] != b {
		t.Errorf("friends of %s = %v", a, *friends)
	}

	if err := db.DeleteFriendship(a, b); err != nil {
		t.Fatalf("DeleteFriendship failed: %v", err)
	}
	ok, _ = db.FriendshipExists(a, b)
	if ok {
		t.Error("friendship still present after delete")
	}

	// Deleting again is a no-op.
	if err := db.DeleteFriendship(a, b); err != nil {
		t.Errorf("repeated DeleteFriendship failed: %v", err)
	}
}

func TestCreateLikeDeduplicates(t *testing.T) {
	db := setupTestDB(t)

	author := "http://a.example/api/authors/alice"
	entry := "http://b.example/api/authors/bob/entries/1"

	like := &domain.Like{Id: uuid.New(), URL: "http://a.example/api/liked/1", AuthorURL: author, EntryURL: entry}
	err, created := db.CreateLike(like)
	if err != nil {
		t.Fatalf("CreateLike failed: %v", err)
	}
	if !created {
		t.Error("Expected first like to be created")
	}

	// Same author, same target, different like url: still a duplicate.
	dup := &domain.Like{Id: uuid.New(), URL: "http://a.example/api/liked/2", AuthorURL: author, EntryURL: entry}
	err, created = db.CreateLike(dup)
	if err != nil {
		t.Fatalf("duplicate CreateLike failed: %v", err)
	}
	if created {
		t.Error("Expected duplicate like to be ignored")
	}

	count, _ := db.CountLikesByEntry(entry)
	if count != 1 {
		t.Errorf("Expected 1 like, got %d", count)
	}
}

func TestCreateLikeRejectsBadTarget(t *testing.T) {
	db := setupTestDB(t)

	bad := &domain.Like{Id: uuid.New(), URL: "http://a.example/api/liked/1", AuthorURL: "http://a.example/api/authors/1"}
	if err, _ := db.CreateLike(bad); err == nil {
		t.Error("Expected error for like without target")
	}
}

func TestDeleteLikeByAuthorAndTarget(t *testing.T) {
	db := setupTestDB(t)

	author := "http://a.example/api/authors/alice"
	entry := "http://b.example/api/authors/bob/entries/1"
	like := &domain.Like{Id: uuid.New(), URL: "http://a.example/api/liked/1", AuthorURL: author, EntryURL: entry}
	db.CreateLike(like)

	if err := db.DeleteLikeByAuthorAndTarget(author, entry); err != nil {
		t.Fatalf("DeleteLikeByAuthorAndTarget failed: %v", err)
	}
	err, _ := db.ReadLikeByURL(like.URL)
	if err == nil {
		t.Error("Expected like to be gone")
	}

	// Deleting an absent like succeeds.
	if err := db.DeleteLikeByAuthorAndTarget(author, entry); err != nil {
		t.Errorf("repeated delete failed: %v", err)
	}
}

func TestUpsertComment(t *testing.T) {
	db := setupTestDB(t)

	c := &domain.Comment{
		Id:          uuid.New(),
		URL:         "http://a.example/api/authors/alice/commented/1",
		AuthorURL:   "http://a.example/api/authors/alice",
		EntryURL:    "http://b.example/api/authors/bob/entries/1",
		Content:     "first",
		ContentType: domain.ContentTypeMarkdown,
	}
	if err := db.UpsertComment(c); err != nil {
		t.Fatalf("UpsertComment failed: %v", err)
	}

	c.Content = "edited"
	if err := db.UpsertComment(c); err != nil {
		t.Fatalf("second UpsertComment failed: %v", err)
	}

	count, _ := db.CountCommentsByEntry(c.EntryURL)
	if count != 1 {
		t.Errorf("Expected 1 comment, got %d", count)
	}
	err, stored := db.ReadCommentByURL(c.URL)
	if err != nil {
		t.Fatalf("ReadCommentByURL failed: %v", err)
	}
	if stored.Content != "edited" {
		t.Errorf("Expected edited content, got %q", stored.Content)
	}
}

func TestGetOrCreateInboxItem(t *testing.T) {
	db := setupTestDB(t)

	item := &domain.InboxItem{
		Id:           uuid.New(),
		RecipientURL: "http://here.example/api/authors/alice",
		ActivityType: domain.ActivityLike,
		ObjectData:   []byte(`{"id":"http://a/l/1"}`),
		ObjectHash:   "abc123",
		RawData:      []byte(`{"type":"like"}`),
	}
	err, stored, created := db.GetOrCreateInboxItem(item)
	if err != nil {
		t.Fatalf("GetOrCreateInboxItem failed: %v", err)
	}
	if !created {
		t.Error("Expected first delivery to create")
	}
	if stored.Id != item.Id {
		t.Error("Expected stored item to match")
	}

	dup := &domain.InboxItem{
		Id:           uuid.New(),
		RecipientURL: item.RecipientURL,
		ActivityType: item.ActivityType,
		ObjectData:   item.ObjectData,
		ObjectHash:   item.ObjectHash,
		RawData:      item.RawData,
	}
	err, stored, created = db.GetOrCreateInboxItem(dup)
	if err != nil {
		t.Fatalf("duplicate GetOrCreateInboxItem failed: %v", err)
	}
	if created {
		t.Error("Expected duplicate delivery to be a no-op")
	}
	if stored.Id != item.Id {
		t.Error("Expected the original item back on duplicate")
	}

	count, _ := db.CountInboxItems(item.RecipientURL)
	if count != 1 {
		t.Errorf("Expected 1 inbox item, got %d", count)
	}
}

func TestMarkInboxRead(t *testing.T) {
	db := setupTestDB(t)

	recipient := "http://here.example/api/authors/alice"
	item := &domain.InboxItem{
		Id:           uuid.New(),
		RecipientURL: recipient,
		ActivityType: domain.ActivityEntry,
		ObjectData:   []byte(`{}`),
		ObjectHash:   "h1",
		RawData:      []byte(`{}`),
	}
	db.GetOrCreateInboxItem(item)

	if err := db.MarkInboxRead(recipient); err != nil {
		t.Fatalf("MarkInboxRead failed: %v", err)
	}
	err, items := db.ReadInboxItems(recipient, 10, 0)
	if err != nil {
		t.Fatalf("ReadInboxItems failed: %v", err)
	}
	if !(*items)[0].IsRead {
		t.Error("Expected item to be marked read")
	}
}

func TestNodeLookups(t *testing.T) {
	db := setupTestDB(t)

	n := &domain.Node{
		Id:        uuid.New(),
		Name:      "peer",
		Host:      "http://peer.example/api",
		Username:  "driftwood",
		Password:  "secret",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := db.CreateNode(n); err != nil {
		t.Fatalf("CreateNode failed: %v", err)
	}

	err, byUser := db.ReadNodeByUsername("driftwood")
	if err != nil {
		t.Fatalf("ReadNodeByUsername failed: %v", err)
	}
	if byUser.Host != n.Host {
		t.Errorf("Expected host %s, got %s", n.Host, byUser.Host)
	}

	if err := db.SetNodeActive(n.Id, false); err != nil {
		t.Fatalf("SetNodeActive failed: %v", err)
	}
	err, byHost := db.ReadNodeByHost(n.Host)
	if err != nil {
		t.Fatalf("ReadNodeByHost failed: %v", err)
	}
	if byHost.IsActive {
		t.Error("Expected node to be inactive")
	}

	// The host is unique.
	dup := &domain.Node{Id: uuid.New(), Host: n.Host, Username: "other", Password: "x", CreatedAt: time.Now()}
	if err := db.CreateNode(dup); err == nil {
		t.Error("Expected duplicate host to fail")
	}
}

func TestInboxDeliveryAudit(t *testing.T) {
	db := setupTestDB(t)

	entry := "http://here.example/api/authors/alice/entries/1"
	ok := &domain.InboxDelivery{Id: uuid.New(), EntryURL: entry, RecipientURL: "http://peer.example/api/authors/bob", Success: true}
	bad := &domain.InboxDelivery{Id: uuid.New(), EntryURL: entry, RecipientURL: "http://down.example/api/authors/eve", Success: false}
	if err := db.CreateInboxDelivery(ok); err != nil {
		t.Fatalf("CreateInboxDelivery failed: %v", err)
	}
	if err := db.CreateInboxDelivery(bad); err != nil {
		t.Fatalf("CreateInboxDelivery failed: %v", err)
	}

	err, deliveries := db.ReadDeliveriesByEntry(entry)
	if err != nil {
		t.Fatalf("ReadDeliveriesByEntry failed: %v", err)
	}
	if len(*deliveries) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(*deliveries))
	}
}
