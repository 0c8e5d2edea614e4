package domain

import (
	"errors"
	"testing"
)

func TestDecodeEntryActivity(t *testing.T) {
	body := []byte(`{
		"type": "entry",
		"id": "http://node-a.example/api/authors/1/entries/2",
		"author": {"type": "author", "id": "http://node-a.example/api/authors/1"},
		"title": "hello",
		"content": "first post",
		"contentType": "text/plain",
		"visibility": "PUBLIC",
		"categories": ["intro"]
	}`)

	act, err := DecodeActivity(body)
	if err != nil {
		t.Fatalf("DecodeActivity: %v", err)
	}
	entry, ok := act.(*EntryActivity)
	if !ok {
		t.Fatalf("expected *EntryActivity, got %T", act)
	}
	if entry.Title != "hello" {
		t.Errorf("title = %q", entry.Title)
	}
	if entry.Author.Id != "http://node-a.example/api/authors/1" {
		t.Errorf("author id = %q", entry.Author.Id)
	}
	if len(entry.Categories) != 1 || entry.Categories[0] != "intro" {
		t.Errorf("categories = %v", entry.Categories)
	}
}

func TestDecodeEntryActivityMissingField(t *testing.T) {
	body := []byte(`{
		"type": "entry",
		"id": "http://node-a.example/api/authors/1/entries/2",
		"author": {"id": "http://node-a.example/api/authors/1"},
		"content": "no title",
		"contentType": "text/plain"
	}`)

	_, err := DecodeActivity(body)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "title" {
		t.Errorf("field = %q, want title", verr.Field)
	}
}

func TestDecodeFollowActivity(t *testing.T) {
	body := []byte(`{
		"type": "follow",
		"summary": "alice wants to follow bob",
		"actor": {"id": "http://node-a.example/api/authors/alice"},
		"object": {"id": "http://node-b.example/api/authors/bob"}
	}`)

	act, err := DecodeActivity(body)
	if err != nil {
		t.Fatalf("DecodeActivity: %v", err)
	}
	follow, ok := act.(*FollowActivity)
	if !ok {
		t.Fatalf("expected *FollowActivity, got %T", act)
	}
	if follow.Actor.Id != "http://node-a.example/api/authors/alice" {
		t.Errorf("actor = %q", follow.Actor.Id)
	}
}

func TestDecodeFollowResponse(t *testing.T) {
	body := []byte(`{
		"type": "follow",
		"response_type": "Accept",
		"follower": {"id": "http://node-a.example/api/authors/alice"},
		"followed": {"id": "http://node-b.example/api/authors/bob"}
	}`)

	act, err := DecodeActivity(body)
	if err != nil {
		t.Fatalf("DecodeActivity: %v", err)
	}
	resp, ok := act.(*FollowResponseActivity)
	if !ok {
		t.Fatalf("expected *FollowResponseActivity, got %T", act)
	}
	if resp.ResponseType != ResponseAccept {
		t.Errorf("response_type = %q", resp.ResponseType)
	}
}

func TestDecodeFollowResponseBadType(t *testing.T) {
	body := []byte(`{
		"type": "follow",
		"response_type": "Maybe",
		"follower": {"id": "http://a/1"},
		"followed": {"id": "http://b/2"}
	}`)
	if _, err := DecodeActivity(body); err == nil {
		t.Fatal("expected error for unsupported response_type")
	}
}

func TestDecodeLikeActivity(t *testing.T) {
	body := []byte(`{
		"type": "like",
		"id": "http://node-a.example/api/liked/9",
		"author": {"id": "http://node-a.example/api/authors/alice"},
		"object": "http://node-b.example/api/authors/bob/entries/2"
	}`)

	act, err := DecodeActivity(body)
	if err != nil {
		t.Fatalf("DecodeActivity: %v", err)
	}
	like, ok := act.(*LikeActivity)
	if !ok {
		t.Fatalf("expected *LikeActivity, got %T", act)
	}
	if like.Object != "http://node-b.example/api/authors/bob/entries/2" {
		t.Errorf("object = %q", like.Object)
	}
}

func TestDecodeLikeActivityMissingObject(t *testing.T) {
	body := []byte(`{"type":"like","id":"http://a/l/1","author":{"id":"http://a/1"}}`)
	_, err := DecodeActivity(body)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "object" {
		t.Fatalf("expected object validation error, got %v", err)
	}
}

func TestDecodeCommentActivity(t *testing.T) {
	body := []byte(`{
		"type": "comment",
		"id": "http://node-a.example/api/authors/alice/commented/3",
		"author": {"id": "http://node-a.example/api/authors/alice"},
		"comment": "nice post",
		"contentType": "text/markdown",
		"entry": "http://node-b.example/api/authors/bob/entries/2"
	}`)

	act, err := DecodeActivity(body)
	if err != nil {
		t.Fatalf("DecodeActivity: %v", err)
	}
	comment, ok := act.(*CommentActivity)
	if !ok {
		t.Fatalf("expected *CommentActivity, got %T", act)
	}
	if comment.Comment != "nice post" {
		t.Errorf("comment = %q", comment.Comment)
	}
}

func TestDecodeUndoActivity(t *testing.T) {
	body := []byte(`{
		"type": "undo",
		"actor": {"id": "http://node-a.example/api/authors/alice"},
		"object": {
			"type": "like",
			"id": "http://node-a.example/api/liked/9",
			"author": {"id": "http://node-a.example/api/authors/alice"},
			"object": "http://node-b.example/api/authors/bob/entries/2"
		}
	}`)

	act, err := DecodeActivity(body)
	if err != nil {
		t.Fatalf("DecodeActivity: %v", err)
	}
	undo, ok := act.(*UndoActivity)
	if !ok {
		t.Fatalf("expected *UndoActivity, got %T", act)
	}
	like, ok := undo.UndoneLike()
	if !ok {
		t.Fatal("expected nested like")
	}
	if like.Id != "http://node-a.example/api/liked/9" {
		t.Errorf("nested like id = %q", like.Id)
	}
}

func TestDecodeUndoNonLikeObject(t *testing.T) {
	body := []byte(`{
		"type": "undo",
		"actor": {"id": "http://a/1"},
		"object": {"type": "follow"}
	}`)

	act, err := DecodeActivity(body)
	if err != nil {
		t.Fatalf("DecodeActivity: %v", err)
	}
	undo := act.(*UndoActivity)
	if _, ok := undo.UndoneLike(); ok {
		t.Error("nested follow should not decode as like")
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := DecodeActivity([]byte(`{"type":"poke"}`)); err == nil {
		t.Fatal("expected error for unknown activity type")
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	if _, err := DecodeActivity([]byte(`{"type":`)); err == nil {
		t.Fatal("expected parse error")
	}
}
