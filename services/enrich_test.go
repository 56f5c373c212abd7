package services

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"github.com/vnkhanh/e-blog-backend/models"
)

func TestInferKindPriority(t *testing.T) {
	cases := []struct {
		name string
		view NotificationView
		want models.NotificationKind
	}{
		{"parent wins", NotificationView{ParentCommentID: uintPtr(1), CommentID: uintPtr(2), ArticleID: 3, ActorID: 4, RecipientID: 5}, models.KindCommentReply},
		{"comment", NotificationView{CommentID: uintPtr(2), ArticleID: 3, ActorID: 4, RecipientID: 5}, models.KindCommentLike},
		{"article with parties", NotificationView{ArticleID: 3, ActorID: 4, RecipientID: 5}, models.KindArticleComment},
		{"fallback", NotificationView{ArticleID: 3}, models.KindArticleLike},
	}
	for _, tc := range cases {
		if got := InferKind(tc.view); got != tc.want {
			t.Errorf("%s: InferKind = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestEnrichKeepsKnownType(t *testing.T) {
	v := NotificationView{ID: 1, Type: models.KindArticleLike, CommentID: uintPtr(2), ArticleID: 3, ActorID: 4, RecipientID: 5}
	if got := Enrich(v).Type; got != models.KindArticleLike {
		t.Fatalf("Type = %q, stored type must win", got)
	}
}

func TestEnrichFillsAliases(t *testing.T) {
	v := NotificationView{ID: 9, ActorID: 4, ArticleID: 3, CommentID: uintPtr(2), ParentCommentID: uintPtr(1)}
	e := Enrich(v)

	if e.Type != models.KindCommentReply {
		t.Fatalf("Type = %q", e.Type)
	}
	if e.NotificationID != 9 || e.ActorIDAlias != 4 || e.ArticleIDAlias != 3 {
		t.Fatalf("aliases = %+v", e)
	}
	if *e.CommentIDAlias != 2 || *e.ParentCommentIDAlias != 1 {
		t.Fatalf("pointer aliases = %v %v", *e.CommentIDAlias, *e.ParentCommentIDAlias)
	}

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "notificationId", "actor_id", "actorId", "articleId", "commentId", "parentCommentId", "type"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("json missing %q", key)
		}
	}
}

func TestEnrichIsIdempotent(t *testing.T) {
	views := []NotificationView{
		{ID: 1, ArticleID: 3},
		{ID: 2, ArticleID: 3, ActorID: 4, RecipientID: 5, Type: "legacy"},
		{ID: 3, CommentID: uintPtr(2), ParentCommentID: uintPtr(1), Type: models.KindCommentReply},
	}
	for _, v := range views {
		once := Enrich(v)
		twice := Enrich(once.NotificationView)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Enrich not idempotent for %+v: %+v vs %+v", v, once, twice)
		}
	}
}

func TestEnrichAll(t *testing.T) {
	if got := EnrichAll(nil); got == nil || len(got) != 0 {
		t.Fatalf("EnrichAll(nil) = %#v, want empty slice", got)
	}
	got := EnrichAll([]NotificationView{{ID: 1}, {ID: 2}})
	if len(got) != 2 || got[0].NotificationID != 1 || got[1].NotificationID != 2 {
		t.Fatalf("EnrichAll = %+v", got)
	}
}
