package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/google/uuid"
)

func createTestPost(t *testing.T, service *Service, authorId string, createdAt time.Time) *models.Post {
	post, err := service.CreatePost(context.Background(), store.CreatePostParams{
		PostId:    uuid.New().String(),
		AuthorId:  authorId,
		Content:   "hello",
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return post
}

func TestPostLifecycle(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestAccount(t, service, "alice")
	post := createTestPost(t, service, alice, time.Now())

	if _, err := service.AddMedia(ctx, store.AddMediaParams{
		MediaId:   uuid.New().String(),
		PostId:    post.Id,
		MediaType: "image",
		MediaUrl:  "https://cdn.example.com/a.png",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("AddMedia failed: %v", err)
	}

	if err := service.IncrementViewCount(ctx, post.Id); err != nil {
		t.Fatalf("IncrementViewCount failed: %v", err)
	}

	updated, err := service.UpdatePost(ctx, post.Id, "edited", time.Now())
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if !updated.IsEdited || updated.Content != "edited" {
		t.Errorf("Expected edited post, got %+v", updated)
	}
	if updated.ViewCount != 1 {
		t.Errorf("Expected view count 1, got %d", updated.ViewCount)
	}
	if len(updated.Media) != 1 || updated.Media[0].MediaType != "image" {
		t.Errorf("Expected one image attachment, got %+v", updated.Media)
	}

	if err := service.SoftDeletePost(ctx, post.Id, time.Now()); err != nil {
		t.Fatalf("SoftDeletePost failed: %v", err)
	}
	if _, err := service.GetPost(ctx, post.Id, false); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected deleted post to be hidden, got: %v", err)
	}
	deleted, err := service.GetPost(ctx, post.Id, true)
	if err != nil {
		t.Fatalf("GetPost with deleted failed: %v", err)
	}
	if !deleted.IsDeleted {
		t.Errorf("Expected deleted flag to be set")
	}
	if err := service.SoftDeletePost(ctx, post.Id, time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected second delete to report not found, got: %v", err)
	}
}

func TestCreatePost_ReshareReference(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestAccount(t, service, "alice")
	bob := createTestAccount(t, service, "bob")
	original := createTestPost(t, service, alice, time.Now())

	reshare, err := service.CreatePost(ctx, store.CreatePostParams{
		PostId:         uuid.New().String(),
		AuthorId:       bob,
		Content:        original.Content,
		IsReshare:      true,
		OriginalPostId: original.Id,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	loaded, err := service.GetPost(ctx, reshare.Id, false)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if !loaded.IsReshare || loaded.OriginalPostId != original.Id {
		t.Errorf("Expected reshare of %s, got %+v", original.Id, loaded)
	}

	_, err = service.CreatePost(ctx, store.CreatePostParams{
		PostId:         uuid.New().String(),
		AuthorId:       bob,
		Content:        "dangling",
		IsReshare:      true,
		OriginalPostId: "missing",
		CreatedAt:      time.Now(),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected missing original to be rejected, got: %v", err)
	}
}

func TestListPosts(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestAccount(t, service, "alice")
	bob := createTestAccount(t, service, "bob")

	base := time.Now().Add(-time.Hour)
	first := createTestPost(t, service, alice, base)
	second := createTestPost(t, service, bob, base.Add(time.Minute))
	third := createTestPost(t, service, alice, base.Add(2*time.Minute))
	hidden := createTestPost(t, service, alice, base.Add(3*time.Minute))
	if err := service.SoftDeletePost(ctx, hidden.Id, time.Now()); err != nil {
		t.Fatalf("SoftDeletePost failed: %v", err)
	}

	posts, total, err := service.ListPosts(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected 3 live posts, got %d", total)
	}
	if len(posts) != 2 || posts[0].Id != third.Id || posts[1].Id != second.Id {
		t.Errorf("Expected newest first, got %+v", posts)
	}

	byAlice, total, err := service.ListPostsByAuthor(ctx, alice, 10, 0)
	if err != nil {
		t.Fatalf("ListPostsByAuthor failed: %v", err)
	}
	if total != 2 || len(byAlice) != 2 || byAlice[1].Id != first.Id {
		t.Errorf("Unexpected author listing: total=%d posts=%+v", total, byAlice)
	}
}

func TestLikes(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	alice := createTestAccount(t, service, "alice")
	bob := createTestAccount(t, service, "bob")
	post := createTestPost(t, service, alice, time.Now())

	params := store.CreateLikeParams{
		LikeId:    uuid.New().String(),
		PostId:    post.Id,
		AccountId: bob,
		CreatedAt: time.Now(),
	}
	if _, err := service.CreateLike(ctx, params); err != nil {
		t.Fatalf("CreateLike failed: %v", err)
	}

	params.LikeId = uuid.New().String()
	if _, err := service.CreateLike(ctx, params); !errors.Is(err, store.ErrConflict) {
		t.Errorf("Expected duplicate like to conflict, got: %v", err)
	}

	liked, err := service.HasLiked(ctx, post.Id, bob)
	if err != nil {
		t.Fatalf("HasLiked failed: %v", err)
	}
	if !liked {
		t.Errorf("Expected bob to have liked the post")
	}

	likes, err := service.GetLikesForPost(ctx, post.Id)
	if err != nil {
		t.Fatalf("GetLikesForPost failed: %v", err)
	}
	if len(likes) != 1 || likes[0].AccountId != bob {
		t.Errorf("Unexpected likes: %+v", likes)
	}

	if err := service.DeleteLike(ctx, post.Id, bob); err != nil {
		t.Fatalf("DeleteLike failed: %v", err)
	}
	if err := service.DeleteLike(ctx, post.Id, bob); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected missing like to report not found, got: %v", err)
	}
}
