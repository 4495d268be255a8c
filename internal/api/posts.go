/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"fmt"
	"strings"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// MediaParams describes one attachment of a new post
type MediaParams struct {
	MediaType    string
	MediaUrl     string
	ThumbnailUrl string
}

// CreatePostParams contains the input of CreatePost
type CreatePostParams struct {
	AuthorId string
	Content  string
	Media    []MediaParams
}

// ResharePostParams contains the input of ResharePost. A nil Content copies
// the original post's content.
type ResharePostParams struct {
	PostId     string
	ResharerId string
	Content    *string
}

// CreatePost charges the author the post cost and stores the post with its
// media. The charge does not depend on the media count.
func (s *LedgerService) CreatePost(ctx context.Context, params CreatePostParams) (*models.Post, error) {
	if params.AuthorId == "" {
		return nil, fmt.Errorf("author_id is required: %w", store.ErrInvalidInput)
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, fmt.Errorf("content is required: %w", store.ErrInvalidInput)
	}
	for i, m := range params.Media {
		if m.MediaType != "image" && m.MediaType != "video" {
			return nil, fmt.Errorf("media at index %d has unsupported type %q: %w", i, m.MediaType, store.ErrInvalidInput)
		}
		if m.MediaUrl == "" {
			return nil, fmt.Errorf("media at index %d missing url: %w", i, store.ErrInvalidInput)
		}
	}

	var post *models.Post
	err := s.runAction(ctx, "create_post", func(tx store.Store) error {
		if err := tx.LockBalances(ctx, params.AuthorId); err != nil {
			return err
		}
		if err := requireFunds(ctx, tx, params.AuthorId, s.economy.PostCost); err != nil {
			return err
		}

		now := s.now()
		created, err := tx.CreatePost(ctx, store.CreatePostParams{
			PostId:    uuid.New().String(),
			AuthorId:  params.AuthorId,
			Content:   params.Content,
			CreatedAt: now,
		})
		if err != nil {
			return err
		}

		for _, m := range params.Media {
			media, err := tx.AddMedia(ctx, store.AddMediaParams{
				MediaId:      uuid.New().String(),
				PostId:       created.Id,
				MediaType:    m.MediaType,
				MediaUrl:     m.MediaUrl,
				ThumbnailUrl: m.ThumbnailUrl,
				CreatedAt:    now,
			})
			if err != nil {
				return err
			}
			created.Media = append(created.Media, *media)
		}

		if _, _, err := s.postEntry(ctx, tx, entry{
			accountId:     params.AuthorId,
			kind:          models.KindPostCreation,
			amount:        s.economy.PostCost.Neg(),
			referenceId:   created.Id,
			referenceKind: models.RefPost,
		}); err != nil {
			return err
		}

		post = created
		return nil
	})
	if err != nil {
		zap.L().Info("Create post rejected",
			zap.String("author_id", params.AuthorId),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Post created",
		zap.String("post_id", post.Id),
		zap.String("author_id", post.AuthorId),
		zap.Int("media", len(post.Media)),
		zap.String("cost", s.economy.PostCost.StringFixed(2)))
	return post, nil
}

// ResharePost charges the resharer, creates a post pointing at the original
// and rewards the original's author. The recipient is the author of the
// post being reshared, one hop only.
func (s *LedgerService) ResharePost(ctx context.Context, params ResharePostParams) (*models.Post, error) {
	if params.PostId == "" || params.ResharerId == "" {
		return nil, fmt.Errorf("post_id and resharer_id are required: %w", store.ErrInvalidInput)
	}

	var reshare *models.Post
	err := s.runAction(ctx, "reshare_post", func(tx store.Store) error {
		original, err := tx.GetPost(ctx, params.PostId, false)
		if err != nil {
			return err
		}

		if err := tx.LockBalances(ctx, params.ResharerId, original.AuthorId); err != nil {
			return err
		}
		if err := requireFunds(ctx, tx, params.ResharerId, s.economy.ReshareCost); err != nil {
			return err
		}

		content := original.Content
		if params.Content != nil && strings.TrimSpace(*params.Content) != "" {
			content = *params.Content
		}

		created, err := tx.CreatePost(ctx, store.CreatePostParams{
			PostId:         uuid.New().String(),
			AuthorId:       params.ResharerId,
			Content:        content,
			IsReshare:      true,
			OriginalPostId: original.Id,
			CreatedAt:      s.now(),
		})
		if err != nil {
			return err
		}

		if _, _, err := s.postEntry(ctx, tx, entry{
			accountId:     params.ResharerId,
			kind:          models.KindReshare,
			amount:        s.economy.ReshareCost.Neg(),
			referenceId:   created.Id,
			referenceKind: models.RefPostReshare,
		}); err != nil {
			return err
		}

		if err := s.postReward(ctx, tx, entry{
			accountId:     original.AuthorId,
			kind:          models.KindReshareReward,
			amount:        s.economy.ReshareReward,
			referenceId:   created.Id,
			referenceKind: models.RefPostReshare,
		}); err != nil {
			return err
		}

		reshare = created
		return nil
	})
	if err != nil {
		zap.L().Info("Reshare rejected",
			zap.String("post_id", params.PostId),
			zap.String("resharer_id", params.ResharerId),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Post reshared",
		zap.String("post_id", reshare.Id),
		zap.String("original_post_id", reshare.OriginalPostId),
		zap.String("resharer_id", reshare.AuthorId))
	return reshare, nil
}

// GetPost returns a live post and counts the view
func (s *LedgerService) GetPost(ctx context.Context, postId string) (*models.Post, error) {
	var post *models.Post
	err := s.db.WithTx(ctx, func(tx store.Store) error {
		if err := tx.IncrementViewCount(ctx, postId); err != nil {
			return err
		}
		var err error
		post, err = tx.GetPost(ctx, postId, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// EditPost replaces the content of a post owned by editorId
func (s *LedgerService) EditPost(ctx context.Context, postId, editorId, content string) (*models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("content is required: %w", store.ErrInvalidInput)
	}

	var post *models.Post
	err := s.db.WithTx(ctx, func(tx store.Store) error {
		current, err := tx.GetPost(ctx, postId, false)
		if err != nil {
			return err
		}
		if current.AuthorId != editorId {
			return fmt.Errorf("post %s is not owned by %s: %w", postId, editorId, store.ErrForbidden)
		}
		post, err = tx.UpdatePost(ctx, postId, content, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost soft-deletes a post owned by requesterId. Likes and ledger
// entries referencing it are kept.
func (s *LedgerService) DeletePost(ctx context.Context, postId, requesterId string) error {
	return s.db.WithTx(ctx, func(tx store.Store) error {
		current, err := tx.GetPost(ctx, postId, false)
		if err != nil {
			return err
		}
		if current.AuthorId != requesterId {
			return fmt.Errorf("post %s is not owned by %s: %w", postId, requesterId, store.ErrForbidden)
		}
		return tx.SoftDeletePost(ctx, postId, s.now())
	})
}

func (s *LedgerService) ListPosts(ctx context.Context, page, pageSize int) (*models.PostPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	posts, total, err := s.db.ListPosts(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		zap.L().Error("Failed to list posts", zap.Error(err))
		return nil, err
	}
	return &models.PostPage{
		Posts:      nonNilPosts(posts),
		Pagination: models.NewPagination(total, page, pageSize),
	}, nil
}

func (s *LedgerService) ListPostsByAuthor(ctx context.Context, authorId string, page, pageSize int) (*models.PostPage, error) {
	if authorId == "" {
		return nil, fmt.Errorf("author_id is required: %w", store.ErrInvalidInput)
	}
	page, pageSize = normalizePage(page, pageSize)
	posts, total, err := s.db.ListPostsByAuthor(ctx, authorId, pageSize, (page-1)*pageSize)
	if err != nil {
		zap.L().Error("Failed to list posts by author", zap.String("author_id", authorId), zap.Error(err))
		return nil, err
	}
	return &models.PostPage{
		Posts:      nonNilPosts(posts),
		Pagination: models.NewPagination(total, page, pageSize),
	}, nil
}

// normalizePage applies the default page and clamps the page size
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func nonNilPosts(posts []models.Post) []models.Post {
	if posts == nil {
		return []models.Post{}
	}
	return posts
}
