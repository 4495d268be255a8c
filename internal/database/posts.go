package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"
)

func (r *repository) CreatePost(ctx context.Context, params store.CreatePostParams) (*models.Post, error) {
	createdAt := params.CreatedAt.UTC()
	_, err := r.q.ExecContext(ctx, queryInsertPost,
		params.PostId, params.AuthorId, params.Content, params.IsReshare,
		nullString(params.OriginalPostId), createdAt, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", translateError(err))
	}

	return &models.Post{
		Id:             params.PostId,
		AuthorId:       params.AuthorId,
		Content:        params.Content,
		IsReshare:      params.IsReshare,
		OriginalPostId: params.OriginalPostId,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}, nil
}

func (r *repository) AddMedia(ctx context.Context, params store.AddMediaParams) (*models.Media, error) {
	createdAt := params.CreatedAt.UTC()
	_, err := r.q.ExecContext(ctx, queryInsertMedia,
		params.MediaId, params.PostId, params.MediaType, params.MediaUrl,
		nullString(params.ThumbnailUrl), createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert media: %w", translateError(err))
	}

	return &models.Media{
		Id:           params.MediaId,
		PostId:       params.PostId,
		MediaType:    params.MediaType,
		MediaUrl:     params.MediaUrl,
		ThumbnailUrl: params.ThumbnailUrl,
		CreatedAt:    createdAt,
	}, nil
}

// GetPost loads a post with its media. Soft-deleted posts are NotFound
// unless includeDeleted is set.
func (r *repository) GetPost(ctx context.Context, postId string, includeDeleted bool) (*models.Post, error) {
	post, err := scanPost(r.q.QueryRowContext(ctx, queryGetPost, postId))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %s: %w", postId, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", translateError(err))
	}
	if post.IsDeleted && !includeDeleted {
		return nil, fmt.Errorf("post %s: %w", postId, store.ErrNotFound)
	}

	if post.Media, err = r.getMedia(ctx, postId); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *repository) UpdatePost(ctx context.Context, postId, content string, updatedAt time.Time) (*models.Post, error) {
	if err := r.execOnLivePost(ctx, queryUpdatePost, postId, content, updatedAt.UTC(), postId); err != nil {
		return nil, err
	}
	return r.GetPost(ctx, postId, false)
}

func (r *repository) SoftDeletePost(ctx context.Context, postId string, deletedAt time.Time) error {
	return r.execOnLivePost(ctx, querySoftDeletePost, postId, deletedAt.UTC(), postId)
}

func (r *repository) IncrementViewCount(ctx context.Context, postId string) error {
	return r.execOnLivePost(ctx, queryIncrementViewCount, postId, postId)
}

func (r *repository) ListPosts(ctx context.Context, limit, offset int) ([]models.Post, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, queryCountPosts).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", translateError(err))
	}
	posts, err := r.listPosts(ctx, queryListPosts, limit, offset)
	return posts, total, err
}

func (r *repository) ListPostsByAuthor(ctx context.Context, authorId string, limit, offset int) ([]models.Post, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, queryCountPostsByAuthor, authorId).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", translateError(err))
	}
	posts, err := r.listPosts(ctx, queryListPostsByAuthor, authorId, limit, offset)
	return posts, total, err
}

func (r *repository) listPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", translateError(err))
	}

	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			closeRows(rows)
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	// release the connection before loading media on the same querier
	closeRows(rows)

	for i := range posts {
		if posts[i].Media, err = r.getMedia(ctx, posts[i].Id); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *repository) getMedia(ctx context.Context, postId string) ([]models.Media, error) {
	rows, err := r.q.QueryContext(ctx, queryGetMediaForPost, postId)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", translateError(err))
	}
	defer closeRows(rows)

	var media []models.Media
	for rows.Next() {
		var m models.Media
		var thumbnail sql.NullString
		if err := rows.Scan(&m.Id, &m.PostId, &m.MediaType, &m.MediaUrl, &thumbnail, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		m.ThumbnailUrl = thumbnail.String
		media = append(media, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media rows: %w", err)
	}
	return media, nil
}

// execOnLivePost runs an update guarded by is_deleted = 0 and reports
// NotFound when no live post matched
func (r *repository) execOnLivePost(ctx context.Context, query, postId string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", translateError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post %s: %w", postId, store.ErrNotFound)
	}
	return nil
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var originalPostId sql.NullString
	err := row.Scan(&post.Id, &post.AuthorId, &post.Content, &post.IsEdited, &post.IsDeleted,
		&post.ViewCount, &post.IsReshare, &originalPostId, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	post.OriginalPostId = originalPostId.String
	return &post, nil
}
