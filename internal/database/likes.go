package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"
)

// CreateLike inserts a like. The unique (post_id, account_id) index decides
// races: the losing insert surfaces as store.ErrConflict.
func (r *repository) CreateLike(ctx context.Context, params store.CreateLikeParams) (*models.Like, error) {
	createdAt := params.CreatedAt.UTC()
	_, err := r.q.ExecContext(ctx, queryInsertLike,
		params.LikeId, params.PostId, params.AccountId, nullString(params.TransactionId), createdAt)
	if err != nil {
		err = translateError(err)
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("post %s already liked by %s: %w", params.PostId, params.AccountId, store.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert like: %w", err)
	}

	return &models.Like{
		Id:            params.LikeId,
		PostId:        params.PostId,
		AccountId:     params.AccountId,
		TransactionId: params.TransactionId,
		CreatedAt:     createdAt,
	}, nil
}

func (r *repository) DeleteLike(ctx context.Context, postId, accountId string) error {
	result, err := r.q.ExecContext(ctx, queryDeleteLike, postId, accountId)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", translateError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("like on post %s by %s: %w", postId, accountId, store.ErrNotFound)
	}
	return nil
}

func (r *repository) GetLikesForPost(ctx context.Context, postId string) ([]models.Like, error) {
	rows, err := r.q.QueryContext(ctx, queryGetLikesForPost, postId)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", translateError(err))
	}
	defer closeRows(rows)

	var likes []models.Like
	for rows.Next() {
		var like models.Like
		var transactionId sql.NullString
		if err := rows.Scan(&like.Id, &like.PostId, &like.AccountId, &transactionId, &like.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		like.TransactionId = transactionId.String
		likes = append(likes, like)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating like rows: %w", err)
	}
	return likes, nil
}

func (r *repository) HasLiked(ctx context.Context, postId, accountId string) (bool, error) {
	var liked bool
	if err := r.q.QueryRowContext(ctx, queryHasLiked, postId, accountId).Scan(&liked); err != nil {
		return false, fmt.Errorf("failed to check like: %w", translateError(err))
	}
	return liked, nil
}
