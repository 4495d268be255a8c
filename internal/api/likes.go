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

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LikePost charges the liker, records the like and rewards the post's
// author. Likes on a reshare reward the author of the post it copies.
func (s *LedgerService) LikePost(ctx context.Context, postId, likerId string) (*models.Like, error) {
	if postId == "" || likerId == "" {
		return nil, fmt.Errorf("post_id and liker_id are required: %w", store.ErrInvalidInput)
	}

	var like *models.Like
	err := s.runAction(ctx, "like_post", func(tx store.Store) error {
		post, err := tx.GetPost(ctx, postId, false)
		if err != nil {
			return err
		}

		recipientId, err := likeRecipient(ctx, tx, post)
		if err != nil {
			return err
		}

		if err := tx.LockBalances(ctx, likerId, recipientId); err != nil {
			return err
		}

		liked, err := tx.HasLiked(ctx, postId, likerId)
		if err != nil {
			return err
		}
		if liked {
			return fmt.Errorf("post %s already liked by %s: %w", postId, likerId, store.ErrConflict)
		}

		if err := requireFunds(ctx, tx, likerId, s.economy.LikeCost); err != nil {
			return err
		}

		debit, _, err := s.postEntry(ctx, tx, entry{
			accountId:     likerId,
			kind:          models.KindLikeCost,
			amount:        s.economy.LikeCost.Neg(),
			referenceId:   postId,
			referenceKind: models.RefPostLike,
		})
		if err != nil {
			return err
		}

		created, err := tx.CreateLike(ctx, store.CreateLikeParams{
			LikeId:        uuid.New().String(),
			PostId:        postId,
			AccountId:     likerId,
			TransactionId: debit.Id,
			CreatedAt:     s.now(),
		})
		if err != nil {
			return err
		}

		if err := s.postReward(ctx, tx, entry{
			accountId:     recipientId,
			kind:          models.KindLikeReward,
			amount:        s.economy.LikeReward,
			referenceId:   created.Id,
			referenceKind: models.RefPostLike,
		}); err != nil {
			return err
		}

		like = created
		return nil
	})
	if err != nil {
		zap.L().Info("Like rejected",
			zap.String("post_id", postId),
			zap.String("liker_id", likerId),
			zap.Error(err))
		return nil, err
	}

	zap.L().Info("Post liked",
		zap.String("like_id", like.Id),
		zap.String("post_id", postId),
		zap.String("liker_id", likerId))
	return like, nil
}

// likeRecipient resolves who is paid for a like on post
func likeRecipient(ctx context.Context, tx store.Store, post *models.Post) (string, error) {
	if !post.IsReshare || post.OriginalPostId == "" {
		return post.AuthorId, nil
	}
	original, err := tx.GetPost(ctx, post.OriginalPostId, true)
	if err != nil {
		return "", fmt.Errorf("failed to resolve original of reshare %s: %w", post.Id, err)
	}
	return original.AuthorId, nil
}

// UnlikePost removes the like. The tokens paid for it are not refunded.
func (s *LedgerService) UnlikePost(ctx context.Context, postId, likerId string) error {
	if postId == "" || likerId == "" {
		return fmt.Errorf("post_id and liker_id are required: %w", store.ErrInvalidInput)
	}

	if err := s.db.DeleteLike(ctx, postId, likerId); err != nil {
		return err
	}

	zap.L().Info("Post unliked",
		zap.String("post_id", postId),
		zap.String("liker_id", likerId))
	return nil
}

func (s *LedgerService) GetPostLikes(ctx context.Context, postId string) ([]models.Like, error) {
	if _, err := s.db.GetPost(ctx, postId, false); err != nil {
		return nil, err
	}
	likes, err := s.db.GetLikesForPost(ctx, postId)
	if err != nil {
		zap.L().Error("Failed to get likes", zap.String("post_id", postId), zap.Error(err))
		return nil, err
	}
	if likes == nil {
		likes = []models.Like{}
	}
	return likes, nil
}

func (s *LedgerService) HasLiked(ctx context.Context, postId, accountId string) (bool, error) {
	return s.db.HasLiked(ctx, postId, accountId)
}
