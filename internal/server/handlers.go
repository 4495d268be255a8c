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

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"token-ledger-go/internal/api"
	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Ledger is the set of actions exposed over HTTP
type Ledger interface {
	HealthCheck(ctx context.Context) error

	CreatePost(ctx context.Context, params api.CreatePostParams) (*models.Post, error)
	ResharePost(ctx context.Context, params api.ResharePostParams) (*models.Post, error)
	GetPost(ctx context.Context, postId string) (*models.Post, error)
	EditPost(ctx context.Context, postId, editorId, content string) (*models.Post, error)
	DeletePost(ctx context.Context, postId, requesterId string) error
	ListPosts(ctx context.Context, page, pageSize int) (*models.PostPage, error)
	ListPostsByAuthor(ctx context.Context, authorId string, page, pageSize int) (*models.PostPage, error)

	LikePost(ctx context.Context, postId, likerId string) (*models.Like, error)
	UnlikePost(ctx context.Context, postId, likerId string) error
	GetPostLikes(ctx context.Context, postId string) ([]models.Like, error)
	HasLiked(ctx context.Context, postId, accountId string) (bool, error)

	GetBalance(ctx context.Context, accountId string) (*models.BalanceView, error)
	GetTransactionHistory(ctx context.Context, accountId string, page, pageSize int) (*models.TransactionPage, error)
	ClaimDailyReward(ctx context.Context, accountId string) (*models.DailyRewardResult, error)
	PurchaseTokens(ctx context.Context, accountId string, amount decimal.Decimal) (*models.PurchaseResult, error)
	GetStats(ctx context.Context) (*models.StatsView, error)
}

var _ Ledger = (*api.LedgerService)(nil)

type Handler struct {
	ledger   Ledger
	validate *validator.Validate
}

func NewHandler(ledger Ledger) *Handler {
	return &Handler{ledger: ledger, validate: validator.New()}
}

type mediaRequest struct {
	MediaType    string `json:"media_type" validate:"required,oneof=image video"`
	MediaUrl     string `json:"media_url" validate:"required,url"`
	ThumbnailUrl string `json:"thumbnail_url" validate:"omitempty,url"`
}

type createPostRequest struct {
	Content string         `json:"content" validate:"required,max=5000"`
	Media   []mediaRequest `json:"media" validate:"max=10,dive"`
}

type editPostRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type resharePostRequest struct {
	Content *string `json:"content" validate:"omitempty,max=5000"`
}

type purchaseRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type pageQuery struct {
	Page  int `validate:"gte=0"`
	Limit int `validate:"gte=0"`
}

type likesResponse struct {
	Likes []models.Like `json:"likes"`
	Count int           `json:"count"`
}

type likedResponse struct {
	Liked bool `json:"liked"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.HealthCheck(r.Context()); err != nil {
		writeMessage(w, http.StatusServiceUnavailable, "database unavailable", "transient")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Posts ---

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	params := api.CreatePostParams{AuthorId: accountIdFrom(r.Context()), Content: req.Content}
	for _, m := range req.Media {
		params.Media = append(params.Media, api.MediaParams{
			MediaType:    m.MediaType,
			MediaUrl:     m.MediaUrl,
			ThumbnailUrl: m.ThumbnailUrl,
		})
	}

	post, err := h.ledger.CreatePost(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q, ok := h.pageQuery(w, r)
	if !ok {
		return
	}
	page, err := h.ledger.ListPosts(r.Context(), q.Page, q.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) ListPostsByAuthor(w http.ResponseWriter, r *http.Request) {
	q, ok := h.pageQuery(w, r)
	if !ok {
		return
	}
	page, err := h.ledger.ListPostsByAuthor(r.Context(), chi.URLParam(r, "accountId"), q.Page, q.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.ledger.GetPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request) {
	var req editPostRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	post, err := h.ledger.EditPost(r.Context(), chi.URLParam(r, "postId"), accountIdFrom(r.Context()), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeletePost(r.Context(), chi.URLParam(r, "postId"), accountIdFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "post deleted"})
}

func (h *Handler) ResharePost(w http.ResponseWriter, r *http.Request) {
	var req resharePostRequest
	if !h.decode(w, r, &req, true) {
		return
	}
	post, err := h.ledger.ResharePost(r.Context(), api.ResharePostParams{
		PostId:     chi.URLParam(r, "postId"),
		ResharerId: accountIdFrom(r.Context()),
		Content:    req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// --- Likes ---

func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	like, err := h.ledger.LikePost(r.Context(), chi.URLParam(r, "postId"), accountIdFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, like)
}

func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.UnlikePost(r.Context(), chi.URLParam(r, "postId"), accountIdFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "like removed"})
}

func (h *Handler) GetPostLikes(w http.ResponseWriter, r *http.Request) {
	likes, err := h.ledger.GetPostLikes(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likesResponse{Likes: likes, Count: len(likes)})
}

func (h *Handler) CheckLike(w http.ResponseWriter, r *http.Request) {
	liked, err := h.ledger.HasLiked(r.Context(), chi.URLParam(r, "postId"), accountIdFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likedResponse{Liked: liked})
}

// --- Tokens ---

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.ledger.GetBalance(r.Context(), accountIdFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	q, ok := h.pageQuery(w, r)
	if !ok {
		return
	}
	history, err := h.ledger.GetTransactionHistory(r.Context(), accountIdFrom(r.Context()), q.Page, q.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) ClaimDailyReward(w http.ResponseWriter, r *http.Request) {
	result, err := h.ledger.ClaimDailyReward(r.Context(), accountIdFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) PurchaseTokens(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !h.decode(w, r, &req, false) {
		return
	}
	result, err := h.ledger.PurchaseTokens(r.Context(), accountIdFrom(r.Context()), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.GetStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decode reads and validates a JSON body. An empty body is accepted only
// when optional is set.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && optional {
		err = nil
	}
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body", "invalid_input")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, r, fmt.Errorf("%s: %w", err.Error(), store.ErrInvalidInput))
		return false
	}
	return true
}

func (h *Handler) pageQuery(w http.ResponseWriter, r *http.Request) (pageQuery, bool) {
	var q pageQuery
	var err error
	if v := r.URL.Query().Get("page"); v != "" {
		if q.Page, err = strconv.Atoi(v); err != nil {
			writeMessage(w, http.StatusBadRequest, "page must be an integer", "invalid_input")
			return q, false
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil {
			writeMessage(w, http.StatusBadRequest, "limit must be an integer", "invalid_input")
			return q, false
		}
	}
	if err := h.validate.Struct(q); err != nil {
		writeError(w, r, fmt.Errorf("%s: %w", err.Error(), store.ErrInvalidInput))
		return q, false
	}
	return q, true
}
