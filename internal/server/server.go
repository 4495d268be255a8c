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
	"net/http"
	"time"

	"token-ledger-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter wires the routes. Everything except /health requires a bearer token.
func NewRouter(cfg models.ServerConfig, h *Handler, auth *TokenIssuer) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Post("/", h.CreatePost)
			r.Get("/{postId}", h.GetPost)
			r.Put("/{postId}", h.EditPost)
			r.Delete("/{postId}", h.DeletePost)
			r.Post("/{postId}/reshare", h.ResharePost)
		})

		r.Get("/accounts/{accountId}/posts", h.ListPostsByAuthor)

		r.Route("/likes/posts/{postId}", func(r chi.Router) {
			r.Get("/", h.GetPostLikes)
			r.Post("/", h.LikePost)
			r.Delete("/", h.UnlikePost)
			r.Get("/check", h.CheckLike)
		})

		r.Route("/tokens", func(r chi.Router) {
			r.Get("/balance", h.GetBalance)
			r.Get("/transactions", h.GetTransactions)
			r.Post("/daily-reward", h.ClaimDailyReward)
			r.Post("/purchase", h.PurchaseTokens)
			r.Get("/stats", h.GetStats)
		})
	})

	return r
}

// NewHTTPServer applies the listener timeouts to the router
func NewHTTPServer(cfg models.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

// requestLogger writes one structured access log line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			zap.L().Info("HTTP request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		}()

		next.ServeHTTP(ww, r)
	})
}
