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
	"errors"
	"fmt"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"go.uber.org/zap"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 25 * time.Millisecond
)

// LedgerServiceConfig contains configuration for LedgerService
type LedgerServiceConfig struct {
	Store        store.LedgerStore
	Economy      models.EconomyConfig
	MaxRetries   int
	RetryBackoff time.Duration
	// Clock defaults to time.Now; its location defines the daily reward day
	Clock func() time.Time
}

// LedgerService runs the token actions and the reads around them
type LedgerService struct {
	db           store.LedgerStore
	economy      models.EconomyConfig
	maxRetries   int
	retryBackoff time.Duration
	now          func() time.Time
}

func NewLedgerService(cfg LedgerServiceConfig) *LedgerService {
	s := &LedgerService{
		db:           cfg.Store,
		economy:      cfg.Economy,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		now:          cfg.Clock,
	}
	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxRetries
	}
	if s.retryBackoff <= 0 {
		s.retryBackoff = defaultRetryBackoff
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// runAction executes fn as one atomic scope. A scope that aborted cleanly
// with a retryable error is re-run from the start; every other error is
// returned as is. Exhausted retries surface as store.ErrTransient.
func (s *LedgerService) runAction(ctx context.Context, action string, fn func(tx store.Store) error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = s.db.WithTx(ctx, fn)
		if err == nil || !store.IsRetryable(err) {
			return err
		}

		zap.L().Warn("Ledger action aborted, retrying",
			zap.String("action", action),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == s.maxRetries {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * s.retryBackoff):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled: %w: %w", action, store.ErrTransient, ctx.Err())
		}
	}

	if errors.Is(err, store.ErrTransient) {
		return fmt.Errorf("%s failed after %d attempts: %w", action, s.maxRetries, err)
	}
	return fmt.Errorf("%s failed after %d attempts: %w: %w", action, s.maxRetries, store.ErrTransient, err)
}

// today returns the start of the current local calendar day
func (s *LedgerService) today() time.Time {
	now := s.now()
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}
