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

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

const defaultConcurrency = 4

// Source is what the reconciler needs from the ledger
type Source interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ReconcileBalance(ctx context.Context, accountId string) (*models.Reconciliation, error)
}

// Config contains configuration for Reconciler
type Config struct {
	Source      Source
	Interval    time.Duration
	Concurrency int
}

// Report summarizes one reconciliation pass
type Report struct {
	Checked    int
	Mismatches []models.Reconciliation
	StartedAt  time.Time
	Duration   time.Duration
}

// Reconciler periodically checks that every stored balance equals the sum
// of the account's transaction log
type Reconciler struct {
	source      Source
	interval    time.Duration
	concurrency int

	mu   sync.Mutex
	last *Report

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

func New(cfg Config) (*Reconciler, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("reconciler source cannot be nil")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("reconcile interval must be positive, got %v", cfg.Interval)
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Reconciler{
		source:      cfg.Source,
		interval:    cfg.Interval,
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}, nil
}

// Start runs a first pass and then one pass per interval until Stop
func (r *Reconciler) Start(ctx context.Context) {
	zap.L().Info("Starting balance reconciler",
		zap.Duration("interval", r.interval),
		zap.Int("concurrency", r.concurrency))
	go r.loop(ctx)
}

// Stop ends the loop and waits for the running pass to finish
func (r *Reconciler) Stop() {
	zap.L().Info("Stopping balance reconciler")
	r.stopOnce.Do(func() { close(r.stopChan) })
	<-r.doneChan
	zap.L().Info("Balance reconciler stopped")
}

// LastReport returns the result of the most recent completed pass
func (r *Reconciler) LastReport() *Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.doneChan)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runLogged(ctx)

	for {
		select {
		case <-ticker.C:
			r.runLogged(ctx)
		case <-r.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *Reconciler) runLogged(ctx context.Context) {
	report, err := r.RunOnce(ctx)
	if err != nil {
		zap.L().Error("Reconciliation pass failed", zap.Error(err))
		return
	}
	if len(report.Mismatches) > 0 {
		zap.L().Error("Reconciliation found mismatched balances",
			zap.Int("checked", report.Checked),
			zap.Int("mismatches", len(report.Mismatches)))
		return
	}
	zap.L().Info("Reconciliation pass clean",
		zap.Int("checked", report.Checked),
		zap.Duration("duration", report.Duration))
}

// RunOnce reconciles every account once. Accounts without a balance row are
// skipped; any other failure aborts the pass.
func (r *Reconciler) RunOnce(ctx context.Context) (*Report, error) {
	started := time.Now()

	accounts, err := r.source.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	results := make([]*models.Reconciliation, len(accounts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			result, err := r.source.ReconcileBalance(gctx, account.Id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					zap.L().Debug("Skipping account without balance", zap.String("account_id", account.Id))
					return nil
				}
				return fmt.Errorf("account %s: %w", account.Id, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{StartedAt: started}
	for _, result := range results {
		if result == nil {
			continue
		}
		report.Checked++
		if !result.Matches() {
			report.Mismatches = append(report.Mismatches, *result)
		}
	}
	report.Duration = time.Since(started)

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	return report, nil
}
