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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceView is the caller-facing balance
type BalanceView struct {
	Balance     decimal.Decimal `json:"balance"`
	LastUpdated time.Time       `json:"last_updated"`
}

// TransactionRecord represents a transaction in the account's history
type TransactionRecord struct {
	Id            string          `json:"id"`
	Kind          TransactionKind `json:"transaction_type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	ReferenceId   string          `json:"reference_id,omitempty"`
	ReferenceKind string          `json:"reference_type,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Pagination describes a page of a longer result set
type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
}

// NewPagination derives the page count from a total row count
func NewPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Limit:       limit,
	}
}

// TransactionPage is one page of transaction history
type TransactionPage struct {
	Transactions []TransactionRecord `json:"transactions"`
	Pagination   Pagination          `json:"pagination"`
}

// PostPage is one page of posts
type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// DailyRewardResult is returned by a successful daily claim
type DailyRewardResult struct {
	Reward     decimal.Decimal `json:"reward"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// PurchaseResult is returned by a successful token purchase
type PurchaseResult struct {
	Amount     decimal.Decimal `json:"amount"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

// KindStatsView is the per-kind entry of the stats report
type KindStatsView struct {
	TransactionType TransactionKind `json:"transaction_type"`
	Count           int64           `json:"count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

// StatsView is the caller-facing token economy summary
type StatsView struct {
	TotalTokensInCirculation decimal.Decimal `json:"total_tokens_in_circulation"`
	TransactionStats         []KindStatsView `json:"transaction_stats"`
	UsersWithTokens          int64           `json:"users_with_tokens"`
}
