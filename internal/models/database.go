package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind enumerates the causes of a balance mutation
type TransactionKind string

const (
	KindPostCreation  TransactionKind = "post_creation"
	KindLikeCost      TransactionKind = "like_cost"
	KindLikeReward    TransactionKind = "like_reward"
	KindReshare       TransactionKind = "reshare"
	KindReshareReward TransactionKind = "reshare_reward"
	KindDailyLogin    TransactionKind = "daily_login"
	KindPurchase      TransactionKind = "purchase"
)

// AllTransactionKinds lists every kind in a stable order (used by stats reports)
var AllTransactionKinds = []TransactionKind{
	KindPostCreation,
	KindLikeCost,
	KindLikeReward,
	KindReshare,
	KindReshareReward,
	KindDailyLogin,
	KindPurchase,
}

// Reference kinds attached to transactions
const (
	RefPost        = "post"
	RefPostLike    = "post_like"
	RefPostReshare = "post_reshare"
)

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Account is the identity anchor for a balance and authored content
type Account struct {
	Id        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

// Balance represents the current spendable amount of an account (hot data)
type Balance struct {
	AccountId         string          `db:"account_id"`
	Amount            decimal.Decimal `db:"amount"`
	LastTransactionId string          `db:"last_transaction_id"`
	Version           int64           `db:"version"`
	LastUpdated       time.Time       `db:"last_updated"`
}

// Transaction represents an immutable ledger entry (cold data)
type Transaction struct {
	Id            string          `db:"id"`
	AccountId     string          `db:"account_id"`
	Kind          TransactionKind `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	ReferenceId   string          `db:"reference_id"`
	ReferenceKind string          `db:"reference_kind"`
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Post is an authored item; reshares point at the post they copy
type Post struct {
	Id             string    `db:"id" json:"id"`
	AuthorId       string    `db:"author_id" json:"user_id"`
	Content        string    `db:"content" json:"content"`
	IsEdited       bool      `db:"is_edited" json:"is_edited"`
	IsDeleted      bool      `db:"is_deleted" json:"is_deleted"`
	ViewCount      int64     `db:"view_count" json:"view_count"`
	IsReshare      bool      `db:"is_reshare" json:"is_reshare"`
	OriginalPostId string    `db:"original_post_id" json:"original_post_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
	Media          []Media   `db:"-" json:"media,omitempty"`
}

// Media is attachment metadata for a post. Files live elsewhere.
type Media struct {
	Id           string    `db:"id" json:"id"`
	PostId       string    `db:"post_id" json:"post_id"`
	MediaType    string    `db:"media_type" json:"media_type"`
	MediaUrl     string    `db:"media_url" json:"media_url"`
	ThumbnailUrl string    `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Like is a paid endorsement, unique per (post, account)
type Like struct {
	Id            string    `db:"id" json:"id"`
	PostId        string    `db:"post_id" json:"post_id"`
	AccountId     string    `db:"account_id" json:"user_id"`
	TransactionId string    `db:"transaction_id" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// KindStats aggregates the log entries of one transaction kind
type KindStats struct {
	Kind  TransactionKind
	Count int64
	Total decimal.Decimal
}

// LedgerStats is the token economy summary
type LedgerStats struct {
	TotalInCirculation decimal.Decimal
	PerKind            []KindStats
	AccountsWithTokens int64
}

// Reconciliation compares a stored balance with the sum of its transactions
type Reconciliation struct {
	AccountId  string
	Stored     decimal.Decimal
	Calculated decimal.Decimal
}

func (r Reconciliation) Matches() bool {
	return r.Stored.Equal(r.Calculated)
}

func (r Reconciliation) Difference() decimal.Decimal {
	return r.Stored.Sub(r.Calculated)
}
