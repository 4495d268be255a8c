package store

import (
	"context"
	"errors"
	"time"

	"token-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrAlreadyClaimed         = errors.New("daily reward already claimed")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrTransient              = errors.New("transient storage failure")
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// IsRetryable reports whether the atomic scope aborted cleanly for a reason
// that may not recur (contention, busy database). Nothing was applied.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification) || errors.Is(err, ErrTransient)
}

// IsClientError reports whether the failure is caused by the request itself
// and will repeat until the input changes.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAlreadyClaimed) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidInput)
}

// CreateAccountParams contains the parameters for opening an account.
type CreateAccountParams struct {
	AccountId string
	Name      string
	Email     string
}

// AdjustBalanceParams describes one compare-and-update of a balance row.
type AdjustBalanceParams struct {
	AccountId       string
	Delta           decimal.Decimal
	ExpectedVersion int64
	TransactionId   string
}

// AppendTransactionParams describes one immutable ledger entry.
type AppendTransactionParams struct {
	TransactionId string
	AccountId     string
	Kind          models.TransactionKind
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	ReferenceId   string
	ReferenceKind string
	CreatedAt     time.Time
}

// CreatePostParams describes a new post row. OriginalPostId is frozen here
// for reshares and never re-resolved.
type CreatePostParams struct {
	PostId         string
	AuthorId       string
	Content        string
	IsReshare      bool
	OriginalPostId string
	CreatedAt      time.Time
}

// AddMediaParams describes attachment metadata for a post.
type AddMediaParams struct {
	MediaId      string
	PostId       string
	MediaType    string
	MediaUrl     string
	ThumbnailUrl string
	CreatedAt    time.Time
}

// CreateLikeParams describes a new like row.
type CreateLikeParams struct {
	LikeId        string
	PostId        string
	AccountId     string
	TransactionId string
	CreatedAt     time.Time
}

// AccountStore manages the identity anchors.
type AccountStore interface {
	// CreateAccount inserts the account and its zero balance. Callers run it
	// inside WithTx so both rows appear together.
	CreateAccount(ctx context.Context, params CreateAccountParams) (*models.Account, error)
	GetAccount(ctx context.Context, accountId string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	GetAccounts(ctx context.Context) ([]models.Account, error)
}

// BalanceStore holds one mutable balance per account.
type BalanceStore interface {
	GetBalance(ctx context.Context, accountId string) (*models.Balance, error)
	LockBalances(ctx context.Context, accountIds ...string) error
	AdjustBalance(ctx context.Context, params AdjustBalanceParams) (*models.Balance, error)
}

// TransactionLog is the append-only record of balance mutations.
type TransactionLog interface {
	AppendTransaction(ctx context.Context, params AppendTransactionParams) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, accountId string, limit, offset int) ([]models.Transaction, int, error)
	HasTransactionSince(ctx context.Context, accountId string, kind models.TransactionKind, since time.Time) (bool, error)
	GetStats(ctx context.Context) (*models.LedgerStats, error)
	ReconcileBalance(ctx context.Context, accountId string) (*models.Reconciliation, error)
}

// ContentStore holds posts, their media and likes.
type ContentStore interface {
	// --- Posts ---
	CreatePost(ctx context.Context, params CreatePostParams) (*models.Post, error)
	AddMedia(ctx context.Context, params AddMediaParams) (*models.Media, error)
	GetPost(ctx context.Context, postId string, includeDeleted bool) (*models.Post, error)
	UpdatePost(ctx context.Context, postId, content string, updatedAt time.Time) (*models.Post, error)
	SoftDeletePost(ctx context.Context, postId string, deletedAt time.Time) error
	IncrementViewCount(ctx context.Context, postId string) error
	ListPosts(ctx context.Context, limit, offset int) ([]models.Post, int, error)
	ListPostsByAuthor(ctx context.Context, authorId string, limit, offset int) ([]models.Post, int, error)

	// --- Likes ---
	CreateLike(ctx context.Context, params CreateLikeParams) (*models.Like, error)
	DeleteLike(ctx context.Context, postId, accountId string) error
	GetLikesForPost(ctx context.Context, postId string) ([]models.Like, error)
	HasLiked(ctx context.Context, postId, accountId string) (bool, error)
}

// Store is the full set of repositories, bound either to the connection pool
// or to one open unit of work.
type Store interface {
	AccountStore
	BalanceStore
	TransactionLog
	ContentStore
}

// LedgerStore defines the contract that every backend (SQLite, PostgreSQL) must satisfy.
type LedgerStore interface {
	Store

	// WithTx runs fn inside one atomic scope. The scope commits when fn
	// returns nil and rolls back on every other exit path, panics included.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	// --- Lifecycle ---
	Ping(ctx context.Context) error
	Close()
}
