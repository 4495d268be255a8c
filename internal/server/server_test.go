package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"token-ledger-go/internal/api"
	"token-ledger-go/internal/database"
	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router http.Handler
	ledger *api.LedgerService
	auth   *TokenIssuer
}

func setupTestServer(t *testing.T) *testEnv {
	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "ledger.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
		PingTimeout:  5 * time.Second,
		BusyTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ledger := api.NewLedgerService(api.LedgerServiceConfig{Store: db, Economy: models.DefaultEconomy()})
	auth, err := NewTokenIssuer(models.AuthConfig{Secret: "test-secret", Issuer: "token-ledger", TokenTTL: time.Hour})
	require.NoError(t, err)

	router := NewRouter(models.ServerConfig{}, NewHandler(ledger), auth)
	return &testEnv{router: router, ledger: ledger, auth: auth}
}

// newAccount opens an account, funds it and returns its bearer token
func (e *testEnv) newAccount(t *testing.T, name, funds string) (*models.Account, string) {
	ctx := context.Background()
	account, err := e.ledger.OpenAccount(ctx, name, name+"@example.com")
	require.NoError(t, err)
	if funds != "" {
		_, err = e.ledger.PurchaseTokens(ctx, account.Id, decimal.RequireFromString(funds))
		require.NoError(t, err)
	}
	token, err := e.auth.Issue(account)
	require.NoError(t, err)
	return account, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/tokens/balance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/tokens/balance", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := NewTokenIssuer(models.AuthConfig{Secret: "other-secret", Issuer: "token-ledger", TokenTTL: time.Hour})
	require.NoError(t, err)
	forged, err := other.Issue(&models.Account{Id: "someone", Email: "x@example.com"})
	require.NoError(t, err)
	rec = env.do(t, http.MethodGet, "/tokens/balance", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "unauthorized", body.Code)
}

func TestExpiredToken(t *testing.T) {
	env := setupTestServer(t)
	account, _ := env.newAccount(t, "alice", "")

	env.auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := env.auth.Issue(account)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/tokens/balance", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostLifecycle(t *testing.T) {
	env := setupTestServer(t)
	alice, aliceToken := env.newAccount(t, "alice", "1.00")
	_, bobToken := env.newAccount(t, "bob", "")

	rec := env.do(t, http.MethodPost, "/posts", aliceToken, map[string]any{
		"content": "hello",
		"media":   []map[string]string{{"media_type": "image", "media_url": "https://cdn.example.com/a.png"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decodeBody[models.Post](t, rec)
	assert.Equal(t, alice.Id, post.AuthorId)
	assert.Len(t, post.Media, 1)

	rec = env.do(t, http.MethodGet, "/posts/"+post.Id, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decodeBody[models.Post](t, rec).ViewCount)

	rec = env.do(t, http.MethodPut, "/posts/"+post.Id, bobToken, map[string]string{"content": "mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPut, "/posts/"+post.Id, aliceToken, map[string]string{"content": "edited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[models.Post](t, rec).IsEdited)

	rec = env.do(t, http.MethodGet, "/accounts/"+alice.Id+"/posts", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[models.PostPage](t, rec)
	assert.Equal(t, 1, page.Pagination.Total)

	rec = env.do(t, http.MethodDelete, "/posts/"+post.Id, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/posts/"+post.Id, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestCreatePostErrors(t *testing.T) {
	env := setupTestServer(t)
	_, token := env.newAccount(t, "alice", "0.99")

	rec := env.do(t, http.MethodPost, "/posts", token, map[string]string{"content": "hello"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "insufficient_funds", decodeBody[ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/posts", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/posts", token, map[string]any{
		"content": "hello",
		"media":   []map[string]string{{"media_type": "audio", "media_url": "https://cdn.example.com/a.mp3"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	raw := httptest.NewRecorder()
	env.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestLikeFlow(t *testing.T) {
	env := setupTestServer(t)
	_, aliceToken := env.newAccount(t, "alice", "1.00")
	bob, bobToken := env.newAccount(t, "bob", "1.00")

	rec := env.do(t, http.MethodPost, "/posts", aliceToken, map[string]string{"content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decodeBody[models.Post](t, rec)

	rec = env.do(t, http.MethodPost, "/likes/posts/"+post.Id, bobToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	like := decodeBody[models.Like](t, rec)
	assert.Equal(t, bob.Id, like.AccountId)
	assert.Equal(t, post.Id, like.PostId)

	rec = env.do(t, http.MethodPost, "/likes/posts/"+post.Id, bobToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/likes/posts/"+post.Id+"/check", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[likedResponse](t, rec).Liked)

	rec = env.do(t, http.MethodGet, "/likes/posts/"+post.Id, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[likesResponse](t, rec).Count)

	rec = env.do(t, http.MethodDelete, "/likes/posts/"+post.Id, bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/likes/posts/"+post.Id, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/tokens/balance", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance := decodeBody[models.BalanceView](t, rec)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("0.90")), balance.Balance.String())

	rec = env.do(t, http.MethodGet, "/tokens/balance", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	balance = decodeBody[models.BalanceView](t, rec)
	assert.True(t, balance.Balance.Equal(decimal.RequireFromString("0.10")), balance.Balance.String())
}

func TestReshare(t *testing.T) {
	env := setupTestServer(t)
	_, aliceToken := env.newAccount(t, "alice", "1.00")
	_, bobToken := env.newAccount(t, "bob", "1.00")

	rec := env.do(t, http.MethodPost, "/posts", aliceToken, map[string]string{"content": "original"})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decodeBody[models.Post](t, rec)

	rec = env.do(t, http.MethodPost, "/posts/"+post.Id+"/reshare", bobToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reshare := decodeBody[models.Post](t, rec)
	assert.True(t, reshare.IsReshare)
	assert.Equal(t, post.Id, reshare.OriginalPostId)
	assert.Equal(t, "original", reshare.Content)

	rec = env.do(t, http.MethodPost, "/posts/"+post.Id+"/reshare", bobToken, map[string]string{"content": "again"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = env.do(t, http.MethodPost, "/posts/missing/reshare", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokenEndpoints(t *testing.T) {
	env := setupTestServer(t)
	_, token := env.newAccount(t, "alice", "")

	rec := env.do(t, http.MethodPost, "/tokens/daily-reward", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reward := decodeBody[models.DailyRewardResult](t, rec)
	assert.True(t, reward.Reward.Equal(decimal.RequireFromString("0.50")))

	rec = env.do(t, http.MethodPost, "/tokens/daily-reward", token, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "already_claimed", decodeBody[ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/tokens/purchase", token, map[string]any{"amount": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/tokens/purchase", token, map[string]any{"amount": "2.50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	purchase := decodeBody[models.PurchaseResult](t, rec)
	assert.True(t, purchase.NewBalance.Equal(decimal.RequireFromString("3.00")), purchase.NewBalance.String())

	rec = env.do(t, http.MethodGet, "/tokens/transactions?page=1&limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody[models.TransactionPage](t, rec)
	require.Len(t, history.Transactions, 1)
	assert.Equal(t, models.KindPurchase, history.Transactions[0].Kind)
	assert.Equal(t, models.Pagination{Total: 2, TotalPages: 2, CurrentPage: 1, Limit: 1}, history.Pagination)

	rec = env.do(t, http.MethodGet, "/tokens/transactions?page=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/tokens/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[models.StatsView](t, rec)
	assert.True(t, stats.TotalTokensInCirculation.Equal(decimal.RequireFromString("3.00")))
	assert.Equal(t, int64(1), stats.UsersWithTokens)
	assert.Len(t, stats.TransactionStats, len(models.AllTransactionKinds))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("post x: %w", store.ErrNotFound), http.StatusNotFound, "not_found"},
		{store.ErrConflict, http.StatusConflict, "conflict"},
		{store.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},
		{store.ErrAlreadyClaimed, http.StatusTooManyRequests, "already_claimed"},
		{store.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount"},
		{store.ErrForbidden, http.StatusForbidden, "forbidden"},
		{store.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("like_post failed: %w", store.ErrTransient), http.StatusServiceUnavailable, "transient"},
		{store.ErrConcurrentModification, http.StatusServiceUnavailable, "transient"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		status, code := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}
