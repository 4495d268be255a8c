package api

import (
	"context"
	"errors"
	"fmt"

	"token-ledger-go/internal/models"
	"token-ledger-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// entry describes one leg of an action: a balance adjustment and its log row
type entry struct {
	accountId     string
	kind          models.TransactionKind
	amount        decimal.Decimal // signed
	referenceId   string
	referenceKind string
}

// postEntry adjusts the balance and appends the matching transaction inside
// tx. Debits re-check the authoritative balance under the same scope.
func (s *LedgerService) postEntry(ctx context.Context, tx store.Store, e entry) (*models.Transaction, *models.Balance, error) {
	balance, err := tx.GetBalance(ctx, e.accountId)
	if err != nil {
		return nil, nil, err
	}

	if e.amount.IsNegative() && balance.Amount.LessThan(e.amount.Neg()) {
		return nil, nil, fmt.Errorf("balance %s below required %s: %w",
			balance.Amount.StringFixed(2), e.amount.Neg().StringFixed(2), store.ErrInsufficientFunds)
	}

	transactionId := uuid.New().String()
	updated, err := tx.AdjustBalance(ctx, store.AdjustBalanceParams{
		AccountId:       e.accountId,
		Delta:           e.amount,
		ExpectedVersion: balance.Version,
		TransactionId:   transactionId,
	})
	if err != nil {
		return nil, nil, err
	}

	logged, err := tx.AppendTransaction(ctx, store.AppendTransactionParams{
		TransactionId: transactionId,
		AccountId:     e.accountId,
		Kind:          e.kind,
		Amount:        e.amount,
		BalanceBefore: balance.Amount,
		BalanceAfter:  updated.Amount,
		ReferenceId:   e.referenceId,
		ReferenceKind: e.referenceKind,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return nil, nil, err
	}

	return logged, updated, nil
}

// postReward credits a recipient. A recipient without a balance row is
// skipped and the reward is burned.
func (s *LedgerService) postReward(ctx context.Context, tx store.Store, e entry) error {
	_, _, err := s.postEntry(ctx, tx, e)
	if errors.Is(err, store.ErrNotFound) {
		zap.L().Warn("Reward recipient has no balance, skipping credit",
			zap.String("account_id", e.accountId),
			zap.String("kind", string(e.kind)),
			zap.String("amount", e.amount.StringFixed(2)),
			zap.String("reference_id", e.referenceId))
		return nil
	}
	return err
}

// requireFunds checks the payer's balance before any content is written
func requireFunds(ctx context.Context, tx store.Store, accountId string, cost decimal.Decimal) error {
	balance, err := tx.GetBalance(ctx, accountId)
	if err != nil {
		return err
	}
	if balance.Amount.LessThan(cost) {
		return fmt.Errorf("balance %s below required %s: %w",
			balance.Amount.StringFixed(2), cost.StringFixed(2), store.ErrInsufficientFunds)
	}
	return nil
}
