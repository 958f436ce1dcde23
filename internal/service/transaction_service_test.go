package service

import (
	"context"
	"testing"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransactionRejectsBadRequests(t *testing.T) {
	svc := &transactionService{}
	sacco := uuid.NewString()
	debit := uuid.NewString()
	credit := uuid.NewString()

	cases := []struct {
		name string
		req  CreateTransactionRequest
	}{
		{"zero amount", CreateTransactionRequest{SaccoID: sacco, DebitAccountID: debit, CreditAccountID: credit, Amount: decimal.Zero}},
		{"negative amount", CreateTransactionRequest{SaccoID: sacco, DebitAccountID: debit, CreditAccountID: credit, Amount: decimal.NewFromInt(-10)}},
		{"same account both sides", CreateTransactionRequest{SaccoID: sacco, DebitAccountID: debit, CreditAccountID: debit, Amount: decimal.NewFromInt(100)}},
		{"malformed sacco id", CreateTransactionRequest{SaccoID: "not-a-uuid", DebitAccountID: debit, CreditAccountID: credit, Amount: decimal.NewFromInt(100)}},
		{"malformed debit id", CreateTransactionRequest{SaccoID: sacco, DebitAccountID: "nope", CreditAccountID: credit, Amount: decimal.NewFromInt(100)}},
		{"malformed credit id", CreateTransactionRequest{SaccoID: sacco, DebitAccountID: debit, CreditAccountID: "nope", Amount: decimal.NewFromInt(100)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), tc.req, makerActor())
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestCheckPostable(t *testing.T) {
	saccoID := uuid.New()
	otherSacco := uuid.New()

	active := func(owner *uuid.UUID) *model.Account {
		return &model.Account{
			AccountID: "A-123456000042",
			SaccoID:   owner,
			Status:    workflow.AccountActive,
		}
	}

	t.Run("active account of the same sacco passes", func(t *testing.T) {
		require.NoError(t, checkPostable(active(&saccoID), saccoID))
	})

	t.Run("account without a sacco is rejected", func(t *testing.T) {
		err := checkPostable(active(nil), saccoID)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("account of another sacco is rejected", func(t *testing.T) {
		err := checkPostable(active(&otherSacco), saccoID)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("inactive account is rejected", func(t *testing.T) {
		account := active(&saccoID)
		account.Status = workflow.AccountSuspended
		err := checkPostable(account, saccoID)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}
