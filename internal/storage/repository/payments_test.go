package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/lms/internal/models"
)

func TestStorage_Payments(t *testing.T) {
	storage := setupTestDatabase(t)
	f := NewTestDataFactory(t, storage)
	ctx := context.Background()

	user := f.User("student@example.com")
	other := f.User("other@example.com")
	first := f.Payment(user.ID, "100.50", models.PaymentCash)
	second := f.Payment(user.ID, "200.00", models.PaymentTransfer)
	f.Payment(other.ID, "10.00", models.PaymentCash)

	t.Run("amount keeps precision", func(t *testing.T) {
		got, err := storage.GetPayment(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("100.50").Equal(got.Amount))
		assert.Equal(t, models.PaymentCash, got.Method)
	})

	t.Run("filter by user and method", func(t *testing.T) {
		method := models.PaymentCash
		got, total, err := storage.ListPayments(ctx, models.PaymentFilter{UserID: &user.ID, Method: &method}, models.Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, first.ID, got[0].ID)
	})

	t.Run("order by date desc", func(t *testing.T) {
		got, _, err := storage.ListPayments(ctx, models.PaymentFilter{UserID: &user.ID, OrderDesc: true}, models.Page{Limit: 10})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
	})

	t.Run("session lookup and pending sync", func(t *testing.T) {
		second.SessionID = ptr("cs_test_1")
		second.PaymentURL = ptr("https://checkout.stripe.com/pay/cs_test_1")
		second.Status = models.PaymentStatusPending
		require.NoError(t, storage.UpdatePayment(ctx, second))

		got, err := storage.GetPaymentBySession(ctx, "cs_test_1")
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)

		pending, err := storage.ListPendingPayments(ctx, time.Now().Add(time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		require.NoError(t, storage.UpdatePaymentStatus(ctx, second.ID, models.PaymentStatusPaid))
		pending, err = storage.ListPendingPayments(ctx, time.Now().Add(time.Minute), 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.DeletePayment(ctx, first.ID))
		_, err := storage.GetPayment(ctx, first.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
