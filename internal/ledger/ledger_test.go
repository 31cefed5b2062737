package ledger

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/chama/internal/apperr"
	"github.com/mmynk/chama/internal/models"
	"github.com/mmynk/chama/internal/storage"
	"github.com/mmynk/chama/internal/storage/sqlite"
)

func setup(t *testing.T) (*sqlite.SQLiteStore, *models.User) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	u := models.NewUser("saver@example.com", "Saver", "", "hash")
	require.NoError(t, store.CreateUser(context.Background(), u))
	return store, u
}

func TestCreditOpensAccountAndMirrorsWallet(t *testing.T) {
	store, u := setup(t)
	ctx := context.Background()

	var movements []*models.WalletTransaction
	err := store.InTx(ctx, func(q storage.Queries) error {
		l := New(q, time.Now())
		tx, err := l.Credit(ctx, Entry{UserID: u.ID, ChamaID: "c1", CycleID: "cy1", Amount: decimal.NewFromInt(100), Reason: models.ReasonContribution})
		require.NoError(t, err)
		assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(100)))

		tx, err = l.Credit(ctx, Entry{UserID: u.ID, ChamaID: "c1", Amount: decimal.NewFromInt(50), Reason: models.ReasonManual})
		require.NoError(t, err)
		assert.True(t, tx.BalanceAfter.Equal(decimal.NewFromInt(150)))

		movements = l.Movements()
		return nil
	})
	require.NoError(t, err)

	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, models.WalletSavingsCredit, m.Type)
		assert.Equal(t, models.DirectionIn, m.Direction)
	}

	acct, err := store.GetSavingsAccount(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, int64(2), acct.Version)

	wallet, err := store.ListWalletTransactions(ctx, u.ID, "")
	require.NoError(t, err)
	assert.Len(t, wallet, 2)
}

func TestDebitRejectsOverdraft(t *testing.T) {
	store, u := setup(t)
	ctx := context.Background()

	err := store.InTx(ctx, func(q storage.Queries) error {
		_, err := New(q, time.Now()).Debit(ctx, Entry{UserID: u.ID, Amount: decimal.NewFromInt(1), Reason: models.ReasonManual})
		return err
	})
	assert.True(t, errors.Is(err, apperr.ErrInsufficientBalance), "no account yet: %v", err)

	require.NoError(t, store.InTx(ctx, func(q storage.Queries) error {
		_, err := New(q, time.Now()).Credit(ctx, Entry{UserID: u.ID, Amount: decimal.NewFromInt(80), Reason: models.ReasonManual})
		return err
	}))

	err = store.InTx(ctx, func(q storage.Queries) error {
		_, err := New(q, time.Now()).Debit(ctx, Entry{UserID: u.ID, Amount: decimal.NewFromInt(81), Reason: models.ReasonManual})
		return err
	})
	assert.Equal(t, apperr.KindInsufficientBalance, apperr.KindOf(err))

	acct, err := store.GetSavingsAccount(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, acct.Balance.Equal(decimal.NewFromInt(80)), "balance must be unchanged")
}

func TestRejectsNonPositiveAmounts(t *testing.T) {
	store, u := setup(t)
	ctx := context.Background()

	for _, amt := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		err := store.InTx(ctx, func(q storage.Queries) error {
			_, err := New(q, time.Now()).Credit(ctx, Entry{UserID: u.ID, Amount: amt})
			return err
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

// Random credit/debit sequences never produce a negative balance and the
// stored balance always equals the sum of the signed transactions.
func TestBalanceNeverNegative(t *testing.T) {
	store, u := setup(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		amt := decimal.NewFromInt(int64(rng.Intn(500) + 1))
		debit := rng.Intn(2) == 0
		_ = store.InTx(ctx, func(q storage.Queries) error {
			l := New(q, time.Now())
			e := Entry{UserID: u.ID, ChamaID: "c1", Amount: amt, Reason: models.ReasonManual}
			var err error
			if debit {
				_, err = l.Debit(ctx, e)
			} else {
				_, err = l.Credit(ctx, e)
			}
			return err
		})
	}

	txs, err := store.ListSavingsTransactions(ctx, u.ID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, tx := range txs {
		assert.False(t, tx.BalanceAfter.IsNegative())
		sum = sum.Add(tx.Signed())
		assert.True(t, sum.Equal(tx.BalanceAfter), "running sum %s != balance_after %s", sum, tx.BalanceAfter)
	}

	bal, err := New(store, time.Now()).Balance(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, bal.Equal(sum))

	perChama, err := store.ChamaSavingsBalance(ctx, u.ID, "c1")
	require.NoError(t, err)
	assert.True(t, perChama.Equal(sum))
}
