package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/repository"
	"github.com/iliyamo/tg-marketplace/internal/testutil"
)

func newPurchaser(db *sql.DB) *Purchaser {
	return NewPurchaser(db, repository.NewUserRepo(db), repository.NewProductRepo(db), zap.NewNop())
}

func TestPurchaseMovesMoneyAndMarksSold(t *testing.T) {
	db := testutil.NewDB(t)
	seller := testutil.CreateUser(t, db, "seller", 10)
	buyer := testutil.CreateUser(t, db, "buyer", 100)
	product := testutil.CreateProduct(t, db, seller, "lamp", 40)

	require.NoError(t, newPurchaser(db).Purchase(context.Background(), buyer, product))

	assert.Equal(t, 60.0, testutil.Wallet(t, db, buyer))
	assert.Equal(t, 50.0, testutil.Wallet(t, db, seller))
	assert.True(t, testutil.IsSold(t, db, product))
}

func TestPurchaseFailures(t *testing.T) {
	db := testutil.NewDB(t)
	seller := testutil.CreateUser(t, db, "seller", 0)
	buyer := testutil.CreateUser(t, db, "buyer", 50)
	cheap := testutil.CreateProduct(t, db, seller, "pen", 5)
	pricey := testutil.CreateProduct(t, db, seller, "car", 500)
	own := testutil.CreateProduct(t, db, buyer, "book", 5)
	p := newPurchaser(db)
	ctx := context.Background()

	require.NoError(t, p.Purchase(ctx, buyer, cheap))

	tests := []struct {
		name    string
		buyer   uint64
		product uint64
		want    error
		kind    apperr.Kind
	}{
		{"buyer missing", 999, pricey, ErrBuyerNotFound, apperr.KindNotFound},
		{"product missing", buyer, 999, ErrProductNotFound, apperr.KindNotFound},
		{"already sold", buyer, cheap, ErrAlreadySold, apperr.KindConflict},
		{"own product", buyer, own, ErrSelfPurchase, apperr.KindValidation},
		{"insufficient funds", buyer, pricey, ErrInsufficientFunds, apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Purchase(ctx, tt.buyer, tt.product)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}

	assert.Equal(t, 45.0, testutil.Wallet(t, db, buyer))
	assert.Equal(t, 5.0, testutil.Wallet(t, db, seller))
	assert.False(t, testutil.IsSold(t, db, pricey))
}

func TestPurchaseChecksBuyerBeforeProduct(t *testing.T) {
	db := testutil.NewDB(t)
	err := newPurchaser(db).Purchase(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrBuyerNotFound)
}

func TestPurchaseSellerGone(t *testing.T) {
	db := testutil.NewDB(t)
	seller := testutil.CreateUser(t, db, "seller", 0)
	buyer := testutil.CreateUser(t, db, "buyer", 50)
	product := testutil.CreateProduct(t, db, seller, "pen", 5)

	// Orphan the product without the cascade.
	_, err := db.Exec("PRAGMA foreign_keys = OFF")
	require.NoError(t, err)
	_, err = db.Exec("DELETE FROM users WHERE id=?", seller)
	require.NoError(t, err)

	err = newPurchaser(db).Purchase(context.Background(), buyer, product)
	assert.ErrorIs(t, err, ErrSellerNotFound)
	assert.Equal(t, 50.0, testutil.Wallet(t, db, buyer))
	assert.False(t, testutil.IsSold(t, db, product))
}

func TestPurchaseRollsBackWhenCreditFails(t *testing.T) {
	db := testutil.NewDB(t)
	seller := testutil.CreateUser(t, db, "seller", 0)
	buyer := testutil.CreateUser(t, db, "buyer", 100)
	product := testutil.CreateProduct(t, db, seller, "lamp", 40)

	_, err := db.Exec(fmt.Sprintf(`CREATE TRIGGER fail_credit BEFORE UPDATE OF wallet ON users
		WHEN NEW.id = %d BEGIN SELECT RAISE(ABORT, 'credit failed'); END`, seller))
	require.NoError(t, err)

	err = newPurchaser(db).Purchase(context.Background(), buyer, product)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	assert.Equal(t, 100.0, testutil.Wallet(t, db, buyer))
	assert.Equal(t, 0.0, testutil.Wallet(t, db, seller))
	assert.False(t, testutil.IsSold(t, db, product))
}

func TestConcurrentPurchaseSellsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	seller := testutil.CreateUser(t, db, "seller", 0)
	product := testutil.CreateProduct(t, db, seller, "lamp", 40)
	const buyers = 5
	ids := make([]uint64, buyers)
	for i := range ids {
		ids[i] = testutil.CreateUser(t, db, fmt.Sprintf("buyer%d", i), 100)
	}
	p := newPurchaser(db)

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			errs[i] = p.Purchase(context.Background(), id, product)
		}(i, id)
	}
	wg.Wait()

	ok, sold := 0, 0
	total := 0.0
	for i, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadySold):
			sold++
		default:
			t.Fatalf("buyer %d: unexpected error %v", i, err)
		}
		total += testutil.Wallet(t, db, ids[i])
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, buyers-1, sold)
	assert.Equal(t, 40.0, testutil.Wallet(t, db, seller))
	assert.Equal(t, buyers*100.0-40, total)
}

// A purchase that passed every check can still lose to a concurrent one
// that commits first. The guarded writes catch it and nothing is kept.
func TestPurchaseLosesRaceAfterChecks(t *testing.T) {
	tests := []struct {
		name  string
		steal func(tx *sql.Tx, buyer, product uint64) error
		want  error
	}{
		{
			name: "product sold concurrently",
			steal: func(tx *sql.Tx, _, product uint64) error {
				_, err := tx.Exec("UPDATE products SET is_sold=1 WHERE id=?", product)
				return err
			},
			want: ErrAlreadySold,
		},
		{
			name: "wallet drained concurrently",
			steal: func(tx *sql.Tx, buyer, _ uint64) error {
				_, err := tx.Exec("UPDATE users SET wallet=10 WHERE id=?", buyer)
				return err
			},
			want: ErrInsufficientFunds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.NewDB(t)
			seller := testutil.CreateUser(t, db, "seller", 0)
			buyer := testutil.CreateUser(t, db, "buyer", 100)
			product := testutil.CreateProduct(t, db, seller, "lamp", 40)

			p := newPurchaser(db)
			p.beforeWrites = func(_ context.Context, tx *sql.Tx) error {
				return tt.steal(tx, buyer, product)
			}

			err := p.Purchase(context.Background(), buyer, product)
			assert.ErrorIs(t, err, tt.want)

			assert.Equal(t, 100.0, testutil.Wallet(t, db, buyer))
			assert.Equal(t, 0.0, testutil.Wallet(t, db, seller))
			assert.False(t, testutil.IsSold(t, db, product))
		})
	}
}

func TestPurchaseDeadlockIsTransient(t *testing.T) {
	db := testutil.NewDB(t)
	seller := testutil.CreateUser(t, db, "seller", 0)
	buyer := testutil.CreateUser(t, db, "buyer", 100)
	product := testutil.CreateProduct(t, db, seller, "lamp", 40)

	p := newPurchaser(db)
	p.beforeWrites = func(context.Context, *sql.Tx) error {
		return &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	}

	err := p.Purchase(context.Background(), buyer, product)
	require.Error(t, err)
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
	assert.Equal(t, 100.0, testutil.Wallet(t, db, buyer))
	assert.False(t, testutil.IsSold(t, db, product))
}

func TestStorageErrKinds(t *testing.T) {
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}

	assert.Equal(t, apperr.KindTransient, apperr.KindOf(conflictOr(lockWait, ErrAlreadySold, "mark sold")))
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(notFoundOr(lockWait, ErrProductNotFound, "load product")))
	assert.ErrorIs(t, conflictOr(repository.ErrConflict, ErrAlreadySold, "mark sold"), ErrAlreadySold)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(notFoundOr(errors.New("disk I/O error"), ErrProductNotFound, "load product")))
}
