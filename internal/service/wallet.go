package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/repository"
)

// WalletService applies the two balance changes users can trigger
// themselves. Each runs in its own transaction.
type WalletService struct {
	db     *sql.DB
	users  *repository.UserRepo
	reward float64
}

func NewWalletService(db *sql.DB, users *repository.UserRepo, reward float64) *WalletService {
	return &WalletService{db: db, users: users, reward: reward}
}

// Reward credits the configured amount and returns the new balance.
func (s *WalletService) Reward(ctx context.Context, userID uint64) (float64, error) {
	return s.apply(ctx, userID, func(tx *sql.Tx) error {
		return s.users.CreditTx(ctx, tx, userID, s.reward)
	})
}

// Clear sets the balance to zero.
func (s *WalletService) Clear(ctx context.Context, userID uint64) (float64, error) {
	return s.apply(ctx, userID, func(tx *sql.Tx) error {
		return s.users.SetWalletTx(ctx, tx, userID, 0)
	})
}

func (s *WalletService) apply(ctx context.Context, userID uint64, write func(*sql.Tx) error) (float64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Transient("storage unavailable", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := write(tx); err != nil {
		return 0, conflictOr(err, ErrUserNotFound, "update wallet")
	}
	u, err := s.users.GetByIDTx(ctx, tx, userID)
	if err != nil {
		return 0, notFoundOr(err, ErrUserNotFound, "reload wallet")
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit wallet: %w", err)
	}
	committed = true
	return u.Wallet, nil
}
