package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/tg-marketplace/internal/model"
)

// SubscriptionRepo stores who follows which seller.
type SubscriptionRepo struct{ db *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

// Create stores the pair. ErrDuplicate if it already exists.
func (r *SubscriptionRepo) Create(ctx context.Context, subscriberID, sellerID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO subscriptions (subscriber_id, seller_id) VALUES (?,?)", subscriberID, sellerID)
	if err != nil && isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes the pair; sql.ErrNoRows if it did not exist.
func (r *SubscriptionRepo) Delete(ctx context.Context, subscriberID, sellerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM subscriptions WHERE subscriber_id=? AND seller_id=?", subscriberID, sellerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SubscriberIDs lists the users following sellerID.
func (r *SubscriptionRepo) SubscriberIDs(ctx context.Context, sellerID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT subscriber_id FROM subscriptions WHERE seller_id=? ORDER BY subscriber_id", sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Sellers lists the sellers subscriberID follows.
func (r *SubscriptionRepo) Sellers(ctx context.Context, subscriberID uint64) ([]model.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.nickname, u.email
		FROM subscriptions s JOIN users u ON u.id = s.seller_id
		WHERE s.subscriber_id=? ORDER BY u.id`, subscriberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Nickname, &u.Email); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
