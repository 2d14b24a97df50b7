package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/tg-marketplace/internal/repository"
)

// SubscriptionService lets a user follow sellers to be notified of their new
// products.
type SubscriptionService struct {
	users *repository.UserRepo
	subs  *repository.SubscriptionRepo
}

func NewSubscriptionService(users *repository.UserRepo, subs *repository.SubscriptionRepo) *SubscriptionService {
	return &SubscriptionService{users: users, subs: subs}
}

func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, sellerID uint64) error {
	if subscriberID == sellerID {
		return ErrSelfSubscription
	}
	if _, err := s.users.GetByID(ctx, sellerID); err != nil {
		return notFoundOr(err, ErrSellerNotFound, "load seller")
	}
	err := s.subs.Create(ctx, subscriberID, sellerID)
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrAlreadySubscribed
	}
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, sellerID uint64) error {
	err := s.subs.Delete(ctx, subscriberID, sellerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSubscriptionNotFound
	}
	if err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	return nil
}
