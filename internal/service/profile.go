package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/tg-marketplace/internal/model"
	"github.com/iliyamo/tg-marketplace/internal/repository"
)

// Profile is a user with their listings and followed sellers.
type Profile struct {
	User          model.User
	Products      []model.Product
	Subscriptions []model.UserSummary
}

type ProfileService struct {
	users    *repository.UserRepo
	products *repository.ProductRepo
	subs     *repository.SubscriptionRepo
}

func NewProfileService(users *repository.UserRepo, products *repository.ProductRepo, subs *repository.SubscriptionRepo) *ProfileService {
	return &ProfileService{users: users, products: products, subs: subs}
}

func (s *ProfileService) Get(ctx context.Context, userID uint64) (Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, notFoundOr(err, ErrUserNotFound, "load user")
	}
	products, err := s.products.ListBySeller(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("list products: %w", err)
	}
	sellers, err := s.subs.Sellers(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("list subscriptions: %w", err)
	}
	return Profile{User: u, Products: products, Subscriptions: sellers}, nil
}
