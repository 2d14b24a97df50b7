package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/model"
	"github.com/iliyamo/tg-marketplace/internal/queue"
	"github.com/iliyamo/tg-marketplace/internal/repository"
)

// EventPublisher broadcasts product creation. Implemented by queue.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ProductCreatedEvent) error
}

const publishTimeout = 5 * time.Second

// ProductService manages the product catalogue.
type ProductService struct {
	db        *sql.DB
	users     *repository.UserRepo
	products  *repository.ProductRepo
	publisher EventPublisher
	log       *zap.Logger
}

func NewProductService(db *sql.DB, users *repository.UserRepo, products *repository.ProductRepo, pub EventPublisher, log *zap.Logger) *ProductService {
	return &ProductService{db: db, users: users, products: products, publisher: pub, log: log}
}

func validateProduct(name string, price float64) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validation("name is required")
	}
	if price <= 0 {
		return apperr.Validation("price must be greater than zero")
	}
	return nil
}

// Create stores a product for sellerID and, once committed, announces it.
// A failed announcement is logged and does not affect the result.
func (s *ProductService) Create(ctx context.Context, sellerID uint64, name string, price float64, description string) (model.Product, error) {
	if err := validateProduct(name, price); err != nil {
		return model.Product{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, apperr.Transient("storage unavailable", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.users.GetByIDTx(ctx, tx, sellerID); err != nil {
		return model.Product{}, notFoundOr(err, ErrUserNotFound, "load seller")
	}
	p, err := s.products.CreateTx(ctx, tx, model.Product{
		Name:        strings.TrimSpace(name),
		Price:       price,
		Description: strings.TrimSpace(description),
		SellerID:    sellerID,
	})
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, fmt.Errorf("commit product: %w", err)
	}
	committed = true

	s.announce(ctx, p)
	return p, nil
}

// announce outlives the request context so a client disconnect right after
// the commit does not drop the event.
func (s *ProductService) announce(ctx context.Context, p model.Product) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	ev := queue.ProductCreatedEvent{
		SellerID:    p.SellerID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
	}
	if err := s.publisher.Publish(pubCtx, ev); err != nil {
		s.log.Warn("product event not published",
			zap.Uint64("product_id", p.ID),
			zap.Uint64("seller_id", p.SellerID),
			zap.Error(err))
	}
}

// Get returns a product, sold or not.
func (s *ProductService) Get(ctx context.Context, id uint64) (model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, notFoundOr(err, ErrProductNotFound, "load product")
	}
	return p, nil
}

// ListAvailable returns every unsold product.
func (s *ProductService) ListAvailable(ctx context.Context) ([]model.Product, error) {
	ps, err := s.products.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return ps, nil
}

// Update applies patch to a product owned by sellerID.
func (s *ProductService) Update(ctx context.Context, id, sellerID uint64, patch model.ProductPatch) (model.Product, error) {
	if patch.Empty() {
		return model.Product{}, ErrNoFields
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Product{}, apperr.Validation("name is required")
		}
		patch.Name = &name
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return model.Product{}, apperr.Validation("price must be greater than zero")
	}
	p, err := s.products.Update(ctx, id, sellerID, patch)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, repository.ErrForbidden):
		return model.Product{}, ErrForbiddenProduct
	default:
		return model.Product{}, notFoundOr(err, ErrProductNotFound, "update product")
	}
}

// Delete removes a product owned by sellerID.
func (s *ProductService) Delete(ctx context.Context, id, sellerID uint64) error {
	err := s.products.Delete(ctx, id, sellerID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrForbidden):
		return ErrForbiddenProduct
	default:
		return notFoundOr(err, ErrProductNotFound, "delete product")
	}
}
