package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/repository"
)

// Purchaser moves money from buyer to seller and marks the product sold as
// one transaction.
type Purchaser struct {
	db       *sql.DB
	users    *repository.UserRepo
	products *repository.ProductRepo
	log      *zap.Logger
	tracer   trace.Tracer

	// beforeWrites runs inside the transaction once every check has passed.
	// Tests use it to change rows the way a concurrent purchase would.
	beforeWrites func(ctx context.Context, tx *sql.Tx) error
}

func NewPurchaser(db *sql.DB, users *repository.UserRepo, products *repository.ProductRepo, log *zap.Logger) *Purchaser {
	return &Purchaser{
		db:       db,
		users:    users,
		products: products,
		log:      log,
		tracer:   otel.Tracer("github.com/iliyamo/tg-marketplace/internal/service"),
	}
}

// Purchase checks, in order: buyer exists; product exists and is unsold;
// buyer is not the seller; buyer can afford it; seller exists. Then, in the
// same transaction, it marks the product sold, debits the buyer and credits
// the seller. Each write is guarded, so a purchase racing this one on the
// same product fails with ErrAlreadySold once this one commits. Any error
// rolls back all three writes. Nothing is retried here; a deadlock or lock
// wait timeout is reported as transient so the caller can try again.
func (p *Purchaser) Purchase(ctx context.Context, buyerID, productID uint64) (err error) {
	ctx, span := p.tracer.Start(ctx, "purchase", trace.WithAttributes(
		attribute.Int64("buyer_id", int64(buyerID)),
		attribute.Int64("product_id", int64(productID)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, apperr.KindOf(err).Code())
		}
		span.End()
	}()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Transient("storage unavailable", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	buyer, err := p.users.GetByIDTx(ctx, tx, buyerID)
	if err != nil {
		return notFoundOr(err, ErrBuyerNotFound, "load buyer")
	}
	product, err := p.products.GetByIDTx(ctx, tx, productID)
	if err != nil {
		return notFoundOr(err, ErrProductNotFound, "load product")
	}
	if product.IsSold {
		return ErrAlreadySold
	}
	if product.SellerID == buyerID {
		return ErrSelfPurchase
	}
	if buyer.Wallet < product.Price {
		return ErrInsufficientFunds
	}
	if _, err := p.users.GetByIDTx(ctx, tx, product.SellerID); err != nil {
		return notFoundOr(err, ErrSellerNotFound, "load seller")
	}
	if p.beforeWrites != nil {
		if err := p.beforeWrites(ctx, tx); err != nil {
			return storageErr(err, "before writes")
		}
	}

	if err := p.products.MarkSoldTx(ctx, tx, productID); err != nil {
		return conflictOr(err, ErrAlreadySold, "mark sold")
	}
	if err := p.users.DebitTx(ctx, tx, buyerID, product.Price); err != nil {
		return conflictOr(err, ErrInsufficientFunds, "debit buyer")
	}
	if err := p.users.CreditTx(ctx, tx, product.SellerID, product.Price); err != nil {
		return conflictOr(err, ErrSellerNotFound, "credit seller")
	}

	if err := tx.Commit(); err != nil {
		return storageErr(err, "purchase commit")
	}
	committed = true

	p.log.Info("product purchased",
		zap.Uint64("product_id", productID),
		zap.Uint64("buyer_id", buyerID),
		zap.Uint64("seller_id", product.SellerID),
		zap.Float64("price", product.Price))
	return nil
}

func notFoundOr(err error, notFound *apperr.Error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return storageErr(err, op)
}

func conflictOr(err error, conflict *apperr.Error, op string) error {
	if errors.Is(err, repository.ErrConflict) {
		return conflict
	}
	return storageErr(err, op)
}

func storageErr(err error, op string) error {
	if repository.IsContention(err) {
		return apperr.Transient("storage busy, try again", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
