package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/model"
)

// catalogue seeds the demo products: five per sector.
var catalogue = []struct {
	sector string
	items  [5]string
}{
	{"Electronics", [5]string{"Smartphone", "Laptop", "Headphones", "Smartwatch", "Tablet"}},
	{"Books", [5]string{"Novel", "Biography", "Textbook", "Comic", "Magazine"}},
	{"Clothing", [5]string{"T-shirt", "Jeans", "Jacket", "Dress", "Sweater"}},
	{"Home Appliances", [5]string{"Microwave", "Vacuum", "Blender", "Toaster", "Fridge"}},
	{"Toys", [5]string{"Puzzle", "Doll", "RC Car", "Lego Set", "Board Game"}},
	{"Sports", [5]string{"Football", "Basketball", "Tennis Racket", "Running Shoes", "Yoga Mat"}},
	{"Office", [5]string{"Notebook", "Pen", "Desk Chair", "Monitor Stand", "Stapler"}},
	{"Beauty", [5]string{"Lipstick", "Shampoo", "Perfume", "Face Cream", "Hair Dryer"}},
	{"Food", [5]string{"Chocolate", "Coffee", "Olive Oil", "Cheese", "Honey"}},
	{"Garden", [5]string{"Hose", "Shovel", "Gloves", "Plant Pot", "Fertilizer"}},
}

// ManageService backs the operational endpoints.
type ManageService struct {
	db       *sql.DB
	products *ProductService
	rnd      *rand.Rand
}

func NewManageService(db *sql.DB, products *ProductService) *ManageService {
	seed := uint64(time.Now().UnixNano())
	return &ManageService{db: db, products: products, rnd: rand.New(rand.NewPCG(seed, seed>>1))}
}

// Health pings the database.
func (s *ManageService) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return apperr.Transient("database unreachable", err)
	}
	return nil
}

// Users lists every account.
func (s *ManageService) Users(ctx context.Context) ([]model.UserSummary, error) {
	us, err := s.products.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]model.UserSummary, 0, len(us))
	for _, u := range us {
		out = append(out, model.UserSummary{ID: u.ID, Nickname: u.Nickname})
	}
	return out, nil
}

// Populate creates five products per sector for sellerID in one transaction
// and announces each after the commit.
func (s *ManageService) Populate(ctx context.Context, sellerID uint64) ([]model.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Transient("storage unavailable", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := s.products.users.GetByIDTx(ctx, tx, sellerID); err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "load seller")
	}
	created := make([]model.Product, 0, len(catalogue)*5)
	for _, c := range catalogue {
		for _, item := range c.items {
			p, err := s.products.products.CreateTx(ctx, tx, s.randomProduct(sellerID, c.sector, item))
			if err != nil {
				return nil, fmt.Errorf("insert product: %w", err)
			}
			created = append(created, p)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit products: %w", err)
	}
	committed = true

	for _, p := range created {
		s.products.announce(ctx, p)
	}
	return created, nil
}

func (s *ManageService) randomProduct(sellerID uint64, sector, base string) model.Product {
	price := 10 + s.rnd.Float64()*990
	return model.Product{
		Name:        fmt.Sprintf("%s %d", base, 1000+s.rnd.IntN(9000)),
		Price:       math.Round(price*100) / 100,
		Description: fmt.Sprintf("High quality %s from %s sector.", strings.ToLower(base), strings.ToLower(sector)),
		SellerID:    sellerID,
	}
}
