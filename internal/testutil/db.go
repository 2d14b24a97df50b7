// Package testutil provides an in-memory SQLite database carrying the same
// tables as the MySQL schema, for repository and service tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/database"
)

var sqliteSchema = []string{
	`CREATE TABLE users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		nickname      TEXT     NOT NULL UNIQUE,
		email         TEXT     NOT NULL UNIQUE,
		password_hash TEXT     NOT NULL,
		wallet        REAL     NOT NULL DEFAULT 0 CHECK (wallet >= 0),
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE products (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT     NOT NULL,
		price       REAL     NOT NULL CHECK (price > 0),
		description TEXT     NOT NULL DEFAULT '',
		seller_id   INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		is_sold     INTEGER  NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE subscriptions (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		subscriber_id INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		seller_id     INTEGER  NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (subscriber_id, seller_id)
	)`,
}

var dbSeq atomic.Int64

// NewDB opens a private in-memory database with the schema applied. A
// single connection is used so concurrent transactions are serialized the
// way row locks serialize them in MySQL.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_foreign_keys=on", dbSeq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(context.Background(), db, sqliteSchema); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with a known password ("secret") and wallet.
func CreateUser(t testing.TB, db *sql.DB, nickname string, wallet float64) uint64 {
	t.Helper()
	hash, err := auth.HashPassword("secret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	res, err := db.Exec(
		"INSERT INTO users (nickname, email, password_hash, wallet) VALUES (?,?,?,?)",
		nickname, nickname+"@example.com", hash, wallet)
	if err != nil {
		t.Fatalf("insert user %s: %v", nickname, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// CreateProduct inserts an unsold product.
func CreateProduct(t testing.TB, db *sql.DB, sellerID uint64, name string, price float64) uint64 {
	t.Helper()
	res, err := db.Exec(
		"INSERT INTO products (name, price, description, seller_id) VALUES (?,?,?,?)",
		name, price, name+" description", sellerID)
	if err != nil {
		t.Fatalf("insert product %s: %v", name, err)
	}
	id, _ := res.LastInsertId()
	return uint64(id)
}

// Wallet reads a user's balance.
func Wallet(t testing.TB, db *sql.DB, userID uint64) float64 {
	t.Helper()
	var w float64
	if err := db.QueryRow("SELECT wallet FROM users WHERE id=?", userID).Scan(&w); err != nil {
		t.Fatalf("wallet %d: %v", userID, err)
	}
	return w
}

// IsSold reads a product's sold flag.
func IsSold(t testing.TB, db *sql.DB, productID uint64) bool {
	t.Helper()
	var sold bool
	if err := db.QueryRow("SELECT is_sold FROM products WHERE id=?", productID).Scan(&sold); err != nil {
		t.Fatalf("is_sold %d: %v", productID, err)
	}
	return sold
}
