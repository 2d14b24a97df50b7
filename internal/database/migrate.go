package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the MySQL schema for users, products and subscriptions.
// Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		nickname      VARCHAR(64)  NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		wallet        DOUBLE       NOT NULL DEFAULT 0,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_nickname (nickname),
		UNIQUE KEY uq_users_email (email),
		CONSTRAINT chk_users_wallet CHECK (wallet >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255)    NOT NULL,
		price       DOUBLE          NOT NULL,
		description TEXT            NOT NULL,
		seller_id   BIGINT UNSIGNED NOT NULL,
		is_sold     TINYINT(1)      NOT NULL DEFAULT 0,
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_products_seller (seller_id),
		KEY idx_products_sold (is_sold),
		CONSTRAINT fk_products_seller FOREIGN KEY (seller_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT chk_products_price CHECK (price > 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		subscriber_id BIGINT UNSIGNED NOT NULL,
		seller_id     BIGINT UNSIGNED NOT NULL,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_subscriptions_pair (subscriber_id, seller_id),
		KEY idx_subscriptions_seller (seller_id),
		CONSTRAINT fk_subscriptions_subscriber FOREIGN KEY (subscriber_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_subscriptions_seller FOREIGN KEY (seller_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies stmts in order.
func Migrate(ctx context.Context, db *sql.DB, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
