package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/tg-marketplace/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, nickname, email, password_hash, wallet, created_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Nickname, &u.Email, &u.PasswordHash, &u.Wallet, &u.CreatedAt)
	return u, err
}

// Create inserts a user with an already hashed password and returns its ID.
// ErrDuplicate means the nickname or email is taken.
func (r *UserRepo) Create(ctx context.Context, nickname, email, passwordHash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (nickname, email, password_hash, wallet) VALUES (?,?,?,0)",
		strings.TrimSpace(nickname), normalizeEmail(email), passwordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByLogin fetches a user by nickname or, failing that, by email.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	login = strings.TrimSpace(login)
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE nickname=? OR email=? ORDER BY nickname=? DESC LIMIT 1",
		login, normalizeEmail(login), login))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByIDTx is GetByID inside tx.
func (r *UserRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.User, error) {
	return scanUser(tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DebitTx subtracts amount from the user's wallet only if the balance covers
// it. ErrConflict means the guard failed (row missing or balance too low).
func (r *UserRepo) DebitTx(ctx context.Context, tx *sql.Tx, id uint64, amount float64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET wallet = wallet - ? WHERE id=? AND wallet >= ?", amount, id, amount)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// CreditTx adds amount to the user's wallet. ErrConflict means the user row
// no longer exists.
func (r *UserRepo) CreditTx(ctx context.Context, tx *sql.Tx, id uint64, amount float64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE users SET wallet = wallet + ? WHERE id=?", amount, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// SetWalletTx overwrites the balance.
func (r *UserRepo) SetWalletTx(ctx context.Context, tx *sql.Tx, id uint64, amount float64) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET wallet = ? WHERE id=?", amount, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
