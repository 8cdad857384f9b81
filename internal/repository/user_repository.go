package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/Andressalasf/API-Store/internal/model"
)

// UserRepo persists user records.  Password hashing happens in the
// handler layer; this repository only ever sees the bcrypt digest.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, password, role, avatar, created_at"

// Create inserts a user and returns its ID.  A duplicate email maps to
// ErrEmailExists via the MySQL 1062 duplicate-key error.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password, role, avatar) VALUES (?,?,?,?,?)",
		u.Name, normalizeEmail(u.Email), u.Password, u.Role, u.Avatar)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email, ErrNotFound when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", normalizeEmail(email))
}

// GetByID fetches a user by id, ErrNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// List returns users ordered by id with limit/offset pagination.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserUpdate carries the optional fields of a partial user update.  Nil
// fields keep their current value (COALESCE semantics).
type UserUpdate struct {
	Name   *string
	Email  *string
	Role   *string
	Avatar *string
}

// Update applies a partial update and returns the resulting record.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) (model.User, error) {
	var email *string
	if upd.Email != nil {
		e := normalizeEmail(*upd.Email)
		email = &e
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET
			name  = COALESCE(?, name),
			email = COALESCE(?, email),
			role  = COALESCE(?, role),
			avatar = COALESCE(?, avatar)
		WHERE id=?`,
		upd.Name, email, upd.Role, upd.Avatar, id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	// RowsAffected is 0 both for a missing row and for a no-op update, so
	// existence is confirmed by the re-read below.
	if _, err := res.RowsAffected(); err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user, ErrNotFound when no row matched.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanUser(s rowScanner) (model.User, error) {
	var (
		u      model.User
		avatar sql.NullString
	)
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &avatar, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Avatar = avatar.String
	return u, nil
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
