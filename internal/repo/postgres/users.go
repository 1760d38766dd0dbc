package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/coursehub/internal/domain/user"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, role, password_hash, password_changed_at,
	password_reset_token, password_reset_expires, active, created_at, updated_at`

type UsersRepo struct {
	base
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{base{pool: pool, prom: prom}}
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&role,
		&u.PasswordHash,
		&u.PasswordChangedAt,
		&u.PasswordResetToken,
		&u.PasswordResetExpires,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	u.Role = user.Role(role)
	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = dbTime(u.CreatedAt), dbTime(u.UpdatedAt)

	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (`+userColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			u.ID, u.Name, u.Email, string(u.Role), u.PasswordHash, u.PasswordChangedAt,
			u.PasswordResetToken, u.PasswordResetExpires, u.Active, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return user.User{}, translatePgError(err)
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var (
		u   user.User
		err error
	)

	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1 AND active`, email))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}

	var (
		u   user.User
		err error
	)

	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1 AND active`, id))
		return err
	})

	return u, err
}

func (r *UsersRepo) GetByResetToken(ctx context.Context, hashed string, now time.Time) (user.User, error) {
	var (
		u   user.User
		err error
	)

	err = r.observe("users.get_by_reset_token", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			 FROM users
			 WHERE password_reset_token = $1
			   AND password_reset_expires > $2
			   AND active`, hashed, now))
		return err
	})

	return u, err
}

// SetResetToken stores or, with nil arguments, clears the reset token.
func (r *UsersRepo) SetResetToken(ctx context.Context, id string, hashed *string, expires *time.Time) error {
	return r.exec(ctx, "users.set_reset_token",
		`UPDATE users
		 SET password_reset_token = $2,
		     password_reset_expires = $3,
		     updated_at = NOW()
		 WHERE id = $1 AND active`, id, hashed, expires)
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error {
	return r.exec(ctx, "users.update_password",
		`UPDATE users
		 SET password_hash = $2,
		     password_changed_at = $3,
		     password_reset_token = NULL,
		     password_reset_expires = NULL,
		     updated_at = NOW()
		 WHERE id = $1 AND active`, id, hash, changedAt)
}

func (r *UsersRepo) Deactivate(ctx context.Context, id string) error {
	return r.exec(ctx, "users.deactivate",
		`UPDATE users SET active = FALSE, updated_at = NOW() WHERE id = $1 AND active`, id)
}

func (r *UsersRepo) exec(ctx context.Context, op, sql string, args ...any) error {
	var tag pgconn.CommandTag

	err := r.observe(op, func() error {
		var err error
		tag, err = r.pool.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return translatePgError(err)
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}
