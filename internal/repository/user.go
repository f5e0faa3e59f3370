package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenleaf/plant-store-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByVerificationToken only returns users whose token has not expired.
	GetByVerificationToken(ctx context.Context, token string) (*model.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	UpdateProfile(ctx context.Context, user *model.User) error
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, address, role,
	email_verified, COALESCE(verification_token, ''), verification_expires, created_at, updated_at`

func (r *pgUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, phone, address,
				role, email_verified, verification_token, verification_expires, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.Password, user.FirstName, user.LastName, user.Phone,
		user.Address, user.Role, user.EmailVerified, user.VerificationToken, user.VerificationExp,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *pgUserRepo) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return r.get(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_token = $1 AND verification_expires > NOW()`,
		token,
	)
}

func (r *pgUserRepo) get(ctx context.Context, query string, args ...any) (*model.User, error) {
	user := &model.User{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName, &user.Phone,
		&user.Address, &user.Role, &user.EmailVerified, &user.VerificationToken,
		&user.VerificationExp, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, verification_token = NULL,
			verification_expires = NULL, updated_at = NOW()
		 WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (r *pgUserRepo) SetVerificationToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET verification_token = $2, verification_expires = $3, updated_at = NOW()
		 WHERE id = $1`, id, token, expires,
	)
	if err != nil {
		return fmt.Errorf("set verification token: %w", err)
	}
	return nil
}

func (r *pgUserRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET first_name=$2, last_name=$3, phone=$4, address=$5, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		user.ID, user.FirstName, user.LastName, user.Phone, user.Address,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
