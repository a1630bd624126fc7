package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type userRepository struct {
	q querier
}

func (r *userRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user.Email = strings.TrimSpace(user.Email)
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, name, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, user.Email, user.PasswordHash, user.Name).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `WHERE LOWER(email) = LOWER($1)`, strings.TrimSpace(email))
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var user domain.User
	err := r.q.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users `+where, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
