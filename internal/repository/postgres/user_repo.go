package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventrequests/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, fullname, email, role
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	var role string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.FullName, &u.Email, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return u, nil
}

// Upsert inserts the account or refreshes its name and email. Empty fields keep
// the stored value and the role of an existing row is left as it is.
func (r *userRepository) Upsert(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, fullname, email, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			fullname = COALESCE(NULLIF(EXCLUDED.fullname, ''), users.fullname),
			email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email)
	`
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.FullName, u.Email, string(u.Role))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && (pqErr.Code == "22P02" || pqErr.Code == "23514") {
			return fmt.Errorf("user %s: %w", u.ID, domain.ErrInvalidInput)
		}
		return err
	}
	return nil
}
