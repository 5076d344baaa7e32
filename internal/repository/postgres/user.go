package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dhinakarr/realtors-app-sub001/internal/model"
	"github.com/dhinakarr/realtors-app-sub001/internal/repository"
	apperrors "github.com/dhinakarr/realtors-app-sub001/pkg/errors"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, email, active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	if err := r.GetDB().GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindActiveByRole(ctx context.Context, role model.Role) ([]*model.User, error) {
	// created_at ASC gives "first holder of the role" a stable meaning
	// instead of depending on storage order.
	query := `
		SELECT u.id, u.name, u.email, u.active, u.created_at, u.updated_at
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role = $1 AND u.active = TRUE
		ORDER BY u.created_at ASC
	`
	users := []*model.User{}
	if err := r.GetDB().SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("failed to find users by role: %w", err)
	}
	return users, nil
}
