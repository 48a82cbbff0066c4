package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/studyroom/backend/internal/domain/entity"
)

// UserRepository defines the interface for staff account persistence.
type UserRepository interface {
	// Create creates a new user in the database.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by their ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
