package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sanket913/VoiceMitra/internal/db/queries"
)

type userStore interface {
	CreateUser(ctx context.Context, arg queries.CreateUserParams) (queries.User, error)
	GetUserByEmail(ctx context.Context, email pgtype.Text) (queries.User, error)
	GetUserByID(ctx context.Context, userID pgtype.UUID) (queries.User, error)
	UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error
	UpdateUserPassword(ctx context.Context, arg queries.UpdateUserPasswordParams) error
}

// UserRepository exposes typed DB operations required by auth flows.
type UserRepository struct {
	store userStore
}

// NewUserRepository wraps the query layer for user-specific operations.
func NewUserRepository(store userStore) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a new account.
func (r *UserRepository) Create(ctx context.Context, params queries.CreateUserParams) (queries.User, error) {
	return r.store.CreateUser(ctx, params)
}

// GetByEmail fetches a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (queries.User, error) {
	u, err := r.store.GetUserByEmail(ctx, pgtype.Text{String: email, Valid: true})
	return u, notFound(err)
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (queries.User, error) {
	u, err := r.store.GetUserByID(ctx, PgUUID(userID))
	return u, notFound(err)
}

// UpdateLogin records the last login timestamp.
func (r *UserRepository) UpdateLogin(ctx context.Context, userID uuid.UUID) error {
	return r.store.UpdateUserLogin(ctx, PgUUID(userID))
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	return r.store.UpdateUserPassword(ctx, queries.UpdateUserPasswordParams{
		UserID:       PgUUID(userID),
		PasswordHash: pgtype.Text{String: hash, Valid: true},
	})
}
