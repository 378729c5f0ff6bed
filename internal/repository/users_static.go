package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liceolabs/prospect-crm/api/internal/entity"
)

// StaticUsersRepository serves a fixed account list seeded from the
// environment. The file-backed deployments run without PostgreSQL, and a
// small interactive team does not need user management there — only login.
// All mutating operations report not-found.
type StaticUsersRepository struct {
	users []entity.User
}

var _ UsersRepository = (*StaticUsersRepository)(nil)

// NewStaticUsersRepository builds a read-only repository over the given
// accounts, assigning ids and timestamps when missing.
func NewStaticUsersRepository(users []entity.User) *StaticUsersRepository {
	now := time.Now().UTC()
	seeded := make([]entity.User, 0, len(users))
	for _, user := range users {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
			user.UpdatedAt = now
		}
		seeded = append(seeded, user)
	}
	return &StaticUsersRepository{users: seeded}
}

// FindByEmail matches case-insensitively, like the database unique index.
func (r *StaticUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByID retrieves a seeded account by id.
func (r *StaticUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, ErrUserNotFound
}

// Create is not supported on a static account list.
func (r *StaticUsersRepository) Create(ctx context.Context, email, passwordHash, role string) (*entity.User, error) {
	return nil, ErrUserNotFound
}

// List returns the seeded accounts.
func (r *StaticUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	return append([]entity.User(nil), r.users...), nil
}

// Update is not supported on a static account list.
func (r *StaticUsersRepository) Update(ctx context.Context, id uuid.UUID, email, passwordHash, role *string) (*entity.User, error) {
	return nil, ErrUserNotFound
}

// Delete is not supported on a static account list.
func (r *StaticUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return ErrUserNotFound
}
