package userservice

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/sushihentaime/quill/internal/common"
)

const (
	DefaultLimit  = 100
	DefaultOffset = 0
)

type UserService struct {
	m      userRepository
	mb     common.MessageProducer
	logger *slog.Logger
	now    func() time.Time
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest only touches the fields that are non-nil.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type ListUsersQuery struct {
	Limit  *int
	Offset *int
}

// UserEvent is the body published for user.created, user.updated and user.deleted.
type UserEvent struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

type userRepository interface {
	FindAll(ctx context.Context, limit, offset *int) ([]*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, id string, name, email *string) (*User, error)
	Delete(ctx context.Context, id string) error
}
