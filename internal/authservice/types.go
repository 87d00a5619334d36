package authservice

import (
	"context"
	"time"

	"github.com/sushihentaime/quill/internal/userservice"
)

const (
	TokenTTL = 24 * time.Hour

	DemoUserName = "Demo User"
)

// Issuer signs and verifies HS256 bearer tokens. It holds no per-token state.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type AuthService struct {
	users    userStore
	issuer   *Issuer
	email    string
	password Password
}

type Password struct {
	hash []byte
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string            `json:"token"`
	User  *userservice.User `json:"user"`
}

type userStore interface {
	GetUser(ctx context.Context, id string) (*userservice.User, error)
	GetUserByEmail(ctx context.Context, email string) (*userservice.User, error)
	CreateUser(ctx context.Context, req userservice.CreateUserRequest) (*userservice.User, error)
}
