package authservice

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/google/uuid"
	"github.com/sushihentaime/quill/internal/common"
	"github.com/sushihentaime/quill/internal/userservice"
)

// NewAuthService hashes the configured demo password once. Login is disabled
// when either demo credential is empty.
func NewAuthService(users userStore, issuer *Issuer, demoEmail, demoPassword string) (*AuthService, error) {
	s := &AuthService{
		users:  users,
		issuer: issuer,
		email:  demoEmail,
	}

	if demoEmail != "" && demoPassword != "" {
		if err := s.password.set(demoPassword); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *AuthService) Issuer() *Issuer {
	return s.issuer
}

// Login accepts only the configured demo credentials. The demo user is created
// on first login and a token is issued for its id.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if s.email == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrUnauthorized
	}

	if subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.email)) != 1 {
		return nil, common.ErrUnauthorized
	}

	ok, err := s.password.compare(req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrUnauthorized
	}

	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, common.ErrNotFound) {
		u, err = s.users.CreateUser(ctx, userservice.CreateUserRequest{Name: DemoUserName, Email: req.Email})
		// a concurrent first login created it in between
		if errors.Is(err, common.ErrConflict) {
			u, err = s.users.GetUserByEmail(ctx, req.Email)
		}
	}
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: u}, nil
}

// CurrentUser resolves a verified token subject to its user.
func (s *AuthService) CurrentUser(ctx context.Context, subject string) (*userservice.User, error) {
	if _, err := uuid.Parse(subject); err != nil {
		v := common.NewValidator()
		v.AddError("sub", "must be a valid user id")
		return nil, v.ValidationError()
	}

	return s.users.GetUser(ctx, subject)
}
