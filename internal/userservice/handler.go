package userservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sushihentaime/quill/internal/common"
)

// NewUserService wires the postgres repository. mb may be nil when no broker is configured.
func NewUserService(db *sql.DB, mb common.MessageProducer, logger *slog.Logger) *UserService {
	return newUserService(NewUserModel(db), mb, logger)
}

func newUserService(m userRepository, mb common.MessageProducer, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserService{
		m:      m,
		mb:     mb,
		logger: logger,
		now:    time.Now,
	}
}

func (s *UserService) ListUsers(ctx context.Context, q ListUsersQuery) ([]*User, error) {
	v := common.NewValidator()
	ValidateListUsers(v, q)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.FindAll(ctx, q.Limit, q.Offset)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*User, error) {
	return s.m.FindByID(ctx, id)
}

// GetUserByEmail returns common.ErrNotFound when no user owns the address.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.m.FindByEmail(ctx, email)
}

// CreateUser validates the request, refuses an email that is already taken and
// stores a new user with a generated id.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	v := common.NewValidator()
	ValidateCreateUser(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	ctx = context.WithoutCancel(ctx)

	_, err := s.m.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, common.ErrConflict
	case !errors.Is(err, common.ErrNotFound):
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	u := &User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.m.Insert(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", slog.String("id", u.ID), slog.String("email", u.Email))
	s.publish(ctx, common.UserCreatedKey, u)

	return u, nil
}

// UpdateUser applies a partial update. Changing the email to one owned by another
// user is a conflict; re-submitting the user's own email is not.
func (s *UserService) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	v := common.NewValidator()
	ValidateUpdateUser(v, req)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	ctx = context.WithoutCancel(ctx)

	current, err := s.m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != current.Email {
		owner, err := s.m.FindByEmail(ctx, *req.Email)
		switch {
		case err == nil && owner.ID != current.ID:
			return nil, common.ErrConflict
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return nil, err
		}
	}

	u, err := s.m.Update(ctx, id, req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", slog.String("id", u.ID))
	s.publish(ctx, common.UserUpdatedKey, u)

	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	ctx = context.WithoutCancel(ctx)

	if err := s.m.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("id", id))
	s.publish(ctx, common.UserDeletedKey, &User{ID: id})

	return nil
}
