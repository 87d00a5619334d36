package userservice

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/sushihentaime/quill/internal/common"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindAll(ctx context.Context, limit, offset *int) ([]*User, error) {
	args := m.Called(ctx, limit, offset)
	users, _ := args.Get(0).([]*User)
	return users, args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, id string, name, email *string) (*User, error) {
	args := m.Called(ctx, id, name, email)
	u, _ := args.Get(0).(*User)
	return u, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMessageProducer struct {
	mock.Mock
}

func (m *MockMessageProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	args := m.Called(ctx, msg, key, exchange)
	return args.Error(0)
}
