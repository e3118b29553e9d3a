package keymanager_test

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockSecretStore struct {
	mock.Mock
}

func (m *mockSecretStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)

	var res []byte
	if a := args.Get(0); a != nil {
		res = a.([]byte)
	}
	return res, args.Error(1)
}

func (m *mockSecretStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockSecretStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
