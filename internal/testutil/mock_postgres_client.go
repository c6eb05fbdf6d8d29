package testutil

import (
	"context"

	"gorm.io/gorm"
)

// MockPostgresClient satisfies postgres.IClient for tests running against
// in-memory repositories. WithTx executes the function directly; the
// in-memory stores have no transaction semantics to enforce.
type MockPostgresClient struct{}

func NewMockPostgresClient() *MockPostgresClient {
	return &MockPostgresClient{}
}

func (m *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (m *MockPostgresClient) TxFromContext(_ context.Context) *gorm.DB {
	return nil
}

func (m *MockPostgresClient) Querier(_ context.Context) *gorm.DB {
	return nil
}
