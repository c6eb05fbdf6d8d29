package testutil

import (
	"context"

	"github.com/loopreach/loopreach/internal/types"
)

const (
	TestOrganizationID = "org_01HV8ZS6TESTORGANIZATION00"
	TestUserID         = "user_01HV8ZS6TESTUSER0000000000"
)

// SetupContext returns a context carrying the default test tenant
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetOrganizationID(ctx, TestOrganizationID)
	ctx = types.SetUserID(ctx, TestUserID)
	return ctx
}

// ContextForOrganization returns a context scoped to a specific tenant
func ContextForOrganization(organizationID string) context.Context {
	return types.SetOrganizationID(context.Background(), organizationID)
}
