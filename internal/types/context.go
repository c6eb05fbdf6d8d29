package types

import (
	"context"
	"fmt"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID      ContextKey = "ctx_request_id"
	CtxOrganizationID ContextKey = "ctx_organization_id"
	CtxUserID         ContextKey = "ctx_user_id"
	CtxDBTransaction  ContextKey = "ctx_db_transaction"

	// Default values
	DefaultOrganizationID = "00000000-0000-0000-0000-000000000000"
	DefaultUserID         = "00000000-0000-0000-0000-000000000000"
)

func GetOrganizationID(ctx context.Context) string {
	if organizationID, ok := ctx.Value(CtxOrganizationID).(string); ok {
		return organizationID
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// SetOrganizationID sets the organization ID in the context
func SetOrganizationID(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, CtxOrganizationID, organizationID)
}

// SetUserID sets the user ID in the context
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxUserID, userID)
}

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, CtxRequestID, requestID)
}

// ValidateOrganizationContext validates that the required tenant context fields are present
func ValidateOrganizationContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is nil")
	}

	organizationID := GetOrganizationID(ctx)
	if organizationID == "" {
		return fmt.Errorf("no organization context found in context")
	}

	return nil
}
