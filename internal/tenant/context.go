package tenant

import (
	"context"

	"github.com/damoang/notion-gateway/internal/domain"
)

type ctxKey struct{}

// WithID returns a context carrying the resolved tenant id
func WithID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenantID)
}

// IDFromContext returns the tenant id stored by WithID, or "default"
func IDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok && id != "" {
		return id
	}
	return domain.DefaultTenantID
}
