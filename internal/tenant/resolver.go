// Package tenant turns request signals into a tenant id and gates
// administrative operations on tenant status.
package tenant

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/rs/zerolog"
)

// Request signal names
const (
	HeaderTenantID    = "X-Tenant-ID"
	QueryTenantID     = "tenant_id"
	QueryTenantIDAlt  = "_tenant"
	minSubdomainParts = 3
)

// Directory looks tenants up. Implementations return nil, nil when no
// tenant matches.
type Directory interface {
	FindByID(ctx context.Context, tenantID string) (*domain.Tenant, error)
	FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	FindActiveByCustomDomain(ctx context.Context, customDomain string) (*domain.Tenant, error)
}

// Signals are the parts of a request that may identify a tenant
type Signals struct {
	Header string
	Query  map[string]string
	Host   string
}

// Resolver applies the precedence chain header > query > subdomain >
// custom domain > "default".
type Resolver struct {
	dir    Directory
	logger zerolog.Logger
}

// NewResolver creates a Resolver backed by dir
func NewResolver(dir Directory, logger zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, logger: logger}
}

// Resolve never fails. Directory errors are logged and treated as a miss
// for that step.
func (r *Resolver) Resolve(ctx context.Context, s Signals) string {
	if id := strings.TrimSpace(s.Header); id != "" {
		return id
	}

	for _, key := range []string{QueryTenantID, QueryTenantIDAlt} {
		if id := strings.TrimSpace(s.Query[key]); id != "" {
			return id
		}
	}

	host := normalizeHost(s.Host)
	if host == "" {
		return domain.DefaultTenantID
	}

	if sub, ok := subdomainOf(host); ok {
		t, err := r.dir.FindActiveBySubdomain(ctx, sub)
		if err != nil {
			r.logger.Warn().Err(err).Str("subdomain", sub).Msg("tenant lookup by subdomain failed")
		} else if t != nil {
			return t.ID
		}
	}

	t, err := r.dir.FindActiveByCustomDomain(ctx, host)
	if err != nil {
		r.logger.Warn().Err(err).Str("host", host).Msg("tenant lookup by custom domain failed")
	} else if t != nil {
		return t.ID
	}

	return domain.DefaultTenantID
}

// Validate returns the tenant record when it exists and is active
func (r *Resolver) Validate(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	t, err := r.dir.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("validate tenant %s: %w", tenantID, err)
	}
	if t == nil {
		return nil, common.ErrTenantNotFound
	}
	if !t.IsActive() {
		return nil, common.ErrTenantInactive
	}
	return t, nil
}

// normalizeHost strips the port and lower-cases the host
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}

// subdomainOf returns the first label of host when host has at least three
// labels and the label is not reserved
func subdomainOf(host string) (string, bool) {
	parts := strings.Split(host, ".")
	if len(parts) < minSubdomainParts {
		return "", false
	}
	sub := parts[0]
	if sub == "" || IsReservedSubdomain(sub) {
		return "", false
	}
	return sub, true
}

// IsReservedSubdomain reports whether subdomain can never name a tenant
func IsReservedSubdomain(subdomain string) bool {
	reserved := map[string]bool{
		"www":   true,
		"api":   true,
		"admin": true,
	}
	return reserved[subdomain]
}
