package tenant

import (
	"context"
	"errors"

	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/pkg/cache"
	"github.com/rs/zerolog"
)

// CachedDirectory caches positive subdomain and custom-domain lookups.
// Lookups by id are not cached: they back the validation gate, which must
// observe status changes immediately.
type CachedDirectory struct {
	next   Directory
	cache  cache.Service
	logger zerolog.Logger
}

// NewCachedDirectory wraps next. A nil or unavailable cache disables caching.
func NewCachedDirectory(next Directory, c cache.Service, logger zerolog.Logger) Directory {
	if c == nil || !c.IsAvailable() {
		return next
	}
	return &CachedDirectory{next: next, cache: c, logger: logger}
}

func (d *CachedDirectory) FindByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return d.next.FindByID(ctx, tenantID)
}

func (d *CachedDirectory) FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := d.cache.GetTenantBySubdomain(ctx, subdomain, &t); err == nil {
		return &t, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		d.logger.Debug().Err(err).Str("subdomain", subdomain).Msg("tenant cache read failed")
	}

	found, err := d.next.FindActiveBySubdomain(ctx, subdomain)
	if err != nil || found == nil {
		return found, err
	}
	if err := d.cache.SetTenantBySubdomain(ctx, subdomain, found); err != nil {
		d.logger.Debug().Err(err).Str("subdomain", subdomain).Msg("tenant cache write failed")
	}
	return found, nil
}

func (d *CachedDirectory) FindActiveByCustomDomain(ctx context.Context, host string) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := d.cache.GetTenantByDomain(ctx, host, &t); err == nil {
		return &t, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		d.logger.Debug().Err(err).Str("host", host).Msg("tenant cache read failed")
	}

	found, err := d.next.FindActiveByCustomDomain(ctx, host)
	if err != nil || found == nil {
		return found, err
	}
	if err := d.cache.SetTenantByDomain(ctx, host, found); err != nil {
		d.logger.Debug().Err(err).Str("host", host).Msg("tenant cache write failed")
	}
	return found, nil
}
