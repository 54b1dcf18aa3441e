package repository

import (
	"context"
	"errors"

	"github.com/damoang/notion-gateway/internal/domain"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// ========================================
// Directory lookups
// ========================================

// FindByID retrieves a tenant by ID regardless of status
func (r *TenantRepository) FindByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	return r.first(ctx, "id = ?", tenantID)
}

// FindBySubdomain retrieves a tenant by subdomain regardless of status
func (r *TenantRepository) FindBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return r.first(ctx, "subdomain = ?", subdomain)
}

// FindActiveBySubdomain retrieves an active tenant by subdomain
func (r *TenantRepository) FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	return r.first(ctx, "subdomain = ? AND status = ?", subdomain, domain.TenantStatusActive)
}

// FindActiveByCustomDomain retrieves an active tenant by custom domain
func (r *TenantRepository) FindActiveByCustomDomain(ctx context.Context, customDomain string) (*domain.Tenant, error) {
	return r.first(ctx, "custom_domain = ? AND status = ?", customDomain, domain.TenantStatusActive)
}

func (r *TenantRepository) first(ctx context.Context, query string, args ...interface{}) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&tenant).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}

	return &tenant, nil
}

// ========================================
// Administration
// ========================================

// List retrieves tenants with the given status, newest first
func (r *TenantRepository) List(ctx context.Context, status string, limit, offset int) ([]domain.Tenant, int64, error) {
	var tenants []domain.Tenant
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Tenant{}).Where("status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// CreateWithContent inserts a tenant and its initial content atomically
func (r *TenantRepository) CreateWithContent(ctx context.Context, tenant *domain.Tenant, blocks []domain.Block, collections []domain.Collection, views []domain.CollectionView) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		return createContent(tx, blocks, collections, views)
	})
}

// Update applies a partial column update; updated_at is always bumped
func (r *TenantRepository) Update(ctx context.Context, tenantID string, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&domain.Tenant{ID: tenantID}).
		Updates(updates).Error
}

// SoftDelete marks a tenant deleted. Returns false when no row matched.
func (r *TenantRepository) SoftDelete(ctx context.Context, tenantID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("id = ?", tenantID).
		Update("status", domain.TenantStatusDeleted)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
