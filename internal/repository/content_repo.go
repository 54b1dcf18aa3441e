package repository

import (
	"context"
	"errors"

	"github.com/damoang/notion-gateway/internal/domain"
	"gorm.io/gorm"
)

// ContentRepository reads blocks, collections and views. Every query is
// scoped to one tenant; block reads only return alive rows.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// ========================================
// Blocks
// ========================================

// GetBlock returns an alive block, or nil when absent
func (r *ContentRepository) GetBlock(ctx context.Context, tenantID, id string) (*domain.Block, error) {
	var block domain.Block
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND alive = ?", id, tenantID, 1).
		First(&block).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}

	return &block, nil
}

// GetBlocksByIDs returns the alive blocks among ids, in no particular order
func (r *ContentRepository) GetBlocksByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Block, error) {
	if len(ids) == 0 {
		return []domain.Block{}, nil
	}

	var blocks []domain.Block
	err := r.db.WithContext(ctx).
		Where("id IN ? AND tenant_id = ? AND alive = ?", ids, tenantID, 1).
		Find(&blocks).Error

	return blocks, err
}

// ListChildren returns alive blocks under parentID, most recently edited first
func (r *ContentRepository) ListChildren(ctx context.Context, tenantID, parentID, parentTable string, types ...string) ([]domain.Block, error) {
	query := r.db.WithContext(ctx).
		Where("parent_id = ? AND parent_table = ? AND tenant_id = ? AND alive = ?", parentID, parentTable, tenantID, 1)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}

	var blocks []domain.Block
	err := query.Order("last_edited_time DESC").Order("id ASC").Find(&blocks).Error
	return blocks, err
}

// CountBlocks returns the number of alive blocks and pages for a tenant
func (r *ContentRepository) CountBlocks(ctx context.Context, tenantID string) (*domain.TenantStats, error) {
	var stats domain.TenantStats
	err := r.db.WithContext(ctx).
		Model(&domain.Block{}).
		Select("COUNT(*) AS total_blocks, COUNT(CASE WHEN type = ? THEN 1 END) AS total_pages", domain.BlockTypePage).
		Where("tenant_id = ? AND alive = ?", tenantID, 1).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ========================================
// Collections
// ========================================

// GetCollection returns a collection, or nil when absent
func (r *ContentRepository) GetCollection(ctx context.Context, tenantID, id string) (*domain.Collection, error) {
	var collection domain.Collection
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&collection).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &collection, nil
}

// GetCollectionsByIDs returns the collections among ids
func (r *ContentRepository) GetCollectionsByIDs(ctx context.Context, tenantID string, ids []string) ([]domain.Collection, error) {
	if len(ids) == 0 {
		return []domain.Collection{}, nil
	}

	var collections []domain.Collection
	err := r.db.WithContext(ctx).
		Where("id IN ? AND tenant_id = ?", ids, tenantID).
		Find(&collections).Error

	return collections, err
}

// GetCollectionsByMemberBlock returns the collections a block is a member of
func (r *ContentRepository) GetCollectionsByMemberBlock(ctx context.Context, tenantID, blockID string) ([]domain.Collection, error) {
	var collections []domain.Collection
	err := r.db.WithContext(ctx).
		Distinct("collections.*").
		Joins("JOIN blocks b ON b.parent_id = collections.id AND b.tenant_id = collections.tenant_id").
		Where("b.id = ? AND b.tenant_id = ? AND b.parent_table = ?", blockID, tenantID, domain.ParentTableCollection).
		Find(&collections).Error

	return collections, err
}

// ========================================
// Views
// ========================================

// GetViewsByCollectionIDs returns every view over the given collections
func (r *ContentRepository) GetViewsByCollectionIDs(ctx context.Context, tenantID string, ids []string) ([]domain.CollectionView, error) {
	if len(ids) == 0 {
		return []domain.CollectionView{}, nil
	}

	var views []domain.CollectionView
	err := r.db.WithContext(ctx).
		Where("collection_id IN ? AND tenant_id = ?", ids, tenantID).
		Order("id ASC").
		Find(&views).Error

	return views, err
}

// ========================================
// Provisioning
// ========================================

// CreateContent inserts a batch of content rows in one transaction
func (r *ContentRepository) CreateContent(ctx context.Context, blocks []domain.Block, collections []domain.Collection, views []domain.CollectionView) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createContent(tx, blocks, collections, views)
	})
}

func createContent(tx *gorm.DB, blocks []domain.Block, collections []domain.Collection, views []domain.CollectionView) error {
	if len(blocks) > 0 {
		if err := tx.Create(&blocks).Error; err != nil {
			return err
		}
	}
	if len(collections) > 0 {
		if err := tx.Create(&collections).Error; err != nil {
			return err
		}
	}
	if len(views) > 0 {
		if err := tx.Create(&views).Error; err != nil {
			return err
		}
	}
	return nil
}
