package service

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/graph"
	"github.com/damoang/notion-gateway/internal/repository"
	"github.com/damoang/notion-gateway/pkg/cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db       *gorm.DB
	tenants  *repository.TenantRepository
	content  *repository.ContentRepository
	cache    cache.Service
	redis    *miniredis.Miniredis
	notion   *NotionService
	tenantSv *TenantService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.Tenant{}, &domain.Block{}, &domain.Collection{}, &domain.CollectionView{}))

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewService(client, cache.Options{})

	tenants := repository.NewTenantRepository(db)
	content := repository.NewContentRepository(db)
	resolver := graph.NewResolver(content, graph.Options{})

	return &testEnv{
		db:       db,
		tenants:  tenants,
		content:  content,
		cache:    c,
		redis:    s,
		notion:   NewNotionService(content, resolver, tenants, c, zerolog.Nop()),
		tenantSv: NewTenantService(tenants, content, c, zerolog.Nop()),
	}
}

func strPtr(s string) *string { return &s }
