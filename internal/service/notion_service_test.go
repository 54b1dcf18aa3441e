package service

import (
	"context"
	"testing"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/recordmap"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedBlog provisions a tenant through the admin service and returns its
// context, root page id and collection id
func seedBlog(t *testing.T, env *testEnv) (context.Context, *domain.CreateTenantResult, string) {
	t.Helper()
	res, err := env.tenantSv.CreateTenant(context.Background(), &domain.CreateTenantRequest{Subdomain: "demo", Title: "Demo"})
	require.NoError(t, err)

	ctx := tenant.WithID(context.Background(), res.ID)
	root, err := env.content.GetBlock(ctx, res.ID, res.RootPageID)
	require.NoError(t, err)
	require.NotNil(t, root)
	return ctx, res, root.ChildIDs()[0]
}

func TestGetPage_CollectionViewPage(t *testing.T) {
	env := setupTestEnv(t)
	ctx, res, collID := seedBlog(t, env)

	rm, err := env.notion.GetPage(ctx, res.RootPageID)
	require.NoError(t, err)

	assert.Len(t, rm.Block, 2)
	assert.Contains(t, rm.Block, res.RootPageID)
	assert.Contains(t, rm.Collection, collID)
	assert.Len(t, rm.CollectionView, 1)
	require.Contains(t, rm.Space, res.ID)
	assert.Equal(t, []string{res.RootPageID}, rm.Space[res.ID].Value.Pages)

	for _, rec := range rm.Block {
		assert.Equal(t, recordmap.RoleReader, rec.Role)
		assert.Equal(t, res.ID, rec.Value.SpaceID)
	}
}

func TestGetPage_TenantIsolation(t *testing.T) {
	env := setupTestEnv(t)
	_, res, _ := seedBlog(t, env)

	other := tenant.WithID(context.Background(), "someone-else")
	_, err := env.notion.GetPage(other, res.RootPageID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// no tenant in context resolves against "default"
	_, err = env.notion.GetPage(context.Background(), res.RootPageID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.notion.GetPage(other, "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGetBlocks(t *testing.T) {
	env := setupTestEnv(t)
	ctx, res, _ := seedBlog(t, env)

	rm, err := env.notion.GetBlocks(ctx, []string{res.RootPageID, "missing"})
	require.NoError(t, err)
	assert.Len(t, rm.Block, 1)
	assert.Empty(t, rm.Collection)

	_, err = env.notion.GetBlocks(ctx, []string{"missing"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = env.notion.GetBlocks(ctx, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestSyncRecordValues(t *testing.T) {
	env := setupTestEnv(t)
	ctx, res, collID := seedBlog(t, env)

	out, err := env.notion.SyncRecordValues(ctx, []RecordRequest{
		{ID: res.RootPageID, Table: "block"},
		{ID: collID, Table: "collection"},
		{ID: "u1", Table: "notion_user"},
		{ID: res.ID, Table: "space"},
		{ID: "missing", Table: "block"},
		{ID: "x", Table: "comment"},
	})
	require.NoError(t, err)
	assert.Len(t, out.Results, 4)
	assert.Contains(t, out.RecordMap.Block, res.RootPageID)
	assert.Contains(t, out.RecordMap.Collection, collID)
	assert.Contains(t, out.RecordMap.NotionUser, "u1")
	assert.Contains(t, out.RecordMap.Space, res.ID)
}

func TestQueryCollection_UsesCache(t *testing.T) {
	env := setupTestEnv(t)
	ctx, res, collID := seedBlog(t, env)

	// a second, newer post
	newer := domain.Block{
		ID: "newer", TenantID: res.ID, Type: domain.BlockTypePage,
		ParentID: strPtr(collID), ParentTable: domain.ParentTableCollection,
		LastEditedTime: 1 << 50, Alive: 1, Content: "[]",
	}
	require.NoError(t, env.content.CreateContent(ctx, []domain.Block{newer}, nil, nil))

	out, err := env.notion.QueryCollection(ctx, collID, "")
	require.NoError(t, err)
	require.Len(t, out.Result.BlockIDs, 2)
	assert.Equal(t, "newer", out.Result.BlockIDs[0])
	assert.Equal(t, 2, out.Result.Total)
	assert.Equal(t, "table", out.Result.Type)
	assert.NotNil(t, out.Result.AggregationResults)
	assert.Contains(t, out.RecordMap.Collection, collID)
	assert.Len(t, out.RecordMap.CollectionView, 1)
	assert.True(t, env.redis.Exists("query:"+res.ID+":"+collID+":default"))

	// tombstone a member; the cached id list still names it, the record
	// fetch drops it
	require.NoError(t, env.db.Model(&domain.Block{}).Where("id = ? AND tenant_id = ?", "newer", res.ID).Update("alive", 0).Error)
	out, err = env.notion.QueryCollection(ctx, collID, "")
	require.NoError(t, err)
	require.Len(t, out.Result.BlockIDs, 1)
	assert.NotEqual(t, "newer", out.Result.BlockIDs[0])
	assert.NotContains(t, out.RecordMap.Block, "newer")

	_, err = env.notion.QueryCollection(ctx, "nope", "")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = env.notion.QueryCollection(ctx, "", "")
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestGetUsers(t *testing.T) {
	env := setupTestEnv(t)
	rm := env.notion.GetUsers(context.Background(), []string{"u1", "u2"})
	assert.Len(t, rm.NotionUser, 2)
	assert.NotNil(t, rm.Block)
}

func TestParseFallbackIsNotAnError(t *testing.T) {
	env := setupTestEnv(t)
	ctx := tenant.WithID(context.Background(), "t1")
	broken := domain.Block{ID: "b1", TenantID: "t1", Type: "text", Properties: "{broken", Content: "nope", Alive: 1}
	require.NoError(t, env.content.CreateContent(ctx, []domain.Block{broken}, nil, nil))

	rm, err := env.notion.GetPage(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, rm.Block["b1"].Value.Properties)
	assert.Equal(t, []string{}, rm.Block["b1"].Value.Content)
}
