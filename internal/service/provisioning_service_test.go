package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionContent(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	content, err := provisionContent("t1", "root", "My Blog", now)
	require.NoError(t, err)

	require.Len(t, content.blocks, 2)
	require.Len(t, content.collections, 1)
	require.Len(t, content.views, 1)

	root, post := content.blocks[0], content.blocks[1]
	coll, view := content.collections[0], content.views[0]

	assert.Equal(t, "root", root.ID)
	assert.Equal(t, domain.BlockTypeCollectionViewPage, root.Type)
	assert.Equal(t, domain.ParentTableSpace, root.ParentTable)
	assert.Equal(t, []string{coll.ID}, root.ChildIDs())
	assert.Equal(t, now.UnixMilli(), root.CreatedTime)

	require.NotNil(t, post.ParentID)
	assert.Equal(t, coll.ID, *post.ParentID)
	assert.Equal(t, domain.ParentTableCollection, post.ParentTable)
	assert.Contains(t, post.Properties, welcomePostSlug)

	require.NotNil(t, coll.ParentID)
	assert.Equal(t, "root", *coll.ParentID)
	assert.Equal(t, coll.ID, view.CollectionID)
	require.NotNil(t, view.Name)
	assert.Equal(t, defaultViewName, *view.Name)

	var sort []string
	require.NoError(t, json.Unmarshal([]byte(view.PageSort), &sort))
	assert.Equal(t, []string{post.ID}, sort)

	for _, b := range content.blocks {
		assert.Equal(t, "t1", b.TenantID)
	}
}

func TestDefaultBlogSchema(t *testing.T) {
	schema := defaultBlogSchema()
	for _, key := range []string{"title", "status", "type", "slug", "date"} {
		assert.Contains(t, schema, key)
	}
	assert.Equal(t, "title", schema["title"].Type)
}

func TestEnsureDefaultTenant(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	created, err := env.tenantSv.EnsureDefaultTenant(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = env.tenantSv.EnsureDefaultTenant(ctx)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := env.tenantSv.GetTenant(ctx, domain.DefaultTenantID)
	require.NoError(t, err)
	assert.Equal(t, domain.TenantStatusActive, got.Status)
	assert.Equal(t, int64(1), got.Stats.TotalPages)
}
