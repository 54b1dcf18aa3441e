package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/graph"
	"github.com/damoang/notion-gateway/internal/middleware"
	"github.com/damoang/notion-gateway/internal/migration"
	"github.com/damoang/notion-gateway/internal/recordmap"
	"github.com/damoang/notion-gateway/internal/repository"
	"github.com/damoang/notion-gateway/internal/service"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, migration.Run(db))

	tenantRepo := repository.NewTenantRepository(db)
	contentRepo := repository.NewContentRepository(db)
	resolver := tenant.NewResolver(tenantRepo, zerolog.Nop())

	notion := NewNotionHandler(service.NewNotionService(contentRepo, graph.NewResolver(contentRepo, graph.Options{}), tenantRepo, nil, zerolog.Nop()))
	tenants := NewTenantHandler(service.NewTenantService(tenantRepo, contentRepo, nil, zerolog.Nop()))

	r := gin.New()
	r.Use(middleware.ResolveTenant(resolver))
	r.POST("/getPage", notion.GetPage)
	r.POST("/getBlocks", notion.GetBlocks)
	r.POST("/syncRecordValues", notion.SyncRecordValues)
	r.POST("/queryCollection", notion.QueryCollection)
	r.POST("/getUsers", notion.GetUsers)
	r.GET("/api/tenants", tenants.ListTenants)
	r.POST("/api/tenants", tenants.CreateTenant)
	r.GET("/api/tenants/:tenantId", tenants.GetTenant)
	r.PUT("/api/tenants/:tenantId", middleware.ValidateTenantParam(resolver, "tenantId"), tenants.UpdateTenant)
	r.DELETE("/api/tenants/:tenantId", tenants.DeleteTenant)
	return r
}

func perform(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Host = ""
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTenant(t *testing.T, r http.Handler, subdomain string) domain.CreateTenantResult {
	t.Helper()
	w := perform(r, http.MethodPost, "/api/tenants", `{"subdomain":"`+subdomain+`","title":"Blog"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res domain.CreateTenantResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestNotionHandler_GetPage(t *testing.T) {
	r := setupRouter(t)
	res := createTenant(t, r, "blog")

	w := perform(r, http.MethodPost, "/getPage", `{"pageId":"`+res.RootPageID+`"}`, map[string]string{tenant.HeaderTenantID: res.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var rm recordmap.RecordMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rm))
	assert.Contains(t, rm.Block, res.RootPageID)
	assert.Len(t, rm.Collection, 1)
	assert.Len(t, rm.CollectionView, 1)

	// the body is the bare record map, never an envelope
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "data")
	assert.Contains(t, raw, "block")
}

func TestNotionHandler_GetPageErrors(t *testing.T) {
	r := setupRouter(t)
	res := createTenant(t, r, "blog")

	tests := []struct {
		name   string
		body   string
		header map[string]string
		code   int
	}{
		{"malformed body", `{"pageId":`, nil, http.StatusBadRequest},
		{"empty body", "", nil, http.StatusBadRequest},
		{"unknown page", `{"pageId":"nope"}`, map[string]string{tenant.HeaderTenantID: res.ID}, http.StatusNotFound},
		{"other tenant", `{"pageId":"` + res.RootPageID + `"}`, map[string]string{tenant.HeaderTenantID: "intruder"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodPost, "/getPage", tt.body, tt.header)
			assert.Equal(t, tt.code, w.Code)

			var body common.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Status)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestNotionHandler_GetBlocksAlias(t *testing.T) {
	r := setupRouter(t)
	res := createTenant(t, r, "blog")
	header := map[string]string{tenant.HeaderTenantID: res.ID}

	for _, body := range []string{
		`{"blockIds":["` + res.RootPageID + `","missing"]}`,
		`{"blocks":["` + res.RootPageID + `"]}`,
	} {
		w := perform(r, http.MethodPost, "/getBlocks", body, header)
		require.Equal(t, http.StatusOK, w.Code, body)

		var rm recordmap.RecordMap
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rm))
		assert.Len(t, rm.Block, 1)
		assert.Contains(t, rm.Block, res.RootPageID)
	}

	w := perform(r, http.MethodPost, "/getBlocks", `{"blockIds":[]}`, header)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotionHandler_SyncAndUsers(t *testing.T) {
	r := setupRouter(t)
	res := createTenant(t, r, "blog")
	header := map[string]string{tenant.HeaderTenantID: res.ID}

	w := perform(r, http.MethodPost, "/syncRecordValues",
		`{"requests":[{"id":"`+res.RootPageID+`","table":"block"},{"id":"x","table":"activity"}]}`, header)
	require.Equal(t, http.StatusOK, w.Code)
	var synced service.SyncResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &synced))
	assert.Len(t, synced.Results, 1)
	assert.Contains(t, synced.RecordMap.Block, res.RootPageID)

	w = perform(r, http.MethodPost, "/getUsers", `{"userIds":["u1"]}`, header)
	require.Equal(t, http.StatusOK, w.Code)
	var users struct {
		RecordMap recordmap.RecordMap `json:"recordMap"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Contains(t, users.RecordMap.NotionUser, "u1")
}

func TestNotionHandler_QueryCollection(t *testing.T) {
	r := setupRouter(t)
	res := createTenant(t, r, "blog")
	header := map[string]string{tenant.HeaderTenantID: res.ID}

	w := perform(r, http.MethodPost, "/getPage", `{"pageId":"`+res.RootPageID+`"}`, header)
	require.Equal(t, http.StatusOK, w.Code)
	var rm recordmap.RecordMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rm))
	var collID string
	for id := range rm.Collection {
		collID = id
	}

	w = perform(r, http.MethodPost, "/queryCollection",
		`{"collectionId":"`+collID+`","query":{"filter":{"operator":"and"}}}`, header)
	require.Equal(t, http.StatusOK, w.Code)
	var out service.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Result.Total)
	assert.Len(t, out.Result.BlockIDs, 1)

	w = perform(r, http.MethodPost, "/queryCollection", `{}`, header)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTenantHandler_Lifecycle(t *testing.T) {
	r := setupRouter(t)
	res := createTenant(t, r, "blog")

	w := perform(r, http.MethodPost, "/api/tenants", `{"subdomain":"blog","title":"Again"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = perform(r, http.MethodPost, "/api/tenants", `{"title":"No subdomain"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPost, "/api/tenants", `{"subdomain":"long","title":"`+strings.Repeat("x", 201)+`"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/api/tenants?limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list service.TenantList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)

	w = perform(r, http.MethodPut, "/api/tenants/"+res.ID, `{"title":""}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodPut, "/api/tenants/"+res.ID, `{"title":"Renamed"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(r, http.MethodGet, "/api/tenants/"+res.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.TenantResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Renamed", got.Title)

	w = perform(r, http.MethodDelete, "/api/tenants/"+res.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// deleted tenants fail the validation gate
	w = perform(r, http.MethodPut, "/api/tenants/"+res.ID, `{"title":"Zombie"}`, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"status":403`))

	w = perform(r, http.MethodPut, "/api/tenants/missing", `{"title":"x"}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
