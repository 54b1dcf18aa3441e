package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	mock.Mock
}

func (m *stubDirectory) FindByID(ctx context.Context, tenantID string) (*domain.Tenant, error) {
	args := m.Called(ctx, tenantID)
	t, _ := args.Get(0).(*domain.Tenant)
	return t, args.Error(1)
}

func (m *stubDirectory) FindActiveBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	args := m.Called(ctx, subdomain)
	t, _ := args.Get(0).(*domain.Tenant)
	return t, args.Error(1)
}

func (m *stubDirectory) FindActiveByCustomDomain(ctx context.Context, host string) (*domain.Tenant, error) {
	args := m.Called(ctx, host)
	t, _ := args.Get(0).(*domain.Tenant)
	return t, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTenantRouter(dir tenant.Directory) *gin.Engine {
	resolver := tenant.NewResolver(dir, zerolog.Nop())
	r := gin.New()
	r.Use(ResolveTenant(resolver))
	r.GET("/echo", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tenant": GetTenantID(c), "key": c.GetString("tenant_id")})
	})
	r.GET("/api/tenants/echo", func(c *gin.Context) {
		_, resolved := c.Get(tenantResolvedKey)
		c.JSON(http.StatusOK, gin.H{"resolved": resolved})
	})
	r.PUT("/api/tenants/:tenantId", ValidateTenantParam(resolver, "tenantId"), func(c *gin.Context) {
		t := c.MustGet(tenantRecordKey).(*domain.Tenant)
		c.JSON(http.StatusOK, gin.H{"id": t.ID})
	})
	return r
}

func doRequest(r http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolveTenant_Header(t *testing.T) {
	r := newTenantRouter(new(stubDirectory))

	w := doRequest(r, http.MethodGet, "/echo?tenant_id=from-query", map[string]string{tenant.HeaderTenantID: "from-header"})
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "from-header", body["tenant"])
	assert.Equal(t, "from-header", body["key"])
}

func TestResolveTenant_Subdomain(t *testing.T) {
	dir := new(stubDirectory)
	dir.On("FindActiveBySubdomain", mock.Anything, "blog").Return(&domain.Tenant{ID: "t-blog"}, nil)
	r := newTenantRouter(dir)

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Host = "blog.example.com"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "t-blog", body["tenant"])
	dir.AssertExpectations(t)
}

func TestResolveTenant_DefaultsWhenNothingMatches(t *testing.T) {
	dir := new(stubDirectory)
	// httptest requests carry Host example.com, too short for a subdomain
	dir.On("FindActiveByCustomDomain", mock.Anything, "example.com").Return(nil, nil)
	r := newTenantRouter(dir)

	w := doRequest(r, http.MethodGet, "/echo", nil)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, domain.DefaultTenantID, body["tenant"])
	dir.AssertExpectations(t)
}

func TestResolveTenant_SkipsAdminPaths(t *testing.T) {
	r := newTenantRouter(new(stubDirectory))

	w := doRequest(r, http.MethodGet, "/api/tenants/echo", map[string]string{tenant.HeaderTenantID: "x"})
	var body map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body["resolved"])
}

func TestValidateTenantParam(t *testing.T) {
	dir := new(stubDirectory)
	dir.On("FindByID", mock.Anything, "active").Return(&domain.Tenant{ID: "active", Status: domain.TenantStatusActive}, nil)
	dir.On("FindByID", mock.Anything, "paused").Return(&domain.Tenant{ID: "paused", Status: domain.TenantStatusInactive}, nil)
	dir.On("FindByID", mock.Anything, "ghost").Return(nil, nil)
	r := newTenantRouter(dir)

	tests := []struct {
		id   string
		code int
	}{
		{"active", http.StatusOK},
		{"paused", http.StatusForbidden},
		{"ghost", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			w := doRequest(r, http.MethodPut, "/api/tenants/"+tt.id, nil)
			assert.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				var body common.ErrorBody
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body.Status)
				assert.NotZero(t, body.Timestamp)
			}
		})
	}
}

func TestShouldSkipTenant(t *testing.T) {
	assert.True(t, shouldSkipTenant("/health"))
	assert.True(t, shouldSkipTenant("/metrics"))
	assert.True(t, shouldSkipTenant("/api/tenants/abc"))
	assert.False(t, shouldSkipTenant("/getPage"))
	assert.False(t, shouldSkipTenant("/api/v3/getPage"))
}
