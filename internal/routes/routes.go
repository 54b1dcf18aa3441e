package routes

import (
	"net/http"
	"time"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/handler"
	"github.com/damoang/notion-gateway/internal/middleware"
	"github.com/damoang/notion-gateway/internal/tenant"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	notionHandler *handler.NotionHandler,
	tenantHandler *handler.TenantHandler,
	resolver *tenant.Resolver,
) {
	// Document graph protocol. Mounted at the root and under /api/v3 so
	// clients configured with either base URL work unchanged.
	for _, g := range []*gin.RouterGroup{router.Group(""), router.Group("/api/v3")} {
		g.POST("/getPage", notionHandler.GetPage)
		g.POST("/getBlocks", notionHandler.GetBlocks)
		g.POST("/syncRecordValues", notionHandler.SyncRecordValues)
		g.POST("/queryCollection", notionHandler.QueryCollection)
		g.POST("/getUsers", notionHandler.GetUsers)
	}

	// Tenant administration (테넌트 관리)
	tenants := router.Group("/api/tenants")
	tenants.GET("", tenantHandler.ListTenants)                            // 테넌트 목록
	tenants.POST("", tenantHandler.CreateTenant)                          // 테넌트 생성 + 초기 콘텐츠
	tenants.GET("/by-subdomain/:subdomain", tenantHandler.GetBySubdomain) // 서브도메인 조회
	tenants.GET("/by-domain/:domain", tenantHandler.GetByDomain)          // 커스텀 도메인 조회
	tenants.GET("/:tenantId", tenantHandler.GetTenant)                    // 테넌트 상세 (통계 포함)
	tenants.PUT("/:tenantId",
		middleware.ValidateTenantParam(resolver, "tenantId"),
		tenantHandler.UpdateTenant) // 테넌트 수정 (활성 테넌트만)
	tenants.DELETE("/:tenantId", tenantHandler.DeleteTenant) // 테넌트 소프트 삭제
}

// EngineOptions configures the global middleware chain
type EngineOptions struct {
	AllowOrigins []string
	Resolver     *tenant.Resolver
	// RedisClient enables the per-tenant rate limiter when non-nil
	RedisClient *redis.Client
	RateLimit   middleware.RateLimitConfig
}

// NewEngine builds the gin engine with the global middleware chain,
// the health check and the Prometheus endpoint
func NewEngine(opts EngineOptions) *gin.Engine {
	allowOrigins := opts.AllowOrigins
	router := gin.New()
	router.Use(gin.Recovery())

	// CORS 설정
	corsConfig := cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", tenant.HeaderTenantID, "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowOrigins) == 0 || (len(allowOrigins) == 1 && allowOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Middleware
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ResolveTenant(opts.Resolver))
	if opts.RedisClient != nil {
		router.Use(middleware.RateLimit(opts.RedisClient, opts.RateLimit))
	}

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "notion-gateway",
			"time":    time.Now().Unix(),
		})
	})

	router.NoRoute(func(c *gin.Context) {
		common.ErrorResponse(c, http.StatusNotFound, "not found")
	})

	return router
}
