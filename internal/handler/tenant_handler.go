package handler

import (
	"net/http"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/domain"
	"github.com/damoang/notion-gateway/internal/service"
	"github.com/damoang/notion-gateway/pkg/ginutil"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var tenantValidator = validator.New()

// TenantHandler handles the tenant administration API
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// ListTenants godoc
// @Summary 테넌트 목록
// @Tags tenants
// @Param status query string false "상태 필터 (active, inactive, deleted)" default(active)
// @Param limit query int false "최대 항목 수" default(50)
// @Param offset query int false "건너뛸 항목 수" default(0)
// @Success 200 {object} service.TenantList
// @Router /api/tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	status := c.DefaultQuery("status", domain.TenantStatusActive)
	limit := ginutil.QueryInt(c, "limit", 0)
	offset := ginutil.QueryInt(c, "offset", 0)

	list, err := h.tenantService.ListTenants(c.Request.Context(), status, limit, offset)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, list)
}

// GetTenant godoc
// @Summary 테넌트 상세 (통계 포함)
// @Tags tenants
// @Param tenantId path string true "테넌트 ID"
// @Success 200 {object} domain.TenantResponse
// @Failure 404 {object} common.ErrorBody
// @Router /api/tenants/{tenantId} [get]
func (h *TenantHandler) GetTenant(c *gin.Context) {
	t, err := h.tenantService.GetTenant(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, t)
}

// GetBySubdomain godoc
// @Summary 서브도메인으로 테넌트 조회
// @Tags tenants
// @Param subdomain path string true "서브도메인"
// @Success 200 {object} domain.TenantResponse
// @Router /api/tenants/by-subdomain/{subdomain} [get]
func (h *TenantHandler) GetBySubdomain(c *gin.Context) {
	t, err := h.tenantService.GetBySubdomain(c.Request.Context(), c.Param("subdomain"))
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, t)
}

// GetByDomain godoc
// @Summary 커스텀 도메인으로 테넌트 조회
// @Tags tenants
// @Param domain path string true "도메인"
// @Success 200 {object} domain.TenantResponse
// @Router /api/tenants/by-domain/{domain} [get]
func (h *TenantHandler) GetByDomain(c *gin.Context) {
	t, err := h.tenantService.GetByDomain(c.Request.Context(), c.Param("domain"))
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, t)
}

// CreateTenant godoc
// @Summary 테넌트 생성 (루트 페이지, 블로그 컬렉션, 환영 글 포함)
// @Tags tenants
// @Param body body domain.CreateTenantRequest true "테넌트 정보"
// @Success 201 {object} domain.CreateTenantResult
// @Failure 400 {object} common.ErrorBody
// @Failure 409 {object} common.ErrorBody
// @Router /api/tenants [post]
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var req domain.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "subdomain and title are required")
		return
	}
	if err := tenantValidator.Struct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	result, err := h.tenantService.CreateTenant(c.Request.Context(), &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.CreatedResponse(c, result)
}

// UpdateTenant godoc
// @Summary 테넌트 수정
// @Tags tenants
// @Param tenantId path string true "테넌트 ID"
// @Param body body domain.UpdateTenantRequest true "수정할 필드"
// @Success 200 {object} map[string]string
// @Failure 403 {object} common.ErrorBody
// @Router /api/tenants/{tenantId} [put]
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	var req domain.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := tenantValidator.Struct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	if err := h.tenantService.UpdateTenant(c.Request.Context(), c.Param("tenantId"), &req); err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"message": "Tenant updated successfully"})
}

// DeleteTenant godoc
// @Summary 테넌트 삭제 (소프트 삭제)
// @Tags tenants
// @Param tenantId path string true "테넌트 ID"
// @Success 200 {object} map[string]string
// @Router /api/tenants/{tenantId} [delete]
func (h *TenantHandler) DeleteTenant(c *gin.Context) {
	if err := h.tenantService.DeleteTenant(c.Request.Context(), c.Param("tenantId")); err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"message": "Tenant deleted successfully"})
}
