package handler

import (
	"net/http"

	"github.com/damoang/notion-gateway/internal/common"
	"github.com/damoang/notion-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

// NotionHandler serves the document-graph read protocol. Responses are the
// bare protocol payloads, never wrapped.
type NotionHandler struct {
	notionService *service.NotionService
}

// NewNotionHandler creates a new NotionHandler
func NewNotionHandler(notionService *service.NotionService) *NotionHandler {
	return &NotionHandler{notionService: notionService}
}

type getPageRequest struct {
	PageID string `json:"pageId"`
}

type getBlocksRequest struct {
	BlockIDs []string `json:"blockIds"`
	Blocks   []string `json:"blocks"`
}

type syncRecordValuesRequest struct {
	Requests []service.RecordRequest `json:"requests"`
}

type queryCollectionRequest struct {
	Query            map[string]any `json:"query"`
	CollectionID     string         `json:"collectionId"`
	CollectionViewID string         `json:"collectionViewId"`
}

type getUsersRequest struct {
	UserIDs []string `json:"userIds"`
}

// GetPage godoc
// @Summary 페이지와 하위 블록 전체 조회
// @Tags notion
// @Param X-Tenant-ID header string false "테넌트 ID"
// @Param body body getPageRequest true "pageId"
// @Success 200 {object} recordmap.RecordMap
// @Failure 404 {object} common.ErrorBody
// @Router /getPage [post]
func (h *NotionHandler) GetPage(c *gin.Context) {
	var req getPageRequest
	if !bindBody(c, &req) {
		return
	}

	rm, err := h.notionService.GetPage(c.Request.Context(), req.PageID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, rm)
}

// GetBlocks godoc
// @Summary 지정한 블록만 조회
// @Tags notion
// @Param body body getBlocksRequest true "blockIds"
// @Success 200 {object} recordmap.RecordMap
// @Router /getBlocks [post]
func (h *NotionHandler) GetBlocks(c *gin.Context) {
	var req getBlocksRequest
	if !bindBody(c, &req) {
		return
	}

	ids := req.BlockIDs
	if len(ids) == 0 {
		ids = req.Blocks
	}

	rm, err := h.notionService.GetBlocks(c.Request.Context(), ids)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, rm)
}

// SyncRecordValues godoc
// @Summary 테이블별 단일 레코드 조회
// @Tags notion
// @Param body body syncRecordValuesRequest true "requests"
// @Success 200 {object} service.SyncResult
// @Router /syncRecordValues [post]
func (h *NotionHandler) SyncRecordValues(c *gin.Context) {
	var req syncRecordValuesRequest
	if !bindBody(c, &req) {
		return
	}

	out, err := h.notionService.SyncRecordValues(c.Request.Context(), req.Requests)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, out)
}

// QueryCollection godoc
// @Summary 컬렉션 멤버 페이지 조회 (최근 수정 순)
// @Tags notion
// @Param body body queryCollectionRequest true "collectionId"
// @Success 200 {object} service.QueryResult
// @Router /queryCollection [post]
func (h *NotionHandler) QueryCollection(c *gin.Context) {
	var req queryCollectionRequest
	if !bindBody(c, &req) {
		return
	}

	// filters and sorts in req.Query are accepted but not applied
	out, err := h.notionService.QueryCollection(c.Request.Context(), req.CollectionID, req.CollectionViewID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, out)
}

// GetUsers godoc
// @Summary 사용자 프로필 조회
// @Tags notion
// @Param body body getUsersRequest true "userIds"
// @Success 200 {object} map[string]interface{}
// @Router /getUsers [post]
func (h *NotionHandler) GetUsers(c *gin.Context) {
	var req getUsersRequest
	if !bindBody(c, &req) {
		return
	}

	rm := h.notionService.GetUsers(c.Request.Context(), req.UserIDs)
	common.SuccessResponse(c, gin.H{"recordMap": rm})
}

// bindBody decodes the JSON body. An empty body is treated as {}.
func bindBody(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
