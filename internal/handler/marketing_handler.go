// Package handler 提供 HTTP 请求处理器
// 本文件处理营销消息相关的 API 请求
// 创建与更新为内部接口，要求 marketing scope
package handler

import (
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MarketingHandler 营销消息请求处理器
type MarketingHandler struct {
	marketingSvc service.MarketingService
}

// NewMarketingHandler 创建营销消息处理器实例
func NewMarketingHandler(marketingSvc service.MarketingService) *MarketingHandler {
	return &MarketingHandler{marketingSvc: marketingSvc}
}

// CreateMarketing 创建营销消息
// POST /internal/marketing
// 请求体: request.CreateMarketingRequest
func (h *MarketingHandler) CreateMarketing(c *gin.Context) {
	var req request.CreateMarketingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.marketingSvc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateMarketing 更新营销消息
// PUT /internal/marketing/:marketing_id
// 请求体: request.UpdateMarketingRequest
func (h *MarketingHandler) UpdateMarketing(c *gin.Context) {
	var req request.UpdateMarketingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.marketingSvc.Update(c.Request.Context(), c.Param("marketing_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMarketing 管理视角营销消息列表
// GET /internal/marketing
// 查询参数: request.ListMarketingRequest
func (h *MarketingHandler) ListMarketing(c *gin.Context) {
	var req request.ListMarketingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.marketingSvc.List(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListVisibleMarketing 接收方视角营销消息列表
// GET /marketing
// 只返回 ACTIVE 且已到 start_time 的消息
func (h *MarketingHandler) ListVisibleMarketing(c *gin.Context) {
	var req request.ListMarketingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.marketingSvc.ListVisible(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
