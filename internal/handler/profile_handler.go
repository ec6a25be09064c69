// Package handler 提供 HTTP 请求处理器
// 本文件处理客户消息服务状态相关的 API 请求
package handler

import (
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/infrastructure/middleware"
	"trade_chat_server/internal/service"
	"trade_chat_server/pkg/enum/chat/chat_status_enum"

	"github.com/gin-gonic/gin"
)

// ProfileHandler 客户消息服务状态请求处理器
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler 创建处理器实例
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// GetProfile 获取客户状态与未读数聚合
// GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	data, err := h.profileSvc.GetProfile(c.Request.Context(), middleware.GetCustomerId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateProfile 更新建聊隐私设置
// PUT /profile
// 请求体: request.UpdateProfileRequest
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.profileSvc.UpdateProfile(c.Request.Context(), middleware.GetCustomerId(c), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ReadAllMessages 按状态集合全部已读
// POST /profile/read-all
// 请求体: request.ReadAllRequest
func (h *ProfileHandler) ReadAllMessages(c *gin.Context) {
	var req request.ReadAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	statuses := req.Statuses
	if len(statuses) == 0 {
		statuses = chat_status_enum.DefaultListSet()
	}
	if err := h.profileSvc.ReadAllMessages(c.Request.Context(), middleware.GetCustomerId(c), statuses); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ReadAllTrades 交易未读数全部清零
// POST /profile/trades/read-all
func (h *ProfileHandler) ReadAllTrades(c *gin.Context) {
	if err := h.profileSvc.ReadAllTrades(c.Request.Context(), middleware.GetCustomerId(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListTrades 交易列表
// GET /profile/trades
func (h *ProfileHandler) ListTrades(c *gin.Context) {
	data, err := h.profileSvc.ListTrades(c.Request.Context(), middleware.GetCustomerId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
