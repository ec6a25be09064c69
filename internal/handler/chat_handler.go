// Package handler 提供 HTTP 请求处理器
// 本文件处理聊天相关的 API 请求
package handler

import (
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/infrastructure/middleware"
	"trade_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler 聊天请求处理器
// 通过构造函数注入 ChatService，遵循依赖倒置原则
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建聊天处理器实例
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// StartChat 建聊
// POST /chats
// 请求体: request.StartChatRequest
// 响应: respond.ChatRespond
func (h *ChatHandler) StartChat(c *gin.Context) {
	var req request.StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.StartChat(c.Request.Context(), middleware.GetCustomerId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetChat 获取聊天
// GET /chats/:chat_id
func (h *ChatHandler) GetChat(c *gin.Context) {
	data, err := h.chatSvc.GetChat(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListChats 聊天列表
// GET /chats
// 查询参数: request.ListChatsRequest
func (h *ChatHandler) ListChats(c *gin.Context) {
	var req request.ListChatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.ListChats(c.Request.Context(), middleware.GetCustomerId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// BlockChat 拉黑聊天
// POST /chats/:chat_id/block
// 响应: respond.ChatRespond
func (h *ChatHandler) BlockChat(c *gin.Context) {
	data, err := h.chatSvc.BlockChat(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UnblockChat 解除拉黑
// POST /chats/:chat_id/unblock
// 响应: respond.ChatRespond
func (h *ChatHandler) UnblockChat(c *gin.Context) {
	data, err := h.chatSvc.UnblockChat(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CheckResponders 批量检查能否建聊
// POST /chats/check-responders
// 请求体: {"responder_ids": [...]}
func (h *ChatHandler) CheckResponders(c *gin.Context) {
	var req struct {
		ResponderIds []string `json:"responder_ids" binding:"required,min=1,max=50,dive,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.CheckResponders(c.Request.Context(), middleware.GetCustomerId(c), req.ResponderIds)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
