// Package handler 提供 HTTP 请求处理器
// 本文件处理联系人相关的 API 请求
package handler

import (
	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/infrastructure/middleware"
	"trade_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactHandler 联系人请求处理器
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler 创建联系人处理器实例
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// AddContact 添加联系人
// POST /contacts
// 请求体: request.AddContactRequest
func (h *ContactHandler) AddContact(c *gin.Context) {
	var req request.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.AddContact(c.Request.Context(), middleware.GetCustomerId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetContact 获取联系人
// GET /contacts/:customer_id
func (h *ContactHandler) GetContact(c *gin.Context) {
	data, err := h.contactSvc.GetContact(c.Request.Context(), middleware.GetCustomerId(c), c.Param("customer_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateContact 更新联系类型（拉黑/取消拉黑）
// PUT /contacts/:customer_id
// 请求体: request.UpdateContactRequest
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	var req request.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.UpdateContact(c.Request.Context(), middleware.GetCustomerId(c), c.Param("customer_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListContacts 联系人列表
// GET /contacts
// 查询参数: request.ListContactsRequest
func (h *ContactHandler) ListContacts(c *gin.Context) {
	var req request.ListContactsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.ListContacts(c.Request.Context(), middleware.GetCustomerId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
