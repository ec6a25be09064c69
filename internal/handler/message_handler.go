// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
package handler

import (
	"strconv"

	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/infrastructure/middleware"
	"trade_chat_server/internal/service"
	"trade_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// messageIdParam 解析路径中的消息雪花 ID
func messageIdParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		return 0, errorx.Wrap(err, errorx.CodeInvalidParam, "message_id 不是合法的消息ID")
	}
	return id, nil
}

// SendMessage 发消息
// POST /chats/:chat_id/messages
// 请求体: request.SendMessageRequest
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendMessage(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMessage 获取单条消息
// GET /chats/:chat_id/messages/:message_id
func (h *MessageHandler) GetMessage(c *gin.Context) {
	messageId, err := messageIdParam(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	data, err := h.messageSvc.GetMessage(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), messageId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListMessages 消息列表
// GET /chats/:chat_id/messages
// 查询参数: request.ListMessagesRequest
func (h *MessageHandler) ListMessages(c *gin.Context) {
	var req request.ListMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.ListMessages(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkDelivered 批量置为已投递
// POST /chats/:chat_id/messages/delivered
// 请求体: request.MarkMessagesRequest
func (h *MessageHandler) MarkDelivered(c *gin.Context) {
	var req request.MarkMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.MarkDelivered(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), req.MessageIds)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkRead 批量置为已读
// POST /chats/:chat_id/messages/read
// 请求体: request.MarkMessagesRequest
func (h *MessageHandler) MarkRead(c *gin.Context) {
	var req request.MarkMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.MarkRead(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), req.MessageIds)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ReadAll 单聊全部已读
// POST /chats/:chat_id/messages/read-all
func (h *MessageHandler) ReadAll(c *gin.Context) {
	if err := h.messageSvc.ReadAll(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UpdateMessage 编辑消息
// PUT /chats/:chat_id/messages/:message_id
// 请求体: request.UpdateMessageRequest
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	messageId, err := messageIdParam(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	var req request.UpdateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.UpdateMessage(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), messageId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// HideMessage 删除（隐藏）消息
// DELETE /chats/:chat_id/messages/:message_id
func (h *MessageHandler) HideMessage(c *gin.Context) {
	messageId, err := messageIdParam(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.messageSvc.HideMessage(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), messageId, false); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ModerateMessage 风控隐藏消息（内部接口，internal scope）
// DELETE /internal/chats/:chat_id/messages/:message_id
func (h *MessageHandler) ModerateMessage(c *gin.Context) {
	messageId, err := messageIdParam(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.messageSvc.HideMessage(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), messageId, true); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// LinkAttachment 上传附件并作为 FILE 消息发送
// POST /chats/:chat_id/attachments
// 请求体: request.LinkAttachmentRequest
func (h *MessageHandler) LinkAttachment(c *gin.Context) {
	var req request.LinkAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.LinkAttachment(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CancelOffer 撤销报价
// POST /chats/:chat_id/messages/cancel-offer
// 请求体: request.CancelOfferRequest
func (h *MessageHandler) CancelOffer(c *gin.Context) {
	var req request.CancelOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.CancelOffer(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), req.OfferHash)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AcceptOffer 接受报价
// POST /chats/:chat_id/messages/accept-offer
// 请求体: request.AcceptOfferRequest
func (h *MessageHandler) AcceptOffer(c *gin.Context) {
	var req request.AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.AcceptOffer(c.Request.Context(), middleware.GetCustomerId(c), c.Param("chat_id"), req.OfferHash)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// InjectSystemMessage 注入系统消息（内部接口，internal scope）
// POST /internal/system-messages
// 请求体: request.SystemMessageRequest
func (h *MessageHandler) InjectSystemMessage(c *gin.Context) {
	var req request.SystemMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.InjectSystemMessage(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
