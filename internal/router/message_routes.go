// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由，全部嵌套在聊天之下
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
// 包括发送、列表、投递状态机、编辑删除、附件以及报价操作
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/chats/:chat_id/messages")
	{
		messageGroup.POST("", rt.handlers.Message.SendMessage)                          // 发消息（幂等）
		messageGroup.GET("", rt.handlers.Message.ListMessages)                          // 消息列表
		messageGroup.GET("/:message_id", rt.handlers.Message.GetMessage)                // 获取单条消息
		messageGroup.PUT("/:message_id", rt.handlers.Message.UpdateMessage)             // 编辑消息
		messageGroup.DELETE("/:message_id", rt.handlers.Message.HideMessage)            // 删除（隐藏）消息
		messageGroup.POST("/delivered", rt.handlers.Message.MarkDelivered)              // 批量已投递
		messageGroup.POST("/read", rt.handlers.Message.MarkRead)                        // 批量已读
		messageGroup.POST("/read-all", rt.handlers.Message.ReadAll)                     // 单聊全部已读
		messageGroup.POST("/cancel-offer", rt.handlers.Message.CancelOffer)             // 撤销报价（按 offer_hash）
		messageGroup.POST("/accept-offer", rt.handlers.Message.AcceptOffer)             // 接受报价（按 offer_hash）
	}

	// 附件上传并挂接为 FILE 消息
	rg.POST("/chats/:chat_id/attachments", rt.handlers.Message.LinkAttachment)
}
