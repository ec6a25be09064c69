// Package router 提供 HTTP 路由注册
// 本文件定义聊天相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册聊天相关路由（需要认证）
// 包括建聊、查询、拉黑以及建聊可行性检查
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chats")
	{
		chatGroup.POST("", rt.handlers.Chat.StartChat)                         // 建聊（幂等）
		chatGroup.GET("", rt.handlers.Chat.ListChats)                          // 聊天列表
		chatGroup.GET("/:chat_id", rt.handlers.Chat.GetChat)                   // 获取聊天
		chatGroup.POST("/:chat_id/block", rt.handlers.Chat.BlockChat)          // 拉黑聊天
		chatGroup.POST("/:chat_id/unblock", rt.handlers.Chat.UnblockChat)      // 解除拉黑
		chatGroup.POST("/check-responders", rt.handlers.Chat.CheckResponders)  // 批量检查能否建聊
	}
}
