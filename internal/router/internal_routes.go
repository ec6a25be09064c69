// Package router 提供 HTTP 路由注册
// 本文件定义内部接口路由
// 调用方为平台其他服务，身份令牌须携带对应 scope
package router

import (
	"trade_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterInternalRoutes 注册内部接口路由
// internal scope: 系统消息注入、风控隐藏
// marketing scope: 营销消息管理
func (rt *Router) RegisterInternalRoutes(rg *gin.RouterGroup) {
	internalGroup := rg.Group("/internal")

	systemGroup := internalGroup.Group("")
	systemGroup.Use(middleware.RequireScope("internal"))
	{
		systemGroup.POST("/system-messages", rt.handlers.Message.InjectSystemMessage)                    // 注入系统消息
		systemGroup.DELETE("/chats/:chat_id/messages/:message_id", rt.handlers.Message.ModerateMessage)  // 风控隐藏消息
	}

	marketingGroup := internalGroup.Group("/marketing")
	marketingGroup.Use(middleware.RequireScope("marketing"))
	{
		marketingGroup.POST("", rt.handlers.Marketing.CreateMarketing)                  // 创建营销消息（幂等）
		marketingGroup.GET("", rt.handlers.Marketing.ListMarketing)                     // 管理视角列表
		marketingGroup.PUT("/:marketing_id", rt.handlers.Marketing.UpdateMarketing)     // 更新营销消息
	}
}
