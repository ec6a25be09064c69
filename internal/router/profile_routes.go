// Package router 提供 HTTP 路由注册
// 本文件定义客户消息服务状态相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterProfileRoutes 注册客户状态相关路由（需要认证）
// 包括未读数聚合、隐私设置、全部已读以及交易列表
func (rt *Router) RegisterProfileRoutes(rg *gin.RouterGroup) {
	profileGroup := rg.Group("/profile")
	{
		profileGroup.GET("", rt.handlers.Profile.GetProfile)                      // 状态与未读数聚合
		profileGroup.PUT("", rt.handlers.Profile.UpdateProfile)                   // 更新隐私设置
		profileGroup.POST("/read-all", rt.handlers.Profile.ReadAllMessages)       // 按状态集合全部已读
		profileGroup.GET("/trades", rt.handlers.Profile.ListTrades)               // 交易列表
		profileGroup.POST("/trades/read-all", rt.handlers.Profile.ReadAllTrades)  // 交易未读数清零
	}
}
