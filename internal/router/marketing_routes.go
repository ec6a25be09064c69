// Package router 提供 HTTP 路由注册
// 本文件定义营销消息的接收方路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMarketingRoutes 注册营销消息接收方路由（需要认证）
// 只返回 ACTIVE 且已到 start_time 的消息
func (rt *Router) RegisterMarketingRoutes(rg *gin.RouterGroup) {
	rg.GET("/marketing", rt.handlers.Marketing.ListVisibleMarketing)
}
