// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"trade_chat_server/internal/handler"
	"trade_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器
// 持有 Handler 聚合，按模块注册路由组
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 全部业务路由挂在 /api/v3 下，统一要求身份令牌；
// 内部接口额外要求对应 scope
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v3")
	api.Use(middleware.IdentityAuth())

	rt.RegisterChatRoutes(api)      // 聊天路由
	rt.RegisterMessageRoutes(api)   // 消息路由
	rt.RegisterContactRoutes(api)   // 联系人路由
	rt.RegisterProfileRoutes(api)   // 客户状态路由
	rt.RegisterMarketingRoutes(api) // 营销消息路由
	rt.RegisterInternalRoutes(api)  // 内部接口路由
}
