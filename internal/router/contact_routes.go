// Package router 提供 HTTP 路由注册
// 本文件定义联系人相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterContactRoutes 注册联系人相关路由（需要认证）
// 包括添加、查询、拉黑/取消拉黑
func (rt *Router) RegisterContactRoutes(rg *gin.RouterGroup) {
	contactGroup := rg.Group("/contacts")
	{
		contactGroup.POST("", rt.handlers.Contact.AddContact)               // 添加联系人
		contactGroup.GET("", rt.handlers.Contact.ListContacts)              // 联系人列表
		contactGroup.GET("/:customer_id", rt.handlers.Contact.GetContact)   // 获取联系人
		contactGroup.PUT("/:customer_id", rt.handlers.Contact.UpdateContact) // 更新联系类型
	}
}
