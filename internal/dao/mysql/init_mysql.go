// Package mysql 提供数据访问层的初始化和数据库实例管理
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"trade_chat_server/internal/config" // 配置管理
	"trade_chat_server/internal/model"  // 数据模型

	"go.uber.org/zap"                  // 日志库
	mysqldriver "gorm.io/driver/mysql" // GORM MySQL 驱动
	"gorm.io/gorm"                     // GORM ORM 框架
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 从配置读取 MySQL 连接信息
//  2. 构建 DSN（Data Source Name）连接字符串
//  3. 使用 GORM 建立数据库连接
//  4. 执行 AutoMigrate 自动迁移表结构
//  5. 创建并返回 Repository 实例
func Init() *Repositories {
	// 获取配置
	conf := config.GetConfig()

	// 构建 MySQL DSN 连接字符串
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,         // 用户名
		conf.MysqlConfig.Password,     // 密码
		conf.MysqlConfig.Host,         // 主机地址
		conf.MysqlConfig.Port,         // 端口
		conf.MysqlConfig.DatabaseName, // 数据库名
	)

	// 使用 GORM 打开数据库连接
	// TranslateError 把驱动层的唯一约束冲突翻译为 gorm.ErrDuplicatedKey，
	// 幂等写入的重放判定依赖这一点
	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		// 连接失败，记录致命错误并退出程序
		zap.L().Fatal(err.Error())
	}

	// AutoMigrate 自动迁移表结构
	// 如果表不存在则创建，如果字段变更则更新结构
	// 注意：不会删除已有字段或数据
	if err = AutoMigrate(db); err != nil {
		zap.L().Fatal(err.Error())
	}

	// 创建并返回 Repository 实例集合
	return NewRepositories(db)
}

// AutoMigrate 迁移全部实体表结构
// 单独导出给测试使用（测试用内存 SQLite 建同一套表）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Chat{},             // 聊天表
		&model.ChatContext{},      // 聊天上下文表
		&model.Message{},          // 消息表
		&model.Contact{},          // 联系人表
		&model.MarketingMessage{}, // 营销消息表
		&model.TradeContext{},     // 交易上下文表
		&model.ProfileContext{},   // 客户状态表
	)
}
