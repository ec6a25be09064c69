package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"trade_chat_server/internal/config"
	dao "trade_chat_server/internal/dao/mysql"
	myredis "trade_chat_server/internal/dao/redis"
	"trade_chat_server/internal/handler"
	"trade_chat_server/internal/https_server"
	"trade_chat_server/internal/infrastructure/eventbus"
	externalclients "trade_chat_server/internal/infrastructure/external"
	"trade_chat_server/internal/infrastructure/logger"
	"trade_chat_server/internal/service"
	"trade_chat_server/pkg/util/jwt"
	"trade_chat_server/pkg/util/snowflake"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花算法
	snowflake.Init()
	zap.L().Info("雪花算法初始化成功")

	// 4. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret)
	zap.L().Info("JWT 初始化成功")

	// 5. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 6. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 7. 初始化事件发布器（channel 或 kafka 模式）
	pub := eventbus.NewPublisher(&conf.KafkaConfig)
	zap.L().Info("事件发布器初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 8. 初始化外部协作方客户端
	clients := externalclients.NewClients(&conf.ExternalConfig)
	zap.L().Info("外部客户端初始化成功")

	// 9. 初始化 Service 层 (依赖注入)
	services := service.NewServices(
		repos,
		myredis.GetCacheService(),
		clockwork.NewRealClock(),
		pub,
		service.Collaborators{
			Profiles:    clients.Profile,
			Attachments: clients.Attachments,
			Trades:      clients.Trade,
		},
		&conf.NotifyConfig,
	)
	service.InitServices(services)
	zap.L().Info("Service 层初始化成功")

	// 10. 初始化 HTTP 服务器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("init validator translator failed", zap.Error(err))
	}
	engine := https_server.Init(handler.NewHandlers(services))
	zap.L().Info("HTTP 服务器初始化成功")

	// 11. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit

	zap.L().Info("关闭服务器...")
	if err := pub.Close(); err != nil {
		zap.L().Warn("close publisher failed", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
