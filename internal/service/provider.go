package service

import (
	"trade_chat_server/internal/config"
	"trade_chat_server/internal/dao/mysql"
	myredis "trade_chat_server/internal/dao/redis"
	"trade_chat_server/internal/infrastructure/eventbus"
	"trade_chat_server/internal/service/chat"
	"trade_chat_server/internal/service/contact"
	"trade_chat_server/internal/service/external"
	"trade_chat_server/internal/service/marketing"
	"trade_chat_server/internal/service/message"
	"trade_chat_server/internal/service/profile"
	"trade_chat_server/pkg/util/keymutex"

	"github.com/jonboulle/clockwork"
)

// Services 聚合所有业务服务，供 Handler 层使用
type Services struct {
	Chat      ChatService
	Message   MessageService
	Contact   ContactService
	Marketing MarketingService
	Profile   ProfileService
}

// Collaborators 外部协作方客户端集合
type Collaborators struct {
	Profiles    external.ProfileDirectory
	Attachments external.Attachments
	Trades      external.TradeEngine
}

// NewServices 组装全部业务服务
// 聊天与消息服务互相依赖（建聊携带首条消息），聊天服务通过
// SetMessageSender 延迟注入，避免构造环
func NewServices(
	repos *mysql.Repositories,
	cache myredis.AsyncCacheService,
	clock clockwork.Clock,
	pub eventbus.Publisher,
	collab Collaborators,
	notify *config.NotifyConfig,
) *Services {
	locks := keymutex.New(64)

	chatSvc := chat.NewChatService(repos, cache, clock, locks, pub, collab.Profiles, collab.Trades)
	messageSvc := message.NewMessageService(repos, cache, clock, locks, pub, collab.Attachments, collab.Trades, collab.Profiles)
	chatSvc.SetMessageSender(messageSvc)

	return &Services{
		Chat:      chatSvc,
		Message:   messageSvc,
		Contact:   contact.NewContactService(repos, collab.Profiles),
		Marketing: marketing.NewMarketingService(repos, clock, pub),
		Profile:   profile.NewProfileService(repos, clock, collab.Trades, notify),
	}
}

// svc 全局服务单例
var svc *Services

// InitServices 初始化全局服务单例
func InitServices(s *Services) {
	svc = s
}

// Svc 获取全局服务单例
func Svc() *Services {
	return svc
}
