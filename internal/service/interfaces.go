// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"

	"trade_chat_server/internal/dto/request"
	"trade_chat_server/internal/dto/respond"
)

// ChatService 聊天业务接口
// 处理 1:1 聊天的创建、查询、拉黑等功能
type ChatService interface {
	// StartChat 建聊，按无序参与者对幂等；可携带首条消息
	StartChat(ctx context.Context, callerId string, req request.StartChatRequest) (*respond.ChatRespond, error)
	// GetChat 获取聊天（调用者视角）
	GetChat(ctx context.Context, callerId, chatId string) (*respond.ChatRespond, error)
	// ListChats 游标分页列出聊天，activity_time 倒序
	ListChats(ctx context.Context, callerId string, req request.ListChatsRequest) (*respond.ChatListRespond, error)
	// BlockChat 拉黑聊天（幂等），返回更新后的聊天视图
	BlockChat(ctx context.Context, callerId, chatId string) (*respond.ChatRespond, error)
	// UnblockChat 解除拉黑并返回更新后的聊天视图，非 BLOCKED 状态返回 InvalidState
	UnblockChat(ctx context.Context, callerId, chatId string) (*respond.ChatRespond, error)
	// CheckResponders 批量检查能否向指定客户建聊（纯读）
	CheckResponders(ctx context.Context, callerId string, responderIds []string) ([]respond.CheckResponderRespond, error)
}

// MessageService 消息业务接口
// 处理消息的发送、投递状态机、列表以及报价操作
type MessageService interface {
	// SendMessage 发消息，按 (chat, author, external_request_id) 幂等重放
	SendMessage(ctx context.Context, callerId, chatId string, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// GetMessage 获取单条消息
	GetMessage(ctx context.Context, callerId, chatId string, messageId int64) (*respond.MessageRespond, error)
	// ListMessages 游标分页列出消息，(create_time, message_id) 排序
	ListMessages(ctx context.Context, callerId, chatId string, req request.ListMessagesRequest) (*respond.MessageListRespond, error)
	// MarkDelivered 批量置为已投递，逐条报告结果
	MarkDelivered(ctx context.Context, callerId, chatId string, messageIds []int64) (*respond.MarkMessagesRespond, error)
	// MarkRead 批量置为已读，逐条报告结果，推进己方已读位置
	MarkRead(ctx context.Context, callerId, chatId string, messageIds []int64) (*respond.MarkMessagesRespond, error)
	// ReadAll 单聊全部已读，未读数归零
	ReadAll(ctx context.Context, callerId, chatId string) error
	// UpdateMessage 作者编辑消息文本
	UpdateMessage(ctx context.Context, callerId, chatId string, messageId int64, req request.UpdateMessageRequest) (*respond.MessageRespond, error)
	// HideMessage 软删除消息，任意状态可进入 HIDDEN
	HideMessage(ctx context.Context, callerId, chatId string, messageId int64, moderator bool) error
	// LinkAttachment 上传附件并作为 FILE 消息发送
	LinkAttachment(ctx context.Context, callerId, chatId string, req request.LinkAttachmentRequest) (*respond.MessageRespond, error)
	// CancelOffer 报价主人按报价 hash 撤销报价
	CancelOffer(ctx context.Context, callerId, chatId, offerHash string) (*respond.MessageRespond, error)
	// AcceptOffer 非报价主人按报价 hash 接受报价，交易引擎开启交易并追加交易消息
	AcceptOffer(ctx context.Context, callerId, chatId, offerHash string) (*respond.MessageRespond, error)
	// InjectSystemMessage 向客户的系统聊天注入系统消息（内部接口）
	InjectSystemMessage(ctx context.Context, req request.SystemMessageRequest) (*respond.MessageRespond, error)
}

// ContactService 联系人业务接口
type ContactService interface {
	// AddContact 添加联系人，重复对返回 AlreadyExists
	AddContact(ctx context.Context, callerId string, req request.AddContactRequest) (*respond.ContactRespond, error)
	// GetContact 获取联系人
	GetContact(ctx context.Context, callerId, contactId string) (*respond.ContactRespond, error)
	// UpdateContact 更新联系类型（拉黑/取消拉黑）
	UpdateContact(ctx context.Context, callerId, contactId string, req request.UpdateContactRequest) (*respond.ContactRespond, error)
	// ListContacts 游标分页列出联系人，display_name 升序
	ListContacts(ctx context.Context, callerId string, req request.ListContactsRequest) (*respond.ContactListRespond, error)
}

// MarketingService 营销消息业务接口
type MarketingService interface {
	// Create 创建营销消息，按 external_request_id 幂等
	Create(ctx context.Context, req request.CreateMarketingRequest) (*respond.MarketingRespond, error)
	// Update 更新营销消息（文本/链接/起始时间/状态）
	Update(ctx context.Context, marketingId string, req request.UpdateMarketingRequest) (*respond.MarketingRespond, error)
	// List 管理视角列表，可按状态过滤
	List(ctx context.Context, req request.ListMarketingRequest) (*respond.MarketingListRespond, error)
	// ListVisible 接收方视角列表，只含未删除且已到 start_time 的消息
	ListVisible(ctx context.Context, req request.ListMarketingRequest) (*respond.MarketingListRespond, error)
}

// ProfileService 客户消息服务状态业务接口
type ProfileService interface {
	// GetProfile 获取客户状态与未读数聚合
	GetProfile(ctx context.Context, callerId string) (*respond.ProfileRespond, error)
	// UpdateProfile 更新建聊隐私设置
	UpdateProfile(ctx context.Context, callerId string, req request.UpdateProfileRequest) error
	// ReadAllMessages 按状态集合全部已读
	ReadAllMessages(ctx context.Context, callerId string, statuses []string) error
	// ReadAllTrades 交易未读数全部清零
	ReadAllTrades(ctx context.Context, callerId string) error
	// ListTrades 列出客户参与的交易（交易引擎投影 + 本地上下文）
	ListTrades(ctx context.Context, callerId string) (*respond.TradeListRespond, error)
}
