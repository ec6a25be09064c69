package request

// LinkAttachmentRequest 附件上传并挂接请求
// File 为 base64 编码的文件字节，存储由附件服务完成，消息只保存描述符
// 使用位置:
//   - internal/handler/message_handler.go: LinkAttachmentHandler
type LinkAttachmentRequest struct {
	Filename string `json:"filename" binding:"required,max=128"`
	File     string `json:"file" binding:"required"`
}
