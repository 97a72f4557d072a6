package dto

// ChatroomURI 聊天室路径参数
type ChatroomURI struct {
	Year    string `uri:"year"    binding:"required,academic_year"`
	Session string `uri:"session" binding:"required,academic_session"`
}

// SendMessageRequest 发送消息请求，发送者取自当前登录身份
type SendMessageRequest struct {
	Content string `json:"content"`
	Type    string `json:"type" binding:"omitempty,oneof=text image"`
}
