package model

import "time"

// 发送者 / 参与者模型名
const (
	SenderStudent = "Student"
	SenderTeacher = "Teacher"
	SenderAdmin   = "Admin"
)

// 消息类型
const (
	MessageText  = "text"
	MessageImage = "image"
)

// Chatroom 聊天室表，每个 (year, session) 唯一
type Chatroom struct {
	ChatroomID       string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"_id"`
	Year             string            `gorm:"type:varchar(10);not null"                      json:"year"`
	Session          string            `gorm:"type:varchar(9);not null"                       json:"session"`
	ParticipantModel string            `gorm:"type:varchar(10);not null;default:'Student'"    json:"participantModel"`
	Participants     []ChatParticipant `gorm:"foreignKey:ChatroomID;references:ChatroomID"    json:"participants"`
	Messages         []ChatMessage     `gorm:"foreignKey:ChatroomID;references:ChatroomID"    json:"messages"`
	Timestamps
}

// TableName 指定表名
func (Chatroom) TableName() string { return "chatrooms" }

// ChatMessage 聊天消息，message_id 自增保证插入顺序
type ChatMessage struct {
	MessageID   int64     `gorm:"primaryKey;autoIncrement"           json:"_id"`
	ChatroomID  string    `gorm:"type:uuid;not null;index"           json:"-"`
	SenderID    string    `gorm:"type:uuid;not null"                 json:"sender"`
	SenderModel string    `gorm:"type:varchar(10);not null"          json:"senderModel"`
	Content     string    `gorm:"type:text;not null"                 json:"content"`
	Type        string    `gorm:"type:varchar(10);not null;default:'text'" json:"type"`
	Timestamp   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"timestamp"`
}

// TableName 指定表名
func (ChatMessage) TableName() string { return "chat_messages" }

// ChatParticipant 聊天室参与者
type ChatParticipant struct {
	ChatroomID       string    `gorm:"type:uuid;primaryKey"               json:"-"`
	ParticipantID    string    `gorm:"type:uuid;primaryKey"               json:"participant"`
	ParticipantModel string    `gorm:"type:varchar(10);not null"          json:"participantModel"`
	JoinedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"joinedAt"`
}

// TableName 指定表名
func (ChatParticipant) TableName() string { return "chat_participants" }
