package dto

import "time"

// GenerateInviteRequest 生成邀请码请求
type GenerateInviteRequest struct {
	Role string `json:"role"`
}

// InviteResponse 邀请码响应
type InviteResponse struct {
	InviteCode string    `json:"inviteCode"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
