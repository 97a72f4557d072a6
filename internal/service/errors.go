package service

import (
	"academia/backend/internal/model"
	apperrors "academia/backend/pkg/errors"
)

// 对外错误，消息即响应中的 message
var (
	ErrMissingFields       = apperrors.BadRequest("All fields are required")
	ErrInvalidInvite       = apperrors.BadRequest("Invalid or used invite code")
	ErrInvalidRole         = apperrors.BadRequest("Invalid role specified")
	ErrAvatarRequired      = apperrors.BadRequest("Avatar image is required")
	ErrAvatarUpload        = apperrors.BadRequest("Failed to upload avatar image")
	ErrCredentialsRequired = apperrors.BadRequest("Email and password are required")
	ErrInvalidCredentials  = apperrors.Unauthorized("Invalid email or password")
	ErrPasswordsRequired   = apperrors.BadRequest("Please provide old and new password")
	ErrInvalidOldPassword  = apperrors.Unauthorized("Invalid old password")
	ErrNoDetails           = apperrors.BadRequest("Please provide at least one detail to update")
	ErrInvalidDate         = apperrors.BadRequest("Dates must be formatted as YYYY-MM-DD")

	ErrMissingToken        = apperrors.BadRequest("Unauthorized request")
	ErrInvalidAccessToken  = apperrors.Unauthorized("Invalid access token")
	ErrInvalidRefreshToken = apperrors.Unauthorized("Invalid refresh token")
	ErrRefreshTokenUsed    = apperrors.Unauthorized("Refresh token is expired or used")

	ErrChatroomNotFound   = apperrors.NotFound("Chatroom not found")
	ErrInvalidYear        = apperrors.BadRequest("Year must be one of 1st Year, 2nd Year, 3rd Year")
	ErrInvalidSession     = apperrors.BadRequest("Session must look like 2024-2027")
	ErrContentRequired    = apperrors.BadRequest("Message content is required")
	ErrInvalidMessageType = apperrors.BadRequest("Message type must be text or image")
)

// errAlreadyExists 同一角色表内邮箱冲突
func errAlreadyExists(role model.Role) *apperrors.AppError {
	return apperrors.Conflict(role.Model() + " already exists")
}

func errAccountNotFound(role model.Role) *apperrors.AppError {
	return apperrors.NotFound(role.Model() + " not found")
}
