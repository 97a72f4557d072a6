package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academia/backend/internal/dto"
	"academia/backend/internal/service"
	"academia/backend/pkg/response"
)

// ChatHandler 聊天室 HTTP 处理器，三种角色均可访问
type ChatHandler struct {
	chatSvc service.ChatService
}

// NewChatHandler 创建 ChatHandler
func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

func bindRoom(c *gin.Context) (*dto.ChatroomURI, bool) {
	var uri dto.ChatroomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "Invalid chatroom", dto.ValidationDetails(err))
		return nil, false
	}
	return &uri, true
}

// GetMessages 按发送顺序返回消息
// GET /api/v1/chats/:year/:session/messages
func (h *ChatHandler) GetMessages(c *gin.Context) {
	room, ok := bindRoom(c)
	if !ok {
		return
	}

	messages, err := h.chatSvc.GetMessages(c.Request.Context(), room.Year, room.Session)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, messages, "Messages fetched successfully")
}

// SendMessage 发送消息，聊天室不存在时创建
// POST /api/v1/chats/:year/:session/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	identity, ok := MustGetIdentity(c)
	if !ok {
		return
	}
	room, ok := bindRoom(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bindRequest(c, &req) {
		return
	}

	chatroom, err := h.chatSvc.SendMessage(c.Request.Context(), service.SendMessageInput{
		Year:     room.Year,
		Session:  room.Session,
		SenderID: identity.AccountID,
		Sender:   identity.Role,
		Content:  req.Content,
		Type:     req.Type,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, chatroom, "Message sent successfully")
}
